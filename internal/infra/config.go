package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	UploadDir        string
	AllowedOrigins   []string
	ClaudeBin        string
	ClaudeModel      string
	KlingAccessKey   string
	KlingSecretKey   string
	KlingBaseURL     string
	KlingModel       string
	MaxRunningJobs   int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		AllowedOrigins:   splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		ClaudeBin:        getEnv("CLAUDE_BIN", "claude"),
		ClaudeModel:      os.Getenv("CLAUDE_MODEL"),
		KlingAccessKey:   os.Getenv("KLING_ACCESS_KEY"),
		KlingSecretKey:   os.Getenv("KLING_SECRET_KEY"),
		KlingBaseURL:     getEnv("KLING_BASE_URL", "https://api.klingai.com"),
		KlingModel:       getEnv("KLING_MODEL", "kling-v1"),
		MaxRunningJobs:   getEnvInt("MAX_RUNNING_JOBS", 1),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.MaxRunningJobs < 1 {
		cfg.MaxRunningJobs = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
