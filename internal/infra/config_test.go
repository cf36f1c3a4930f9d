package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("KLING_BASE_URL", "")
	t.Setenv("MAX_RUNNING_JOBS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.KlingBaseURL != "https://api.klingai.com" {
		t.Fatalf("KlingBaseURL = %q", cfg.KlingBaseURL)
	}
	if cfg.MaxRunningJobs != 1 {
		t.Fatalf("MaxRunningJobs = %d, want 1", cfg.MaxRunningJobs)
	}
	if cfg.ClaudeBin != "claude" {
		t.Fatalf("ClaudeBin = %q, want claude", cfg.ClaudeBin)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigClampsMaxRunningJobs(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("MAX_RUNNING_JOBS", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxRunningJobs != 1 {
		t.Fatalf("MaxRunningJobs = %d, want clamp to 1", cfg.MaxRunningJobs)
	}
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("AllowedOrigins = %#v", cfg.AllowedOrigins)
	}
}
