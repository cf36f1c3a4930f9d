package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tomtomjskim/blog-automation-sub001/internal/adapter/repo"
	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
	"github.com/tomtomjskim/blog-automation-sub001/internal/infra"
	"github.com/tomtomjskim/blog-automation-sub001/internal/llm"
)

const learnTimeout = 5 * time.Minute

// styleprofile learns a reusable writing-voice profile from sample posts and
// stores it for later generations to reference.
func main() {
	var (
		nameFlag string
		descFlag string
		dirFlag  string
	)

	flag.StringVar(&nameFlag, "name", "", "profile name (required)")
	flag.StringVar(&descFlag, "description", "", "short description of the voice")
	flag.StringVar(&dirFlag, "samples", "", "directory of sample posts, .md or .txt (required)")
	flag.Parse()

	name := strings.TrimSpace(nameFlag)
	dir := strings.TrimSpace(dirFlag)
	if name == "" {
		exitWithError(errors.New("-name is required"))
	}
	if dir == "" {
		exitWithError(errors.New("-samples is required"))
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "styleprofile").Logger()

	samples, err := loadSamples(dir)
	if err != nil {
		exitWithError(err)
	}
	if len(samples) == 0 {
		exitWithError(fmt.Errorf("no .md or .txt samples found in %s", dir))
	}

	invoker := llm.NewCLIInvoker(cfg.ClaudeBin, cfg.ClaudeModel, logger)
	ctx := context.Background()
	res, err := invoker.Invoke(ctx, learnPrompt(samples), llm.Options{
		MaxTurns: 1,
		Timeout:  learnTimeout,
	})
	if err != nil {
		exitWithError(fmt.Errorf("profile learning call failed: %w", err))
	}
	if res.Failed() {
		exitWithError(fmt.Errorf("profile learning failed: %s", res.Diagnostic()))
	}
	profileText := strings.TrimSpace(res.Output)
	if profileText == "" {
		exitWithError(errors.New("model returned an empty profile"))
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := infra.NewDBPool(dbCtx, cfg)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	profiles := repo.NewStyleProfileRepository(pool)
	profile := &domain.StyleProfile{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(descFlag),
		Profile:     profileText,
		SampleCount: len(samples),
		CreatedAt:   time.Now(),
	}
	if err := profiles.Create(dbCtx, profile); err != nil {
		exitWithError(fmt.Errorf("failed to store profile: %w", err))
	}

	fmt.Printf("Profile %s (%s) stored from %d samples\n", profile.ID, profile.Name, profile.SampleCount)
	fmt.Printf("cost_usd=%.4f tokens=%d/%d\n", res.Usage.CostUSD, res.Usage.InputTokens, res.Usage.OutputTokens)
}

func loadSamples(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples directory: %w", err)
	}
	var samples []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".txt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		text := strings.TrimSpace(string(data))
		if text != "" {
			samples = append(samples, text)
		}
	}
	return samples, nil
}

func learnPrompt(samples []string) string {
	var b strings.Builder
	b.WriteString(`아래 블로그 글 샘플들의 문체를 분석해 주세요.
말투, 문장 길이, 어휘 선택, 이모지 사용, 문단 구성 습관을 정리해서
다른 글을 같은 문체로 쓸 때 지침으로 쓸 수 있는 프로필을 작성합니다.
프로필 본문만 출력하세요.
`)
	for i, sample := range samples {
		fmt.Fprintf(&b, "\n--- 샘플 %d ---\n\n%s\n", i+1, sample)
	}
	return b.String()
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
