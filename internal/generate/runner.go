// Package generate drives one generation job through its pipeline: image
// analysis, draft, optional quality pass, optional image generation, SEO
// scoring, and persistence. Each job reaches a terminal state exactly once.
package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
	"github.com/tomtomjskim/blog-automation-sub001/internal/imagegen"
	"github.com/tomtomjskim/blog-automation-sub001/internal/llm"
	"github.com/tomtomjskim/blog-automation-sub001/internal/progress"
	"github.com/tomtomjskim/blog-automation-sub001/internal/seo"
	"github.com/tomtomjskim/blog-automation-sub001/internal/telemetry"
)

// Params are the validated inputs of one job.
type Params struct {
	Topic            string
	Keywords         []string
	Style            domain.Style
	Length           domain.Length
	Mode             domain.Mode
	AdditionalInfo   string
	StyleProfileID   *string
	GenerateImages   bool
	AttachedImageIDs []string
}

// LLMClient is the text-generation boundary the pipeline calls out to.
type LLMClient interface {
	Invoke(ctx context.Context, prompt string, opts llm.Options) (*llm.Result, error)
	InvokeVision(ctx context.Context, prompt string, images []llm.ImageSource, opts llm.Options) (*llm.Result, error)
}

// ImageClient is the illustration-generation boundary.
type ImageClient interface {
	IsConfigured() bool
	Generate(ctx context.Context, req imagegen.GenerateRequest) ([]string, error)
}

// FileResolver resolves whitelisted attachment identifiers to readable files.
type FileResolver interface {
	Resolve(id string) (string, error)
	ReadForVision(path string) ([]byte, string, error)
}

const (
	visionTimeout      = 120 * time.Second
	draftTimeout       = 180 * time.Second
	refineTimeout      = 180 * time.Second
	imagePromptTimeout = 60 * time.Second
)

// Runner executes generation pipelines.
type Runner struct {
	jobs     domain.GenerationRepository
	profiles domain.StyleProfileRepository
	progress *progress.Store
	llm      LLMClient
	images   ImageClient
	files    FileResolver
	logger   zerolog.Logger
}

// NewRunner wires a pipeline runner. images may be an unconfigured client;
// the image step checks IsConfigured before planning itself in.
func NewRunner(
	jobs domain.GenerationRepository,
	profiles domain.StyleProfileRepository,
	store *progress.Store,
	llmClient LLMClient,
	images ImageClient,
	files FileResolver,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		jobs:     jobs,
		profiles: profiles,
		progress: store,
		llm:      llmClient,
		images:   images,
		files:    files,
		logger:   logger,
	}
}

// stepTracker renders determinate "(n/total 단계)" progress messages. The
// total is fixed up front from which optional steps are active.
type stepTracker struct {
	store *progress.Store
	jobID string
	step  int
	total int
}

func (t *stepTracker) advance(action string) {
	t.step++
	t.store.Update(t.jobID, fmt.Sprintf("%s... (%d/%d 단계)", action, t.step, t.total))
}

// Run executes the pipeline for jobID to a terminal state. It is launched as
// a detached goroutine by the submit handler and communicates only through
// the progress store and the durable record.
func (r *Runner) Run(ctx context.Context, jobID string, p Params) {
	telemetry.RunningGauge.Inc()
	defer telemetry.RunningGauge.Dec()

	start := time.Now()
	var usage llm.Usage
	log := r.logger.With().Str("job_id", jobID).Logger()

	withImages := len(p.AttachedImageIDs) > 0
	withRefine := p.Mode == domain.ModeQuality
	withImageGen := p.GenerateImages && r.images != nil && r.images.IsConfigured()
	if p.GenerateImages && !withImageGen {
		log.Warn().Msg("image generation requested but provider is not configured; skipping")
	}

	tracker := &stepTracker{store: r.progress, jobID: jobID, total: 2}
	if withImages {
		tracker.total++
	}
	if withRefine {
		tracker.total++
	}
	if withImageGen {
		tracker.total++
	}

	// Step: system prompt assembly. A missing profile is non-fatal.
	var profile *domain.StyleProfile
	if p.StyleProfileID != nil {
		found, err := r.profiles.GetByID(ctx, *p.StyleProfileID)
		if err != nil {
			log.Warn().Err(err).Str("profile_id", *p.StyleProfileID).Msg("style profile unavailable, writing without it")
		} else {
			profile = found
		}
	}
	system := systemPrompt(p.Style, profile)

	// Step: attached-image analysis. Never aborts the job.
	imageContext := ""
	var attachedRefs []string
	if withImages {
		tracker.advance("이미지 분석 중")
		imageContext, attachedRefs = r.analyzeImages(ctx, log, p.AttachedImageIDs, &usage)
	}

	// Step: draft generation. The only fatal LLM call.
	tracker.advance("초안 작성 중")
	draft, err := r.llm.Invoke(ctx, writingPrompt(p, imageContext), llm.Options{
		SystemPrompt: system,
		MaxTurns:     1,
		Timeout:      draftTimeout,
	})
	if err != nil {
		r.fail(ctx, log, jobID, usage, start, fmt.Sprintf("글 생성 호출 실패: %v", err))
		return
	}
	usage.Add(draft.Usage)
	if draft.Failed() {
		r.fail(ctx, log, jobID, usage, start, draft.Diagnostic())
		return
	}
	final := draft.Output

	// Step: quality refinement. Best effort; the draft survives a failure.
	if withRefine {
		tracker.advance("품질 개선 중")
		refined, err := r.llm.Invoke(ctx, refinementPrompt(final, p.Keywords), llm.Options{
			SystemPrompt: system,
			MaxTurns:     1,
			Timeout:      refineTimeout,
		})
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("quality pass failed, keeping draft")
		case refined.Failed():
			usage.Add(refined.Usage)
			log.Warn().Str("diagnostic", refined.Diagnostic()).Msg("quality pass unusable, keeping draft")
		default:
			usage.Add(refined.Usage)
			final = refined.Output
		}
	}

	// Step: image prompt extraction and generation. Logged and skipped on
	// any failure.
	imageURLs := append([]string(nil), attachedRefs...)
	if withImageGen {
		tracker.advance("이미지 생성 중")
		imageURLs = append(imageURLs, r.generateImages(ctx, log, final, &usage)...)
	}

	// Step: post-processing, scoring, and finalization.
	tracker.advance("마무리 중")
	info := postprocess(final, p.Topic)
	report := seo.Score(final, p.Keywords)

	fields := domain.CompletionFields{
		Title:        info.Title,
		Content:      info.Body,
		CharCount:    info.CharCount,
		ReadTime:     info.ReadTime,
		Headings:     info.Headings,
		SEOScore:     report.Score,
		ImageURLs:    imageURLs,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		CostUSD:      usage.CostUSD,
		DurationSec:  time.Since(start).Seconds(),
	}
	if err := r.jobs.Complete(ctx, jobID, fields); err != nil {
		r.fail(ctx, log, jobID, usage, start, fmt.Sprintf("결과 저장 실패: %v", err))
		return
	}
	r.progress.Complete(jobID, fmt.Sprintf("블로그 글 생성 완료! (%d/%d 단계)", tracker.total, tracker.total))
	telemetry.GenerationsCompleted.Inc()
	log.Info().
		Int("seo_score", report.Score).
		Int("char_count", info.CharCount).
		Float64("cost_usd", usage.CostUSD).
		Float64("duration_sec", fields.DurationSec).
		Msg("generation completed")
}

// analyzeImages resolves attachments, runs one vision call over all of them,
// and builds the context block for the writing prompt. Parse or invocation
// failures degrade to a bare reference list.
func (r *Runner) analyzeImages(ctx context.Context, log zerolog.Logger, ids []string, usage *llm.Usage) (string, []string) {
	var sources []llm.ImageSource
	var refs []string
	for _, id := range ids {
		path, err := r.files.Resolve(id)
		if err != nil || path == "" {
			log.Warn().Err(err).Str("image_id", id).Msg("attached image not resolved, skipping")
			continue
		}
		data, mediaType, err := r.files.ReadForVision(path)
		if err != nil {
			log.Warn().Err(err).Str("image_id", id).Msg("attached image not readable, skipping")
			continue
		}
		sources = append(sources, llm.ImageSource{MediaType: mediaType, Data: data})
		// The identifier may be extensionless; the reference must name the
		// file the uploads route actually serves.
		refs = append(refs, "/uploads/"+filepath.Base(path))
	}
	if len(sources) == 0 {
		return "", nil
	}

	res, err := r.llm.InvokeVision(ctx, visionPrompt(len(sources)), sources, llm.Options{
		MaxTurns: 1,
		Timeout:  visionTimeout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("image analysis call failed, using fallback context")
		return fallbackImageContext(refs), refs
	}
	usage.Add(res.Usage)
	if res.Failed() {
		log.Warn().Str("diagnostic", res.Diagnostic()).Msg("image analysis unusable, using fallback context")
		return fallbackImageContext(refs), refs
	}
	analyses, ok := extractAnalyses(res.Output)
	if !ok {
		log.Warn().Msg("image analysis output not parsable, using fallback context")
		return fallbackImageContext(refs), refs
	}
	return imageContextBlock(analyses, refs), refs
}

// generateImages asks the model for two tagged prompts and calls the
// provider for each, sequentially to stay inside provider rate limits.
func (r *Runner) generateImages(ctx context.Context, log zerolog.Logger, text string, usage *llm.Usage) []string {
	res, err := r.llm.Invoke(ctx, imagePromptRequest(text), llm.Options{
		MaxTurns: 1,
		Timeout:  imagePromptTimeout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("image prompt call failed, skipping image generation")
		return nil
	}
	usage.Add(res.Usage)
	if res.Failed() {
		log.Warn().Str("diagnostic", res.Diagnostic()).Msg("image prompt output unusable, skipping image generation")
		return nil
	}
	prompts := parseImagePrompts(res.Output)
	if len(prompts) == 0 {
		log.Warn().Msg("no tagged image prompts found, skipping image generation")
		return nil
	}

	var urls []string
	for i, prompt := range prompts {
		generated, err := r.images.Generate(ctx, imagegen.GenerateRequest{
			Prompt:      prompt,
			Count:       1,
			AspectRatio: "16:9",
		})
		if err != nil {
			log.Warn().Err(err).Int("prompt_index", i+1).Msg("image generation failed, skipping")
			continue
		}
		urls = append(urls, generated...)
	}
	return urls
}

// fail persists the terminal failure. A persistence error at this point is
// logged only; it must not escape the failure handler.
func (r *Runner) fail(ctx context.Context, log zerolog.Logger, jobID string, usage llm.Usage, start time.Time, errText string) {
	duration := time.Since(start).Seconds()
	if err := r.jobs.Fail(ctx, jobID, domain.FailureFields{
		Error:        errText,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		CostUSD:      usage.CostUSD,
		DurationSec:  duration,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist failure state")
	}
	r.progress.Fail(jobID, "블로그 글 생성 실패", errText)
	telemetry.GenerationsFailed.Inc()
	log.Error().Str("error", errText).Float64("duration_sec", duration).Msg("generation failed")
}
