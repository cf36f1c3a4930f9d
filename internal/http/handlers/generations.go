package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
	"github.com/tomtomjskim/blog-automation-sub001/internal/generate"
	"github.com/tomtomjskim/blog-automation-sub001/internal/telemetry"
	"github.com/tomtomjskim/blog-automation-sub001/internal/uploads"
)

type generationRequest struct {
	Topic            string   `json:"topic" validate:"required,max=200"`
	Keywords         []string `json:"keywords" validate:"max=10,dive,required,max=50"`
	Style            string   `json:"style" validate:"required"`
	Length           string   `json:"length"`
	Mode             string   `json:"mode"`
	AdditionalInfo   string   `json:"additionalInfo" validate:"max=2000"`
	StyleProfileID   *string  `json:"styleProfileId"`
	GenerateImages   bool     `json:"generateImages"`
	AttachedImageIDs []string `json:"attachedImageIds" validate:"max=5"`
}

type generationAccepted struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// buildParams validates the decoded request and maps it to pipeline
// parameters. All rejections wrap domain.ErrInvalidInput.
func (a *App) buildParams(req generationRequest) (generate.Params, error) {
	if req.Length == "" {
		req.Length = string(domain.LengthMedium)
	}
	if req.Mode == "" {
		req.Mode = string(domain.ModeQuick)
	}
	if err := a.Validate.Struct(req); err != nil {
		return generate.Params{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if !domain.ValidStyle(req.Style) {
		return generate.Params{}, fmt.Errorf("%w: unsupported style", domain.ErrInvalidInput)
	}
	if !domain.ValidLength(req.Length) {
		return generate.Params{}, fmt.Errorf("%w: unsupported length", domain.ErrInvalidInput)
	}
	if !domain.ValidMode(req.Mode) {
		return generate.Params{}, fmt.Errorf("%w: unsupported mode", domain.ErrInvalidInput)
	}
	attachedIDs := make([]string, 0, len(req.AttachedImageIDs))
	for _, id := range req.AttachedImageIDs {
		clean, err := uploads.SanitizeID(id)
		if err != nil {
			return generate.Params{}, fmt.Errorf("%w: invalid attached image id", domain.ErrInvalidInput)
		}
		attachedIDs = append(attachedIDs, clean)
	}
	return generate.Params{
		Topic:            req.Topic,
		Keywords:         req.Keywords,
		Style:            domain.Style(req.Style),
		Length:           domain.Length(req.Length),
		Mode:             domain.Mode(req.Mode),
		AdditionalInfo:   req.AdditionalInfo,
		StyleProfileID:   req.StyleProfileID,
		GenerateImages:   req.GenerateImages,
		AttachedImageIDs: attachedIDs,
	}, nil
}

// admit applies the soft concurrency limit. Two near-simultaneous submits
// can both pass; the limit bounds steady-state load, it is not a hard mutex.
func (a *App) admit() error {
	if a.Progress.RunningCount() >= a.Config.MaxRunningJobs {
		return domain.ErrAtCapacity
	}
	return nil
}

// GenerationsSubmit admits at most Config.MaxRunningJobs concurrent jobs,
// persists the running record, and hands the pipeline to a detached
// goroutine so the request returns immediately.
func (a *App) GenerationsSubmit(w http.ResponseWriter, r *http.Request) {
	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	params, err := a.buildParams(req)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := a.admit(); err != nil {
		if errors.Is(err, domain.ErrAtCapacity) {
			telemetry.AdmissionRejects.Inc()
			a.error(w, http.StatusTooManyRequests, "at_capacity", "다른 글을 생성 중입니다. 잠시 후 다시 시도해 주세요.")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "admission check failed")
		return
	}

	job := &domain.GenerationJob{
		ID:             uuid.NewString(),
		Topic:          params.Topic,
		Keywords:       params.Keywords,
		Style:          params.Style,
		Length:         params.Length,
		Mode:           params.Mode,
		StyleProfileID: params.StyleProfileID,
		AdditionalInfo: params.AdditionalInfo,
		Status:         domain.StatusRunning,
		CreatedAt:      time.Now(),
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Msg("failed to persist generation record")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
		return
	}
	a.Progress.Begin(job.ID)
	telemetry.GenerationsStarted.Inc()

	// The pipeline outlives the request; it must not inherit its deadline.
	go a.Runner.Run(context.Background(), job.ID, params)

	a.json(w, http.StatusAccepted, generationAccepted{
		ID:      job.ID,
		Status:  string(domain.StatusRunning),
		Message: "블로그 글 생성을 시작했습니다.",
	})
}

// GenerationStatus merges the in-memory progress entry with the durable
// record. While the job runs only the progress store has fresh state; after
// it finishes the record is authoritative and the entry may already be
// evicted.
func (a *App) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}

	entry, hasEntry := a.Progress.Get(id)

	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if hasEntry {
				a.json(w, http.StatusOK, map[string]any{
					"id":       id,
					"status":   entry.Status,
					"progress": entry.Message,
				})
				return
			}
			a.error(w, http.StatusNotFound, "not_found", "generation not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("failed to load generation")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load generation")
		return
	}

	body := generationJSON(job)
	if hasEntry && !job.Status.Terminal() {
		body["status"] = entry.Status
		body["progress"] = entry.Message
	}
	a.json(w, http.StatusOK, body)
}

func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}
	jobs, err := a.Jobs.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list generations")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list generations")
		return
	}
	items := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, generationJSON(job))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func generationJSON(job *domain.GenerationJob) map[string]any {
	body := map[string]any{
		"id":        job.ID,
		"topic":     job.Topic,
		"keywords":  job.Keywords,
		"style":     job.Style,
		"length":    job.Length,
		"mode":      job.Mode,
		"status":    job.Status,
		"createdAt": job.CreatedAt,
	}
	if job.StyleProfileID != nil {
		body["styleProfileId"] = *job.StyleProfileID
	}
	if job.Status == domain.StatusCompleted {
		body["title"] = job.Title
		body["content"] = job.Content
		body["charCount"] = job.CharCount
		body["readTime"] = job.ReadTime
		body["headings"] = job.Headings
		body["seoScore"] = job.SEOScore
		body["imageUrls"] = job.ImageURLs
	}
	if job.Error != nil {
		body["error"] = *job.Error
	}
	if job.Status.Terminal() {
		body["inputTokens"] = job.InputTokens
		body["outputTokens"] = job.OutputTokens
		body["costUsd"] = job.CostUSD
		body["durationSec"] = job.DurationSec
	}
	if job.CompletedAt != nil {
		body["completedAt"] = *job.CompletedAt
	}
	return body
}
