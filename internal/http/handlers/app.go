package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
	"github.com/tomtomjskim/blog-automation-sub001/internal/generate"
	"github.com/tomtomjskim/blog-automation-sub001/internal/infra"
	"github.com/tomtomjskim/blog-automation-sub001/internal/progress"
)

// GenerationRunner executes one admitted job to a terminal state.
type GenerationRunner interface {
	Run(ctx context.Context, jobID string, p generate.Params)
}

// App bundles the dependencies the HTTP handlers share.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Jobs     domain.GenerationRepository
	Profiles domain.StyleProfileRepository
	Progress *progress.Store
	Runner   GenerationRunner
	Validate *validator.Validate
}

func NewApp(
	cfg *infra.Config,
	logger zerolog.Logger,
	jobs domain.GenerationRepository,
	profiles domain.StyleProfileRepository,
	store *progress.Store,
	runner GenerationRunner,
) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Jobs:     jobs,
		Profiles: profiles,
		Progress: store,
		Runner:   runner,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
