package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

func (a *App) StyleProfilesList(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Profiles.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list style profiles")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list style profiles")
		return
	}
	items := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, styleProfileJSON(p))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) StyleProfileGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	p, err := a.Profiles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "style profile not found")
			return
		}
		a.Logger.Error().Err(err).Str("profile_id", id).Msg("failed to load style profile")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load style profile")
		return
	}
	a.json(w, http.StatusOK, styleProfileJSON(p))
}

func styleProfileJSON(p *domain.StyleProfile) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"profile":     p.Profile,
		"sampleCount": p.SampleCount,
		"createdAt":   p.CreatedAt,
	}
}
