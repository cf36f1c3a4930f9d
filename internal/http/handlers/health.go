package handlers

import (
	"net/http"
)

// Health reports liveness plus the number of admitted generation jobs, so a
// poller can tell an idle server from a busy one without hitting /metrics.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": a.Progress.RunningCount(),
	})
}
