package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtomjskim/blog-automation-sub001/internal/http/handlers"
	"github.com/tomtomjskim/blog-automation-sub001/internal/middleware"
	"github.com/tomtomjskim/blog-automation-sub001/internal/telemetry"
)

// NewRouter assembles the API surface. The uploads directory is served
// read-only so generated posts can reference attached images by path.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.GenerationsSubmit)
		r.Get("/", app.GenerationsList)
		r.Get("/{id}", app.GenerationStatus)
	})

	r.Route("/v1/style-profiles", func(r chi.Router) {
		r.Get("/", app.StyleProfilesList)
		r.Get("/{id}", app.StyleProfileGet)
	})

	if app.Config.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Config.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return r
}
