package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"price-recon/internal/config"
	"price-recon/internal/middleware"
	recHnd "price-recon/internal/reconcile/handler"
	"price-recon/server/http/handlers"
)

// NewRouter собирает HTTP API. runs == nil — история прогонов выключена, /runs не регистрируется.
func NewRouter(cfg config.Config, logger zerolog.Logger, runs recHnd.RunStore) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Post("/compare", recHnd.Compare(cfg, runs))
	if runs != nil {
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", recHnd.ListRuns(runs))
			r.Get("/{id}", recHnd.GetRun(runs))
		})
	}

	return r
}
