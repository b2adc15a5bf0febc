package analyzer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Bahjat/seo-insight/internal/cache"
	"github.com/Bahjat/seo-insight/internal/platform/middleware"
)

// StatsSource reports result cache usage for the health endpoint.
type StatsSource interface {
	Stats() cache.Stats
}

// RouterConfig collects what the HTTP surface needs.
type RouterConfig struct {
	Service        *Service
	Logger         *slog.Logger
	Stats          StatsSource
	AllowedOrigins []string
	AnalyzeTimeout time.Duration
}

type healthResponse struct {
	Status string       `json:"status"`
	Cache  *cache.Stats `json:"cache,omitempty"`
}

// NewRouter builds the API router: request ids, access logging, panic
// recovery and CORS around the analysis and health endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{Status: "ok"}
		if cfg.Stats != nil {
			s := cfg.Stats.Stats()
			resp.Cache = &s
		}
		renderJSON(w, cfg.Logger, http.StatusOK, resp)
	})

	NewTransport(cfg.Service, cfg.Logger, cfg.AnalyzeTimeout).RegisterRoutes(r)
	return r
}
