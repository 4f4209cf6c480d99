package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/git21git/travelplanner/internal/auth"
	"github.com/git21git/travelplanner/internal/middleware"
	"github.com/git21git/travelplanner/internal/ratelimit"
)

// RouterConfig carries the cross-cutting pieces NewRouter wires around the Server.
type RouterConfig struct {
	Tokens auth.TokenValidator

	// Limiter and AuthRule throttle register and login per client IP.
	// A nil Limiter disables throttling.
	Limiter  ratelimit.Limiter
	AuthRule ratelimit.Rule

	// Metrics instruments every request; Gatherer is exposed at /metrics.
	// Either may be nil.
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer

	CORSOrigins  []string
	MaxBodyBytes int64
	Log          *slog.Logger
}

// NewRouter builds the full HTTP surface.
//
// Middleware order: RequestID → RealIP → SlogLogger → Recoverer → Metrics →
// CORS → MaxBodySize. RealIP runs before the rate limiter so limits apply per
// client rather than per proxy.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	var onLimited func(*http.Request)
	if cfg.Metrics != nil {
		onLimited = cfg.Metrics.RateLimited
	}
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(cfg.Limiter, cfg.AuthRule, onLimited))
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
		})
		r.Post("/logout", s.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Tokens, log))

		r.Get("/me", s.GetMe)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Patch("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Get("/places", s.ListPlaces)
				r.Post("/places", s.CreatePlace)
			})
		})

		r.Route("/places/{placeId}", func(r chi.Router) {
			r.Get("/", s.GetPlace)
			r.Patch("/", s.UpdatePlace)
			r.Delete("/", s.DeletePlace)
		})

		r.Get("/export", s.GetExport)
	})

	return r
}
