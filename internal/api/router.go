package api

import (
	"delivery-quote-service/internal/api/handlers"
	"delivery-quote-service/internal/ports"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Quotes       handlers.Quoter
	Calculations ports.CalculationRepository
	// Optional.
	Limiter        ports.RateLimiter
	AllowedOrigins []string

	// Rate limiting keys on the TCP peer address unless this is set, in which
	// case X-Forwarded-For / X-Real-IP from a trusted proxy are used.
	TrustProxyHeaders bool
	Logger            *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	calc := &handlers.CalculateHandler{Quotes: deps.Quotes}
	calcs := &handlers.CalculationHandler{Repo: deps.Calculations}

	r.Get("/health", handlers.Health)

	r.Group(func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(rateLimitMiddleware(deps.Limiter))
		}
		r.Post("/calculate", calc.Calculate)
		r.Post("/calculate/", calc.Calculate)
	})
	r.Get("/calculations", calcs.List)
	r.Get("/calculations/{id}", calcs.Get)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})

	return c.Handler(r)
}
