package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/privatechef/concierge/internal/api/handler"
	"github.com/privatechef/concierge/internal/api/middleware"
	"github.com/privatechef/concierge/internal/api/response"
	"github.com/privatechef/concierge/internal/catalog"
	"github.com/privatechef/concierge/internal/config"
	"github.com/privatechef/concierge/internal/metrics"
)

// RouterDeps holds all dependencies needed by the router. Registry, Chain,
// Redis and Metrics may be nil.
type RouterDeps struct {
	Catalog     *catalog.Catalog
	Resolver    handler.EligibilityResolver
	Registry    handler.RegistryPinger
	Chain       handler.ChainChecker
	Metrics     *metrics.Recorder
	Gatherer    *prometheus.Registry
	Redis       *redis.Client
	RateLimit   config.RateLimit
	Version     string
	OpenAPISpec []byte
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, http.StatusNotFound, response.CodeNotFound, "Resource not found", middleware.GetRequestID(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, "Method not allowed", middleware.GetRequestID(r.Context()))
	})

	healthHandler := handler.NewHealthHandler(deps.Registry, deps.Chain, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	if deps.Catalog != nil {
		pricingHandler := handler.NewPricingHandler(deps.Catalog, deps.Metrics)
		r.Route("/tiers", func(r chi.Router) {
			r.Get("/", pricingHandler.ListTiers)
			r.Get("/{id}", pricingHandler.GetTier)
		})
		r.Post("/estimate", pricingHandler.Estimate)
	}

	if deps.Resolver != nil {
		accessHandler := handler.NewAccessHandler(deps.Resolver)
		limited := r.With(middleware.RateLimit(deps.RateLimit, deps.Redis))
		limited.Post("/verify", accessHandler.Verify)
		limited.Get("/access", accessHandler.Access)
	}

	return r
}
