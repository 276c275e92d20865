package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/privatechef/concierge/internal/api/middleware"
	"github.com/privatechef/concierge/internal/api/response"
	"github.com/privatechef/concierge/internal/onchain"
)

const healthProbeTimeout = 2 * time.Second

// RegistryPinger checks holder registry reachability.
type RegistryPinger interface {
	Ping(ctx context.Context) error
}

// ChainChecker checks JSON-RPC node reachability.
type ChainChecker interface {
	CheckConnectivity(ctx context.Context) onchain.ConnectivityStatus
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	registry RegistryPinger
	chain    ChainChecker
	version  string
}

// NewHealthHandler creates a new HealthHandler. A nil registry or chain is
// reported as not configured.
func NewHealthHandler(registry RegistryPinger, chain ChainChecker, version string) *HealthHandler {
	return &HealthHandler{registry: registry, chain: chain, version: version}
}

type registryStatus struct {
	Configured bool `json:"configured"`
	Connected  bool `json:"connected"`
}

type chainStatus struct {
	Configured bool    `json:"configured"`
	Connected  bool    `json:"connected"`
	ChainID    *string `json:"chainId"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Registry registryStatus `json:"registry"`
	Chain    chainStatus    `json:"chain"`
}

// ServeHTTP always answers 200; a configured dependency that is unreachable
// marks the service degraded.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	data := healthData{Status: "healthy", Version: h.version}

	if h.registry != nil {
		data.Registry.Configured = true
		if err := h.registry.Ping(ctx); err != nil {
			slog.Warn("health: registry ping failed", "error", err, "requestId", requestID)
			data.Status = "degraded"
		} else {
			data.Registry.Connected = true
		}
	}

	if h.chain != nil {
		data.Chain.Configured = true
		connectivity := h.chain.CheckConnectivity(ctx)
		if connectivity.Connected {
			data.Chain.Connected = true
			data.Chain.ChainID = &connectivity.ChainID
		} else {
			data.Status = "degraded"
		}
	}

	response.Success(w, http.StatusOK, data, requestID)
}
