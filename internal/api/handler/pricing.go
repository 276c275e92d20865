package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/privatechef/concierge/internal/api/middleware"
	"github.com/privatechef/concierge/internal/api/response"
	"github.com/privatechef/concierge/internal/api/validation"
	"github.com/privatechef/concierge/internal/catalog"
	"github.com/privatechef/concierge/internal/metrics"
	"github.com/privatechef/concierge/internal/pricing"
)

// estimateRequest is the request body for POST /estimate.
type estimateRequest struct {
	TierID string   `json:"tierId"`
	Guests int      `json:"guests"`
	Addons []string `json:"addons"`
}

type tierResponse struct {
	catalog.Tier
	Currency string `json:"currency"`
}

type estimateResponse struct {
	pricing.Estimate
	Currency string               `json:"currency"`
	TierName string               `json:"tierName"`
	Fallback bool                 `json:"tierFallback"`
	CTA      catalog.CallToAction `json:"cta"`
}

// PricingHandler serves the tier catalog and price estimates.
type PricingHandler struct {
	catalog *catalog.Catalog
	metrics *metrics.Recorder
}

// NewPricingHandler creates a new PricingHandler. rec may be nil.
func NewPricingHandler(c *catalog.Catalog, rec *metrics.Recorder) *PricingHandler {
	return &PricingHandler{catalog: c, metrics: rec}
}

// ListTiers handles GET /tiers.
func (h *PricingHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers := h.catalog.Tiers()
	items := make([]tierResponse, 0, len(tiers))
	for _, t := range tiers {
		items = append(items, tierResponse{Tier: t, Currency: h.catalog.Currency()})
	}
	response.SuccessList(w, http.StatusOK, items, len(items), middleware.GetRequestID(r.Context()))
}

// GetTier handles GET /tiers/{id}. Unlike estimates, an unknown id is a 404.
func (h *PricingHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	t, ok := h.catalog.Lookup(chi.URLParam(r, "id"))
	if !ok {
		response.Err(w, http.StatusNotFound, response.CodeNotFound, "Tier not found", requestID)
		return
	}
	response.Success(w, http.StatusOK, tierResponse{Tier: t, Currency: h.catalog.Currency()}, requestID)
}

// Estimate handles POST /estimate. Any JSON object yields an estimate:
// unknown tiers fall back to the first tier and guest counts are clamped.
func (h *PricingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, response.CodeInvalidJSON, "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateEstimateRequest(validation.EstimateRequest{
		TierID: req.TierID,
		Guests: req.Guests,
		Addons: req.Addons,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, response.CodeValidation, "Input validation failed", fieldErrors, requestID)
		return
	}

	tierID := strings.TrimSpace(req.TierID)
	_, known := h.catalog.Lookup(tierID)
	t := h.catalog.Tier(tierID)

	est := pricing.Calculate(t, req.Guests, req.Addons)
	h.metrics.Estimate(t.ID)

	response.Success(w, http.StatusOK, estimateResponse{
		Estimate: est,
		Currency: h.catalog.Currency(),
		TierName: t.Name,
		Fallback: !known,
		CTA:      t.CTA,
	}, requestID)
}
