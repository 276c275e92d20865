package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/privatechef/concierge/internal/access"
	"github.com/privatechef/concierge/internal/api/middleware"
	"github.com/privatechef/concierge/internal/api/response"
	"github.com/privatechef/concierge/internal/api/validation"
)

// EligibilityResolver decides collectible access. It never fails.
type EligibilityResolver interface {
	Resolve(ctx context.Context, walletAddress, email string) access.Resolution
}

// verifyRequest is the request body for POST /verify.
type verifyRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type verifyResponse struct {
	Eligible bool `json:"eligible"`
}

// AccessHandler exposes the access resolver.
type AccessHandler struct {
	resolver EligibilityResolver
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(resolver EligibilityResolver) *AccessHandler {
	return &AccessHandler{resolver: resolver}
}

// Verify handles POST /verify. A malformed address is answered with
// eligible=false rather than a validation error.
func (h *AccessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<12)
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, response.CodeInvalidJSON, "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateVerifyRequest(validation.VerifyRequest{WalletAddress: req.WalletAddress})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, response.CodeValidation, "Input validation failed", fieldErrors, requestID)
		return
	}

	res := h.resolver.Resolve(r.Context(), req.WalletAddress, "")
	response.Success(w, http.StatusOK, verifyResponse{Eligible: res.Eligible}, requestID)
}

// Access handles GET /access?wallet=&email=.
func (h *AccessHandler) Access(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := r.URL.Query()
	walletAddress, email := q.Get("wallet"), q.Get("email")

	fieldErrors := validation.ValidateAccessQuery(validation.AccessQuery{Wallet: walletAddress, Email: email})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, response.CodeValidation, "Input validation failed", fieldErrors, requestID)
		return
	}

	response.Success(w, http.StatusOK, h.resolver.Resolve(r.Context(), walletAddress, email), requestID)
}
