// Package validation checks request bodies and query parameters before they
// reach the domain packages.
package validation

import (
	"strings"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// VerifyRequest mirrors the fields needed for wallet verification.
type VerifyRequest struct {
	WalletAddress string
}

// ValidateVerifyRequest requires a non-blank walletAddress. A malformed
// address is not a validation error; it resolves as ineligible.
func ValidateVerifyRequest(req VerifyRequest) []FieldError {
	if strings.TrimSpace(req.WalletAddress) == "" {
		return []FieldError{{Field: "walletAddress", Message: "walletAddress is required"}}
	}
	return nil
}

// AccessQuery mirrors the query parameters of an access check.
type AccessQuery struct {
	Wallet string
	Email  string
}

// ValidateAccessQuery requires at least one of wallet or email.
func ValidateAccessQuery(q AccessQuery) []FieldError {
	if strings.TrimSpace(q.Wallet) == "" && strings.TrimSpace(q.Email) == "" {
		return []FieldError{
			{Field: "wallet", Message: "wallet or email is required"},
			{Field: "email", Message: "wallet or email is required"},
		}
	}
	return nil
}

// EstimateRequest mirrors the fields of a price estimate request.
type EstimateRequest struct {
	TierID string
	Guests int
	Addons []string
}

const maxAddons = 64

// ValidateEstimateRequest rejects only oversized add-on lists. Unknown tiers
// fall back and out-of-range guest counts are clamped by the estimator.
func ValidateEstimateRequest(req EstimateRequest) []FieldError {
	if len(req.Addons) > maxAddons {
		return []FieldError{{Field: "addons", Message: "addons must contain at most 64 entries"}}
	}
	return nil
}
