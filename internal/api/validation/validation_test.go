package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/privatechef/concierge/internal/api/validation"
)

func TestValidateVerifyRequest(t *testing.T) {
	tests := []struct {
		name    string
		wallet  string
		wantErr bool
	}{
		{"valid address", "0x9e8aa5728b2cba33f8a7d1a31ccaa6b9c39f5c12", false},
		{"malformed address is not a validation error", "0x123", false},
		{"empty", "", true},
		{"whitespace only", "   \t", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateVerifyRequest(validation.VerifyRequest{WalletAddress: tt.wallet})
			if tt.wantErr {
				assert.Len(t, errs, 1)
				assert.Equal(t, "walletAddress", errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateAccessQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   validation.AccessQuery
		wantErr bool
	}{
		{"wallet only", validation.AccessQuery{Wallet: "0xabc"}, false},
		{"email only", validation.AccessQuery{Email: "guest@example.com"}, false},
		{"both", validation.AccessQuery{Wallet: "0xabc", Email: "guest@example.com"}, false},
		{"neither", validation.AccessQuery{}, true},
		{"blank values", validation.AccessQuery{Wallet: " ", Email: " "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateAccessQuery(tt.query)
			assert.Equal(t, tt.wantErr, len(errs) > 0)
		})
	}
}

func TestValidateEstimateRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateEstimateRequest(validation.EstimateRequest{}))
	assert.Empty(t, validation.ValidateEstimateRequest(validation.EstimateRequest{TierID: "nope", Guests: -5, Addons: []string{"wine"}}))

	tooMany := strings.Split(strings.Repeat("wine,", 65), ",")
	errs := validation.ValidateEstimateRequest(validation.EstimateRequest{Addons: tooMany})
	assert.Len(t, errs, 1)
	assert.Equal(t, "addons", errs[0].Field)
}
