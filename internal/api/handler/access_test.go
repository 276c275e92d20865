package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privatechef/concierge/internal/access"
	"github.com/privatechef/concierge/internal/api/handler"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, walletAddress, email string) access.Resolution
	calls     int
}

func (m *mockResolver) Resolve(ctx context.Context, walletAddress, email string) access.Resolution {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, walletAddress, email)
	}
	return access.Resolution{Source: access.SourceNone, Reason: "no evidence"}
}

func TestAccessHandler_Verify_Eligible(t *testing.T) {
	// Arrange
	var gotWallet, gotEmail string
	resolver := &mockResolver{resolveFn: func(_ context.Context, w, e string) access.Resolution {
		gotWallet, gotEmail = w, e
		return access.Resolution{Eligible: true, Source: access.SourceRegistry, Reason: "wallet is a known holder"}
	}}
	h := handler.NewAccessHandler(resolver)
	req, w := makeChiRequest(http.MethodPost, "/verify", []byte(`{"walletAddress":"0x9e8aa5728b2cba33f8a7d1a31ccaa6b9c39f5c12"}`), nil)

	// Act
	h.Verify(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"eligible": true}, data, "verify exposes only the decision")
	assert.Equal(t, "0x9e8aa5728b2cba33f8a7d1a31ccaa6b9c39f5c12", gotWallet)
	assert.Empty(t, gotEmail)
}

func TestAccessHandler_Verify_MalformedWalletIsIneligible(t *testing.T) {
	resolver := &mockResolver{}
	h := handler.NewAccessHandler(resolver)
	req, w := makeChiRequest(http.MethodPost, "/verify", []byte(`{"walletAddress":"0xnothex"}`), nil)

	h.Verify(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["eligible"])
}

func TestAccessHandler_Verify_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing wallet", `{}`, "VALIDATION_ERROR"},
		{"blank wallet", `{"walletAddress":"   "}`, "VALIDATION_ERROR"},
		{"invalid json", `{"walletAddress":`, "INVALID_JSON"},
		{"wrong type", `{"walletAddress":42}`, "INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{}
			h := handler.NewAccessHandler(resolver)
			req, w := makeChiRequest(http.MethodPost, "/verify", []byte(tt.body), nil)

			h.Verify(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, parseEnvelope(t, w)))
			assert.Zero(t, resolver.calls)
		})
	}
}

func TestAccessHandler_Access(t *testing.T) {
	// Arrange
	var gotWallet, gotEmail string
	resolver := &mockResolver{resolveFn: func(_ context.Context, w, e string) access.Resolution {
		gotWallet, gotEmail = w, e
		return access.Resolution{Eligible: true, Tier: "VIP", Source: access.SourceAllowlist, Reason: "email is on the allowlist"}
	}}
	h := handler.NewAccessHandler(resolver)
	req, w := makeChiRequest(http.MethodGet, "/access?wallet=0xabc&email=concierge%40privatechef.example", nil, nil)

	// Act
	h.Access(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["eligible"])
	assert.Equal(t, "VIP", data["tier"])
	assert.Equal(t, "allowlist", data["source"])
	assert.Equal(t, "email is on the allowlist", data["reason"])
	assert.Equal(t, "0xabc", gotWallet)
	assert.Equal(t, "concierge@privatechef.example", gotEmail)
}

func TestAccessHandler_Access_OmitsEmptyTier(t *testing.T) {
	h := handler.NewAccessHandler(&mockResolver{})
	req, w := makeChiRequest(http.MethodGet, "/access?email=nobody%40example.com", nil, nil)

	h.Access(w, req)

	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["eligible"])
	assert.Equal(t, "none", data["source"])
	assert.NotContains(t, data, "tier")
}

func TestAccessHandler_Access_RequiresWalletOrEmail(t *testing.T) {
	resolver := &mockResolver{}
	h := handler.NewAccessHandler(resolver)
	req, w := makeChiRequest(http.MethodGet, "/access?wallet=&email=", nil, nil)

	h.Access(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, env))
	details := env["error"].(map[string]interface{})["details"].([]interface{})
	assert.Len(t, details, 2)
	assert.Zero(t, resolver.calls)
}
