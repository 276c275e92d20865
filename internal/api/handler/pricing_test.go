package handler_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privatechef/concierge/internal/api/handler"
	"github.com/privatechef/concierge/internal/catalog"
	"github.com/privatechef/concierge/internal/metrics"
	"github.com/privatechef/concierge/internal/pricing"
)

func newPricingHandler() *handler.PricingHandler {
	return handler.NewPricingHandler(catalog.Default(), nil)
}

func TestPricingHandler_ListTiers(t *testing.T) {
	t.Parallel()

	// Arrange
	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodGet, "/tiers", nil, nil)

	// Act
	h.ListTiers(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)

	data := env["data"].([]interface{})
	require.Len(t, data, len(catalog.Default().Tiers()))
	first := data[0].(map[string]interface{})
	assert.Equal(t, "signature", first["id"])
	assert.Equal(t, "USD", first["currency"])
	assert.NotNil(t, first["cta"])

	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(len(data)), meta["total"])
}

func TestPricingHandler_GetTier(t *testing.T) {
	t.Parallel()

	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodGet, "/tiers/residency", nil, map[string]string{"id": "residency"})

	h.GetTier(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "residency", data["id"])
	assert.Equal(t, float64(5000), data["deposit"])
}

func TestPricingHandler_GetTier_NotFound(t *testing.T) {
	t.Parallel()

	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodGet, "/tiers/banquet", nil, map[string]string{"id": "banquet"})

	h.GetTier(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, parseEnvelope(t, w)))
}

func TestPricingHandler_Estimate(t *testing.T) {
	t.Parallel()

	// Arrange
	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(`{"tierId":"signature","guests":16,"addons":["wine"]}`), nil)

	// Act
	h.Estimate(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "signature", data["tierId"])
	assert.Equal(t, float64(16), data["guestCount"])
	assert.Equal(t, float64(4), data["additionalGuests"])
	assert.Equal(t, float64(2880), data["baseTotal"])
	assert.Equal(t, float64(480), data["enhancementsTotal"])
	assert.Equal(t, float64(3360), data["total"])
	assert.Equal(t, float64(1008), data["deposit"])
	assert.Equal(t, []interface{}{"wine"}, data["enhancements"])
	assert.Equal(t, false, data["tierFallback"])
	assert.Equal(t, "USD", data["currency"])
}

func TestPricingHandler_Estimate_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantGuests float64
	}{
		{"unknown tier", `{"tierId":"banquet","guests":20}`, 20},
		{"empty tier", `{"tierId":"","guests":1}`, 12},
		{"empty object", `{}`, 12},
		{"negative guests", `{"tierId":"signature","guests":-3}`, 12},
		{"guests above cap", `{"tierId":"signature","guests":100000000000000000}`, pricing.MaxGuests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newPricingHandler()
			req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(tt.body), nil)

			h.Estimate(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			data := parseEnvelope(t, w)["data"].(map[string]interface{})
			assert.Equal(t, "signature", data["tierId"])
			assert.Equal(t, tt.wantGuests, data["guestCount"])
		})
	}
}

func TestPricingHandler_Estimate_HugeGuestCountStaysPositive(t *testing.T) {
	t.Parallel()

	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(`{"tierId":"signature","guests":9223372036854775807,"addons":["wine"]}`), nil)

	h.Estimate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(pricing.MaxGuests), data["guestCount"])
	assert.Equal(t, float64(2400+(pricing.MaxGuests-12)*120+480), data["total"])
	assert.Positive(t, data["deposit"].(float64))
}

func TestPricingHandler_Estimate_ReportsFallback(t *testing.T) {
	t.Parallel()

	h := newPricingHandler()
	req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(`{"tierId":"banquet"}`), nil)

	h.Estimate(w, req)

	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["tierFallback"])
}

func TestPricingHandler_Estimate_InvalidJSON(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"tierId":`, `not json`, `{"guests":"many"}`} {
		h := newPricingHandler()
		req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(body), nil)

		h.Estimate(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "INVALID_JSON", errorCode(t, parseEnvelope(t, w)))
	}
}

func TestPricingHandler_Estimate_CountsMetric(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := handler.NewPricingHandler(catalog.Default(), metrics.NewRecorder(reg))

	for _, body := range []string{`{"tierId":"intimate"}`, `{"tierId":"intimate"}`, `{"tierId":"nope"}`} {
		req, w := makeChiRequest(http.MethodPost, "/estimate", []byte(body), nil)
		h.Estimate(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	count, err := testutil.GatherAndCount(reg, "concierge_pricing_estimates_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per resolved tier")
}
