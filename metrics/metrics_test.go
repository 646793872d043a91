package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRequestStartedRecordsCounters(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/plans", "200"))

	done := RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done("GET", "/api/plans", http.StatusOK)

	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/plans", "200")))
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(roiCredited)
	ROICredited(decimal.RequireFromString("12.5"))
	assert.InDelta(t, before+12.5, testutil.ToFloat64(roiCredited), 0.0001)

	beforeEvents := testutil.ToFloat64(DepositEvents.WithLabelValues("confirmed"))
	DepositEvents.WithLabelValues("confirmed").Inc()
	assert.Equal(t, beforeEvents+1, testutil.ToFloat64(DepositEvents.WithLabelValues("confirmed")))
}

func TestHandlerServesRegistry(t *testing.T) {
	DepositEvents.WithLabelValues("submitted").Inc()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coinvest_deposits_events_total")
}
