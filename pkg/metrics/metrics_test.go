package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("success")
	c.RecordLogin("invalid_credentials")
	c.RecordLogin("invalid_credentials")
	c.RecordSignup("duplicate_email")
	c.RecordGuard("stale_password")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.login.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.login.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.signup.WithLabelValues("duplicate_email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.guard.WithLabelValues("stale_password")))
}

func TestCollector_HashHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObservePasswordHash("hash", 120*time.Millisecond)
	c.ObservePasswordHash("verify", 80*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.hashTime))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGuard("allowed")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `auth_guard_total{result="allowed"} 1`)
}

func TestNewCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
