package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHealth(t *testing.T) {
	code, body := get(t, New(":0", false, nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)
}

func TestReady(t *testing.T) {
	var fail error
	srv := New(":0", false, func(context.Context) error { return fail })

	code, _ := get(t, srv.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, code)

	fail = errors.New("db down")
	code, body := get(t, srv.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "db down")
}

func TestMetricsToggle(t *testing.T) {
	code, _ := get(t, New(":0", false, nil).Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)

	metrics.CountUpdate("message")
	code, body := get(t, New(":0", true, nil).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "woodflow_telegram_updates_total")
}
