package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodflow/woodflow-bot/internal/infra/logger"
)

func TestClientPostSendsJSON(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pallets-verdes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idPallet": 7, "bftVerdeRecibido": "540.00"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, logger.Discard())
	var out Fields
	err := c.Post(context.Background(), "/pallets-verdes", map[string]any{"palletLargo": 8}, &out)
	require.NoError(t, err)

	assert.Equal(t, float64(8), gotBody["palletLargo"])
	assert.Equal(t, int64(7), out.Int64("idPallet"))
	assert.Equal(t, "540", out.Decimal("bftVerdeRecibido").String())
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"bloque no existe"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, logger.Discard())
	err := c.Get(context.Background(), "/api/bloques/99", &Fields{})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Contains(t, se.Body, "bloque no existe")
	assert.True(t, IsNotFound(err))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, logger.Discard())
	err := c.Get(context.Background(), "/bloques", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClientEmptyBodyIsFine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, logger.Discard())
	var out Fields
	require.NoError(t, c.Patch(context.Background(), "/api/secado/finalizar/3", nil, &out))
	assert.Empty(t, out)
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/bloques":                 "/bloques",
		"/bloques/12":              "/bloques/:id",
		"/api/bloques/12/encolado": "/api/bloques/:id/encolado",
		"/a/1/2":                   "/a/:id/:id",
		"/api/lotes-secado?x=1":    "/api/lotes-secado",
	}
	for in, want := range tests {
		assert.Equal(t, want, routeLabel(in), in)
	}
}
