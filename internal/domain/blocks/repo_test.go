package blocks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
	"github.com/woodflow/woodflow-bot/internal/infra/logger"
)

func newRepo(t *testing.T, h http.Handler) *Repo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRepo(api.New(srv.URL, time.Second, logger.Discard()))
}

func TestCreateBlock(t *testing.T) {
	var body map[string]any
	repo := newRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bloques", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"idBloque": 44, "bestado": "PRESENTADO"}`))
	}))

	b, err := repo.Create(context.Background(), NewBlock{
		WorkOrderID: 1, GroupID: 1, Length: g("48"), Width: g("22"), Height: g("24"), WeightNoGlue: g("9100"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(44), b.ID)
	assert.Equal(t, map[string]any{"idOrden": float64(1)}, body["ordenTaller"])
	assert.Equal(t, float64(22), body["bAncho"])
	assert.Equal(t, float64(0), body["bBftFinal"])
	assert.Equal(t, "PRESENTADO", body["estado"])
}

func TestCreateBlockRejectsZeroDims(t *testing.T) {
	repo := newRepo(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("backend must not be called")
	}))
	_, err := repo.Create(context.Background(), NewBlock{Length: g("48"), Width: g("0"), Height: g("1"), WeightNoGlue: g("1")})
	assert.Error(t, err)
}

func TestGlueValidatesBeforePut(t *testing.T) {
	var puts int32
	var putBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bloques/5", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"idBloque": 5, "bpesoSinCola": "1000"}`))
	})
	mux.HandleFunc("PUT /api/bloques/5/encolado", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&puts, 1)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &putBody)
	})
	repo := newRepo(t, mux)
	ctx := context.Background()

	_, err := repo.Glue(ctx, 5, g("1349.99"))
	var ge *GlueDeltaError
	require.True(t, errors.As(err, &ge))
	assert.Zero(t, atomic.LoadInt32(&puts))

	b, err := repo.Glue(ctx, 5, g("1350"))
	require.NoError(t, err)
	assert.Equal(t, StateGlued, b.State)
	assert.Equal(t, int32(1), atomic.LoadInt32(&puts))
	assert.Equal(t, float64(1350), putBody["bPesoConCola"])
}

func TestGlueUnknownBlock(t *testing.T) {
	repo := newRepo(t, http.NotFoundHandler())
	_, err := repo.Glue(context.Background(), 77, g("1"))
	assert.True(t, api.IsNotFound(err))
}

func TestListDispatchableFiltersLocally(t *testing.T) {
	repo := newRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bloques", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"idBloque": 1, "bestado": "LISTO", "bancho": 40},
			{"idBloque": 2, "bestado": "ENCOLADO", "bancho": "47"},
			{"idBloque": 3, "bestado": "PRESENTADO", "bancho": 20},
			{"idBloque": 4, "bestado": "DESPACHO", "bancho": 20}
		]`))
	}))
	bs, err := repo.ListDispatchable(context.Background())
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.True(t, bs[1].Width.Equal(g("47")))
	assert.Equal(t, `Bloque #2 · 47.00"`, bs[1].Label())
}

func TestAssignToGroupMergesOriginalPayload(t *testing.T) {
	var body map[string]any
	repo := newRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/bloques/2", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
	}))

	var f api.Fields
	require.NoError(t, json.Unmarshal([]byte(`{"idBloque": 2, "bancho": 47, "bestado": "LISTO", "cuerpo": {"idCuerpo": 1}}`), &f))
	b := FromFields(f)

	require.NoError(t, repo.AssignToGroup(context.Background(), b, 12))
	assert.Equal(t, float64(47), body["bancho"])
	assert.Equal(t, "DESPACHO", body["bEstado"])
	assert.Equal(t, map[string]any{"idCuerpo": float64(12)}, body["cuerpo"])

	// исходный блок не тронут
	assert.Equal(t, int64(1), b.GroupID)
	assert.Equal(t, int64(1), b.Raw().Object("cuerpo").Int64("idCuerpo"))
}
