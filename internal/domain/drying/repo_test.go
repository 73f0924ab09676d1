package drying

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
	"github.com/woodflow/woodflow-bot/internal/infra/logger"
)

func newRepo(t *testing.T, h http.HandlerFunc) *Repo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRepo(api.New(srv.URL, time.Second, logger.Discard()), time.UTC)
}

func TestListChambersNormalizesIDs(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id_camara": 1, "camaraDescripcion": "Cámara Norte", "camaraCapacidad": 40},
			{"idCamara": "2"},
			{"id": 3},
			{"camaraDescripcion": "sin id"}
		]`))
	})
	cs, err := repo.ListChambers(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "Cámara Norte (Cap: 40)", cs[0].Label())
	assert.Equal(t, int64(2), cs[1].ID)
	assert.Equal(t, "Cámara 3", cs[2].Label())
}

func TestListLots(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"idLote": 7, "camara": {"idCamara": 2}, "estado": "SECANDO",
			 "loteFechaInicio": "2026-10-01T08:00:00", "loteFechaFin": "2026-10-09T08:00:00",
			 "bftTotalLote": "1200.50", "pallets": [{"idPallet": 4}, {"idPallet": 5}]},
			{"idLote": 8, "idCamara": 1, "estado": "FINALIZADO", "especie": "Pino"}
		]`))
	})
	lots, err := repo.ListLots(context.Background())
	require.NoError(t, err)
	require.Len(t, lots, 2)

	assert.Equal(t, int64(2), lots[0].ChamberID)
	assert.Equal(t, "Balsa", lots[0].Species)
	assert.Equal(t, []int64{4, 5}, lots[0].PalletIDs)
	assert.Equal(t, "2026-10-09", DateOnly(lots[0].End))
	assert.Equal(t, "1200.50", lots[0].TotalBFT.StringFixed(2))
	assert.Equal(t, int64(1), lots[1].ChamberID)
	assert.Equal(t, StateFinalized, lots[1].State)
}

func TestCreateSendsWirePayload(t *testing.T) {
	var body map[string]any
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/secado/crear", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"idLote": 9}`))
	})
	start := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)
	st, err := repo.Create(context.Background(), NewLot{
		ChamberID: 2, Start: start, End: start.AddDate(0, 0, 7), PalletIDs: []int64{4, 5}, Notes: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, StateScheduled, st)

	assert.Equal(t, float64(2), body["idCamara"])
	assert.Equal(t, "2026-10-14T08:00:00", body["loteFechaInicio"])
	assert.Equal(t, "2026-10-21T08:00:00", body["loteFechaFin"])
	assert.Equal(t, []any{float64(4), float64(5)}, body["idPallets"])
	assert.Equal(t, "x", body["loteObservaciones"])
}

func TestCreateInvalidSkipsBackend(t *testing.T) {
	repo := newRepo(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("backend must not be called")
	})
	_, err := repo.Create(context.Background(), NewLot{ChamberID: 1})
	assert.ErrorIs(t, err, ErrInvalidLot)
}

func TestFinalize(t *testing.T) {
	var calls int
	var lastBody []byte
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/secado/finalizar/7", r.URL.Path)
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	err := repo.Finalize(ctx, Lot{ID: 7, State: StateDrying}, decimal.Zero)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, calls)

	require.NoError(t, repo.Finalize(ctx, Lot{ID: 7, State: StateReadyForBFT}, decimal.Zero))
	assert.Empty(t, lastBody)

	require.NoError(t, repo.Finalize(ctx, Lot{ID: 7, State: StateReadyForBFT}, decimal.RequireFromString("812.456")))
	assert.JSONEq(t, `{"bftTotalLote": 812.46}`, string(lastBody))
	assert.Equal(t, 2, calls)
}
