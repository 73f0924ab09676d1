package drying

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateForwardOnly(t *testing.T) {
	assert.True(t, StateScheduled.CanAdvanceTo(StateDrying))
	assert.True(t, StateScheduled.CanAdvanceTo(StateFinalized))
	assert.True(t, StateReadyForBFT.CanAdvanceTo(StateFinalized))

	assert.False(t, StateDrying.CanAdvanceTo(StateScheduled))
	assert.False(t, StateFinalized.CanAdvanceTo(StateReadyForBFT))
	assert.False(t, StateDrying.CanAdvanceTo(StateDrying))
	assert.False(t, StateDrying.CanAdvanceTo(State("OTRO")))
}

func TestLotAdvance(t *testing.T) {
	l := Lot{ID: 1, State: StateDrying, PalletIDs: []int64{1, 2}}

	next, err := l.Advance(StateReadyForBFT)
	require.NoError(t, err)
	assert.Equal(t, StateReadyForBFT, next.State)
	assert.Equal(t, StateDrying, l.State)

	_, err = next.Advance(StateScheduled)
	assert.True(t, errors.Is(err, ErrBackwardTransition))
}

func TestFinalizedTotalIsFrozen(t *testing.T) {
	l := Lot{State: StateReadyForBFT}
	l, err := l.WithTotal(decimal.NewFromInt(900))
	require.NoError(t, err)

	l, err = l.Advance(StateFinalized)
	require.NoError(t, err)

	same, err := l.WithTotal(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrLotFrozen)
	assert.True(t, same.TotalBFT.Equal(decimal.NewFromInt(900)))
}

func TestSplit(t *testing.T) {
	lots := []Lot{
		{ID: 1, State: StateScheduled},
		{ID: 2, State: StateFinalized},
		{ID: 3, State: StateReadyForBFT},
	}
	process, history := Split(lots)
	require.Len(t, process, 2)
	require.Len(t, history, 1)
	assert.Equal(t, int64(2), history[0].ID)
}

func TestParseState(t *testing.T) {
	assert.Equal(t, StateReadyForBFT, ParseState(" listo para bft "))
	assert.Equal(t, StateScheduled, ParseState(""))
	assert.Equal(t, StateScheduled, ParseState("desconocido"))
}

func TestNewLotValidate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 8, 0, 0, 0, time.UTC) }
	ok := NewLot{ChamberID: 1, Start: day(14), End: day(20), PalletIDs: []int64{5}}
	require.NoError(t, ok.Validate())

	sameDay := ok
	sameDay.End = day(14)
	assert.NoError(t, sameDay.Validate())

	tests := map[string]func(n *NewLot){
		"no chamber":    func(n *NewLot) { n.ChamberID = 0 },
		"no end":        func(n *NewLot) { n.End = time.Time{} },
		"no pallets":    func(n *NewLot) { n.PalletIDs = nil },
		"end too early": func(n *NewLot) { n.End = day(10) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			n := ok
			mutate(&n)
			assert.ErrorIs(t, n.Validate(), ErrInvalidLot)
		})
	}
}

func TestDates(t *testing.T) {
	loc := time.FixedZone("ECT", -5*3600)

	d, err := ParseDay("14/10/2026", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14T08:00:00", WireDate(d))

	d, err = ParseDay("2026-10-20", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20T08:00:00", WireDate(d))

	_, err = ParseDay("mañana", loc)
	assert.Error(t, err)

	late := time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC) // ещё 14-е в Гуаякиле
	assert.Equal(t, "2026-10-14", DateOnly(AtShiftStart(late, loc)))
	assert.Equal(t, "-", DateOnly(time.Time{}))
}

func TestChamberLabel(t *testing.T) {
	assert.Equal(t, "Cámara 3", Chamber{ID: 3}.Label())
	assert.Equal(t, "Norte (Cap: 40)", Chamber{ID: 3, Description: "Norte", Capacity: "40"}.Label())
}
