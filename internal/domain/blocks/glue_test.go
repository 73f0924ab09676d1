package blocks

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func g(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheckGlueBoundary(t *testing.T) {
	tests := []struct {
		without, with string
		ok            bool
	}{
		{"1000", "1350", true},
		{"1000", "1349.99", false},
		{"1000", "5000", true},
		{"1000", "900", false},
		{"0", "350", true},
	}
	for _, tt := range tests {
		err := CheckGlue(g(tt.without), g(tt.with))
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.without, tt.with)
			continue
		}
		var ge *GlueDeltaError
		require.True(t, errors.As(err, &ge), "%s -> %s", tt.without, tt.with)
	}
}

func TestGlueDeltaMessage(t *testing.T) {
	err := CheckGlue(g("1000"), g("1349.99"))
	assert.EqualError(t, err, "El peso de cola es insuficiente. Diferencia: 349.99g")

	err = CheckGlue(g("1000"), g("900"))
	assert.EqualError(t, err, "El peso de cola es insuficiente. Diferencia: -100.00g")
}

func TestBlockGlue(t *testing.T) {
	b := Block{ID: 3, WeightNoGlue: g("1200"), State: StatePresented}

	_, err := b.Glue(g("1500"))
	require.Error(t, err)

	glued, err := b.Glue(g("1550"))
	require.NoError(t, err)
	assert.Equal(t, StateGlued, glued.State)
	assert.True(t, glued.WeightGlued.Equal(g("1550")))
	assert.Equal(t, StatePresented, b.State)
}
