package dispatch

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/forms"
)

func w(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheckWidthBoundaries(t *testing.T) {
	for _, s := range []string{"86", "87", "88", "86.00"} {
		assert.NoError(t, CheckWidth(w(s)), s)
	}
	for _, s := range []string{"85.99", "88.01", "0", "80"} {
		var we *WidthError
		assert.True(t, errors.As(CheckWidth(w(s)), &we), s)
	}
}

func TestWidthMessageCitesSum(t *testing.T) {
	bs := []blocks.Block{{ID: 1, Width: w("40")}, {ID: 2, Width: w("40")}, {ID: 3, Width: w("47")}}

	sum := SumWidths(bs, forms.Selection{1, 2})
	err := CheckWidth(sum)
	require.Error(t, err)
	assert.Equal(t, `El ancho acumulado (80") debe estar entre 86" y 88".`, err.Error())
	assert.Contains(t, err.Error(), "80")

	assert.NoError(t, CheckWidth(SumWidths(bs, forms.Selection{1, 3})))
}

func TestToggleTwiceRestoresSum(t *testing.T) {
	bs := []blocks.Block{{ID: 1, Width: w("40")}, {ID: 2, Width: w("47")}, {ID: 3, Width: w("1.5")}}
	sel := forms.Selection{1, 2}
	before := SumWidths(bs, sel)

	sel = sel.Toggle(3)
	assert.True(t, SumWidths(bs, sel).Equal(w("88.5")))
	sel = sel.Toggle(3)
	assert.True(t, SumWidths(bs, sel).Equal(before))
}

func TestSelectedKeepsListOrder(t *testing.T) {
	bs := []blocks.Block{{ID: 5}, {ID: 2}, {ID: 9}}
	got := Selected(bs, forms.Selection{9, 5, 100})
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(9), got[1].ID)
}
