package pallets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMeasureReferenceExample(t *testing.T) {
	bf := DefaultCalculator().Measure(Measure{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: 10})

	assert.Equal(t, "540.00", bf.Received.StringFixed(2))
	assert.Equal(t, "486.00", bf.Accepted.StringFixed(2))
	assert.True(t, bf.Accepted.Equal(d("486")))
}

func TestMeasureNonPositiveYieldsZero(t *testing.T) {
	tests := []struct {
		name string
		m    Measure
	}{
		{"zero thickness", Measure{Length: d("8"), Width: d("81"), Thickness: d("0"), Count: 10}},
		{"negative thickness", Measure{Length: d("8"), Width: d("81"), Thickness: d("-1"), Count: 10}},
		{"zero count", Measure{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: 0}},
		{"negative count", Measure{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: -3}},
		{"zero length", Measure{Width: d("81"), Thickness: d("1"), Count: 2}},
		{"empty", Measure{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := DefaultCalculator().Measure(tt.m)
			assert.True(t, bf.Received.IsZero())
			assert.True(t, bf.Accepted.IsZero())
		})
	}
}

func TestAcceptedNeverExceedsReceived(t *testing.T) {
	c := DefaultCalculator()
	for _, l := range []string{"0.5", "4", "8", "12.25"} {
		for _, w := range []string{"1", "44", "81"} {
			for _, th := range []string{"0.75", "1", "2"} {
				for _, n := range []int64{1, 3, 10} {
					m := Measure{Length: d(l), Width: d(w), Thickness: d(th), Count: n}
					bf := c.Measure(m)
					assert.True(t, bf.Accepted.LessThanOrEqual(bf.Received), "%+v", m)
					assert.True(t, bf.Accepted.Equal(bf.Received.Mul(d("0.9"))), "%+v", m)
				}
			}
		}
	}
}

func TestPenalizedUsesOriginalLength(t *testing.T) {
	c := DefaultCalculator()
	bf := c.Measure(Measure{Length: d("7"), OriginalLength: d("8"), Width: d("81"), Thickness: d("1"), Count: 10})

	assert.True(t, bf.Received.Equal(d("540")), bf.Received.String())
	assert.True(t, bf.Accepted.Equal(d("472.5")), bf.Accepted.String())
}

func TestPenalizedAcceptedCappedAtReceived(t *testing.T) {
	bf := DefaultCalculator().Measure(Measure{Length: d("9"), OriginalLength: d("8"), Width: d("81"), Thickness: d("1"), Count: 10})
	assert.True(t, bf.Accepted.Equal(bf.Received))
}

func TestTotalIsPureSum(t *testing.T) {
	c := DefaultCalculator()
	ms := []Measure{
		{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: 10},
		{Length: d("7"), OriginalLength: d("8"), Width: d("81"), Thickness: d("1"), Count: 10},
		{Length: d("8"), Width: d("81"), Thickness: d("0"), Count: 10},
	}
	first := c.Total(ms)
	second := c.Total(ms)

	assert.Equal(t, first, second)
	assert.True(t, first.Received.Equal(d("1080")))
	assert.True(t, first.Accepted.Equal(d("958.5")))
	assert.True(t, c.Total(nil).Received.IsZero())
}

func TestNewCalculatorBounds(t *testing.T) {
	_, err := NewCalculator(d("0"))
	assert.Error(t, err)
	_, err = NewCalculator(d("1.01"))
	assert.Error(t, err)

	c, err := NewCalculator(d("1"))
	require.NoError(t, err)
	bf := c.Measure(Measure{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: 10})
	assert.True(t, bf.Accepted.Equal(bf.Received))
}

func TestZeroCalculatorUsesDefaultFactor(t *testing.T) {
	var c Calculator
	bf := c.Measure(Measure{Length: d("8"), Width: d("81"), Thickness: d("1"), Count: 10})
	assert.True(t, bf.Accepted.Equal(d("486")))
}
