package pallets

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	DefaultAcceptanceFactor = decimal.RequireFromString("0.9")
	boardFootDivisor        = decimal.NewFromInt(12)
)

// Measure: одна строка замера. OriginalLength > 0 означает castigado:
// паллету приняли короче, чем измерили.
type Measure struct {
	Length         decimal.Decimal
	Width          decimal.Decimal
	Thickness      decimal.Decimal
	Count          int64
	OriginalLength decimal.Decimal
}

func (m Measure) Penalized() bool { return m.OriginalLength.IsPositive() }

type BoardFeet struct {
	Received decimal.Decimal
	Accepted decimal.Decimal
}

func (b BoardFeet) Add(o BoardFeet) BoardFeet {
	return BoardFeet{Received: b.Received.Add(o.Received), Accepted: b.Accepted.Add(o.Accepted)}
}

func (b BoardFeet) String() string {
	return fmt.Sprintf("recibido %s / aceptado %s", b.Received.StringFixed(2), b.Accepted.StringFixed(2))
}

type Calculator struct {
	factor decimal.Decimal
}

func NewCalculator(factor decimal.Decimal) (Calculator, error) {
	if !factor.IsPositive() || factor.GreaterThan(decimal.NewFromInt(1)) {
		return Calculator{}, fmt.Errorf("acceptance factor must be in (0,1], got %s", factor)
	}
	return Calculator{factor: factor}, nil
}

func DefaultCalculator() Calculator { return Calculator{factor: DefaultAcceptanceFactor} }

func (c Calculator) Factor() decimal.Decimal {
	if c.factor.IsZero() {
		return DefaultAcceptanceFactor
	}
	return c.factor
}

// Measure: received = L×W×T×C/12; accepted = received×factor.
// Для castigado received считается по исходной длине, accepted: по
// текущей без коэффициента, и не может быть больше received.
func (c Calculator) Measure(m Measure) BoardFeet {
	if m.Penalized() {
		received := volume(m.OriginalLength, m.Width, m.Thickness, m.Count)
		accepted := volume(m.Length, m.Width, m.Thickness, m.Count)
		return BoardFeet{Received: received, Accepted: decimal.Min(accepted, received)}
	}
	received := volume(m.Length, m.Width, m.Thickness, m.Count)
	return BoardFeet{Received: received, Accepted: received.Mul(c.Factor())}
}

func (c Calculator) Total(ms []Measure) BoardFeet {
	total := BoardFeet{Received: decimal.Zero, Accepted: decimal.Zero}
	for _, m := range ms {
		total = total.Add(c.Measure(m))
	}
	return total
}

// volume: любое неположительное измерение даёт ноль.
func volume(length, width, thickness decimal.Decimal, count int64) decimal.Decimal {
	if !length.IsPositive() || !width.IsPositive() || !thickness.IsPositive() || count <= 0 {
		return decimal.Zero
	}
	return length.Mul(width).Mul(thickness).Mul(decimal.NewFromInt(count)).Div(boardFootDivisor)
}
