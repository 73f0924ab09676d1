package blocks

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinGlueDelta: минимальная прибавка веса после encolado, граммы.
var MinGlueDelta = decimal.NewFromInt(350)

type GlueDeltaError struct {
	Delta decimal.Decimal
}

func (e *GlueDeltaError) Error() string {
	return fmt.Sprintf("El peso de cola es insuficiente. Diferencia: %sg", e.Delta.StringFixed(2))
}

// CheckGlue: with − without ≥ 350. Верхней границы нет.
func CheckGlue(without, with decimal.Decimal) error {
	delta := with.Sub(without)
	if delta.LessThan(MinGlueDelta) {
		return &GlueDeltaError{Delta: delta}
	}
	return nil
}

// Glue возвращает копию блока в состоянии ENCOLADO.
func (b Block) Glue(with decimal.Decimal) (Block, error) {
	if err := CheckGlue(b.WeightNoGlue, with); err != nil {
		return b, err
	}
	out := b
	out.raw = b.Raw()
	out.WeightGlued = with
	out.State = StateGlued
	return out, nil
}
