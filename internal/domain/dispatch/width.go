package dispatch

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/forms"
)

// Ширина cuerpo для despacho, дюймы, границы включительно.
var (
	MinWidth = decimal.NewFromInt(86)
	MaxWidth = decimal.NewFromInt(88)
)

type WidthError struct {
	Sum decimal.Decimal
}

func (e *WidthError) Error() string {
	return fmt.Sprintf(`El ancho acumulado (%s") debe estar entre %s" y %s".`, e.Sum.String(), MinWidth, MaxWidth)
}

// SumWidths суммирует ширину выбранных блоков в порядке списка; id, которых
// нет в списке, пропускаются.
func SumWidths(bs []blocks.Block, sel forms.Selection) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range bs {
		if sel.Contains(b.ID) {
			sum = sum.Add(b.Width)
		}
	}
	return sum
}

func CheckWidth(sum decimal.Decimal) error {
	if sum.LessThan(MinWidth) || sum.GreaterThan(MaxWidth) {
		return &WidthError{Sum: sum}
	}
	return nil
}

// Selected возвращает выбранные блоки в порядке списка.
func Selected(bs []blocks.Block, sel forms.Selection) []blocks.Block {
	out := make([]blocks.Block, 0, sel.Len())
	for _, b := range bs {
		if sel.Contains(b.ID) {
			out = append(out, b)
		}
	}
	return out
}
