package pallets

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateGreen      State = "MADERA VERDE"
	StateReady      State = "LISTO"
	StateGlued      State = "ENCOLADO"
	StateDispatched State = "DESPACHO"
)

func ParseState(s string) State {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case StateReady:
		return StateReady
	case StateGlued:
		return StateGlued
	case StateDispatched:
		return StateDispatched
	default:
		return StateGreen
	}
}

type Provider struct {
	ID   int64
	Name string
}

type Reception struct {
	ID         int64
	TripNumber string
	Provider   Provider
}

type Pallet struct {
	ID          int64
	Number      int64
	Code        string
	Length      decimal.Decimal // pies
	Width       decimal.Decimal // pulgadas, ancho de plantilla
	Thickness   decimal.Decimal // pulgadas
	Templates   int64
	State       State
	Reception   Reception
	BFTReceived decimal.Decimal
	BFTAccepted decimal.Decimal
}

// Label: как паллету показывают в списках.
func (p Pallet) Label() string {
	var sb strings.Builder
	switch {
	case p.Code != "":
		sb.WriteString("Código: " + p.Code)
	case p.Number != 0:
		sb.WriteString(fmt.Sprintf("Pallet #%d", p.Number))
	default:
		sb.WriteString("Pallet #?")
	}
	if p.Reception.Provider.Name != "" {
		sb.WriteString(" - " + p.Reception.Provider.Name)
	}
	return sb.String()
}

// NewPallet: физические размеры, BFT считает бэкенд.
type NewPallet struct {
	Length      decimal.Decimal
	Width       decimal.Decimal
	Thickness   decimal.Decimal
	Templates   int64
	ReceptionID int64
}

func (n NewPallet) Measure() Measure {
	return Measure{Length: n.Length, Width: n.Width, Thickness: n.Thickness, Count: n.Templates}
}

type Rating struct {
	PalletID int64
	Value    int
	By       string
	At       time.Time
}

// Оценки, которые предлагает экран приёмки.
var QualityChoices = []int{1, 5, 10}

func ValidQuality(v int) bool { return v >= 1 && v <= 10 }

// SumAccepted: сумма принятого BFT по выбранным паллетам.
func SumAccepted(ps []Pallet, ids []int64) decimal.Decimal {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	total := decimal.Zero
	for _, p := range ps {
		if _, ok := want[p.ID]; ok {
			total = total.Add(p.BFTAccepted)
		}
	}
	return total
}
