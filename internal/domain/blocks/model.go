package blocks

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

type State string

const (
	StatePresented  State = "PRESENTADO"
	StateReady      State = "LISTO"
	StateGlued      State = "ENCOLADO"
	StateDispatched State = "DESPACHO"
)

func ParseState(s string) State {
	switch st := State(strings.ToUpper(strings.TrimSpace(s))); st {
	case StateReady, StateGlued, StateDispatched:
		return st
	default:
		return StatePresented
	}
}

type Block struct {
	ID           int64
	Length       decimal.Decimal
	Width        decimal.Decimal // pulgadas
	Height       decimal.Decimal
	WeightNoGlue decimal.Decimal // gramos
	WeightGlued  decimal.Decimal
	FinalBFT     decimal.Decimal
	GroupID      int64
	State        State
	raw          api.Fields
}

// Dispatchable: блок можно класть в cuerpo: LISTO или ENCOLADO.
func (b Block) Dispatchable() bool {
	return b.State == StateReady || b.State == StateGlued
}

func (b Block) Label() string {
	return fmt.Sprintf("Bloque #%d · %s\"", b.ID, b.Width.StringFixed(2))
}

// Raw: исходный объект бэкенда (копия); PUT /bloques/{id} ждёт его целиком.
func (b Block) Raw() api.Fields {
	if b.raw == nil {
		return api.Fields{}
	}
	return b.raw.Clone()
}

type NewBlock struct {
	WorkOrderID  int64
	GroupID      int64
	Length       decimal.Decimal
	Width        decimal.Decimal
	Height       decimal.Decimal
	WeightNoGlue decimal.Decimal
}

func (n NewBlock) Validate() error {
	dims := []struct {
		name string
		v    decimal.Decimal
	}{
		{"largo", n.Length}, {"ancho", n.Width}, {"alto", n.Height}, {"peso sin cola", n.WeightNoGlue},
	}
	for _, d := range dims {
		if !d.v.IsPositive() {
			return fmt.Errorf("block %s must be positive, got %s", d.name, d.v)
		}
	}
	return nil
}

func FromFields(f api.Fields) Block {
	return Block{
		ID:           f.Int64("idBloque", "id_bloque", "id"),
		Length:       f.Decimal("blargo", "bLargo", "b_largo"),
		Width:        f.Decimal("bancho", "bAncho", "b_ancho"),
		Height:       f.Decimal("balto", "bAlto", "b_alto"),
		WeightNoGlue: f.Decimal("bpesoSinCola", "bPesoSinCola", "b_peso_sin_cola"),
		WeightGlued:  f.Decimal("bpesoConCola", "bPesoConCola", "b_peso_con_cola"),
		FinalBFT:     f.Decimal("bbftFinal", "bBftFinal", "b_bft_final"),
		GroupID:      f.Object("cuerpo").Int64("idCuerpo", "id_cuerpo", "id"),
		State:        ParseState(f.String("bestado", "bEstado", "b_estado", "estado")),
		raw:          f.Clone(),
	}
}
