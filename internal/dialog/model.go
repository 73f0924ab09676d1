package dialog

import (
	"encoding/json"

	"github.com/woodflow/woodflow-bot/internal/forms"
)

type State string

const (
	StateIdle State = "idle"

	// Ingreso de pallets verdes
	StateIntakeLength    State = "intake_length"
	StateIntakeWidth     State = "intake_width"
	StateIntakeThickness State = "intake_thickness"
	StateIntakeCount     State = "intake_count"
	StateIntakeQuality   State = "intake_quality" // выбор оценки кнопками
	StateIntakeConfirm   State = "intake_confirm"

	// Gestión de secado
	StateDryMenu        State = "dry_menu"
	StateDryPickPallets State = "dry_pick_pallets" // тумблеры паллет
	StateDryPickChamber State = "dry_pick_chamber"
	StateDryStartDate   State = "dry_start_date"
	StateDryEndDate     State = "dry_end_date"
	StateDryNotes       State = "dry_notes"
	StateDryConfirm     State = "dry_confirm"
	StateDryLots        State = "dry_lots"    // списки «En proceso» / «Historial»
	StateDryMeasure     State = "dry_measure" // строки замера BFT перед финализацией

	// Producción y encolado
	StateProdMenu    State = "prod_menu"
	StateBlockDims   State = "block_dims"
	StateBlockWeight State = "block_weight"
	StateGlueBlockID State = "glue_block_id"
	StateGlueWeight  State = "glue_weight"

	// Agrupación para despacho
	StateDispatchPick State = "dispatch_pick"
)

// Payload: навигационные мелочи шага: id выбранного лота, выбранные
// паллеты, id последнего сообщения бота.
type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
	Form    forms.Form
}

func NewItem(chatID int64) *Item {
	return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}
}

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt64 понимает и int64 (память), и float64 (после JSON).
func GetInt64(p Payload, key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// GetSelection читает сохранённый forms.Selection.
func GetSelection(p Payload, key string) forms.Selection {
	switch v := p[key].(type) {
	case forms.Selection:
		return append(forms.Selection(nil), v...)
	case []int64:
		return append(forms.Selection(nil), v...)
	case []any:
		out := make(forms.Selection, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				out = append(out, int64(f))
			}
		}
		return out
	default:
		return forms.Selection{}
	}
}

// With возвращает копию payload с новым значением.
func (p Payload) With(key string, value any) Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}
