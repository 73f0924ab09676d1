package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/pallets"
	"github.com/woodflow/woodflow-bot/internal/forms"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
)

// Поля формы приёмки
const (
	fLength    = "largo"
	fWidth     = "ancho"
	fThickness = "espesor"
	fCount     = "plantillas"
	fQuality   = "calidad"
)

var intakeSchema = forms.Schema{Required: []string{fLength, fWidth, fThickness}}

func (b *Bot) startIntake(ctx context.Context, chatID int64) {
	it := dialog.NewItem(chatID)
	it.Form = forms.New(intakeSchema)
	b.askIntake(ctx, it, dialog.StateIntakeLength)
}

func (b *Bot) askIntake(ctx context.Context, it *dialog.Item, state dialog.State) {
	it.State = state
	var text string
	kb := navKeyboard(state != dialog.StateIntakeLength, true)
	switch state {
	case dialog.StateIntakeLength:
		text = "🌲 Datos del Pallet\nLargo (pies):"
	case dialog.StateIntakeWidth:
		text = "Ancho (pulg):"
	case dialog.StateIntakeThickness:
		text = "Espesor (pulg):"
	case dialog.StateIntakeCount:
		text = "Cant. Plantillas (0 si no aplica):"
	case dialog.StateIntakeQuality:
		text = "Calidad (1-10):"
		kb = qualityKeyboard()
	case dialog.StateIntakeConfirm:
		text = b.intakeSummary(it.Form)
		kb = confirmKeyboard("💾 Guardar pallet", "in:save")
	}
	b.sendStep(ctx, it, text, &kb)
}

func (b *Bot) intakeSummary(f forms.Form) string {
	n := intakePallet(f, b.cfg.ReceptionID)
	est := b.calc.Measure(n.Measure())
	var sb strings.Builder
	sb.WriteString("Confirme el pallet:\n")
	fmt.Fprintf(&sb, "Largo: %s pies\nAncho: %s pulg\nEspesor: %s pulg\n", f.Value(fLength), f.Value(fWidth), f.Value(fThickness))
	fmt.Fprintf(&sb, "Plantillas: %d\nCalidad: %s\n\n", n.Templates, qualityOf(f))
	fmt.Fprintf(&sb, "Estimado local: BFT recibido %s, aceptado %s", est.Received.StringFixed(2), est.Accepted.StringFixed(2))
	return sb.String()
}

func intakePallet(f forms.Form, receptionID int64) pallets.NewPallet {
	l, _ := parseDecimal(f.Value(fLength))
	w, _ := parseDecimal(f.Value(fWidth))
	t, _ := parseDecimal(f.Value(fThickness))
	n, _ := strconv.ParseInt(f.Value(fCount), 10, 64)
	return pallets.NewPallet{Length: l, Width: w, Thickness: t, Templates: n, ReceptionID: receptionID}
}

func qualityOf(f forms.Form) string {
	if q := f.Value(fQuality); q != "" {
		return q
	}
	return "5"
}

func (b *Bot) handleIntakeInput(ctx context.Context, it *dialog.Item, text string) {
	var key string
	var next dialog.State
	switch it.State {
	case dialog.StateIntakeLength:
		key, next = fLength, dialog.StateIntakeWidth
	case dialog.StateIntakeWidth:
		key, next = fWidth, dialog.StateIntakeThickness
	case dialog.StateIntakeThickness:
		key, next = fThickness, dialog.StateIntakeCount
	case dialog.StateIntakeCount:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil || n < 0 {
			b.send(tgbotapi.NewMessage(it.ChatID, "Ingrese un número entero de plantillas."))
			return
		}
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fCount, strconv.FormatInt(n, 10))
		b.askIntake(ctx, it, dialog.StateIntakeQuality)
		return
	default:
		return
	}

	d, ok := parsePositive(text)
	if !ok {
		b.send(tgbotapi.NewMessage(it.ChatID, msgBadNumber))
		return
	}
	b.clearPrevStep(it)
	it.Form = it.Form.WithHeader(key, d.String())
	b.askIntake(ctx, it, next)
}

func (b *Bot) handleIntakeCallback(ctx context.Context, it *dialog.Item, cb *tgbotapi.CallbackQuery) {
	chatID, msgID := cb.Message.Chat.ID, cb.Message.MessageID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "in:q:"):
		q, err := strconv.Atoi(strings.TrimPrefix(data, "in:q:"))
		if err != nil || !pallets.ValidQuality(q) || it.State != dialog.StateIntakeQuality {
			_ = b.answerCallback(cb, "Opción no válida", false)
			return
		}
		it.Form = it.Form.WithHeader(fQuality, strconv.Itoa(q))
		b.editTextAndClear(chatID, msgID, fmt.Sprintf("Calidad: %d", q))
		b.askIntake(ctx, it, dialog.StateIntakeConfirm)
		_ = b.answerCallback(cb, "", false)

	case data == "in:save":
		if it.State != dialog.StateIntakeConfirm {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		if !it.Form.IsValid() {
			metrics.RejectValidation("intake_form")
			_ = b.answerCallback(cb, "Por favor complete las dimensiones", true)
			return
		}
		_ = b.answerCallback(cb, "Guardando...", false)
		b.saveIntake(ctx, it, msgID)

	case data == "in:again":
		if it.Form.Value(fLength) == "" {
			b.startIntake(ctx, chatID)
		} else {
			b.editTextAndClear(chatID, msgID, "Mismas medidas, nuevo pallet.")
			b.askIntake(ctx, it, dialog.StateIntakeCount)
		}
		_ = b.answerCallback(cb, "", false)

	default:
		_ = b.answerCallback(cb, "Acción desconocida", false)
	}
}

func (b *Bot) saveIntake(ctx context.Context, it *dialog.Item, msgID int) {
	n := intakePallet(it.Form, b.cfg.ReceptionID)
	p, err := b.pallets.Create(ctx, n)
	if err != nil {
		b.log.Error("create pallet failed", "chat_id", it.ChatID, "err", err)
		b.editTextWithNav(it.ChatID, msgID, userMessage(err, msgSaveFailed))
		return
	}

	var sb strings.Builder
	number := "Registrado"
	if p.Number != 0 {
		number = strconv.FormatInt(p.Number, 10)
	}
	fmt.Fprintf(&sb, "✅ Pallet #%s procesado correctamente.\n", number)
	fmt.Fprintf(&sb, "BFT recibido: %s\nBFT aceptado: %s", p.BFTReceived.StringFixed(2), p.BFTAccepted.StringFixed(2))

	if p.ID != 0 {
		q, _ := strconv.Atoi(qualityOf(it.Form))
		rt := pallets.Rating{PalletID: p.ID, Value: q, By: b.cfg.Rater, At: b.now()}
		if err := b.pallets.Rate(ctx, rt); err != nil {
			b.log.Warn("rate pallet failed", "pallet_id", p.ID, "err", err)
			sb.WriteString("\n⚠️ La calificación no se pudo registrar.")
		}
	}

	b.log.Info("pallet registered", "chat_id", it.ChatID, "pallet_id", p.ID, "number", p.Number)

	// размеры остаются для следующего паллета, количество сбрасываем
	it.Form = it.Form.WithHeader(fCount, "")
	it.State = dialog.StateIdle
	it.Payload = it.Payload.With("last_mid", msgID)
	b.saveState(ctx, it)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Otro pallet (mismas medidas)", "in:again")),
	)
	b.editText(it.ChatID, msgID, sb.String(), kb)
}
