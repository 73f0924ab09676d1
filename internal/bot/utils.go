package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/dispatch"
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

/*** HELPERS ***/

const (
	msgSaveFailed = "No se pudo guardar. Verifique conexión."
	msgLoadFailed = "No se pudieron cargar los datos. Verifique conexión."
	msgBadNumber  = "Ingrese un número válido (por ejemplo 8 o 12,5)."
)

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// sendStep шлёт сообщение шага и запоминает его id в payload, чтобы
// следующий шаг мог снять с него кнопки.
func (b *Bot) sendStep(ctx context.Context, it *dialog.Item, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	m := tgbotapi.NewMessage(it.ChatID, text)
	if kb != nil {
		m.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return
	}
	it.Payload = it.Payload.With("last_mid", sent.MessageID)
	b.saveState(ctx, it)
}

// clearPrevStep убрать inline-кнопки у прошлого шага, если он был
func (b *Bot) clearPrevStep(it *dialog.Item) {
	mid, ok := dialog.GetInt64(it.Payload, "last_mid")
	if !ok || mid == 0 {
		return
	}
	rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	b.send(tgbotapi.NewEditMessageReplyMarkup(it.ChatID, int(mid), rm))
}

func (b *Bot) saveState(ctx context.Context, it *dialog.Item) {
	if err := b.states.Set(ctx, it); err != nil {
		b.log.Error("save dialog state failed", "chat_id", it.ChatID, "state", it.State, "err", err)
	}
}

func (b *Bot) loadState(ctx context.Context, chatID int64) *dialog.Item {
	it, err := b.states.Get(ctx, chatID)
	if err != nil || it == nil {
		if err != nil {
			b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		}
		return dialog.NewItem(chatID)
	}
	return it
}

func (b *Bot) resetState(ctx context.Context, chatID int64) {
	if err := b.states.Reset(ctx, chatID); err != nil {
		b.log.Error("reset dialog state failed", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func (b *Bot) editTextWithNav(chatID int64, messageID int, text string) {
	kb := navKeyboard(true, true)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	b.send(edit)
}

func (b *Bot) editText(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb))
}

func (b *Bot) sendDocument(chatID int64, name, caption string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	b.send(doc)
}

func (b *Bot) notifyAdmin(text string) {
	if b.cfg.AdminChatID == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.cfg.AdminChatID, text))
}

// parseDecimal принимает и точку, и запятую.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return decimal.NewFromString(s)
}

func parsePositive(s string) (decimal.Decimal, bool) {
	d, err := parseDecimal(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// parseNumbers разбирает «8 81 1 10» или «8; 81; 1; 10».
func parseNumbers(s string) ([]decimal.Decimal, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ';' || r == 'x' || r == '×' || r == '\t' })
	out := make([]decimal.Decimal, 0, len(fields))
	for _, f := range fields {
		d, err := parseDecimal(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	return id, err == nil && id > 0
}

func callbackID(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	return parseID(strings.TrimPrefix(data, prefix))
}

// userMessage переводит ошибку в текст для супервизора.
func userMessage(err error, fallback string) string {
	var we *dispatch.WidthError
	var ge *blocks.GlueDeltaError
	var pf *dispatch.PartialFailureError
	var se *api.StatusError
	switch {
	case errors.As(err, &we):
		return "⚠️ Rango Inválido\n" + we.Error()
	case errors.As(err, &ge):
		return "⚠️ Alerta de Calidad\n" + ge.Error()
	case errors.As(err, &pf):
		return fmt.Sprintf("⚠️ Cuerpo #%d creado, pero %d bloque(s) no se pudieron asignar.", pf.GroupID, len(pf.Failed))
	case errors.Is(err, drying.ErrNotReady):
		return "El lote aún no está LISTO PARA BFT."
	case errors.Is(err, drying.ErrInvalidLot):
		return "Complete cámara, fechas y seleccione al menos un pallet."
	case errors.As(err, &se) && se.Status == 404:
		return "No se encontró el registro solicitado."
	case errors.As(err, &se):
		return fmt.Sprintf("Error del Servidor (status %d).", se.Status)
	default:
		return fallback
	}
}
