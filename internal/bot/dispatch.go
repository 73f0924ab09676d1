package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/dispatch"
	"github.com/woodflow/woodflow-bot/internal/forms"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
	"github.com/woodflow/woodflow-bot/internal/report"
)

const (
	fDID    = "id"
	fDWidth = "ancho"
)

// showDispatchPick загружает блоки LISTO/ENCOLADO и кладёт их в форму,
// чтобы переключение выбора не ходило в бэкенд.
func (b *Bot) showDispatchPick(ctx context.Context, chatID int64, editMsgID *int, sel forms.Selection) {
	it := dialog.NewItem(chatID)
	it.State = dialog.StateDispatchPick

	bs, err := b.blocks.ListDispatchable(ctx)
	if err != nil {
		b.log.Error("list blocks failed", "chat_id", chatID, "err", err)
		b.replyStep(ctx, it, editMsgID, userMessage(err, msgLoadFailed), navKeyboard(false, true))
		return
	}
	items := make([]forms.Item, 0, len(bs))
	kept := forms.Selection{}
	for _, bl := range bs {
		items = append(items, forms.Item{Fields: map[string]string{
			fDID:    strconv.FormatInt(bl.ID, 10),
			fDWidth: bl.Width.String(),
		}})
		if sel.Contains(bl.ID) {
			kept = append(kept, bl.ID)
		}
	}
	it.Form = forms.New(forms.Schema{ItemRequired: []string{fDID, fDWidth}}).WithItems(items)
	it.Payload = it.Payload.With("sel", kept)
	b.renderDispatchPick(ctx, it, editMsgID)
}

func (b *Bot) renderDispatchPick(ctx context.Context, it *dialog.Item, editMsgID *int) {
	bs := blocksOf(it.Form)
	sel := dialog.GetSelection(it.Payload, "sel")
	sum := dispatch.SumWidths(bs, sel)

	var sb strings.Builder
	sb.WriteString("📦 Seleccione Bloques\n")
	fmt.Fprintf(&sb, "Acumulado: %s\" (Meta: %s-%s)", sum.StringFixed(2), dispatch.MinWidth, dispatch.MaxWidth)
	if dispatch.CheckWidth(sum) == nil {
		sb.WriteString(" ✅")
	}
	if len(bs) == 0 {
		sb.WriteString("\n\nNo hay bloques LISTO o ENCOLADO.")
	}
	b.replyStep(ctx, it, editMsgID, sb.String(), blockPickKeyboard(bs, sel))
}

func blocksOf(f forms.Form) []blocks.Block {
	out := make([]blocks.Block, 0, f.Len())
	for _, item := range f.Items {
		id, err := strconv.ParseInt(item.Value(fDID), 10, 64)
		if err != nil {
			continue
		}
		w, _ := parseDecimal(item.Value(fDWidth))
		out = append(out, blocks.Block{ID: id, Width: w})
	}
	return out
}

func (b *Bot) handleDispatchCallback(ctx context.Context, it *dialog.Item, cb *tgbotapi.CallbackQuery) {
	chatID, msgID := cb.Message.Chat.ID, cb.Message.MessageID
	data := cb.Data

	if it.State != dialog.StateDispatchPick && data != "dsp:reload" {
		_ = b.answerCallback(cb, "Formulario vencido", false)
		return
	}

	switch {
	case strings.HasPrefix(data, "dsp:blk:"):
		id, ok := callbackID(data, "dsp:blk:")
		if !ok {
			_ = b.answerCallback(cb, "Acción desconocida", false)
			return
		}
		sel := dialog.GetSelection(it.Payload, "sel").Toggle(id)
		it.Payload = it.Payload.With("sel", sel)
		b.renderDispatchPick(ctx, it, &msgID)
		_ = b.answerCallback(cb, "", false)

	case data == "dsp:reload":
		b.showDispatchPick(ctx, chatID, &msgID, dialog.GetSelection(it.Payload, "sel"))
		_ = b.answerCallback(cb, "", false)

	case data == "dsp:ok":
		sel := dialog.GetSelection(it.Payload, "sel")
		if err := dispatch.CheckWidth(dispatch.SumWidths(blocksOf(it.Form), sel)); err != nil {
			metrics.RejectValidation("dispatch_width")
			_ = b.answerCallback(cb, userMessage(err, ""), true)
			return
		}
		_ = b.answerCallback(cb, "Procesando...", false)
		b.createDispatchGroup(ctx, it, msgID, sel)

	default:
		_ = b.answerCallback(cb, "Acción desconocida", false)
	}
}

func (b *Bot) createDispatchGroup(ctx context.Context, it *dialog.Item, msgID int, sel forms.Selection) {
	// PUT /bloques/{id} требует полный исходный объект, берём свежий список
	fresh, err := b.blocks.ListDispatchable(ctx)
	if err != nil {
		b.log.Error("list blocks failed", "chat_id", it.ChatID, "err", err)
		b.editTextWithNav(it.ChatID, msgID, "No se pudo procesar la agrupación.")
		return
	}
	selected := dispatch.Selected(fresh, sel)
	if len(selected) != sel.Len() {
		b.send(tgbotapi.NewMessage(it.ChatID, "La lista de bloques cambió. Revise la selección."))
		b.showDispatchPick(ctx, it.ChatID, &msgID, sel)
		return
	}

	res, err := b.dispatch.CreateGroup(ctx, selected)
	var pf *dispatch.PartialFailureError
	switch {
	case errors.As(err, &pf):
		b.log.Warn("dispatch group partially assigned", "group_id", pf.GroupID, "failed", len(pf.Failed))
		b.editTextAndClear(it.ChatID, msgID, userMessage(err, ""))
		b.notifyAdmin(fmt.Sprintf("Cuerpo #%d: %s", pf.GroupID, pf.Error()))
	case err != nil:
		b.log.Error("create dispatch group failed", "chat_id", it.ChatID, "err", err)
		var we *dispatch.WidthError
		if errors.As(err, &we) {
			b.editTextWithNav(it.ChatID, msgID, userMessage(err, ""))
			return
		}
		b.editTextWithNav(it.ChatID, msgID, "No se pudo procesar la agrupación.")
		return
	default:
		b.editTextAndClear(it.ChatID, msgID,
			fmt.Sprintf("✅ Cuerpo #%d creado y bloques asignados para despacho.", res.Group.ID))
	}
	b.resetState(ctx, it.ChatID)

	data, rerr := report.Dispatch(res, selected)
	if rerr != nil {
		b.log.Error("build dispatch report failed", "err", rerr)
		return
	}
	b.sendDocument(it.ChatID, fmt.Sprintf("cuerpo_%d.xlsx", res.Group.ID),
		fmt.Sprintf("Cuerpo #%d · %s\"", res.Group.ID, res.Group.Width.StringFixed(2)), data)
}
