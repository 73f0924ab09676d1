package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/dialog"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/forms"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
)

const (
	fBLength = "largo"
	fBWidth  = "ancho"
	fBHeight = "alto"
	fBWeight = "peso_sin_cola"
)

var blockSchema = forms.Schema{Required: []string{fBLength, fBWidth, fBHeight, fBWeight}}

func (b *Bot) showProdMenu(ctx context.Context, chatID int64, editMsgID *int) {
	it := dialog.NewItem(chatID)
	it.State = dialog.StateProdMenu
	b.replyStep(ctx, it, editMsgID, "🧱 Producción y Encolado", prodMenuKeyboard())
}

func (b *Bot) handleProdCallback(ctx context.Context, it *dialog.Item, cb *tgbotapi.CallbackQuery) {
	msgID := cb.Message.MessageID
	switch cb.Data {
	case "prod:new":
		it.State = dialog.StateBlockDims
		it.Form = forms.New(blockSchema)
		b.replyStep(ctx, it, &msgID, "Nuevo bloque\nMedidas: largo ancho alto (ej.: 48 22 24)", navKeyboard(true, true))
	case "prod:glue":
		it.State = dialog.StateGlueBlockID
		it.Payload = dialog.Payload{}
		b.replyStep(ctx, it, &msgID, "Registrar encolado\nID del bloque:", navKeyboard(true, true))
	default:
		_ = b.answerCallback(cb, "Acción desconocida", false)
		return
	}
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) handleProdInput(ctx context.Context, it *dialog.Item, text string) {
	switch it.State {
	case dialog.StateBlockDims:
		nums, err := parseNumbers(text)
		if err != nil || len(nums) != 3 || !nums[0].IsPositive() || !nums[1].IsPositive() || !nums[2].IsPositive() {
			b.send(tgbotapi.NewMessage(it.ChatID, "Formato: largo ancho alto, valores positivos."))
			return
		}
		b.clearPrevStep(it)
		it.Form = it.Form.
			WithHeader(fBLength, nums[0].String()).
			WithHeader(fBWidth, nums[1].String()).
			WithHeader(fBHeight, nums[2].String())
		it.State = dialog.StateBlockWeight
		kb := navKeyboard(true, true)
		b.sendStep(ctx, it, "Peso sin cola (g):", &kb)

	case dialog.StateBlockWeight:
		w, ok := parsePositive(text)
		if !ok {
			b.send(tgbotapi.NewMessage(it.ChatID, msgBadNumber))
			return
		}
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fBWeight, w.String())
		b.createBlock(ctx, it)

	case dialog.StateGlueBlockID:
		id, ok := parseID(text)
		if !ok {
			b.send(tgbotapi.NewMessage(it.ChatID, "Ingrese el ID numérico del bloque."))
			return
		}
		b.clearPrevStep(it)
		it.Payload = it.Payload.With("block_id", id)
		it.State = dialog.StateGlueWeight
		kb := navKeyboard(true, true)
		b.sendStep(ctx, it, fmt.Sprintf("Bloque #%d\nPeso con cola (g):", id), &kb)

	case dialog.StateGlueWeight:
		w, ok := parsePositive(text)
		if !ok {
			b.send(tgbotapi.NewMessage(it.ChatID, msgBadNumber))
			return
		}
		b.glueBlock(ctx, it, w.String())
	}
}

func (b *Bot) createBlock(ctx context.Context, it *dialog.Item) {
	f := it.Form
	if !f.IsValid() {
		metrics.RejectValidation("block_form")
		b.send(tgbotapi.NewMessage(it.ChatID, "Complete las medidas y el peso del bloque."))
		return
	}
	l, _ := parseDecimal(f.Value(fBLength))
	w, _ := parseDecimal(f.Value(fBWidth))
	h, _ := parseDecimal(f.Value(fBHeight))
	p, _ := parseDecimal(f.Value(fBWeight))

	blk, err := b.blocks.Create(ctx, blocks.NewBlock{
		WorkOrderID:  b.cfg.WorkOrderID,
		GroupID:      b.cfg.DefaultGroupID,
		Length:       l,
		Width:        w,
		Height:       h,
		WeightNoGlue: p,
	})
	if err != nil {
		b.log.Error("create block failed", "chat_id", it.ChatID, "err", err)
		b.send(tgbotapi.NewMessage(it.ChatID, userMessage(err, "Falló el registro del bloque")))
		b.showProdMenu(ctx, it.ChatID, nil)
		return
	}
	text := "✅ Bloque registrado como PRESENTADO"
	if blk.ID != 0 {
		text += fmt.Sprintf(" (#%d)", blk.ID)
	}
	b.log.Info("block registered", "chat_id", it.ChatID, "block_id", blk.ID)
	b.send(tgbotapi.NewMessage(it.ChatID, text))
	b.showProdMenu(ctx, it.ChatID, nil)
}

func (b *Bot) glueBlock(ctx context.Context, it *dialog.Item, weight string) {
	id, _ := dialog.GetInt64(it.Payload, "block_id")
	with, _ := parseDecimal(weight)

	_, err := b.blocks.Glue(ctx, id, with)
	var ge *blocks.GlueDeltaError
	switch {
	case errors.As(err, &ge):
		// остаёмся на шаге: можно перевзвесить и ввести снова
		metrics.RejectValidation("glue_delta")
		b.send(tgbotapi.NewMessage(it.ChatID, userMessage(err, "")))
		return
	case err != nil:
		b.log.Error("glue block failed", "block_id", id, "err", err)
		b.clearPrevStep(it)
		b.send(tgbotapi.NewMessage(it.ChatID, "No se encontró el bloque o error de red"))
		b.showProdMenu(ctx, it.ChatID, nil)
		return
	}
	b.clearPrevStep(it)
	b.log.Info("block glued", "block_id", id, "weight_with_glue", weight)
	b.send(tgbotapi.NewMessage(it.ChatID, fmt.Sprintf("✅ Bloque #%d actualizado a ENCOLADO", id)))
	b.showProdMenu(ctx, it.ChatID, nil)
}
