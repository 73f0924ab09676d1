package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/dialog"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.resetState(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Panel Supervisor\nElija una sección en el menú de abajo.")
		m.ReplyMarkup = dashboardKeyboard()
		b.send(m)
	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Comandos:\n/start — panel del supervisor\n/cancel — cancelar la operación actual\n/help — ayuda"))
	case "cancel":
		it := b.loadState(ctx, chatID)
		b.clearPrevStep(it)
		b.resetState(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Operación cancelada.")
		m.ReplyMarkup = dashboardKeyboard()
		b.send(m)
	default:
		b.send(tgbotapi.NewMessage(chatID, "No conozco ese comando. Escriba /help"))
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// Нижняя панель: всегда начинает раздел заново
	switch text {
	case btnIntake:
		b.clearPrevStep(b.loadState(ctx, chatID))
		b.startIntake(ctx, chatID)
		return
	case btnDrying:
		b.clearPrevStep(b.loadState(ctx, chatID))
		b.showDryMenu(ctx, chatID, nil)
		return
	case btnProd:
		b.clearPrevStep(b.loadState(ctx, chatID))
		b.showProdMenu(ctx, chatID, nil)
		return
	case btnDispatch:
		b.clearPrevStep(b.loadState(ctx, chatID))
		b.showDispatchPick(ctx, chatID, nil, nil)
		return
	}

	it := b.loadState(ctx, chatID)
	switch it.State {
	case dialog.StateIntakeLength, dialog.StateIntakeWidth, dialog.StateIntakeThickness, dialog.StateIntakeCount:
		b.handleIntakeInput(ctx, it, text)
	case dialog.StateDryStartDate, dialog.StateDryEndDate, dialog.StateDryNotes:
		b.handleDryInput(ctx, it, text)
	case dialog.StateDryMeasure:
		b.handleMeasureInput(ctx, it, text)
	case dialog.StateBlockDims, dialog.StateBlockWeight, dialog.StateGlueBlockID, dialog.StateGlueWeight:
		b.handleProdInput(ctx, it, text)
	default:
		m := tgbotapi.NewMessage(chatID, "Elija una sección en el menú de abajo.")
		m.ReplyMarkup = dashboardKeyboard()
		b.send(m)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	fromChat := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	// Общая навигация
	if data == "nav:cancel" {
		b.resetState(ctx, fromChat)
		b.editTextAndClear(fromChat, msgID, "Operación cancelada.")
		_ = b.answerCallback(cb, "Cancelado", false)
		return
	}

	it := b.loadState(ctx, fromChat)
	if data == "nav:back" {
		b.handleBack(ctx, it, msgID)
		_ = b.answerCallback(cb, "", false)
		return
	}

	switch {
	case strings.HasPrefix(data, "in:"):
		b.handleIntakeCallback(ctx, it, cb)
	case strings.HasPrefix(data, "dry:"):
		b.handleDryCallback(ctx, it, cb)
	case strings.HasPrefix(data, "prod:"):
		b.handleProdCallback(ctx, it, cb)
	case strings.HasPrefix(data, "dsp:"):
		b.handleDispatchCallback(ctx, it, cb)
	default:
		_ = b.answerCallback(cb, "Acción desconocida", false)
	}
}

// handleBack: шаг назад внутри текущего раздела.
func (b *Bot) handleBack(ctx context.Context, it *dialog.Item, msgID int) {
	switch it.State {
	case dialog.StateIntakeWidth:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askIntake(ctx, it, dialog.StateIntakeLength)
	case dialog.StateIntakeThickness:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askIntake(ctx, it, dialog.StateIntakeWidth)
	case dialog.StateIntakeCount:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askIntake(ctx, it, dialog.StateIntakeThickness)
	case dialog.StateIntakeQuality:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askIntake(ctx, it, dialog.StateIntakeCount)
	case dialog.StateIntakeConfirm:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askIntake(ctx, it, dialog.StateIntakeQuality)

	case dialog.StateDryPickPallets, dialog.StateDryLots:
		b.showDryMenu(ctx, it.ChatID, &msgID)
	case dialog.StateDryPickChamber:
		b.showPalletPick(ctx, it, &msgID)
	case dialog.StateDryStartDate:
		b.showChamberPick(ctx, it, &msgID)
	case dialog.StateDryEndDate:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askDryStep(ctx, it, dialog.StateDryStartDate)
	case dialog.StateDryNotes:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askDryStep(ctx, it, dialog.StateDryEndDate)
	case dialog.StateDryConfirm:
		b.editTextAndClear(it.ChatID, msgID, "↩️")
		b.askDryStep(ctx, it, dialog.StateDryNotes)
	case dialog.StateDryMeasure:
		b.showLots(ctx, it.ChatID, &msgID, true)

	case dialog.StateBlockDims, dialog.StateBlockWeight, dialog.StateGlueBlockID, dialog.StateGlueWeight:
		b.showProdMenu(ctx, it.ChatID, &msgID)

	default:
		b.resetState(ctx, it.ChatID)
		b.editTextAndClear(it.ChatID, msgID, "Elija una sección en el menú de abajo.")
	}
}
