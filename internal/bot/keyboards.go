package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
	"github.com/woodflow/woodflow-bot/internal/domain/pallets"
	"github.com/woodflow/woodflow-bot/internal/forms"
)

// Тексты кнопок нижней панели
const (
	btnIntake   = "🌲 Ingreso de Pallets Verdes"
	btnDrying   = "🔥 Gestión de Secado"
	btnProd     = "🧱 Producción y Encolado"
	btnDispatch = "📦 Agrupación para Despacho"
)

func dashboardKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnIntake)},
			{tgbotapi.NewKeyboardButton(btnDrying)},
			{tgbotapi.NewKeyboardButton(btnProd)},
			{tgbotapi.NewKeyboardButton(btnDispatch)},
		},
	}
}

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Atrás", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func navRow(back bool) []tgbotapi.InlineKeyboardButton {
	return navKeyboard(back, true).InlineKeyboard[0]
}

func qualityKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	for _, q := range pallets.QualityChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", q), fmt.Sprintf("in:q:%d", q)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, navRow(true))
}

func confirmKeyboard(label, data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)),
		navRow(true),
	)
}

func dryMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo lote", "dry:new")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ En proceso", "dry:lots:proc"),
			tgbotapi.NewInlineKeyboardButtonData("📚 Historial", "dry:lots:hist"),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Reporte Excel", "dry:report")),
		navRow(false),
	)
}

func palletPickKeyboard(ps []pallets.Pallet, sel forms.Selection) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ps)+2)
	for _, p := range ps {
		mark := "⬜"
		if sel.Contains(p.ID) {
			mark = "✅"
		}
		text := fmt.Sprintf("%s %s · %s BFT", mark, p.Label(), p.BFTAccepted.StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("dry:pal:%d", p.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➡️ Continuar", "dry:pal:next")))
	rows = append(rows, navRow(true))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func chamberKeyboard(cs []drying.Chamber) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cs)+1)
	for _, c := range cs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label(), fmt.Sprintf("dry:cam:%d", c.ID)),
		))
	}
	rows = append(rows, navRow(true))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func lotsKeyboard(lots []drying.Lot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lots)+1)
	for _, l := range lots {
		if l.State != drying.StateReadyForBFT {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🏁 Finalizar lote #%d", l.ID), fmt.Sprintf("dry:fin:%d", l.ID)),
		))
	}
	rows = append(rows, navRow(true))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func measureKeyboard(hasItems bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if hasItems {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Quitar última", "dry:mdel"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Usar medición", "dry:mok"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Finalizar sin medir", "dry:mskip")))
	rows = append(rows, navRow(true))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func prodMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Registrar bloque", "prod:new")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🧴 Registrar encolado", "prod:glue")),
		navRow(false),
	)
}

func blockPickKeyboard(bs []blocks.Block, sel forms.Selection) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(bs)+2)
	for _, bl := range bs {
		mark := "⬜"
		if sel.Contains(bl.ID) {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+bl.Label(), fmt.Sprintf("dsp:blk:%d", bl.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Recargar", "dsp:reload"),
		tgbotapi.NewInlineKeyboardButtonData("✅ CONFIRMAR AGRUPACIÓN", "dsp:ok"),
	))
	rows = append(rows, navRow(false))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
