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
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
	"github.com/woodflow/woodflow-bot/internal/domain/pallets"
	"github.com/woodflow/woodflow-bot/internal/forms"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
	"github.com/woodflow/woodflow-bot/internal/report"
)

// Поля формы лота и замера
const (
	fChamber      = "camara"
	fChamberLabel = "camara_nombre"
	fStart        = "inicio"
	fEnd          = "fin"
	fNotes        = "notas"
	fPalletID     = "idPallet"

	fMLength   = "largo"
	fMWidth    = "ancho"
	fMThick    = "espesor"
	fMCount    = "cantidad"
	fMOriginal = "largo_original"
)

var (
	lotSchema = forms.Schema{
		Required:     []string{fChamber, fStart, fEnd},
		ItemRequired: []string{fPalletID},
		MinItems:     1,
	}
	measureSchema = forms.Schema{
		ItemRequired: []string{fMLength, fMWidth, fMThick, fMCount},
		OverrideKey:  fMOriginal,
		MinItems:     1,
	}
)

const (
	msgLotIncomplete  = "Complete cámara, fechas y seleccione al menos un pallet."
	msgFinalizeAsk    = "¿Confirmas que el lote ha salido físicamente de la cámara y está listo para stock seco?"
	msgMeasureHelp    = "Envíe una línea por grupo: largo ancho espesor cantidad\nSi el grupo es castigado agregue el largo original al final.\nEj.: 8 81 1 10  ·  7 81 1 10 8"
	msgNoLotsInFilter = "No hay lotes en esta categoría."
)

func (b *Bot) showDryMenu(ctx context.Context, chatID int64, editMsgID *int) {
	it := dialog.NewItem(chatID)
	it.State = dialog.StateDryMenu
	text := "🔥 Gestión de Secado"
	kb := dryMenuKeyboard()
	if editMsgID != nil {
		it.Payload = it.Payload.With("last_mid", *editMsgID)
		b.saveState(ctx, it)
		b.editText(chatID, *editMsgID, text, kb)
		return
	}
	b.sendStep(ctx, it, text, &kb)
}

func (b *Bot) today() string {
	return drying.DateOnly(drying.AtShiftStart(b.now(), b.cfg.Location))
}

func (b *Bot) handleDryCallback(ctx context.Context, it *dialog.Item, cb *tgbotapi.CallbackQuery) {
	chatID, msgID := cb.Message.Chat.ID, cb.Message.MessageID
	data := cb.Data

	switch {
	case data == "dry:new":
		it.Form = forms.New(lotSchema).WithHeader(fStart, b.today())
		it.Payload = dialog.Payload{"sel": forms.Selection{}}
		b.showPalletPick(ctx, it, &msgID)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:pal:next":
		if dialog.GetSelection(it.Payload, "sel").Len() == 0 {
			_ = b.answerCallback(cb, "Seleccione al menos un pallet.", true)
			return
		}
		b.showChamberPick(ctx, it, &msgID)
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "dry:pal:"):
		id, ok := callbackID(data, "dry:pal:")
		if !ok || it.State != dialog.StateDryPickPallets {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		sel := dialog.GetSelection(it.Payload, "sel").Toggle(id)
		it.Payload = it.Payload.With("sel", sel)
		it.Form = it.Form.WithItems(sel.Items(fPalletID))
		b.showPalletPick(ctx, it, &msgID)
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "dry:cam:"):
		id, ok := callbackID(data, "dry:cam:")
		if !ok || it.State != dialog.StateDryPickChamber {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		label := buttonText(cb.Message, data, fmt.Sprintf("Cámara %d", id))
		it.Form = it.Form.WithHeader(fChamber, strconv.FormatInt(id, 10)).WithHeader(fChamberLabel, label)
		b.editTextAndClear(chatID, msgID, "Cámara: "+label)
		b.askDryStep(ctx, it, dialog.StateDryStartDate)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:today":
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fStart, b.today())
		b.askDryStep(ctx, it, dialog.StateDryEndDate)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:skipnotes":
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fNotes, "")
		b.askDryStep(ctx, it, dialog.StateDryConfirm)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:save":
		if it.State != dialog.StateDryConfirm {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		if !it.Form.IsValid() {
			metrics.RejectValidation("lot_form")
			_ = b.answerCallback(cb, msgLotIncomplete, true)
			return
		}
		_ = b.answerCallback(cb, "Creando lote...", false)
		b.createLot(ctx, it, msgID)

	case data == "dry:lots:proc":
		b.showLots(ctx, chatID, &msgID, true)
		_ = b.answerCallback(cb, "", false)
	case data == "dry:lots:hist":
		b.showLots(ctx, chatID, &msgID, false)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:report":
		_ = b.answerCallback(cb, "Generando...", false)
		b.sendLotsReport(ctx, chatID)

	case data == "dry:fin:ok":
		_ = b.answerCallback(cb, "", false)
		b.finalizeLot(ctx, it, msgID)

	case strings.HasPrefix(data, "dry:fin:"):
		id, ok := callbackID(data, "dry:fin:")
		if !ok {
			_ = b.answerCallback(cb, "Acción desconocida", false)
			return
		}
		b.startMeasure(ctx, it, msgID, id, cb)

	case data == "dry:mdel":
		if it.State != dialog.StateDryMeasure {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		it.Form = it.Form.WithoutItem(it.Form.Len() - 1)
		b.showMeasure(ctx, it, &msgID)
		_ = b.answerCallback(cb, "", false)

	case data == "dry:mok", data == "dry:mskip":
		if it.State != dialog.StateDryMeasure {
			_ = b.answerCallback(cb, "Formulario vencido", false)
			return
		}
		total := ""
		if data == "dry:mok" {
			if !it.Form.IsValid() {
				metrics.RejectValidation("measure_form")
				_ = b.answerCallback(cb, "La medición está incompleta.", true)
				return
			}
			total = b.calc.Total(measuresOf(it.Form)).Accepted.StringFixed(2)
		}
		it.Payload = it.Payload.With("total", total)
		b.saveState(ctx, it)
		text := msgFinalizeAsk
		if total != "" {
			text += "\n\nBFT seco medido: " + total
		}
		b.editText(chatID, msgID, text, confirmKeyboard("Confirmar", "dry:fin:ok"))
		_ = b.answerCallback(cb, "", false)

	default:
		_ = b.answerCallback(cb, "Acción desconocida", false)
	}
}

func (b *Bot) showPalletPick(ctx context.Context, it *dialog.Item, editMsgID *int) {
	ps, err := b.pallets.ListAvailableForDrying(ctx)
	if err != nil {
		b.log.Error("list drying pallets failed", "chat_id", it.ChatID, "err", err)
		b.replyStep(ctx, it, editMsgID, userMessage(err, msgLoadFailed), navKeyboard(true, true))
		return
	}
	it.State = dialog.StateDryPickPallets
	sel := dialog.GetSelection(it.Payload, "sel")
	text := fmt.Sprintf("Pallets disponibles (Madera Verde)\nSeleccionados: %d · BFT: %s",
		sel.Len(), pallets.SumAccepted(ps, sel).StringFixed(2))
	if len(ps) == 0 {
		text = "No hay pallets disponibles para secado."
	}
	b.replyStep(ctx, it, editMsgID, text, palletPickKeyboard(ps, sel))
}

func (b *Bot) showChamberPick(ctx context.Context, it *dialog.Item, editMsgID *int) {
	cs, err := b.drying.ListChambers(ctx)
	if err != nil {
		b.log.Error("list chambers failed", "chat_id", it.ChatID, "err", err)
		b.replyStep(ctx, it, editMsgID, userMessage(err, msgLoadFailed), navKeyboard(true, true))
		return
	}
	it.State = dialog.StateDryPickChamber
	text := "Seleccionar Cámara:"
	if len(cs) == 0 {
		text = "No hay cámaras disponibles."
	}
	b.replyStep(ctx, it, editMsgID, text, chamberKeyboard(cs))
}

// replyStep правит сообщение шага, если оно есть, иначе шлёт новое.
func (b *Bot) replyStep(ctx context.Context, it *dialog.Item, editMsgID *int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if editMsgID == nil {
		b.sendStep(ctx, it, text, &kb)
		return
	}
	it.Payload = it.Payload.With("last_mid", *editMsgID)
	b.saveState(ctx, it)
	b.editText(it.ChatID, *editMsgID, text, kb)
}

func (b *Bot) askDryStep(ctx context.Context, it *dialog.Item, state dialog.State) {
	it.State = state
	var text string
	kb := navKeyboard(true, true)
	switch state {
	case dialog.StateDryStartDate:
		text = fmt.Sprintf("Inicio (DD/MM/AAAA). Actual: %s", it.Form.Value(fStart))
		kb = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Hoy", "dry:today")),
			navRow(true),
		)
	case dialog.StateDryEndDate:
		text = "Fin Estimado (DD/MM/AAAA):"
	case dialog.StateDryNotes:
		text = "Observaciones:"
		kb = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Omitir", "dry:skipnotes")),
			navRow(true),
		)
	case dialog.StateDryConfirm:
		text = b.lotSummary(it)
		kb = confirmKeyboard("💾 Crear lote", "dry:save")
	}
	b.sendStep(ctx, it, text, &kb)
}

func (b *Bot) lotSummary(it *dialog.Item) string {
	f := it.Form
	var sb strings.Builder
	sb.WriteString("Configuración de Lote\n")
	fmt.Fprintf(&sb, "Cámara: %s\n", f.Value(fChamberLabel))
	fmt.Fprintf(&sb, "Inicio: %s\nFin Estimado: %s\n", f.Value(fStart), f.Value(fEnd))
	fmt.Fprintf(&sb, "Pallets: %d\n", f.Len())
	if n := f.Value(fNotes); n != "" {
		fmt.Fprintf(&sb, "Observaciones: %s\n", n)
	}
	return sb.String()
}

func (b *Bot) handleDryInput(ctx context.Context, it *dialog.Item, text string) {
	switch it.State {
	case dialog.StateDryStartDate, dialog.StateDryEndDate:
		d, err := drying.ParseDay(text, b.cfg.Location)
		if err != nil {
			b.send(tgbotapi.NewMessage(it.ChatID, "Fecha no válida. Use DD/MM/AAAA."))
			return
		}
		if it.State == dialog.StateDryEndDate {
			start, err := drying.ParseDay(it.Form.Value(fStart), b.cfg.Location)
			if err == nil && d.Before(start) {
				metrics.RejectValidation("lot_dates")
				b.send(tgbotapi.NewMessage(it.ChatID, "La fecha de fin no puede ser anterior al inicio."))
				return
			}
			b.clearPrevStep(it)
			it.Form = it.Form.WithHeader(fEnd, drying.DateOnly(d))
			b.askDryStep(ctx, it, dialog.StateDryNotes)
			return
		}
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fStart, drying.DateOnly(d))
		if end := it.Form.Value(fEnd); end != "" {
			if e, err := drying.ParseDay(end, b.cfg.Location); err == nil && e.Before(d) {
				it.Form = it.Form.WithHeader(fEnd, "")
			}
		}
		b.askDryStep(ctx, it, dialog.StateDryEndDate)
	case dialog.StateDryNotes:
		b.clearPrevStep(it)
		it.Form = it.Form.WithHeader(fNotes, text)
		b.askDryStep(ctx, it, dialog.StateDryConfirm)
	}
}

func (b *Bot) createLot(ctx context.Context, it *dialog.Item, msgID int) {
	f := it.Form
	chamberID, _ := strconv.ParseInt(f.Value(fChamber), 10, 64)
	start, _ := drying.ParseDay(f.Value(fStart), b.cfg.Location)
	end, _ := drying.ParseDay(f.Value(fEnd), b.cfg.Location)
	lot := drying.NewLot{
		ChamberID: chamberID,
		Start:     start,
		End:       end,
		PalletIDs: dialog.GetSelection(it.Payload, "sel"),
		Notes:     f.Value(fNotes),
	}

	state, err := b.drying.Create(ctx, lot)
	if err != nil {
		if errors.Is(err, drying.ErrInvalidLot) {
			metrics.RejectValidation("lot_form")
		}
		b.log.Error("create lot failed", "chat_id", it.ChatID, "err", err)
		b.editTextWithNav(it.ChatID, msgID, userMessage(err, "No se pudo crear el lote"))
		return
	}
	b.log.Info("drying lot created", "chat_id", it.ChatID, "chamber_id", chamberID, "pallets", len(lot.PalletIDs), "state", state)
	b.editTextAndClear(it.ChatID, msgID, fmt.Sprintf("✅ Lote Creado. Estado: %s", state))
	b.showLots(ctx, it.ChatID, nil, true)
}

func (b *Bot) showLots(ctx context.Context, chatID int64, editMsgID *int, inProcess bool) {
	it := dialog.NewItem(chatID)
	it.State = dialog.StateDryLots
	lots, err := b.drying.ListLots(ctx)
	if err != nil {
		b.log.Error("list lots failed", "chat_id", chatID, "err", err)
		b.replyStep(ctx, it, editMsgID, userMessage(err, msgLoadFailed), navKeyboard(true, true))
		return
	}
	process, history := drying.Split(lots)
	list, title := process, "⏳ Lotes en proceso"
	if !inProcess {
		list, title = history, "📚 Historial"
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	if len(list) == 0 {
		sb.WriteString("\n" + msgNoLotsInFilter)
	}
	for _, l := range list {
		sb.WriteString("\n" + lotLine(l, !inProcess))
	}
	kb := navKeyboard(true, true)
	if inProcess {
		kb = lotsKeyboard(list)
	}
	b.replyStep(ctx, it, editMsgID, sb.String(), kb)
}

func lotLine(l drying.Lot, history bool) string {
	label := string(l.State)
	if history {
		label = "HISTORIAL"
	}
	chamber := "?"
	if l.ChamberID != 0 {
		chamber = strconv.FormatInt(l.ChamberID, 10)
	}
	line := fmt.Sprintf("Lote #%d [%s]\nCámara %s • %s\nInicio: %s · Fin Est: %s",
		l.ID, label, chamber, l.Species, drying.DateOnly(l.Start), drying.DateOnly(l.End))
	if !l.TotalBFT.IsZero() {
		line += "\nBFT Total: " + l.TotalBFT.StringFixed(2)
	}
	return line + "\n"
}

func (b *Bot) startMeasure(ctx context.Context, it *dialog.Item, msgID int, lotID int64, cb *tgbotapi.CallbackQuery) {
	lot, err := b.drying.FindLot(ctx, lotID)
	if err != nil {
		b.log.Error("find lot failed", "lot_id", lotID, "err", err)
		_ = b.answerCallback(cb, userMessage(err, "No se pudo cargar el lote"), true)
		return
	}
	if lot.State != drying.StateReadyForBFT {
		metrics.RejectValidation("lot_not_ready")
		_ = b.answerCallback(cb, userMessage(drying.ErrNotReady, ""), true)
		return
	}
	it.State = dialog.StateDryMeasure
	it.Form = forms.New(measureSchema)
	it.Payload = dialog.Payload{"lot_id": lot.ID}
	b.showMeasure(ctx, it, &msgID)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) showMeasure(ctx context.Context, it *dialog.Item, editMsgID *int) {
	lotID, _ := dialog.GetInt64(it.Payload, "lot_id")
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lote #%d · Medición de BFT seco\n%s\n", lotID, msgMeasureHelp)
	for i, item := range it.Form.Items {
		fmt.Fprintf(&sb, "\n%d) %s × %s × %s × %s", i+1,
			item.Value(fMLength), item.Value(fMWidth), item.Value(fMThick), item.Value(fMCount))
		if item.Penalized {
			fmt.Fprintf(&sb, " (castigado, largo original %s)", item.Value(fMOriginal))
		}
	}
	if it.Form.Len() > 0 {
		total := b.calc.Total(measuresOf(it.Form))
		fmt.Fprintf(&sb, "\n\nTotal: %s", total)
	}
	b.replyStep(ctx, it, editMsgID, sb.String(), measureKeyboard(it.Form.Len() > 0))
}

func (b *Bot) handleMeasureInput(ctx context.Context, it *dialog.Item, text string) {
	if _, ok := it.Payload["total"]; ok {
		return
	}
	nums, err := parseNumbers(text)
	if err != nil || (len(nums) != 4 && len(nums) != 5) || !nums[3].IsInteger() {
		b.send(tgbotapi.NewMessage(it.ChatID, "Formato: largo ancho espesor cantidad [largo original]"))
		return
	}
	fields := map[string]string{
		fMLength: nums[0].String(),
		fMWidth:  nums[1].String(),
		fMThick:  nums[2].String(),
		fMCount:  nums[3].String(),
	}
	penalized := len(nums) == 5
	if penalized {
		fields[fMOriginal] = nums[4].String()
	}
	b.clearPrevStep(it)
	it.Form = it.Form.WithItem(fields, penalized)
	b.showMeasure(ctx, it, nil)
}

func measuresOf(f forms.Form) []pallets.Measure {
	out := make([]pallets.Measure, 0, f.Len())
	for _, it := range f.Items {
		l, _ := parseDecimal(it.Value(fMLength))
		w, _ := parseDecimal(it.Value(fMWidth))
		t, _ := parseDecimal(it.Value(fMThick))
		c, _ := strconv.ParseInt(it.Value(fMCount), 10, 64)
		m := pallets.Measure{Length: l, Width: w, Thickness: t, Count: c}
		if it.Penalized {
			m.OriginalLength, _ = parseDecimal(it.Value(fMOriginal))
		}
		out = append(out, m)
	}
	return out
}

func (b *Bot) finalizeLot(ctx context.Context, it *dialog.Item, msgID int) {
	lotID, ok := dialog.GetInt64(it.Payload, "lot_id")
	if !ok || it.State != dialog.StateDryMeasure {
		b.editTextAndClear(it.ChatID, msgID, "Formulario vencido.")
		return
	}
	total := decimal.Zero
	if s, _ := dialog.GetString(it.Payload, "total"); s != "" {
		total, _ = parseDecimal(s)
	}

	lot, err := b.drying.FindLot(ctx, lotID)
	if err == nil {
		err = b.drying.Finalize(ctx, *lot, total)
	}
	if err != nil {
		b.log.Error("finalize lot failed", "lot_id", lotID, "err", err)
		b.editTextWithNav(it.ChatID, msgID, userMessage(err, "No se pudo finalizar el lote"))
		return
	}
	b.log.Info("drying lot finalized", "lot_id", lotID, "bft_total", total.StringFixed(2))
	b.resetState(ctx, it.ChatID)
	b.editTextAndClear(it.ChatID, msgID, "✅ Lote enviado a Stock Seco")
}

func (b *Bot) sendLotsReport(ctx context.Context, chatID int64) {
	lots, err := b.drying.ListLots(ctx)
	if err != nil {
		b.log.Error("list lots failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, userMessage(err, msgLoadFailed)))
		return
	}
	data, err := report.Lots(lots)
	if err != nil {
		b.log.Error("build lots report failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Error al generar el archivo"))
		return
	}
	name := fmt.Sprintf("lotes_secado_%s.xlsx", b.now().In(b.cfg.Location).Format("20060102_150405"))
	b.sendDocument(chatID, name, fmt.Sprintf("Lotes de secado: %d", len(lots)), data)
}

// buttonText: подпись нажатой кнопки, чтобы не перезапрашивать список.
func buttonText(msg *tgbotapi.Message, data, fallback string) string {
	if msg == nil || msg.ReplyMarkup == nil {
		return fallback
	}
	for _, row := range msg.ReplyMarkup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == data {
				return btn.Text
			}
		}
	}
	return fallback
}
