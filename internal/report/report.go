// Package report собирает xlsx-выгрузки, которые бот шлёт документом.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/domain/dispatch"
	"github.com/woodflow/woodflow-bot/internal/domain/drying"
)

const (
	lotsSheet     = "Lotes"
	dispatchSheet = "Cuerpo"
)

// Lots: история/текущие лоты сушки, одна строка на лот.
func Lots(lots []drying.Lot) ([]byte, error) {
	header := []any{"Lote", "Cámara", "Especie", "Inicio", "Fin", "Estado", "Pallets", "BFT Total"}
	rows := make([][]any, 0, len(lots))
	for _, l := range lots {
		rows = append(rows, []any{
			l.ID,
			l.ChamberID,
			l.Species,
			drying.DateOnly(l.Start),
			drying.DateOnly(l.End),
			string(l.State),
			len(l.PalletIDs),
			l.TotalBFT.Round(2).InexactFloat64(),
		})
	}
	return build(lotsSheet, header, rows)
}

// Dispatch: состав созданного cuerpo и итог по каждому блоку.
func Dispatch(res *dispatch.BatchResult, selected []blocks.Block) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("dispatch report: empty result")
	}
	failed := make(map[int64]error, len(res.Failed))
	for _, f := range res.Failed {
		failed[f.BlockID] = f.Err
	}

	header := []any{"Cuerpo", "Bloque", "Ancho (in)", "Resultado"}
	rows := make([][]any, 0, len(selected)+1)
	for _, b := range selected {
		result := "ASIGNADO"
		if err, ok := failed[b.ID]; ok {
			result = "ERROR: " + err.Error()
		}
		rows = append(rows, []any{res.Group.ID, b.ID, b.Width.InexactFloat64(), result})
	}
	rows = append(rows, []any{"", "Total", res.Group.Width.InexactFloat64(), res.Group.Note})
	return build(dispatchSheet, header, rows)
}

func build(sheet string, header []any, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", last, 14); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
