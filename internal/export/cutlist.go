package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/sawfit/internal/model"
)

const (
	cutListSheet = "Cut List"
	summarySheet = "Summary"
)

var cutListHeader = []interface{}{"#", "Piece ID", "Label", "X (mm)", "Y (mm)", "Height (mm)", "Width (mm)", "Rotated", "Status"}

// ExportCutList writes an Excel workbook with one row per placed piece,
// unplaced piece and leftover region, and a second sheet with the totals.
func ExportCutList(path string, sol model.Solution) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), cutListSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{cutListHeader}
	n := 0
	add := func(c model.Cutout, status string) {
		n++
		rotated := "no"
		if c.Rotated {
			rotated = "yes"
		}
		rows = append(rows, []interface{}{
			n, c.PieceID, c.Label, c.Position.X, c.Position.Y,
			c.Dimensions.Height, c.Dimensions.Width, rotated, status,
		})
	}
	for _, c := range sol.Cutouts {
		add(c, "placed")
	}
	for _, c := range sol.Unfits {
		add(c, "unfit")
	}
	for _, c := range sol.Leftover {
		add(c, "leftover")
	}
	if err := writeRows(f, cutListSheet, rows); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cutListHeader), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(cutListSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetColWidth(cutListSheet, "B", "C", 20); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Board height (mm)", sol.Board.Height},
		{"Board width (mm)", sol.Board.Width},
		{"Saw width (mm)", sol.Board.SawWidth},
		{"Pieces placed", len(sol.Cutouts)},
		{"Pieces unfit", len(sol.Unfits)},
		{"Placed area (mm²)", sol.PlacedArea()},
		{"Leftover area (mm²)", sol.LeftoverArea()},
		{"Waste area (mm²)", sol.WasteArea()},
		{"Efficiency (%)", sol.Efficiency()},
		{"Optimal", sol.Optimal},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}
