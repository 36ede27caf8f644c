package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Height,Width,Qty\nShelf,600,300,2\nDoor,400,800,1\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Height;Width;Qty\nShelf;600;300;2\nDoor;400;800;1\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tHeight\tWidth\tQty\nShelf\t600\t300\t2\nDoor\t400\t800\t1\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Label|Height|Width|Qty\nShelf|600|300|2\nDoor|400|800|1\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Height", "Width", "Quantity", "Rotate"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Height: 1, Width: 2, Quantity: 3, Rotate: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	row := []string{"Part Name", "H", "W", "Pcs", "Can Rotate"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Height: 1, Width: 2, Quantity: 3, Rotate: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_ReorderedColumns(t *testing.T) {
	row := []string{"QTY", "Width", "Height", "Name"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Quantity != 0 {
		t.Errorf("expected Quantity at 0, got %d", mapping.Quantity)
	}
	if mapping.Width != 1 {
		t.Errorf("expected Width at 1, got %d", mapping.Width)
	}
	if mapping.Height != 2 {
		t.Errorf("expected Height at 2, got %d", mapping.Height)
	}
	if mapping.Label != 3 {
		t.Errorf("expected Label at 3, got %d", mapping.Label)
	}
	if mapping.Rotate != -1 {
		t.Errorf("expected no Rotate column, got %d", mapping.Rotate)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	row := []string{"Shelf", "600", "300", "2"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("expected no header detection for numeric data")
	}
	// Should fall back to positional
	if mapping.Label != 0 || mapping.Height != 1 || mapping.Width != 2 || mapping.Quantity != 3 || mapping.Rotate != 4 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Height,Width,Quantity,Rotate\nShelf,600,300,2,yes\nDoor,400,800,1,no\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(result.Pieces))
	}

	first := result.Pieces[0]
	if first.Label != "Shelf" {
		t.Errorf("expected label 'Shelf', got '%s'", first.Label)
	}
	if first.Height != 600 || first.Width != 300 {
		t.Errorf("expected 600x300, got %.1fx%.1f", first.Height, first.Width)
	}
	if first.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", first.Quantity)
	}
	if !first.CanRotate {
		t.Error("expected Shelf to be rotatable")
	}
	if result.Pieces[1].CanRotate {
		t.Error("expected Door to keep its orientation")
	}
	if first.ID == "" || first.ID == result.Pieces[1].ID {
		t.Errorf("expected distinct piece IDs, got %q and %q", first.ID, result.Pieces[1].ID)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "Shelf,600,300,2\nDoor,400,800,1,r\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if result.Pieces[0].Height != 600 {
		t.Errorf("expected height 600, got %f", result.Pieces[0].Height)
	}
	if !result.Pieces[1].CanRotate {
		t.Error("expected positional rotate column to be read")
	}
}

func TestImportCSVFromReader_QuantityOptional(t *testing.T) {
	data := "Name,Height,Width\nShelf,600,300\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(result.Pieces))
	}
	if result.Pieces[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", result.Pieces[0].Quantity)
	}
}

func TestImportCSVFromReader_SemicolonDelimiter(t *testing.T) {
	data := "Label;Height;Width;Quantity\nShelf;600;300;2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(result.Pieces))
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func TestImportCSVFromReader_InvalidHeight(t *testing.T) {
	data := "Label,Height,Width,Quantity\nShelf,abc,300,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for invalid height")
	}
	if len(result.Pieces) != 0 {
		t.Errorf("expected 0 pieces, got %d", len(result.Pieces))
	}
}

func TestImportCSVFromReader_InvalidQuantity(t *testing.T) {
	data := "Label,Height,Width,Quantity\nShelf,600,300,abc\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for invalid quantity")
	}
}

func TestImportCSVFromReader_NonPositiveValues(t *testing.T) {
	for _, row := range []string{"Shelf,-600,300,2", "Shelf,600,0,2", "Shelf,600,300,0"} {
		t.Run(row, func(t *testing.T) {
			result := ImportCSVFromReader(strings.NewReader("Label,Height,Width,Quantity\n"+row+"\n"), ',')
			if len(result.Errors) == 0 {
				t.Errorf("expected error for %q", row)
			}
		})
	}
}

func TestImportCSVFromReader_NotTenths(t *testing.T) {
	data := "Label,Height,Width\nShelf,600.25,300\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error for a hundredth of a millimetre, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Label,Height,Width,Quantity\nGood,600,300,2\nBad,abc,300,2\nAlsoGood,400,200,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 valid pieces, got %d", len(result.Pieces))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	data := "Label,Height,Width,Quantity\nShelf,600,300,2\n\n\nDoor,400,800,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces (skipping empty rows), got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabel(t *testing.T) {
	data := "Label,Height,Width,Quantity\n,600,300,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(result.Pieces))
	}
	if result.Pieces[0].Label != "Piece 1" {
		t.Errorf("expected auto-generated label 'Piece 1', got '%s'", result.Pieces[0].Label)
	}
}

func TestImportCSVFromReader_RotateParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		warning  bool
	}{
		{"yes", true, false},
		{"Y", true, false},
		{"true", true, false},
		{"1", true, false},
		{"r", true, false},
		{"no", false, false},
		{"N", false, false},
		{"0", false, false},
		{"-", false, false},
		{"", false, false},
		{"sometimes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			data := "Label,Height,Width,Quantity,Rotate\nPiece,600,300,1," + tt.input + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')

			if len(result.Pieces) != 1 {
				t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
			}
			if result.Pieces[0].CanRotate != tt.expected {
				t.Errorf("rotate %q: expected %v, got %v", tt.input, tt.expected, result.Pieces[0].CanRotate)
			}
			hasWarning := false
			for _, w := range result.Warnings {
				if strings.Contains(w, "Unknown rotate flag") {
					hasWarning = true
				}
			}
			if tt.warning != hasWarning {
				t.Errorf("rotate %q: expected warning=%v, got %v", tt.input, tt.warning, hasWarning)
			}
		})
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Label,Width,Rotate\nShelf,600,yes\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	foundMissing := false
	for _, e := range result.Errors {
		if strings.Contains(e, "Required columns not found") && strings.Contains(e, "Height") {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Errorf("expected 'Required columns not found' error naming Height, got: %v", result.Errors)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Height,Width,Quantity\n"), ',')

	if len(result.Pieces) != 0 {
		t.Errorf("expected 0 pieces for header-only file, got %d", len(result.Pieces))
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_DecimalValues(t *testing.T) {
	data := "Label , Height , Width\n Shelf , 600.5 , 300.2 \n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if result.Pieces[0].Height != 600.5 || result.Pieces[0].Width != 300.2 {
		t.Errorf("expected 600.5x300.2, got %vx%v", result.Pieces[0].Height, result.Pieces[0].Width)
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pieces.csv")
	content := "Label;Height;Width;Quantity\nShelf;600;300;2\nDoor;400;800;1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/file.csv")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pieces.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Height", "Width", "Quantity", "Rotate"},
		{"Shelf", 600, 300, 2, "yes"},
		{"Door", 400, 800, 1, "no"},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(result.Pieces))
	}
	if result.Pieces[0].Label != "Shelf" {
		t.Errorf("expected 'Shelf', got '%s'", result.Pieces[0].Label)
	}
	if result.Pieces[0].Height != 600 {
		t.Errorf("expected height 600, got %f", result.Pieces[0].Height)
	}
	if !result.Pieces[0].CanRotate {
		t.Error("expected Shelf to be rotatable")
	}
}

func TestImportExcel_ReorderedColumns(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Qty", "Name", "Width", "Height"},
		{2, "Shelf", 300, 600},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(result.Pieces))
	}
	if result.Pieces[0].Height != 600 || result.Pieces[0].Width != 300 {
		t.Errorf("expected 600x300, got %vx%v", result.Pieces[0].Height, result.Pieces[0].Width)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/file.xlsx")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportFile_DispatchesByExtension(t *testing.T) {
	xlsx := createTestExcel(t, [][]interface{}{
		{"Label", "Height", "Width"},
		{"Shelf", 600, 300},
	})
	if result := ImportFile(xlsx); len(result.Pieces) != 1 {
		t.Errorf("xlsx: expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}

	csvPath := filepath.Join(t.TempDir(), "pieces.txt")
	if err := os.WriteFile(csvPath, []byte("Label,Height,Width\nShelf,600,300\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportFile(csvPath); len(result.Pieces) != 1 {
		t.Errorf("csv: expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
}

// ─── parseRotate Tests ─────────────────────────────────────

func TestParseRotate(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		ok       bool
	}{
		{"Yes", true, true},
		{"  x  ", true, true},
		{"false", false, true},
		{"", false, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseRotate(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("parseRotate(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
