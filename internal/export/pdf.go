// Package export writes solved boards to files for the workshop: a PDF
// report, QR-coded piece labels, a DXF cut drawing and an Excel cut list.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/sawfit/internal/model"
)

var ErrNothingToExport = errors.New("nothing to export")

// pieceColor represents an RGB color for a placed piece.
type pieceColor struct {
	R, G, B int
}

// pieceColors mirrors the color scheme used by the desktop board canvas.
var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// cutoutName is how a cutout is called in reports: its label, or its piece ID.
func cutoutName(c model.Cutout) string {
	if c.Label != "" {
		return c.Label
	}
	return c.PieceID
}

// ExportPDF writes a two page report: the board layout diagram and a
// summary with statistics, unplaced pieces and the solve settings.
func ExportPDF(path string, sol model.Solution, settings model.CutSettings) error {
	if sol.Board.Width <= 0 || sol.Board.Height <= 0 {
		return fmt.Errorf("pdf: board has no area: %w", ErrNothingToExport)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderBoardPage(pdf, sol)

	pdf.AddPage()
	renderSummaryPage(pdf, sol, settings)

	return pdf.OutputFileAndClose(path)
}

// renderBoardPage draws the solved board on the current PDF page.
func renderBoardPage(pdf *fpdf.Fpdf, sol model.Solution) {
	board := sol.Board

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Board %.1f x %.1f mm, saw %.1f mm", board.Height, board.Width, board.SawWidth)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Unfit: %d | Placed area: %.0f mm² | Leftover: %.0f mm² | Efficiency: %.1f%%",
		len(sol.Cutouts), len(sol.Unfits), sol.PlacedArea(), sol.LeftoverArea(), sol.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/board.Width, drawHeight/board.Height)
	canvasW := board.Width * scale
	canvasH := board.Height * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Board background (wood color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, c := range sol.Leftover {
		drawLeftover(pdf, c, scale, offsetX, offsetY)
	}

	for i, c := range sol.Cutouts {
		col := pieceColors[i%len(pieceColors)]
		pw := c.Dimensions.Width * scale
		ph := c.Dimensions.Height * scale
		px := offsetX + c.Position.X*scale
		py := offsetY + c.Position.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Label only if the rectangle is large enough
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := cutoutName(c)
			dims := fmt.Sprintf("%gx%g", c.Dimensions.Height, c.Dimensions.Width)

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, board, offsetX, offsetY, canvasW, canvasH)
	drawPiecesLegend(pdf, sol.Cutouts, offsetY+canvasH+5)
}

// drawLeftover renders the unused region with a light fill and hatching.
func drawLeftover(pdf *fpdf.Fpdf, c model.Cutout, scale, offsetX, offsetY float64) {
	zx := offsetX + c.Position.X*scale
	zy := offsetY + c.Position.Y*scale
	zw := c.Dimensions.Width * scale
	zh := c.Dimensions.Height * scale

	pdf.SetFillColor(107, 250, 148)
	pdf.SetDrawColor(0, 120, 40)
	pdf.SetLineWidth(0.3)
	pdf.Rect(zx, zy, zw, zh, "FD")

	drawHatchPattern(pdf, zx, zy, zw, zh)

	if zw > 20 && zh > 8 {
		caption := fmt.Sprintf("LEFTOVER %gx%g", c.Dimensions.Height, c.Dimensions.Width)
		pdf.SetFont("Helvetica", "B", 6)
		pdf.SetTextColor(0, 90, 30)
		labelW := pdf.GetStringWidth(caption)
		if labelW < zw-2 {
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, caption, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(0, 120, 40)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the board rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, board model.Board, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width below the board
	widthLabel := fmt.Sprintf("%g mm", board.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height to the left, rotated
	heightLabel := fmt.Sprintf("%g mm", board.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPiecesLegend renders a compact legend of placed pieces below the board.
func drawPiecesLegend(pdf *fpdf.Fpdf, cutouts []model.Cutout, startY float64) {
	if len(cutouts) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, c := range cutouts {
		col := pieceColors[i%len(pieceColors)]
		label := fmt.Sprintf("%s (%gx%g)", cutoutName(c), c.Dimensions.Height, c.Dimensions.Width)
		if c.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the statistics page.
func renderSummaryPage(pdf *fpdf.Fpdf, sol model.Solution, settings model.CutSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	status := "proven optimal"
	if !sol.Optimal {
		status = "best found within time limit"
	}
	summaryItems := []struct {
		label string
		value string
	}{
		{"Pieces Placed", fmt.Sprintf("%d", len(sol.Cutouts))},
		{"Unplaced Pieces", fmt.Sprintf("%d", len(sol.Unfits))},
		{"Efficiency", fmt.Sprintf("%.1f%%", sol.Efficiency())},
		{"Leftover Area", fmt.Sprintf("%.0f mm²", sol.LeftoverArea())},
		{"Waste Area", fmt.Sprintf("%.0f mm²", sol.WasteArea())},
		{"Result", status},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	y = renderCutoutTable(pdf, sol.Cutouts, y)

	if len(sol.Unfits) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, c := range sol.Unfits {
			if y > pageHeight-marginBottom-40 {
				break
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %g x %g mm", cutoutName(c), c.Dimensions.Height, c.Dimensions.Width)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cut Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Saw Width", fmt.Sprintf("%.1f mm", sol.Board.SawWidth)},
		{"Time Limit", fmt.Sprintf("%s per phase", settings.Timeout)},
		{"Solver", settings.Backend},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by sawfit - board cutting planner", "", 0, "C", false, 0, "")
}

// renderCutoutTable draws the cut list and returns the y below it. Rows
// that would run off the page are summarised in one line.
func renderCutoutTable(pdf *fpdf.Fpdf, cutouts []model.Cutout, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cut List", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 60, 45, 45, 25, 50}
	headers := []string{"#", "Piece", "Position (x, y)", "Size (h x w)", "Rotated", "Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range cutouts {
		if y > pageHeight-marginBottom-60 {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(200, 6, fmt.Sprintf("... and %d more", len(cutouts)-i), "", 0, "L", false, 0, "")
			return y + 6
		}

		rotated := ""
		if c.Rotated {
			rotated = "yes"
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			cutoutName(c),
			fmt.Sprintf("%g, %g", c.Position.X, c.Position.Y),
			fmt.Sprintf("%g x %g", c.Dimensions.Height, c.Dimensions.Width),
			rotated,
			fmt.Sprintf("%.0f mm²", c.Area()),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
	return y
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
