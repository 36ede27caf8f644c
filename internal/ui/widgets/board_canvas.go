package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/render"
)

// Piece colors, cycled for visual distinction.
var pieceColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 200},  // green
	{R: 33, G: 150, B: 243, A: 200}, // blue
	{R: 255, G: 152, B: 0, A: 200},  // orange
	{R: 156, G: 39, B: 176, A: 200}, // purple
	{R: 0, G: 188, B: 212, A: 200},  // cyan
	{R: 244, G: 67, B: 54, A: 200},  // red
	{R: 255, G: 235, B: 59, A: 200}, // yellow
	{R: 121, G: 85, B: 72, A: 200},  // brown
}

var (
	colorBoard  = color.NRGBA{R: 210, G: 180, B: 140, A: 255} // wood
	colorBorder = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
)

// fitScale returns the factor that fits a board of h x w mm into maxW x maxH
// pixels.
func fitScale(board model.Board, maxW, maxH float32) float32 {
	if board.Width <= 0 || board.Height <= 0 {
		return 1
	}
	return min(maxW/float32(board.Width), maxH/float32(board.Height))
}

// BoardCanvas draws a solved board: placed pieces, the leftover region and
// the kerf gaps between them.
type BoardCanvas struct {
	widget.BaseWidget
	solution  model.Solution
	maxWidth  float32
	maxHeight float32
}

func NewBoardCanvas(sol model.Solution, maxW, maxH float32) *BoardCanvas {
	bc := &BoardCanvas{solution: sol, maxWidth: maxW, maxHeight: maxH}
	bc.ExtendBaseWidget(bc)
	return bc
}

// SetSolution replaces the drawn solution.
func (bc *BoardCanvas) SetSolution(sol model.Solution) {
	bc.solution = sol
	bc.Refresh()
}

func (bc *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &boardCanvasRenderer{bc: bc}
	r.rebuild()
	return r
}

type boardCanvasRenderer struct {
	bc      *BoardCanvas
	objects []fyne.CanvasObject
}

func (r *boardCanvasRenderer) rebuild() {
	r.objects = nil

	sol := r.bc.solution
	scale := fitScale(sol.Board, r.bc.maxWidth, r.bc.maxHeight)
	boardW := float32(sol.Board.Width) * scale
	boardH := float32(sol.Board.Height) * scale

	bg := canvas.NewRectangle(colorBoard)
	bg.Resize(fyne.NewSize(boardW, boardH))
	r.objects = append(r.objects, bg)

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = colorBorder
	border.StrokeWidth = 2
	border.Resize(fyne.NewSize(boardW, boardH))
	r.objects = append(r.objects, border)

	for _, l := range sol.Leftover {
		r.addRect(l, scale, render.LeftoverColor, "leftover")
	}

	for i, c := range sol.Cutouts {
		name := c.Label
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if c.Rotated {
			name += " ⟳"
		}
		r.addRect(c, scale, pieceColors[i%len(pieceColors)],
			fmt.Sprintf("%s\n%gx%g", name, c.Dimensions.Height, c.Dimensions.Width))
	}
}

func (r *boardCanvasRenderer) addRect(c model.Cutout, scale float32, fill color.Color, caption string) {
	w := float32(c.Dimensions.Width) * scale
	h := float32(c.Dimensions.Height) * scale
	pos := fyne.NewPos(float32(c.Position.X)*scale, float32(c.Position.Y)*scale)

	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	rect.StrokeWidth = 1
	rect.Resize(fyne.NewSize(w, h))
	rect.Move(pos)
	r.objects = append(r.objects, rect)

	// only label pieces big enough to read
	if w > 40 && h > 24 {
		label := canvas.NewText(caption, color.Black)
		label.TextSize = 10
		label.Move(pos.AddXY(3, 2))
		r.objects = append(r.objects, label)
	}
}

func (r *boardCanvasRenderer) Layout(fyne.Size)             {}
func (r *boardCanvasRenderer) Refresh()                     { r.rebuild(); canvas.Refresh(r.bc) }
func (r *boardCanvasRenderer) Destroy()                     {}
func (r *boardCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardCanvasRenderer) MinSize() fyne.Size {
	b := r.bc.solution.Board
	scale := fitScale(b, r.bc.maxWidth, r.bc.maxHeight)
	return fyne.NewSize(float32(b.Width)*scale, float32(b.Height)*scale)
}

// SummaryLines describes a solution in a few human readable lines.
func SummaryLines(sol model.Solution) []string {
	lines := []string{fmt.Sprintf("Board %g × %g mm, saw %g mm: %d pieces placed, %.1f%% efficiency",
		sol.Board.Height, sol.Board.Width, sol.Board.SawWidth, len(sol.Cutouts), sol.Efficiency())}
	for _, l := range sol.Leftover {
		lines = append(lines, fmt.Sprintf("Leftover %g × %g mm at (%g, %g)",
			l.Dimensions.Height, l.Dimensions.Width, l.Position.X, l.Position.Y))
	}
	if !sol.Optimal {
		lines = append(lines, "Time limit reached: the layout is valid but not proven optimal.")
	}
	return lines
}

// RenderSolution builds the results panel for a solution, or a hint when
// there is none.
func RenderSolution(sol *model.Solution) fyne.CanvasObject {
	if sol == nil {
		return widget.NewLabel("No layout yet. Enter pieces, then click Solve.")
	}

	var items []fyne.CanvasObject
	for i, line := range SummaryLines(*sol) {
		l := widget.NewLabel(line)
		if i == 0 {
			l.TextStyle = fyne.TextStyle{Bold: true}
		}
		items = append(items, l)
	}
	items = append(items, NewBoardCanvas(*sol, 700, 450))

	if len(sol.Unfits) > 0 {
		warning := widget.NewLabel(fmt.Sprintf("%d pieces do not fit on the board:", len(sol.Unfits)))
		warning.Importance = widget.DangerImportance
		items = append(items, warning)
		for _, u := range sol.Unfits {
			items = append(items, widget.NewLabel(fmt.Sprintf("  %s %g × %g", u.PieceID, u.Dimensions.Height, u.Dimensions.Width)))
		}
	}

	return container.NewVScroll(container.NewVBox(items...))
}
