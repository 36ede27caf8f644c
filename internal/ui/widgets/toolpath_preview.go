package widgets

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/sawfit/internal/gcode"
	"github.com/piwi3910/sawfit/internal/model"
)

var (
	colorRapid = color.NRGBA{R: 255, G: 60, B: 60, A: 200}
	colorFeed  = color.NRGBA{R: 30, G: 120, B: 255, A: 230}
	colorNick  = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	colorPiece = color.NRGBA{R: 200, G: 220, B: 255, A: 120}
)

// ToolpathPreview overlays a GCode program on the solved board and marks
// cutting moves that nick a neighbouring piece.
type ToolpathPreview struct {
	widget.BaseWidget
	moves     []gcode.Move
	nicked    map[int]bool // program lines that cut into a piece
	solution  model.Solution
	toolR     float64
	maxWidth  float32
	maxHeight float32
}

func NewToolpathPreview(code string, sol model.Solution, toolDiameter float64, maxW, maxH float32) *ToolpathPreview {
	nicked := map[int]bool{}
	for _, n := range gcode.CheckToolpath(code, sol, toolDiameter) {
		nicked[n.Line] = true
	}
	tp := &ToolpathPreview{
		moves:     gcode.Parse(code),
		nicked:    nicked,
		solution:  sol,
		toolR:     toolDiameter / 2,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	tp.ExtendBaseWidget(tp)
	return tp
}

// Nicks returns how many program lines cut into a piece.
func (tp *ToolpathPreview) Nicks() int {
	return len(tp.nicked)
}

func (tp *ToolpathPreview) CreateRenderer() fyne.WidgetRenderer {
	r := &toolpathRenderer{tp: tp}
	r.rebuild()
	return r
}

type toolpathRenderer struct {
	tp      *ToolpathPreview
	objects []fyne.CanvasObject
}

// margin leaves room for the tool running outside the board edge.
func (r *toolpathRenderer) margin() float32 {
	return float32(r.tp.toolR) + 10
}

func (r *toolpathRenderer) scale() float32 {
	m := r.margin()
	return fitScale(r.tp.solution.Board, r.tp.maxWidth-2*m, r.tp.maxHeight-2*m)
}

func (r *toolpathRenderer) rebuild() {
	r.objects = nil
	tp := r.tp
	scale, m := r.scale(), r.margin()
	at := func(x, y float64) fyne.Position {
		return fyne.NewPos(float32(x)*scale+m, float32(y)*scale+m)
	}

	board := canvas.NewRectangle(colorBoard)
	board.StrokeColor = colorBorder
	board.StrokeWidth = 2
	board.Resize(fyne.NewSize(float32(tp.solution.Board.Width)*scale, float32(tp.solution.Board.Height)*scale))
	board.Move(at(0, 0))
	r.objects = append(r.objects, board)

	for _, c := range tp.solution.Cutouts {
		rect := canvas.NewRectangle(colorPiece)
		rect.Resize(fyne.NewSize(float32(c.Dimensions.Width)*scale, float32(c.Dimensions.Height)*scale))
		rect.Move(at(c.Position.X, c.Position.Y))
		r.objects = append(r.objects, rect)
	}

	for _, mv := range tp.moves {
		if math.Hypot(mv.ToX-mv.FromX, mv.ToY-mv.FromY) < 0.01 {
			continue
		}
		var line *canvas.Line
		switch {
		case tp.nicked[mv.Line]:
			line = canvas.NewLine(colorNick)
			line.StrokeWidth = 3
		case mv.Cutting():
			line = canvas.NewLine(colorFeed)
			line.StrokeWidth = 2
		case mv.Type == gcode.MoveRapid:
			line = canvas.NewLine(colorRapid)
			line.StrokeWidth = 1
		default:
			continue
		}
		line.Position1 = at(mv.FromX, mv.FromY)
		line.Position2 = at(mv.ToX, mv.ToY)
		r.objects = append(r.objects, line)
	}
}

func (r *toolpathRenderer) Layout(fyne.Size)             {}
func (r *toolpathRenderer) Refresh()                     { r.rebuild(); canvas.Refresh(r.tp) }
func (r *toolpathRenderer) Destroy()                     {}
func (r *toolpathRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *toolpathRenderer) MinSize() fyne.Size {
	b := r.tp.solution.Board
	scale, m := r.scale(), r.margin()
	return fyne.NewSize(float32(b.Width)*scale+2*m, float32(b.Height)*scale+2*m)
}

// RenderToolpathPreview builds the preview panel with a nick warning when
// the tool is too wide for the kerf.
func RenderToolpathPreview(code string, sol model.Solution, toolDiameter float64) fyne.CanvasObject {
	preview := NewToolpathPreview(code, sol, toolDiameter, 700, 450)
	status := widget.NewLabel("Toolpath clear of all pieces.")
	if n := preview.Nicks(); n > 0 {
		status.SetText("Moves drawn in red cut into a neighbouring piece. Use a narrower tool or a wider kerf.")
		status.Importance = widget.DangerImportance
	}
	return container.NewBorder(status, nil, nil, nil, container.NewScroll(preview))
}
