package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/sawfit/internal/model"
)

// DXF layer names.
const (
	LayerBoard    = "BOARD"
	LayerCutouts  = "CUTOUTS"
	LayerLeftover = "LEFTOVER"
	LayerLabels   = "LABELS"
)

// textHeight is the caption height in drawing units (mm).
const textHeight = 10.0

// ExportDXF writes the board outline, every cutout and the leftover region
// as closed line loops, one layer each, plus a caption per cutout. DXF has
// its Y axis pointing up, so board rows are mirrored to keep the drawing
// the same way up as the diagram.
func ExportDXF(path string, sol model.Solution) error {
	if sol.Board.Width <= 0 || sol.Board.Height <= 0 {
		return fmt.Errorf("dxf: board has no area: %w", ErrNothingToExport)
	}

	d := dxf.NewDrawing()
	flip := func(y float64) float64 { return sol.Board.Height - y }

	d.AddLayer(LayerBoard, color.White, dxf.DefaultLineType, true)
	if err := rectLoop(d, 0, 0, sol.Board.Width, sol.Board.Height); err != nil {
		return err
	}

	d.AddLayer(LayerCutouts, color.Cyan, dxf.DefaultLineType, true)
	for _, c := range sol.Cutouts {
		if err := rectLoop(d, c.Position.X, flip(c.Bottom()), c.Dimensions.Width, c.Dimensions.Height); err != nil {
			return fmt.Errorf("cutout %s: %w", c.PieceID, err)
		}
	}

	d.AddLayer(LayerLeftover, color.Green, dxf.DefaultLineType, true)
	for _, c := range sol.Leftover {
		if err := rectLoop(d, c.Position.X, flip(c.Bottom()), c.Dimensions.Width, c.Dimensions.Height); err != nil {
			return fmt.Errorf("leftover: %w", err)
		}
	}

	d.AddLayer(LayerLabels, color.Yellow, dxf.DefaultLineType, true)
	for _, c := range sol.Cutouts {
		caption := fmt.Sprintf("%s %gx%g", cutoutName(c), c.Dimensions.Height, c.Dimensions.Width)
		h := min(textHeight, c.Dimensions.Height/3)
		if _, err := d.Text(caption, c.Position.X+h/2, flip(c.Bottom())+h/2, 0, h); err != nil {
			return fmt.Errorf("caption for %s: %w", c.PieceID, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf: %w", err)
	}
	return nil
}

// rectLoop draws an axis aligned rectangle with its lower-left corner at
// (x, y) as four lines on the current layer.
func rectLoop(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, p := range corners {
		q := corners[(i+1)%len(corners)]
		if _, err := d.Line(p[0], p[1], 0, q[0], q[1], 0); err != nil {
			return fmt.Errorf("draw line: %w", err)
		}
	}
	return nil
}
