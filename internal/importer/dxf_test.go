package importer

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
)

func writeDrawing(t *testing.T, draw func(d *drawing.Drawing)) string {
	t.Helper()
	d := dxf.NewDrawing()
	draw(d)
	path := filepath.Join(t.TempDir(), "pieces.dxf")
	require.NoError(t, d.SaveAs(path))
	return path
}

func rectangle(d *drawing.Drawing, x, y, w, h float64) {
	d.Line(x, y, 0, x+w, y, 0)
	d.Line(x+w, y, 0, x+w, y+h, 0)
	d.Line(x+w, y+h, 0, x, y+h, 0)
	d.Line(x, y+h, 0, x, y, 0)
}

func TestImportDXF_ChainedLinesAndCircle(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		rectangle(d, 10, 10, 300, 200)
		d.Circle(1000, 1000, 0, 50)
	})

	result := ImportDXF(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Pieces, 2)

	sizes := map[[2]float64]bool{}
	for _, p := range result.Pieces {
		assert.True(t, p.CanRotate)
		assert.NoError(t, p.Validate())
		sizes[[2]float64{p.Height, p.Width}] = true
	}
	assert.True(t, sizes[[2]float64{200, 300}], "rectangle should import as 200x300, got %v", sizes)
	assert.True(t, sizes[[2]float64{100, 100}], "circle should import as 100x100, got %v", sizes)
}

func TestImportDXF_OpenChainIsDropped(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		d.Line(0, 0, 0, 100, 0, 0)
		d.Line(100, 0, 0, 100, 100, 0)
	})

	result := ImportDXF(path)

	assert.Empty(t, result.Pieces)
	assert.NotEmpty(t, result.Errors)
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/file.dxf")

	assert.NotEmpty(t, result.Errors)
}

func TestChainSegments_OutOfOrderAndReversed(t *testing.T) {
	segs := []segment{
		{start: point{0, 0}, end: point{40, 0}},
		{start: point{40, 0}, end: point{40, 20}},
		{start: point{0, 20}, end: point{0, 0}},
		// reversed direction
		{start: point{0, 20}, end: point{40, 20}},
	}

	outlines := chainSegments(segs, 0.01)

	require.Len(t, outlines, 1)
	lo, hi := outlines[0].boundingBox()
	assert.Equal(t, point{0, 0}, lo)
	assert.Equal(t, point{40, 20}, hi)
	assert.InDelta(t, 800, outlineArea(outlines[0]), 1e-9)
}

func TestChainSegments_LargestFirst(t *testing.T) {
	var segs []segment
	for _, size := range []float64{10, 30} {
		o := outline{{100 * size, 0}, {100*size + size, 0}, {100*size + size, size}, {100 * size, size}}
		for i := range o {
			segs = append(segs, segment{start: o[i], end: o[(i+1)%len(o)]})
		}
	}

	outlines := chainSegments(segs, 0.01)

	require.Len(t, outlines, 2)
	assert.InDelta(t, 900, outlineArea(outlines[0]), 1e-9)
	assert.InDelta(t, 100, outlineArea(outlines[1]), 1e-9)
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	// A bulge of 1 is a half circle over the chord.
	pts := bulgeArcPoints(point{0, 0}, point{10, 0}, 1, 32)

	require.Len(t, pts, 33)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	assert.InDelta(t, 10, pts[32].X, 1e-9)

	lo, hi := pts.boundingBox()
	assert.InDelta(t, 5, math.Max(math.Abs(lo.Y), math.Abs(hi.Y)), 1e-9)
	for _, p := range pts {
		assert.InDelta(t, 5, math.Hypot(p.X-5, p.Y), 1e-9)
	}
}
