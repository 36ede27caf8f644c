package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/sawfit/internal/model"
)

func TestExportDXF_WritesLoopsAndCaptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	sol := buildTestSolution()

	require.NoError(t, ExportDXF(path, sol))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	var lines []*entity.Line
	texts := 0
	for _, e := range drawing.Entities() {
		switch v := e.(type) {
		case *entity.Line:
			lines = append(lines, v)
		case *entity.Text:
			texts++
		}
	}

	// board + 3 cutouts + leftover, four sides each
	assert.Len(t, lines, 4*5)
	assert.Equal(t, len(sol.Cutouts), texts)

	for _, l := range lines {
		for _, v := range [][]float64{l.Start, l.End} {
			assert.GreaterOrEqual(t, v[0], 0.0)
			assert.LessOrEqual(t, v[0], sol.Board.Width)
			assert.GreaterOrEqual(t, v[1], 0.0)
			assert.LessOrEqual(t, v[1], sol.Board.Height)
		}
	}
}

func TestExportDXF_MirrorsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.dxf")
	sol := model.Solution{
		Board: model.Board{Height: 100, Width: 50},
		Cutouts: []model.Cutout{
			{PieceID: "top", Position: model.Point{X: 0, Y: 0}, Dimensions: model.Dimensions{Height: 30, Width: 50}},
		},
	}

	require.NoError(t, ExportDXF(path, sol))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	minY := sol.Board.Height
	lines := 0
	for _, e := range drawing.Entities() {
		if l, ok := e.(*entity.Line); ok {
			lines++
			if l.Start[1] > 0 && l.End[1] > 0 {
				minY = min(minY, l.Start[1], l.End[1])
			}
		}
	}
	require.Equal(t, 8, lines)
	// a piece at the top of the board sits at the top of the drawing
	assert.InDelta(t, 70, minY, 1e-9)
}

func TestExportDXF_NoBoard(t *testing.T) {
	err := ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), model.Solution{})
	assert.ErrorIs(t, err, ErrNothingToExport)
}
