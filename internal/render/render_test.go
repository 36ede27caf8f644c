package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sawfit/internal/model"
)

func sampleSolution() model.Solution {
	board := model.Board{Height: 1000, Width: 2000, SawWidth: 2.5}
	return model.Solution{
		Board: board,
		Cutouts: []model.Cutout{
			{PieceID: "a", Position: model.Point{X: 0, Y: 0}, Dimensions: model.Dimensions{Height: 600, Width: 800}},
			{PieceID: "b", Position: model.Point{X: 802.5, Y: 0}, Dimensions: model.Dimensions{Height: 400, Width: 500}},
		},
		Leftover: []model.Cutout{
			{Position: model.Point{X: 1305, Y: 0}, Dimensions: model.Dimensions{Height: 1000, Width: 695}},
		},
		Optimal: true,
	}
}

func assertColorAt(t *testing.T, img image.Image, il *Illustrator, pos model.Point, want color.NRGBA) {
	t.Helper()
	px := il.offset.X + int(pos.X*il.Scale())
	py := il.offset.Y + int(pos.Y*il.Scale())
	got := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	assert.Equal(t, want, got, "pixel at %v mm", pos)
}

func TestNewIllustrator_WideBoardScalesToWidth(t *testing.T) {
	il := NewIllustrator(model.Board{Height: 1000, Width: 2000}, DefaultOptions())

	assert.InDelta(t, 0.8, il.Scale(), 1e-9)
	assert.Equal(t, image.Rect(0, 0, 1800, 1000), il.Image().Bounds())
}

func TestNewIllustrator_TallBoardScalesToHeight(t *testing.T) {
	il := NewIllustrator(model.Board{Height: 1850, Width: 468}, DefaultOptions())

	assert.InDelta(t, 1200.0/1850.0, il.Scale(), 1e-9)
	assert.Equal(t, 1400, il.Image().Bounds().Dy())
	assert.Equal(t, int(468*il.Scale())+200, il.Image().Bounds().Dx())
}

func TestIllustrate_FillsCutoutsAndLeftover(t *testing.T) {
	sol := sampleSolution()
	il := Illustrate(sol, DefaultOptions())
	img := il.Image()

	assertColorAt(t, img, il, model.Point{X: 400, Y: 300}, CutoutColor)
	assertColorAt(t, img, il, model.Point{X: 1050, Y: 200}, CutoutColor)
	assertColorAt(t, img, il, model.Point{X: 1650, Y: 500}, LeftoverColor)
	// area below piece b is unused board
	assertColorAt(t, img, il, model.Point{X: 1050, Y: 800}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	// board frame sits just outside the origin
	assertColorAt(t, img, il, model.Point{X: -1.5, Y: 500}, outlineColor)
}

func TestPNG_Decodes(t *testing.T) {
	data, err := PNG(sampleSolution(), Options{Width: 400, Height: 300, Margin: 40, OutlineWidth: 1})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 440, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRotateClockwise(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.Black)

	dst := rotateClockwise(src)

	assert.Equal(t, image.Rect(0, 0, 2, 3), dst.Bounds())
	// top-left moves to top-right
	_, _, _, a := dst.At(1, 0).RGBA()
	assert.NotZero(t, a)
	_, _, _, a = dst.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.RenderWidth = 800
	cfg.RenderHeight = 0

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 800, opts.Width)
	assert.Equal(t, DefaultOptions().Height, opts.Height)
}
