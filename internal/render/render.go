// Package render draws a solved board as a raster image: the board outline
// with its dimensions, every placed piece and the leftover region, each
// captioned with its size in millimetres.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/piwi3910/sawfit/internal/model"
)

var (
	CutoutColor   = color.NRGBA{R: 0x46, G: 0x3C, B: 0x3D, A: 255}
	LeftoverColor = color.NRGBA{R: 0x6B, G: 0xFA, B: 0x94, A: 255}
	outlineColor  = color.NRGBA{A: 255}
)

// Options sizes the drawing area. The board is scaled to fit Width x Height
// keeping its aspect ratio, and Margin pixels are added around it for the
// board captions.
type Options struct {
	Width        int
	Height       int
	Margin       int
	OutlineWidth int
}

func DefaultOptions() Options {
	return Options{Width: 1600, Height: 1200, Margin: 200, OutlineWidth: 2}
}

// OptionsFromConfig takes the drawing size from the app config, falling back
// to the defaults for unset values.
func OptionsFromConfig(cfg model.AppConfig) Options {
	opts := DefaultOptions()
	if cfg.RenderWidth > 0 {
		opts.Width = cfg.RenderWidth
	}
	if cfg.RenderHeight > 0 {
		opts.Height = cfg.RenderHeight
	}
	return opts
}

// Illustrator accumulates rectangles on a board image.
type Illustrator struct {
	img     *image.RGBA
	board   model.Board
	scale   float64
	offset  image.Point
	outline int
	face    font.Face
}

// NewIllustrator prepares a white image with the board outline and its
// captions.
func NewIllustrator(board model.Board, opts Options) *Illustrator {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	w, h := opts.Width, opts.Height
	var scale float64
	if board.Height/board.Width > float64(h)/float64(w) {
		scale = float64(h) / board.Height
		w = max(int(board.Width*scale), 1)
	} else {
		scale = float64(w) / board.Width
		h = max(int(board.Height*scale), 1)
	}

	img := image.NewRGBA(image.Rect(0, 0, w+opts.Margin, h+opts.Margin))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	il := &Illustrator{
		img:     img,
		board:   board,
		scale:   scale,
		offset:  image.Pt(opts.Margin/2, opts.Margin/2),
		outline: max(opts.OutlineWidth, 1),
		face:    basicfont.Face7x13,
	}
	il.container(w, h)
	return il
}

func (il *Illustrator) container(w, h int) {
	o := il.outline
	frame := image.Rect(il.offset.X-o, il.offset.Y-o, il.offset.X+w+o, il.offset.Y+h+o)
	il.stroke(frame, outlineColor)

	above := il.offset.Y*2/3 - 10
	il.horizontalText(mmCaption(il.board.Width), image.Pt(il.offset.X, above), w, color.Black)
	il.verticalText(mmCaption(il.board.Height), image.Pt(il.offset.X*2/3-10, il.offset.Y), h, color.Black)
}

// Scale returns how many pixels one millimetre takes.
func (il *Illustrator) Scale() float64 {
	return il.scale
}

// rect converts a board rectangle in mm to image pixels.
func (il *Illustrator) rect(pos model.Point, dims model.Dimensions) image.Rectangle {
	x0 := il.offset.X + int(pos.X*il.scale)
	y0 := il.offset.Y + int(pos.Y*il.scale)
	x1 := il.offset.X + int((pos.X+dims.Width)*il.scale)
	y1 := il.offset.Y + int((pos.Y+dims.Height)*il.scale)
	return image.Rect(x0, y0, x1, y1)
}

// AddRectangle fills a board rectangle, outlines it, and optionally captions
// its height along the left edge and its width along the top edge.
func (il *Illustrator) AddRectangle(pos model.Point, dims model.Dimensions, fill color.Color, annotate bool, textColor color.Color) {
	r := il.rect(pos, dims)
	draw.Draw(il.img, r, image.NewUniform(fill), image.Point{}, draw.Over)
	il.stroke(r, outlineColor)
	if !annotate {
		return
	}
	il.verticalText(mmCaption(dims.Height), image.Pt(r.Min.X+5, r.Min.Y), r.Dy(), textColor)
	il.horizontalText(mmCaption(dims.Width), r.Min, r.Dx(), textColor)
}

// AddCutout draws a placed piece.
func (il *Illustrator) AddCutout(c model.Cutout) {
	il.AddRectangle(c.Position, c.Dimensions, CutoutColor, true, color.White)
}

// AddLeftover draws the unused region.
func (il *Illustrator) AddLeftover(c model.Cutout) {
	il.AddRectangle(c.Position, c.Dimensions, LeftoverColor, true, color.Black)
}

// stroke draws the border of r growing inwards.
func (il *Illustrator) stroke(r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	o := min(il.outline, r.Dx(), r.Dy())
	if o <= 0 {
		return
	}
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+o),
		image.Rect(r.Min.X, r.Max.Y-o, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+o, r.Max.Y),
		image.Rect(r.Max.X-o, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(il.img, edge, src, image.Point{}, draw.Src)
	}
}

// textImage renders caption on a transparent image with a 5px pad.
func (il *Illustrator) textImage(caption string, c color.Color) *image.RGBA {
	length := font.MeasureString(il.face, caption).Ceil()
	metrics := il.face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	txt := image.NewRGBA(image.Rect(0, 0, length+10, height+10))
	d := &font.Drawer{
		Dst:  txt,
		Src:  image.NewUniform(c),
		Face: il.face,
		Dot:  fixed.P(5, 5+metrics.Ascent.Ceil()),
	}
	d.DrawString(caption)
	return txt
}

// horizontalText centres caption over a span of span pixels starting at tl.
func (il *Illustrator) horizontalText(caption string, tl image.Point, span int, c color.Color) {
	txt := il.textImage(caption, c)
	at := image.Pt(tl.X+(span-txt.Bounds().Dx())/2, tl.Y)
	draw.Draw(il.img, txt.Bounds().Add(at), txt, image.Point{}, draw.Over)
}

// verticalText turns caption clockwise and centres it along span pixels
// going down from tl.
func (il *Illustrator) verticalText(caption string, tl image.Point, span int, c color.Color) {
	txt := rotateClockwise(il.textImage(caption, c))
	at := image.Pt(tl.X, tl.Y+(span-txt.Bounds().Dy())/2)
	draw.Draw(il.img, txt.Bounds().Add(at), txt, image.Point{}, draw.Over)
}

func rotateClockwise(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}

func mmCaption(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " mm"
}

// Image returns the drawing.
func (il *Illustrator) Image() image.Image {
	return il.img
}

// WritePNG encodes the drawing as PNG.
func (il *Illustrator) WritePNG(w io.Writer) error {
	if err := png.Encode(w, il.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Illustrate draws a solution: every cutout and the leftover region.
func Illustrate(sol model.Solution, opts Options) *Illustrator {
	il := NewIllustrator(sol.Board, opts)
	for _, c := range sol.Cutouts {
		il.AddCutout(c)
	}
	for _, c := range sol.Leftover {
		il.AddLeftover(c)
	}
	return il
}

// PNG returns the encoded illustration of a solution.
func PNG(sol model.Solution, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Illustrate(sol, opts).WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
