package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var (
	ErrInvalidDimension = errors.New("dimension must be positive")
	ErrNotTenths        = errors.New("dimension is not a multiple of 0.1 mm")
	ErrTooManyPieces    = errors.New("too many pieces")
)

// MaxPieces caps how many individual pieces one problem may hold once copies
// are expanded. The model carries one four-way disjunction per pair, and every
// relaxation is a dense LP over all of them.
const MaxPieces = 24

// tenthsTolerance absorbs float noise from decimal inputs such as 23.5 or 2.5.
const tenthsTolerance = 1e-6

// toTenths converts millimetres to integer tenths of a millimetre.
// The boolean is false when mm does not land on a whole tenth.
func toTenths(mm float64) (int64, bool) {
	t := math.Round(mm * 10)
	return int64(t), math.Abs(mm*10-t) < tenthsTolerance
}

// Point represents a 2D coordinate in mm, origin at the board's top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is a height/width pair in mm.
type Dimensions struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Area returns height times width.
func (d Dimensions) Area() float64 {
	return d.Height * d.Width
}

// Straightened returns the dimensions with the longer side as height, so two
// rectangles can be compared regardless of orientation.
func (d Dimensions) Straightened() Dimensions {
	if d.Height >= d.Width {
		return d
	}
	return Dimensions{Height: d.Width, Width: d.Height}
}

// Board is the rectangular sheet pieces are cut from.
type Board struct {
	Height   float64 `json:"height"`    // mm
	Width    float64 `json:"width"`     // mm
	SawWidth float64 `json:"saw_width"` // kerf in mm
}

// NewBoard validates and returns a board. Height and width must be positive,
// the saw width non-negative, and all three whole tenths of a millimetre.
func NewBoard(height, width, sawWidth float64) (Board, error) {
	b := Board{Height: height, Width: width, SawWidth: sawWidth}
	return b, b.Validate()
}

// Validate checks the board invariants.
func (b Board) Validate() error {
	if b.Height <= 0 || b.Width <= 0 {
		return fmt.Errorf("board %.1fx%.1f: %w", b.Height, b.Width, ErrInvalidDimension)
	}
	if b.SawWidth < 0 {
		return fmt.Errorf("saw width %.1f: must not be negative", b.SawWidth)
	}
	for _, v := range []float64{b.Height, b.Width, b.SawWidth} {
		if _, ok := toTenths(v); !ok {
			return fmt.Errorf("board value %g: %w", v, ErrNotTenths)
		}
	}
	return nil
}

func (b Board) HeightTmm() int64 {
	t, _ := toTenths(b.Height)
	return t
}

func (b Board) WidthTmm() int64 {
	t, _ := toTenths(b.Width)
	return t
}

func (b Board) SawWidthTmm() int64 {
	t, _ := toTenths(b.SawWidth)
	return t
}

// BigM is ten times the larger board dimension in tenths of a millimetre. It
// exceeds every coordinate a placed piece can take and is used to switch off
// inactive disjunctive constraints.
func (b Board) BigM() int64 {
	return max(b.HeightTmm(), b.WidthTmm()) * 10
}

// Area returns the board area in mm².
func (b Board) Area() float64 {
	return b.Height * b.Width
}

// Dimensions returns the board's height and width.
func (b Board) Dimensions() Dimensions {
	return Dimensions{Height: b.Height, Width: b.Width}
}

// Piece is a rectangle requested from the board.
type Piece struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	Height    float64 `json:"height"` // mm
	Width     float64 `json:"width"`  // mm
	CanRotate bool    `json:"can_rotate"`
	Quantity  int     `json:"quantity,omitempty"` // copies, 0 means 1
}

func NewPiece(height, width float64, canRotate bool) Piece {
	return Piece{
		ID:        newID(),
		Height:    height,
		Width:     width,
		CanRotate: canRotate,
		Quantity:  1,
	}
}

func newID() string {
	return uuid.New().String()[:8]
}

func (p Piece) String() string {
	return fmt.Sprintf("Piece(%.1fmm x %.1fmm, can rotate: %t)", p.Height, p.Width, p.CanRotate)
}

// Validate checks that the piece has positive dimensions in whole tenths of a millimetre.
func (p Piece) Validate() error {
	if p.Height <= 0 || p.Width <= 0 {
		return fmt.Errorf("piece %.1fx%.1f: %w", p.Height, p.Width, ErrInvalidDimension)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("piece %s: quantity %d must not be negative", p.ID, p.Quantity)
	}
	if p.Quantity > MaxPieces {
		return fmt.Errorf("piece %s: %d copies, at most %d: %w", p.ID, p.Quantity, MaxPieces, ErrTooManyPieces)
	}
	for _, v := range []float64{p.Height, p.Width} {
		if _, ok := toTenths(v); !ok {
			return fmt.Errorf("piece value %g: %w", v, ErrNotTenths)
		}
	}
	return nil
}

func (p Piece) HeightTmm() int64 {
	t, _ := toTenths(p.Height)
	return t
}

func (p Piece) WidthTmm() int64 {
	t, _ := toTenths(p.Width)
	return t
}

// Area returns the piece area in mm².
func (p Piece) Area() float64 {
	return p.Height * p.Width
}

// Dimensions returns the unrotated dimensions.
func (p Piece) Dimensions() Dimensions {
	return Dimensions{Height: p.Height, Width: p.Width}
}

// FitsOn reports whether the piece fits on the board in at least one allowed orientation.
func (p Piece) FitsOn(b Board) bool {
	h, w := p.HeightTmm(), p.WidthTmm()
	bh, bw := b.HeightTmm(), b.WidthTmm()
	if h <= bh && w <= bw {
		return true
	}
	return p.CanRotate && w <= bh && h <= bw
}

// CountPieces returns how many individual pieces the list expands to.
func CountPieces(pieces []Piece) int {
	n := 0
	for _, p := range pieces {
		n += min(max(p.Quantity, 1), MaxPieces+1)
	}
	return n
}

// ExpandPieces turns every piece with Quantity > 1 into that many single
// pieces. Copies get the original ID suffixed with their index; pieces
// without an ID get a fresh one.
func ExpandPieces(pieces []Piece) []Piece {
	var expanded []Piece
	for _, p := range pieces {
		if p.ID == "" {
			p.ID = newID()
		}
		n := max(p.Quantity, 1)
		for i := 0; i < n; i++ {
			cp := p
			cp.Quantity = 1
			if n > 1 {
				cp.ID = fmt.Sprintf("%s-%d", p.ID, i+1)
			}
			expanded = append(expanded, cp)
		}
	}
	return expanded
}
