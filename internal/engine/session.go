package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/model"
)

// binding holds the decision variables of one piece inside one session.
// Dimensions are in tenths of a millimetre.
type binding struct {
	piece     model.Piece
	h, w      float64
	x, y      milp.Var
	rotated   milp.Var
	canRotate bool
	picked    milp.Var
	hasPicked bool
}

// height returns h_eff = h + (w − h)·rotated.
func (b *binding) height() milp.Expr {
	e := milp.Const(b.h)
	if b.canRotate {
		e = e.AddTerm(b.rotated, b.w-b.h)
	}
	return e
}

// width returns w_eff = w + (h − w)·rotated.
func (b *binding) width() milp.Expr {
	e := milp.Const(b.w)
	if b.canRotate {
		e = e.AddTerm(b.rotated, b.h-b.w)
	}
	return e
}

// activators returns the picked variable when the binding has one.
func (b *binding) activators() []milp.Var {
	if b.hasPicked {
		return []milp.Var{b.picked}
	}
	return nil
}

// separation is the four-way disjunction keeping one pair of pieces apart.
// The indicators read "a is above / left of / below / right of b".
type separation struct {
	a, b       int
	indicators [4]milp.Var
}

const (
	above = iota
	leftOf
	below
	rightOf
)

// session owns one MILP instance and the variables of every piece bound to
// it. A session is used for exactly one solve and never shared.
type session struct {
	model    *milp.Model
	board    model.Board
	bigM     float64
	kerf     float64
	bindings []*binding
	pairs    []separation
}

// newSession binds pieces to a fresh model and emits containment and
// non-overlap constraints. With selectable set every piece gets a picked
// variable and all of its constraints are relaxed when it is not picked.
func newSession(name string, board model.Board, pieces []model.Piece, selectable bool) *session {
	s := &session{
		model: milp.NewModel(name),
		board: board,
		bigM:  multiplier(board, pieces),
		kerf:  float64(board.SawWidthTmm()),
	}
	width, height := float64(board.WidthTmm()), float64(board.HeightTmm())

	for i, p := range pieces {
		b := &binding{
			piece:     p,
			h:         float64(p.HeightTmm()),
			w:         float64(p.WidthTmm()),
			x:         s.model.NewContinuous(fmt.Sprintf("x[%d]", i), 0, width),
			y:         s.model.NewContinuous(fmt.Sprintf("y[%d]", i), 0, height),
			canRotate: p.CanRotate,
		}
		if p.CanRotate {
			b.rotated = s.model.NewBinary(fmt.Sprintf("rotated[%d]", i))
		}
		if selectable {
			ub := 1.0
			if !p.FitsOn(board) {
				ub = 0
			}
			b.picked = s.model.NewInteger(fmt.Sprintf("picked[%d]", i), 0, ub)
			b.hasPicked = true
		}
		s.bindings = append(s.bindings, b)

		s.relaxable(b.x.Expr().Add(b.width()), milp.LessEq, milp.Const(width), 0, b.activators()...)
		s.relaxable(b.y.Expr().Add(b.height()), milp.LessEq, milp.Const(height), 0, b.activators()...)
	}

	for i := range s.bindings {
		for j := i + 1; j < len(s.bindings); j++ {
			s.separate(i, j)
		}
	}
	return s
}

// multiplier returns the big-M used for every relaxation term. Coordinates
// stay inside [0, WidthTmm] × [0, HeightTmm] even for unpicked pieces, so no
// inequality can be violated by more than the larger board side plus the
// largest piece side plus the kerf. One term of that size neutralises an
// inequality on its own.
func multiplier(board model.Board, pieces []model.Piece) float64 {
	var longest int64
	for _, p := range pieces {
		longest = max(longest, p.HeightTmm(), p.WidthTmm())
	}
	bound := max(board.HeightTmm(), board.WidthTmm()) + longest + board.SawWidthTmm()
	return float64(max(board.BigM(), bound))
}

// relaxable emits lhs + gap ≤ rhs (LessEq) or lhs ≥ rhs + gap (GreaterEq),
// with an M·(1 − a) slack for every activator a. The inequality holds when
// every activator is 1 and is vacuous as soon as one of them is 0.
func (s *session) relaxable(lhs milp.Expr, sense milp.Sense, rhs milp.Expr, gap float64, activators ...milp.Var) {
	var slack milp.Expr
	for _, a := range activators {
		slack = slack.AddConst(s.bigM).AddTerm(a, -s.bigM)
	}
	if sense == milp.LessEq {
		s.model.AddLessEq(lhs.AddConst(gap), rhs.Add(slack))
		return
	}
	s.model.AddGreaterEq(lhs, rhs.AddConst(gap).Sub(slack))
}

func (s *session) separate(i, j int) {
	a, b := s.bindings[i], s.bindings[j]
	sep := separation{a: i, b: j}
	for k, name := range []string{"above", "left", "below", "right"} {
		sep.indicators[k] = s.model.NewBinary(fmt.Sprintf("%s[%d,%d]", name, i, j))
	}
	on := func(k int) []milp.Var {
		return append(append([]milp.Var{sep.indicators[k]}, a.activators()...), b.activators()...)
	}

	s.relaxable(a.y.Expr().Add(a.height()), milp.LessEq, b.y.Expr(), s.kerf, on(above)...)
	s.relaxable(a.x.Expr().Add(a.width()), milp.LessEq, b.x.Expr(), s.kerf, on(leftOf)...)
	s.relaxable(a.y.Expr(), milp.GreaterEq, b.y.Expr().Add(b.height()), s.kerf, on(below)...)
	s.relaxable(a.x.Expr(), milp.GreaterEq, b.x.Expr().Add(b.width()), s.kerf, on(rightOf)...)
	s.model.AddGreaterEq(milp.Sum(sep.indicators[:]...), milp.Const(1))

	s.pairs = append(s.pairs, sep)
}

// placement is a piece position read back from the model, in tenths of a millimetre.
type placement struct {
	x, y    int64
	h, w    int64
	rotated bool
}

func (s *session) placement(sol *milp.Solution, b *binding) placement {
	p := placement{
		x: int64(math.Round(sol.Value(b.x))),
		y: int64(math.Round(sol.Value(b.y))),
		h: b.piece.HeightTmm(),
		w: b.piece.WidthTmm(),
	}
	if b.canRotate && sol.Value(b.rotated) >= 0.5 {
		p.rotated = true
		p.h, p.w = p.w, p.h
	}
	return p
}

// cutout converts a placement back to millimetres. A piece that was not
// rotated keeps its input dimensions exactly.
func (p placement) cutout(piece model.Piece) model.Cutout {
	dims := piece.Dimensions()
	if p.rotated {
		dims = model.Dimensions{Height: piece.Width, Width: piece.Height}
	}
	return model.Cutout{
		PieceID:    piece.ID,
		Label:      piece.Label,
		Position:   model.Point{X: float64(p.x) / 10, Y: float64(p.y) / 10},
		Dimensions: dims,
		Rotated:    p.rotated,
	}
}

// unfit reports a piece that was not placed, at the origin and unrotated.
func unfit(piece model.Piece) model.Cutout {
	return model.Cutout{PieceID: piece.ID, Label: piece.Label, Dimensions: piece.Dimensions()}
}

// hintSeparation sets the separation indicators of every pair from concrete
// positions, so a known layout can be handed to the solver as a start point.
func (s *session) hintSeparation(at []placement) {
	k := int64(s.kerf)
	for _, sep := range s.pairs {
		a, b := at[sep.a], at[sep.b]
		holds := [4]bool{
			above:   a.y+a.h+k <= b.y,
			leftOf:  a.x+a.w+k <= b.x,
			below:   a.y >= b.y+b.h+k,
			rightOf: a.x >= b.x+b.w+k,
		}
		if holds == [4]bool{} {
			// Only happens when one of the pair is not picked, so any
			// indicator does.
			holds[above] = true
		}
		for i, v := range sep.indicators {
			s.model.SetHint(v, boolValue(holds[i]))
		}
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
