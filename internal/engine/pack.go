package engine

import (
	"context"
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/model"
)

// PackPhase places every piece and pushes the layout towards one edge: the
// top edge on a board taller than wide, the left edge otherwise. The unused
// strip beyond the furthest piece is reported as the single leftover region.
//
// seed, when it holds a placement for every piece, is handed to the solver
// as the starting layout. Under a time limit the best layout found so far is
// returned with Optimal unset.
func PackPhase(ctx context.Context, board model.Board, pieces []model.Piece, opts Options, seed []model.Cutout) (model.Solution, error) {
	solver, err := opts.solver()
	if err != nil {
		return model.Solution{}, err
	}

	s := newSession("pack", board, pieces, false)
	tall := board.Height > board.Width

	var limit milp.Var
	var totalArea float64
	for _, b := range s.bindings {
		totalArea += b.h * b.w
	}
	if tall {
		limit = s.model.NewContinuous("lower_limit", 0, float64(board.HeightTmm()))
		for _, b := range s.bindings {
			s.model.AddGreaterEq(limit.Expr(), b.y.Expr().Add(b.height()))
		}
		// The pieces occupy at least their area within the used strip.
		s.model.AddGreaterEq(limit.Expr().Scale(float64(board.WidthTmm())), milp.Const(totalArea))
	} else {
		limit = s.model.NewContinuous("rightmost_limit", 0, float64(board.WidthTmm()))
		for _, b := range s.bindings {
			s.model.AddGreaterEq(limit.Expr(), b.x.Expr().Add(b.width()))
		}
		s.model.AddGreaterEq(limit.Expr().Scale(float64(board.HeightTmm())), milp.Const(totalArea))
	}
	s.model.Minimize(limit.Expr())

	if at, ok := seedPlacements(s, seed); ok {
		s.hint(at, limit, tall)
	}
	klog.V(2).Infof("pack model: %d pieces, %d variables, %d constraints, tall=%t",
		len(pieces), s.model.NumVars(), s.model.NumConstraints(), tall)

	phaseCtx, cancel := opts.phaseContext(ctx)
	defer cancel()
	sol, err := solver.Solve(phaseCtx, s.model)
	if err != nil {
		return model.Solution{}, err
	}

	result := model.Solution{Board: board, Cutouts: []model.Cutout{}, Unfits: []model.Cutout{}}
	switch sol.Status {
	case milp.StatusOptimal:
		result.Optimal = true
	case milp.StatusFeasible:
		klog.Infof("pack phase returned an uncertified layout after %d nodes", sol.Nodes)
	case milp.StatusInfeasible:
		return model.Solution{}, ErrInfeasibleModel
	default:
		return model.Solution{}, fmt.Errorf("%s after %d nodes: %w", sol.Status, sol.Nodes, ErrNoIncumbent)
	}

	for _, b := range s.bindings {
		result.Cutouts = append(result.Cutouts, s.placement(sol, b).cutout(b.piece))
	}

	used := float64(int64(math.Round(sol.Value(limit)))) / 10
	if tall {
		result.Leftover = []model.Cutout{{
			Position:   model.Point{X: 0, Y: used},
			Dimensions: model.Dimensions{Height: board.Height - used, Width: board.Width},
		}}
	} else {
		result.Leftover = []model.Cutout{{
			Position:   model.Point{X: used, Y: 0},
			Dimensions: model.Dimensions{Height: board.Height, Width: board.Width - used},
		}}
	}
	return result, nil
}

// seedPlacements matches seed cutouts to the session's pieces by ID. It
// reports false unless every piece has a seed.
func seedPlacements(s *session, seed []model.Cutout) ([]placement, bool) {
	if len(seed) == 0 {
		return nil, false
	}
	byID := make(map[string]model.Cutout, len(seed))
	for _, c := range seed {
		byID[c.PieceID] = c
	}
	at := make([]placement, len(s.bindings))
	for i, b := range s.bindings {
		c, ok := byID[b.piece.ID]
		if !ok || (c.Rotated && !b.canRotate) {
			return nil, false
		}
		at[i] = placement{
			x:       int64(math.Round(c.Position.X * 10)),
			y:       int64(math.Round(c.Position.Y * 10)),
			h:       b.piece.HeightTmm(),
			w:       b.piece.WidthTmm(),
			rotated: c.Rotated,
		}
		if c.Rotated {
			at[i].h, at[i].w = at[i].w, at[i].h
		}
	}
	return at, true
}

// hint hands a complete layout to the solver as its starting point.
func (s *session) hint(at []placement, limit milp.Var, tall bool) {
	var extent int64
	for i, b := range s.bindings {
		p := at[i]
		s.model.SetHint(b.x, float64(p.x))
		s.model.SetHint(b.y, float64(p.y))
		if b.canRotate {
			s.model.SetHint(b.rotated, boolValue(p.rotated))
		}
		if tall {
			extent = max(extent, p.y+p.h)
		} else {
			extent = max(extent, p.x+p.w)
		}
	}
	s.model.SetHint(limit, float64(extent))
	s.hintSeparation(at)
}
