package engine

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/model"
)

// FitPhase selects the subset of pieces with the largest total area that can
// be placed on the board without overlap. Pieces left out are returned as
// Unfits; the solution never carries a leftover region.
func FitPhase(ctx context.Context, board model.Board, pieces []model.Piece, opts Options) (model.Solution, error) {
	solver, err := opts.solver()
	if err != nil {
		return model.Solution{}, err
	}

	at, placed := greedyLayout(board, pieces)
	if provenByGreedy(board, pieces, placed) {
		klog.V(2).Infof("fit phase: greedy layout places every piece that fits on its own")
		return greedySolution(board, pieces, at, placed), nil
	}

	s := newSession("fit", board, pieces, true)
	var objective milp.Expr
	for _, b := range s.bindings {
		objective = objective.AddTerm(b.picked, b.piece.Area())
	}
	s.model.Maximize(objective)

	// The greedy layout is the first incumbent. Pieces it left out sit at
	// the origin unpicked, which relaxes all of their constraints.
	for i, b := range s.bindings {
		s.model.SetHint(b.picked, boolValue(placed[i]))
		s.model.SetHint(b.x, float64(at[i].x))
		s.model.SetHint(b.y, float64(at[i].y))
		if b.canRotate {
			s.model.SetHint(b.rotated, boolValue(at[i].rotated))
		}
	}
	s.hintSeparation(at)
	klog.V(2).Infof("fit model: %d pieces, %d variables, %d constraints, M=%g",
		len(pieces), s.model.NumVars(), s.model.NumConstraints(), s.bigM)

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
		if opts.Timeout == 0 {
			return model.Solution{}, fmt.Errorf("%s after %d nodes: %w", sol.Status, sol.Nodes, ErrNotOptimal)
		}
		klog.Infof("fit phase stopped after %s with an uncertified layout (%d nodes)", opts.Timeout, sol.Nodes)
	case milp.StatusInfeasible:
		return model.Solution{}, ErrInfeasibleModel
	default:
		return model.Solution{}, fmt.Errorf("%s after %d nodes: %w", sol.Status, sol.Nodes, ErrNoIncumbent)
	}

	for _, b := range s.bindings {
		if sol.Value(b.picked) >= 0.5 {
			result.Cutouts = append(result.Cutouts, s.placement(sol, b).cutout(b.piece))
		} else {
			result.Unfits = append(result.Unfits, unfit(b.piece))
		}
	}
	return result, nil
}

// provenByGreedy reports whether the greedy layout placed every piece that
// fits the board on its own. No selection can place more area than that.
func provenByGreedy(board model.Board, pieces []model.Piece, placed []bool) bool {
	for i, p := range pieces {
		if !placed[i] && p.FitsOn(board) {
			return false
		}
	}
	return true
}

func greedySolution(board model.Board, pieces []model.Piece, at []placement, placed []bool) model.Solution {
	result := model.Solution{Board: board, Cutouts: []model.Cutout{}, Unfits: []model.Cutout{}, Optimal: true}
	for i, p := range pieces {
		if placed[i] {
			result.Cutouts = append(result.Cutouts, at[i].cutout(p))
		} else {
			result.Unfits = append(result.Unfits, unfit(p))
		}
	}
	return result
}
