// Package engine places rectangular pieces on a board in two MILP phases:
// a fit phase selecting the largest placeable area, then a pack phase that
// squeezes a complete layout towards one edge of the board.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/milp"
	"github.com/piwi3910/sawfit/internal/model"
)

var (
	ErrSolverUnavailable = errors.New("solver unavailable")
	ErrInfeasibleModel   = errors.New("placement model is infeasible")
	ErrNotOptimal        = errors.New("search ended without proving optimality")
	ErrNoIncumbent       = errors.New("search stopped before finding any layout")
	ErrDuplicatePiece    = errors.New("duplicate piece id")
)

// Options controls one solve.
type Options struct {
	// Timeout bounds each phase separately. 0 disables the time limit.
	Timeout time.Duration
	// Backend names the MILP backend, see milp.Open.
	Backend string
	// Solver overrides Backend when set.
	Solver milp.Solver
}

func DefaultOptions() Options {
	return Options{Timeout: 10 * time.Second, Backend: "bnb"}
}

// OptionsFromSettings takes the solver part of a problem's settings.
func OptionsFromSettings(s model.CutSettings) Options {
	opts := DefaultOptions()
	opts.Timeout = s.Timeout
	if s.Backend != "" {
		opts.Backend = s.Backend
	}
	return opts
}

func (o Options) solver() (milp.Solver, error) {
	if o.Solver != nil {
		return o.Solver, nil
	}
	s, err := milp.Open(o.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSolverUnavailable, err)
	}
	return s, nil
}

// phaseContext bounds one phase by the configured timeout.
func (o Options) phaseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(ctx, o.Timeout)
	}
	return context.WithCancel(ctx)
}

// Solver runs both phases for one board and its pieces.
type Solver struct {
	board  model.Board
	pieces []model.Piece
	opts   Options
}

// New validates the board and pieces and expands piece quantities into
// individual pieces.
func New(board model.Board, pieces []model.Piece, opts Options) (*Solver, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}
	for _, p := range pieces {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if n := model.CountPieces(pieces); n > model.MaxPieces {
		return nil, fmt.Errorf("%d pieces, at most %d: %w", n, model.MaxPieces, model.ErrTooManyPieces)
	}
	expanded := model.ExpandPieces(pieces)
	seen := make(map[string]bool, len(expanded))
	for _, p := range expanded {
		if seen[p.ID] {
			return nil, fmt.Errorf("piece %s: %w", p.ID, ErrDuplicatePiece)
		}
		seen[p.ID] = true
	}
	return &Solver{board: board, pieces: expanded, opts: opts}, nil
}

// Pieces returns the expanded pieces the solver works on.
func (s *Solver) Pieces() []model.Piece {
	return s.pieces
}

func (s *Solver) Board() model.Board {
	return s.board
}

// Solve runs the fit phase and, when every piece was placed, the pack phase
// seeded with the fit layout. When some pieces do not fit the fit result is
// final and carries them in Unfits.
func (s *Solver) Solve(ctx context.Context) (model.Solution, error) {
	start := time.Now()
	fit, err := FitPhase(ctx, s.board, s.pieces, s.opts)
	if err != nil {
		return model.Solution{}, fmt.Errorf("fit phase: %w", err)
	}
	klog.V(1).Infof("fit phase: %d placed, %d unfit in %s", len(fit.Cutouts), len(fit.Unfits), time.Since(start).Round(time.Millisecond))
	if !fit.AllPlaced() {
		return fit, nil
	}

	start = time.Now()
	packed, err := PackPhase(ctx, s.board, s.pieces, s.opts, fit.Cutouts)
	if err != nil {
		return model.Solution{}, fmt.Errorf("pack phase: %w", err)
	}
	klog.V(1).Infof("pack phase: leftover %.1f mm² in %s", packed.LeftoverArea(), time.Since(start).Round(time.Millisecond))
	return packed, nil
}

// Solve is a shortcut for New followed by Solve.
func Solve(ctx context.Context, board model.Board, pieces []model.Piece, opts Options) (model.Solution, error) {
	s, err := New(board, pieces, opts)
	if err != nil {
		return model.Solution{}, err
	}
	return s.Solve(ctx)
}
