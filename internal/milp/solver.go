package milp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrUnavailable = errors.New("solver backend unavailable")

// Status reports how far a solve got.
type Status int

const (
	// StatusUnknown means the search stopped before any feasible point was found.
	StatusUnknown Status = iota
	// StatusOptimal means the search finished and the values are optimal.
	StatusOptimal
	// StatusFeasible means the search stopped early with a feasible incumbent.
	StatusFeasible
	// StatusInfeasible means the search finished without any feasible point.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Solution holds the outcome of a solve. Values are only present for
// StatusOptimal and StatusFeasible.
type Solution struct {
	Status    Status
	Objective float64
	Nodes     int
	Elapsed   time.Duration
	values    []float64
}

// HasValues reports whether the solution carries variable values.
func (s *Solution) HasValues() bool {
	return s != nil && s.values != nil
}

// Value returns the value of v, or 0 when the solution has no values.
func (s *Solution) Value(v Var) float64 {
	if !s.HasValues() || int(v) >= len(s.values) {
		return 0
	}
	return s.values[v]
}

// Eval evaluates e at the solution.
func (s *Solution) Eval(e Expr) float64 {
	if !s.HasValues() {
		return e.Constant
	}
	return e.Eval(s.values)
}

// Solver solves a Model. Implementations stop when ctx is done and report the
// best point found so far.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

var backends = map[string]func() Solver{
	"bnb": func() Solver { return NewBranchAndBound(DefaultOptions()) },
}

// Backends lists the names accepted by Open.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the named backend. An empty name selects "bnb".
func Open(name string) (Solver, error) {
	if name == "" {
		name = "bnb"
	}
	newSolver, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", name, ErrUnavailable)
	}
	return newSolver(), nil
}
