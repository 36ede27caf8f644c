// Package milp describes mixed-integer linear programs and solves them
// behind a small Solver interface.
package milp

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidModel = errors.New("invalid model")

// VarKind distinguishes continuous from integer variables.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
)

// Sense is the direction of a linear inequality.
type Sense int

const (
	LessEq    Sense = iota // lhs ≤ rhs
	GreaterEq              // lhs ≥ rhs
)

type variable struct {
	name string
	kind VarKind
	lb   float64
	ub   float64
}

// row is a normalised constraint Σ terms ≤ rhs.
type row struct {
	terms []Term
	rhs   float64
}

// Model is one MILP instance: bounded variables, linear inequalities and a
// linear objective. Variables created by a Model must only be used with it.
type Model struct {
	name      string
	vars      []variable
	rows      []row
	objective Expr
	maximize  bool
	hint      map[Var]float64
}

func NewModel(name string) *Model {
	return &Model{name: name, hint: make(map[Var]float64)}
}

func (m *Model) Name() string {
	return m.name
}

// NewContinuous adds a continuous variable with finite bounds [lb, ub].
func (m *Model) NewContinuous(name string, lb, ub float64) Var {
	return m.newVar(name, Continuous, lb, ub)
}

// NewInteger adds an integer variable with finite bounds [lb, ub].
func (m *Model) NewInteger(name string, lb, ub float64) Var {
	return m.newVar(name, Integer, lb, ub)
}

// NewBinary adds a 0/1 variable.
func (m *Model) NewBinary(name string) Var {
	return m.newVar(name, Integer, 0, 1)
}

func (m *Model) newVar(name string, kind VarKind, lb, ub float64) Var {
	m.vars = append(m.vars, variable{name: name, kind: kind, lb: lb, ub: ub})
	return Var(len(m.vars) - 1)
}

// Add adds the constraint lhs (sense) rhs.
func (m *Model) Add(lhs Expr, sense Sense, rhs Expr) {
	diff := lhs.Sub(rhs)
	if sense == GreaterEq {
		diff = diff.Scale(-1)
	}
	m.rows = append(m.rows, row{terms: diff.merged(), rhs: -diff.Constant})
}

func (m *Model) AddLessEq(lhs, rhs Expr) {
	m.Add(lhs, LessEq, rhs)
}

func (m *Model) AddGreaterEq(lhs, rhs Expr) {
	m.Add(lhs, GreaterEq, rhs)
}

func (m *Model) Maximize(e Expr) {
	m.objective = e
	m.maximize = true
}

func (m *Model) Minimize(e Expr) {
	m.objective = e
	m.maximize = false
}

// SetHint records a starting value for v. When every integer variable has a
// hint and the hinted point is feasible, solvers use it as the first incumbent.
// Variables without a hint take their lower bound.
func (m *Model) SetHint(v Var, value float64) {
	m.hint[v] = value
}

// Hint returns the start value set for v, if any.
func (m *Model) Hint(v Var) (float64, bool) {
	val, ok := m.hint[v]
	return val, ok
}

func (m *Model) NumVars() int {
	return len(m.vars)
}

func (m *Model) NumConstraints() int {
	return len(m.rows)
}

// VarName returns the name given to v.
func (m *Model) VarName(v Var) string {
	return m.vars[v].name
}

// Validate checks variable bounds and that expressions only reference this model's variables.
func (m *Model) Validate() error {
	for i, v := range m.vars {
		if math.IsInf(v.lb, 0) || math.IsInf(v.ub, 0) || math.IsNaN(v.lb) || math.IsNaN(v.ub) {
			return fmt.Errorf("variable %q needs finite bounds: %w", v.name, ErrInvalidModel)
		}
		if v.lb > v.ub {
			return fmt.Errorf("variable %d (%q) has lb %g > ub %g: %w", i, v.name, v.lb, v.ub, ErrInvalidModel)
		}
	}
	n := Var(len(m.vars))
	for i, r := range m.rows {
		for _, t := range r.terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("constraint %d references unknown variable %d: %w", i, t.Var, ErrInvalidModel)
			}
		}
	}
	for _, t := range m.objective.Terms {
		if t.Var < 0 || t.Var >= n {
			return fmt.Errorf("objective references unknown variable %d: %w", t.Var, ErrInvalidModel)
		}
	}
	return nil
}
