package milp

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func solve(t *testing.T, m *Model) *Solution {
	t.Helper()
	sol, err := NewBranchAndBound(DefaultOptions()).Solve(context.Background(), m)
	require.NoError(t, err)
	return sol
}

func TestSolve_Knapsack(t *testing.T) {
	values := []float64{10, 13, 7, 8}
	weights := []float64{5, 6, 3, 4}

	m := NewModel("knapsack")
	var items []Var
	var value, weight Expr
	for i := range values {
		v := m.NewBinary("take")
		items = append(items, v)
		value = value.AddTerm(v, values[i])
		weight = weight.AddTerm(v, weights[i])
	}
	m.AddLessEq(weight, Const(10))
	m.Maximize(value)

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 21, sol.Objective, 1e-6)
	assert.InDelta(t, 0, sol.Value(items[0]), 1e-9)
	assert.InDelta(t, 1, sol.Value(items[1]), 1e-9)
	assert.InDelta(t, 0, sol.Value(items[2]), 1e-9)
	assert.InDelta(t, 1, sol.Value(items[3]), 1e-9)
}

func TestSolve_IntegerRoundsUpFromRelaxation(t *testing.T) {
	// The LP optimum is 1.5; the best integer point is 2.
	m := NewModel("cover")
	x := m.NewInteger("x", 0, 5)
	y := m.NewInteger("y", 0, 5)
	m.AddGreaterEq(Sum(x, y).Scale(2), Const(3))
	m.Minimize(Sum(x, y))

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2, sol.Objective, 1e-6)
	assert.Equal(t, 2.0, sol.Value(x)+sol.Value(y))
}

func TestSolve_ContinuousOnly(t *testing.T) {
	m := NewModel("lp")
	x := m.NewContinuous("x", 0, 10)
	m.AddLessEq(x.Expr(), Const(3.5))
	m.Maximize(x.Expr())

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 3.5, sol.Value(x), 1e-6)
}

func TestSolve_MixedWithNegativeRHS(t *testing.T) {
	// Big-M style disjunction: x must sit left of 2 or right of 8.
	m := NewModel("disjunction")
	x := m.NewContinuous("x", 0, 10)
	left := m.NewBinary("left")
	right := m.NewBinary("right")
	m.AddLessEq(x.Expr(), Const(2).AddTerm(left, -100).AddConst(100))
	m.AddGreaterEq(x.Expr(), Const(8).AddTerm(right, 100).AddConst(-100))
	m.AddGreaterEq(Sum(left, right), Const(1))
	m.AddGreaterEq(x.Expr(), Const(3))
	m.Minimize(x.Expr())

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 8, sol.Value(x), 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel("infeasible")
	x := m.NewBinary("x")
	m.AddGreaterEq(x.Expr(), Const(2))
	m.Maximize(x.Expr())

	sol := solve(t, m)

	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.False(t, sol.HasValues())
}

func TestSolve_InfeasibleAfterBranching(t *testing.T) {
	// 2x = 1 has an LP solution but no integer one.
	m := NewModel("parity")
	x := m.NewInteger("x", 0, 3)
	m.AddLessEq(x.Expr().Scale(2), Const(1))
	m.AddGreaterEq(x.Expr().Scale(2), Const(1))
	m.Minimize(x.Expr())

	sol := solve(t, m)

	assert.Equal(t, StatusInfeasible, sol.Status)
}

func TestSolve_CancelledContextKeepsHint(t *testing.T) {
	m := NewModel("hinted")
	a := m.NewBinary("a")
	b := m.NewBinary("b")
	m.AddLessEq(Sum(a, b), Const(1))
	m.Maximize(Sum(a, b))
	m.SetHint(a, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol, err := NewBranchAndBound(DefaultOptions()).Solve(ctx, m)

	require.NoError(t, err)
	assert.Equal(t, StatusFeasible, sol.Status)
	assert.Equal(t, 1.0, sol.Value(a))
	assert.Equal(t, 0.0, sol.Value(b))
	assert.Equal(t, 0, sol.Nodes)
}

func TestSolve_CancelledContextWithoutHint(t *testing.T) {
	m := NewModel("blind")
	a := m.NewBinary("a")
	m.Maximize(a.Expr())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol, err := NewBranchAndBound(DefaultOptions()).Solve(ctx, m)

	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, sol.Status)
	assert.False(t, sol.HasValues())
	assert.Equal(t, 0.0, sol.Value(a))
}

func TestSolve_InfeasibleHintIgnored(t *testing.T) {
	m := NewModel("bad-hint")
	a := m.NewBinary("a")
	b := m.NewBinary("b")
	m.AddLessEq(Sum(a, b), Const(1))
	m.Maximize(a.Expr().AddTerm(b, 2))
	m.SetHint(a, 1)
	m.SetHint(b, 1)

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 0.0, sol.Value(a))
	assert.Equal(t, 1.0, sol.Value(b))
}

func TestSolve_NodeLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.NodeLimit = 1

	m := NewModel("limited")
	x := m.NewInteger("x", 0, 5)
	y := m.NewInteger("y", 0, 5)
	m.AddGreaterEq(Sum(x, y).Scale(2), Const(3))
	m.Minimize(Sum(x, y))

	sol, err := NewBranchAndBound(opts).Solve(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, 1, sol.Nodes)
	assert.NotEqual(t, StatusOptimal, sol.Status)
}

func TestSolve_InvalidModel(t *testing.T) {
	m := NewModel("unbounded")
	m.NewContinuous("x", 0, math.Inf(1))

	_, err := NewBranchAndBound(DefaultOptions()).Solve(context.Background(), m)

	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestSolve_InvertedBounds(t *testing.T) {
	m := NewModel("inverted")
	m.NewContinuous("x", 3, 1)

	_, err := NewBranchAndBound(DefaultOptions()).Solve(context.Background(), m)

	assert.ErrorIs(t, err, ErrInvalidModel)
}

// ─── Backends ──────────────────────────────────────────────

func TestOpen(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	assert.IsType(t, &BranchAndBound{}, s)

	s, err = Open("bnb")
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = Open("cp-sat")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []string{"bnb"}, Backends())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "feasible", StatusFeasible.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestSolve_EmptyModel(t *testing.T) {
	sol := solve(t, NewModel("empty"))

	assert.Equal(t, StatusOptimal, sol.Status)
	assert.True(t, sol.HasValues())
	assert.Equal(t, 0.0, sol.Objective)
}

func TestSolve_RowSlackUnderFixedVariable(t *testing.T) {
	m := NewModel("slack")
	x := m.NewContinuous("x", 0, 10)
	y := m.NewInteger("y", 0, 0)
	m.AddLessEq(x.Expr().AddTerm(y, 100), Const(100))
	m.AddLessEq(x.Expr(), Const(7))
	m.Maximize(x.Expr())

	sol := solve(t, m)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 7, sol.Value(x), 1e-6)
}

func TestSimplex_DoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	A := mat.NewDense(1, 2, []float64{1, 1})
	_, err := simplex(ctx, []float64{-1, 0}, A, []float64{1}, 1e-9)

	assert.ErrorIs(t, err, context.Canceled)
}

// denseKnapsack has enough rows and columns that a single relaxation is
// not instant.
func denseKnapsack(n, rows int) *Model {
	m := NewModel("dense")
	items := make([]Var, n)
	for i := range items {
		items[i] = m.NewBinary("take")
	}
	for r := 0; r < rows; r++ {
		var weight Expr
		for i, v := range items {
			weight = weight.AddTerm(v, float64(1+(i*7+r*13)%29))
		}
		m.AddLessEq(weight, Const(float64(5*n)))
	}
	var value Expr
	for i, v := range items {
		value = value.AddTerm(v, float64(1+(i*11)%31))
	}
	m.Maximize(value)
	m.SetHint(items[0], 1)
	return m
}

func TestSolve_DeadlineIsWallClock(t *testing.T) {
	const limit = 200 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	start := time.Now()
	sol, err := NewBranchAndBound(DefaultOptions()).Solve(ctx, denseKnapsack(150, 150))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, limit+time.Second)
	require.True(t, sol.HasValues())
	assert.GreaterOrEqual(t, sol.Objective, 1.0)
}
