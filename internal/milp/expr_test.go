package milp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpr_MethodsDoNotAlias(t *testing.T) {
	base := Sum(0, 1)
	scaled := base.Scale(3)
	added := base.AddTerm(2, 4).AddConst(1)

	assert.Equal(t, []Term{{0, 1}, {1, 1}}, base.Terms)
	assert.Equal(t, []Term{{0, 3}, {1, 3}}, scaled.Terms)
	assert.Len(t, added.Terms, 3)
	assert.Equal(t, 1.0, added.Constant)
	assert.Equal(t, 0.0, base.Constant)
}

func TestExpr_Eval(t *testing.T) {
	e := Const(2).AddTerm(0, 3).Sub(Var(1).Expr().Scale(2))

	assert.Equal(t, 2+3*4-2*5.0, e.Eval([]float64{4, 5}))
}

func TestExpr_Merged(t *testing.T) {
	e := Var(2).Expr().AddTerm(0, 1).AddTerm(2, -1).AddTerm(0, 2)

	assert.Equal(t, []Term{{Var: 0, Coef: 3}}, e.merged())
}

func TestModel_AddNormalisesGreaterEq(t *testing.T) {
	m := NewModel("rows")
	x := m.NewContinuous("x", 0, 10)
	y := m.NewContinuous("y", 0, 10)

	// x + 2 ≥ y + 5  →  y − x ≤ −3
	m.AddGreaterEq(x.Expr().AddConst(2), y.Expr().AddConst(5))

	assert.Equal(t, 1, m.NumConstraints())
	assert.Equal(t, []Term{{Var: x, Coef: -1}, {Var: y, Coef: 1}}, m.rows[0].terms)
	assert.Equal(t, -3.0, m.rows[0].rhs)
	assert.Equal(t, "y", m.VarName(y))
	assert.Equal(t, 2, m.NumVars())
}
