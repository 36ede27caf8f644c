package milp

import "sort"

// Var identifies a decision variable inside one Model. A Var is meaningless
// in any other model.
type Var int

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression Σ coef·var + constant. Expressions are values:
// every method returns a new Expr and leaves the receiver untouched.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Const returns the constant expression c.
func Const(c float64) Expr {
	return Expr{Constant: c}
}

// Expr returns the expression 1·v.
func (v Var) Expr() Expr {
	return Expr{Terms: []Term{{Var: v, Coef: 1}}}
}

// Sum returns Σ vars.
func Sum(vars ...Var) Expr {
	e := Expr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v, Coef: 1})
	}
	return e
}

func (e Expr) clone(extra int) Expr {
	terms := make([]Term, len(e.Terms), len(e.Terms)+extra)
	copy(terms, e.Terms)
	return Expr{Terms: terms, Constant: e.Constant}
}

// Add returns e + o.
func (e Expr) Add(o Expr) Expr {
	r := e.clone(len(o.Terms))
	r.Terms = append(r.Terms, o.Terms...)
	r.Constant += o.Constant
	return r
}

// Sub returns e − o.
func (e Expr) Sub(o Expr) Expr {
	return e.Add(o.Scale(-1))
}

// Scale returns k·e.
func (e Expr) Scale(k float64) Expr {
	r := e.clone(0)
	for i := range r.Terms {
		r.Terms[i].Coef *= k
	}
	r.Constant *= k
	return r
}

// AddTerm returns e + coef·v.
func (e Expr) AddTerm(v Var, coef float64) Expr {
	r := e.clone(1)
	r.Terms = append(r.Terms, Term{Var: v, Coef: coef})
	return r
}

// AddConst returns e + c.
func (e Expr) AddConst(c float64) Expr {
	r := e.clone(0)
	r.Constant += c
	return r
}

// Eval evaluates the expression against a dense value vector indexed by Var.
func (e Expr) Eval(values []float64) float64 {
	total := e.Constant
	for _, t := range e.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

// merged returns the terms with duplicate variables combined, zero
// coefficients dropped and the result ordered by variable.
func (e Expr) merged() []Term {
	coefs := make(map[Var]float64, len(e.Terms))
	for _, t := range e.Terms {
		coefs[t.Var] += t.Coef
	}
	terms := make([]Term, 0, len(coefs))
	for v, c := range coefs {
		if c != 0 {
			terms = append(terms, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Var < terms[j].Var })
	return terms
}
