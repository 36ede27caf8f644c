package milp

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"k8s.io/klog/v2"
)

var errNodeInfeasible = errors.New("relaxation infeasible")

// Options tunes the branch-and-bound search.
type Options struct {
	// Tolerance is the simplex optimality tolerance.
	Tolerance float64
	// IntegralityTolerance is how far an integer variable may sit from the
	// nearest integer and still count as integral.
	IntegralityTolerance float64
	// FeasibilityTolerance is the relative slack allowed on a constraint
	// when checking hinted or rounded points.
	FeasibilityTolerance float64
	// AbsoluteGap and RelativeGap prune nodes whose bound cannot beat the
	// incumbent by more than max(AbsoluteGap, RelativeGap·|incumbent|).
	AbsoluteGap float64
	RelativeGap float64
	// NodeLimit stops the search after this many nodes. 0 means no limit.
	NodeLimit int
}

func DefaultOptions() Options {
	return Options{
		Tolerance:            1e-9,
		IntegralityTolerance: 1e-6,
		FeasibilityTolerance: 1e-7,
		AbsoluteGap:          1e-6,
		RelativeGap:          1e-9,
	}
}

// BranchAndBound is a depth-first branch-and-bound MILP solver. Each node's
// LP relaxation is solved with gonum's simplex.
type BranchAndBound struct {
	opts Options
}

func NewBranchAndBound(opts Options) *BranchAndBound {
	return &BranchAndBound{opts: opts}
}

// Solve runs the search until it is exhausted, ctx is done or the node limit
// is hit. It only returns an error for an invalid model; running out of time
// is reported through the solution status.
func (b *BranchAndBound) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	s := newSearch(m, b.opts)
	s.tryHint()
	status := s.run(ctx)

	sol := &Solution{Status: status, Nodes: s.nodes, Elapsed: time.Since(start)}
	if s.incumbent != nil {
		sol.values = s.incumbent
		sol.Objective = m.objective.Eval(s.incumbent)
	}
	klog.V(2).Infof("milp %s: %s after %d nodes in %s (vars=%d rows=%d objective=%g)",
		m.name, status, s.nodes, sol.Elapsed.Round(time.Millisecond), len(m.vars), len(m.rows), sol.Objective)
	return sol, nil
}

type node struct {
	lb, ub []float64
}

type search struct {
	model *Model
	opts  Options

	// sign turns every objective into a minimisation.
	sign float64
	cost []float64

	incumbent    []float64
	incumbentObj float64

	nodes int
	// lossy is set when a node was dropped without proof, so exhausting the
	// tree no longer proves optimality or infeasibility.
	lossy bool
}

func newSearch(m *Model, opts Options) *search {
	s := &search{model: m, opts: opts, sign: 1, cost: make([]float64, len(m.vars))}
	if m.maximize {
		s.sign = -1
	}
	for _, t := range m.objective.Terms {
		s.cost[t.Var] += s.sign * t.Coef
	}
	return s
}

func (s *search) objective(x []float64) float64 {
	return s.sign * s.model.objective.Eval(x)
}

func (s *search) rootNode() node {
	n := node{lb: make([]float64, len(s.model.vars)), ub: make([]float64, len(s.model.vars))}
	for j, v := range s.model.vars {
		n.lb[j], n.ub[j] = v.lb, v.ub
		if v.kind == Integer {
			n.lb[j], n.ub[j] = math.Ceil(v.lb-s.opts.IntegralityTolerance), math.Floor(v.ub+s.opts.IntegralityTolerance)
		}
	}
	return n
}

func (s *search) run(ctx context.Context) Status {
	root := s.rootNode()
	for j := range root.lb {
		if root.lb[j] > root.ub[j] {
			return StatusInfeasible
		}
	}

	stack := []node{root}
	exhausted := true
	for len(stack) > 0 {
		if ctx.Err() != nil || (s.opts.NodeLimit > 0 && s.nodes >= s.opts.NodeLimit) {
			exhausted = false
			break
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.nodes++
		stack = append(stack, s.process(ctx, n)...)
	}

	switch {
	case exhausted && !s.lossy && s.incumbent != nil:
		return StatusOptimal
	case exhausted && !s.lossy:
		return StatusInfeasible
	case s.incumbent != nil:
		return StatusFeasible
	default:
		return StatusUnknown
	}
}

// process evaluates one node and returns the children to explore. The child
// to explore first is last.
func (s *search) process(ctx context.Context, n node) []node {
	obj, x, err := s.relax(ctx, n)
	if errors.Is(err, errNodeInfeasible) {
		return nil
	}
	if ctx.Err() != nil {
		// Interrupted mid-relaxation. Put the node back; the loop stops
		// before looking at it again.
		return []node{n}
	}
	if err != nil {
		// No bound for this node. Keep splitting on an integer variable so the
		// subtree is still covered.
		j := s.firstOpenInteger(n)
		if j < 0 {
			klog.Warningf("milp %s: dropping node after LP failure: %v", s.model.name, err)
			s.lossy = true
			return nil
		}
		klog.V(3).Infof("milp %s: LP failed (%v), splitting %s", s.model.name, err, s.model.vars[j].name)
		mid := math.Floor((n.lb[j] + n.ub[j]) / 2)
		return s.split(n, j, mid, mid+1, false)
	}

	if s.incumbent != nil && obj >= s.incumbentObj-s.gap() {
		return nil
	}

	j := s.branchVariable(n, x)
	if j < 0 {
		s.accept(x)
		return nil
	}
	down := math.Floor(x[j])
	return s.split(n, j, down, down+1, x[j]-down >= 0.5)
}

func (s *search) gap() float64 {
	return math.Max(s.opts.AbsoluteGap, s.opts.RelativeGap*math.Abs(s.incumbentObj))
}

func (s *search) split(n node, j int, downUB, upLB float64, preferUp bool) []node {
	down := node{lb: n.lb, ub: append([]float64(nil), n.ub...)}
	down.ub[j] = downUB
	up := node{lb: append([]float64(nil), n.lb...), ub: n.ub}
	up.lb[j] = upLB
	if preferUp {
		return []node{down, up}
	}
	return []node{up, down}
}

func (s *search) firstOpenInteger(n node) int {
	for j, v := range s.model.vars {
		if v.kind == Integer && n.ub[j] > n.lb[j] {
			return j
		}
	}
	return -1
}

// branchVariable picks the most fractional integer variable, or -1 when x is
// integral.
func (s *search) branchVariable(n node, x []float64) int {
	best, bestDist := -1, s.opts.IntegralityTolerance
	for j, v := range s.model.vars {
		if v.kind != Integer || n.ub[j] <= n.lb[j] {
			continue
		}
		f := x[j] - math.Floor(x[j])
		if d := math.Min(f, 1-f); d > bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// accept rounds the integer variables of an integral relaxation point and
// keeps it as the incumbent when it improves on the current one.
func (s *search) accept(x []float64) {
	point := make([]float64, len(x))
	copy(point, x)
	for j, v := range s.model.vars {
		if v.kind == Integer {
			point[j] = math.Round(point[j])
		}
	}
	if !s.feasible(point) {
		klog.V(3).Infof("milp %s: rounded point violates a constraint, skipped", s.model.name)
		s.lossy = true
		return
	}
	obj := s.objective(point)
	if s.incumbent == nil || obj < s.incumbentObj {
		s.incumbent, s.incumbentObj = point, obj
		klog.V(3).Infof("milp %s: incumbent %g at node %d", s.model.name, s.sign*obj, s.nodes)
	}
}

// tryHint builds a point from the model's hints and keeps it as the first
// incumbent when it is feasible.
func (s *search) tryHint() {
	if len(s.model.hint) == 0 {
		return
	}
	point := make([]float64, len(s.model.vars))
	for j, v := range s.model.vars {
		val, ok := s.model.hint[Var(j)]
		if !ok {
			val = v.lb
		}
		if v.kind == Integer {
			val = math.Round(val)
		}
		point[j] = math.Min(math.Max(val, v.lb), v.ub)
	}
	if !s.feasible(point) {
		klog.V(2).Infof("milp %s: hint is infeasible, ignored", s.model.name)
		return
	}
	s.incumbent, s.incumbentObj = point, s.objective(point)
	klog.V(2).Infof("milp %s: hint accepted with objective %g", s.model.name, s.sign*s.incumbentObj)
}

func (s *search) feasible(x []float64) bool {
	for j, v := range s.model.vars {
		if x[j] < v.lb-s.opts.FeasibilityTolerance || x[j] > v.ub+s.opts.FeasibilityTolerance {
			return false
		}
	}
	for _, r := range s.model.rows {
		lhs, magnitude := 0.0, math.Max(1, math.Abs(r.rhs))
		for _, t := range r.terms {
			p := t.Coef * x[t.Var]
			lhs += p
			magnitude = math.Max(magnitude, math.Abs(p))
		}
		if lhs > r.rhs+s.opts.FeasibilityTolerance*magnitude {
			return false
		}
	}
	return true
}

// relax solves the LP relaxation of node n. Variables are shifted to their
// lower bound and scaled by their range so every LP column lives in [0,1];
// rows and the cost vector are normalised by their largest coefficient.
// Fixed variables are folded into the right-hand side, and rows that cannot
// bind anywhere in the box are left out. The objective is recomputed from the
// point, so cost scaling does not leak out.
func (s *search) relax(ctx context.Context, n node) (float64, []float64, error) {
	x := append([]float64(nil), n.lb...)

	var free []int
	column := make([]int, len(s.model.vars))
	for j := range s.model.vars {
		column[j] = -1
		if n.ub[j]-n.lb[j] > 1e-12 {
			column[j] = len(free)
			free = append(free, j)
		}
	}
	if len(free) == 0 {
		if !s.feasible(x) {
			return 0, nil, errNodeInfeasible
		}
		return s.objective(x), x, nil
	}

	type lpRow struct {
		coefs []float64
		rhs   float64
	}
	rows := make([]lpRow, 0, len(s.model.rows)+len(free))
	for _, r := range s.model.rows {
		coefs := make([]float64, len(free))
		rhs, magnitude, norm, reach := r.rhs, math.Max(1, math.Abs(r.rhs)), 0.0, 0.0
		for _, t := range r.terms {
			rhs -= t.Coef * n.lb[t.Var]
			magnitude = math.Max(magnitude, math.Abs(t.Coef*n.lb[t.Var]))
			if k := column[t.Var]; k >= 0 {
				coefs[k] = t.Coef * (n.ub[t.Var] - n.lb[t.Var])
				norm = math.Max(norm, math.Abs(coefs[k]))
				reach += math.Max(coefs[k], 0)
			}
		}
		if norm == 0 {
			if rhs < -s.opts.FeasibilityTolerance*magnitude {
				return 0, nil, errNodeInfeasible
			}
			continue
		}
		// Holds at every corner of the box, e.g. a big-M row whose
		// indicator is fixed to 0.
		if reach <= rhs {
			continue
		}
		for k := range coefs {
			coefs[k] /= norm
		}
		rows = append(rows, lpRow{coefs: coefs, rhs: rhs / norm})
	}
	for k := range free {
		coefs := make([]float64, len(free))
		coefs[k] = 1
		rows = append(rows, lpRow{coefs: coefs, rhs: 1})
	}

	// Standard form: one slack column per row after the structural columns.
	m, nf := len(rows), len(free)
	A := mat.NewDense(m, nf+m, nil)
	b := make([]float64, m)
	c := make([]float64, nf+m)
	for i, r := range rows {
		for k, v := range r.coefs {
			if v != 0 {
				A.Set(i, k, v)
			}
		}
		A.Set(i, nf+i, 1)
		b[i] = r.rhs
	}
	scale := 0.0
	for k, j := range free {
		c[k] = s.cost[j] * (n.ub[j] - n.lb[j])
		scale = math.Max(scale, math.Abs(c[k]))
	}
	if scale > 0 {
		for k := range free {
			c[k] /= scale
		}
	}

	z, err := simplex(ctx, c, A, b, s.opts.Tolerance)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, nil, errNodeInfeasible
		}
		return 0, nil, err
	}
	for k, j := range free {
		x[j] = n.lb[j] + (n.ub[j]-n.lb[j])*math.Min(math.Max(z[k], 0), 1)
	}
	return s.objective(x), x, nil
}

// simplex runs lp.Simplex and gives up as soon as ctx is done. gonum's
// simplex cannot be interrupted, so an abandoned run finishes in the
// background and its result is dropped.
func simplex(ctx context.Context, c []float64, A mat.Matrix, b []float64, tol float64) ([]float64, error) {
	type result struct {
		z   []float64
		err error
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		_, z, err := lp.Simplex(c, A, b, tol, nil)
		done <- result{z, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.z, r.err
	}
}
