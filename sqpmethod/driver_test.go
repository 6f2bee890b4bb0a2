package sqpmethod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqpgo/sqpmethod/kernel"
	"github.com/sqpgo/sqpmethod/qp"
)

// TestRosenbrockUnconstrained mirrors the concrete scenario in the testable
// properties section: nx=2, ng=0, x0=(-1.2,1), exact Hessian, converges to
// (1,1) with f ≤ 1e-12 within 25 iterations.
func TestRosenbrockUnconstrained(t *testing.T) {
	rosenF := func(x []float64) float64 {
		return 100*math.Pow(x[1]-x[0]*x[0], 2) + math.Pow(1-x[0], 2)
	}
	rosenGrad := func(x []float64) []float64 {
		return []float64{
			-400*(x[1]-x[0]*x[0])*x[0] - 2*(1-x[0]),
			200 * (x[1] - x[0]*x[0]),
		}
	}
	rosenHess := func(x []float64) []float64 {
		h00 := 1200*x[0]*x[0] - 400*x[1] + 2
		h01 := -400 * x[0]
		h11 := 200.0
		return []float64{h00, h01, h01, h11} // column-major dense 2x2
	}

	problem := &Problem{
		NX: 2, NG: 0,
		Hsp: kernel.SymmetricDenseSparsity(2),
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return rosenF(x), nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			return rosenF(x), rosenGrad(x), nil, nil, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			h := rosenHess(x)
			for i := range h {
				h[i] *= lamF
			}
			return h, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()
	opts.MaxIter = 25

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{-1.2, 1.0}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, SolveSucceeded, res.ReturnStatus)
	assert.True(t, res.Success)
	assert.InDelta(t, 1.0, res.X[0], 1e-4)
	assert.InDelta(t, 1.0, res.X[1], 1e-4)
	assert.LessOrEqual(t, res.F, 1e-12)
}

// TestQuadraticWithLinearConstraint: min ½(x1²+x2²) s.t. x1+x2=1, exact
// Hessian converges to (0.5,0.5) with lam_g=-0.5 within 2 iterations.
func TestQuadraticWithLinearConstraint(t *testing.T) {
	asp := kernel.DenseSparsity(1, 2)

	problem := &Problem{
		NX: 2, NG: 1,
		Hsp: kernel.SymmetricDenseSparsity(2),
		Asp: asp,
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		LBG: []float64{1},
		UBG: []float64{1},
		Fg: func(x, p []float64) (float64, []float64, error) {
			g := x[0] + x[1]
			return 0.5 * (x[0]*x[0] + x[1]*x[1]), []float64{g}, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			f := 0.5 * (x[0]*x[0] + x[1]*x[1])
			gf := []float64{x[0], x[1]}
			g := []float64{x[0] + x[1]}
			jk := []float64{1, 1} // dense 1x2 column-major: col0=[1], col1=[1]
			return f, gf, g, jk, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			return []float64{lamF, 0, 0, lamF}, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()
	opts.MaxIter = 10

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{0, 0}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, SolveSucceeded, res.ReturnStatus)
	assert.InDelta(t, 0.5, res.X[0], 1e-4)
	assert.InDelta(t, 0.5, res.X[1], 1e-4)
	assert.InDelta(t, -0.5, res.LamG[0], 1e-4)
	assert.LessOrEqual(t, res.IterCount, 2)
}

// TestCallbackAbort checks the user-requested-stop path (§8 scenario 4).
// The quartic objective makes each Newton step shrink x by a third only, so
// the solve is still far from converged when the callback fires at iter 3.
func TestCallbackAbort(t *testing.T) {
	problem := &Problem{
		NX: 2, NG: 0,
		Hsp: kernel.SymmetricDenseSparsity(2),
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return math.Pow(x[0], 4) + math.Pow(x[1], 4), nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			return math.Pow(x[0], 4) + math.Pow(x[1], 4), []float64{4 * math.Pow(x[0], 3), 4 * math.Pow(x[1], 3)}, nil, nil, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			return []float64{12 * x[0] * x[0] * lamF, 0, 0, 12 * x[1] * x[1] * lamF}, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()
	opts.Callback = func(r *Result) bool { return r.IterCount >= 3 }

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{5, 5}, nil, nil)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, UserRequestedStop, res.ReturnStatus)
	assert.Equal(t, 3, res.IterCount)
}

// TestBFGSConvergesOnQuadratic exercises HessianLimitedMemory end to end:
// a simple unconstrained quadratic, where damped BFGS starting from the
// identity should still reach the minimum within a modest iteration
// budget (§8 scenario 5 exercises the same mode on HS71; this keeps the
// objective simple so the test doesn't depend on a multi-constraint QP).
func TestBFGSConvergesOnQuadratic(t *testing.T) {
	problem := &Problem{
		NX: 2, NG: 0,
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return 3*x[0]*x[0] + x[1]*x[1] - 2*x[0]*x[1], nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			f := 3*x[0]*x[0] + x[1]*x[1] - 2*x[0]*x[1]
			gf := []float64{6*x[0] - 2*x[1], 2*x[1] - 2*x[0]}
			return f, gf, nil, nil, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()
	opts.HessianApproximation = HessianLimitedMemory
	opts.MaxIter = 40

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{3, -2}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, SolveSucceeded, res.ReturnStatus)
	assert.InDelta(t, 0.0, res.X[0], 1e-3)
	assert.InDelta(t, 0.0, res.X[1], 1e-3)
}

// TestResultRefine exercises the §5 post-solve polish: after a solve with
// no constraints, Refine(GradWant{F: true}) should recompute f at the
// final iterate via Problem.Grad and overwrite Result.F with it.
func TestResultRefine(t *testing.T) {
	problem := &Problem{
		NX: 2, NG: 0,
		Hsp: kernel.SymmetricDenseSparsity(2),
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], []float64{2 * x[0], 2 * x[1]}, nil, nil, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			return []float64{2 * lamF, 0, 0, 2 * lamF}, nil
		},
		Grad: func(x, p []float64, lamF float64, lamG []float64, want GradWant) (*GradResult, error) {
			gr := &GradResult{}
			if want.F {
				gr.F = x[0]*x[0] + x[1]*x[1] + 7 // offset proves Grad, not the last iterate, produced this
			}
			return gr, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{3, 4}, nil, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	fBefore := res.F
	err = res.Refine(GradWant{F: true})
	require.NoError(t, err)
	assert.InDelta(t, fBefore+7, res.F, 1e-9)
}

// TestResultRefineNoOpWithoutGrad checks that Refine with nothing
// requested is a no-op even when Problem.Grad was never supplied.
func TestResultRefineNoOpWithoutGrad(t *testing.T) {
	problem := &Problem{
		NX: 2, NG: 0,
		Hsp: kernel.SymmetricDenseSparsity(2),
		LBX: []float64{math.Inf(-1), math.Inf(-1)},
		UBX: []float64{math.Inf(1), math.Inf(1)},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], []float64{2 * x[0], 2 * x[1]}, nil, nil, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			return []float64{2 * lamF, 0, 0, 2 * lamF}, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{3, 4}, nil, nil)
	require.NoError(t, err)

	assert.NoError(t, res.Refine(GradWant{}))
}

// TestInfeasibleBounds checks termination by iteration limit when bounds
// are contradictory (§8 scenario 3).
func TestInfeasibleBounds(t *testing.T) {
	problem := &Problem{
		NX: 2, NG: 0,
		Hsp: kernel.SymmetricDenseSparsity(2),
		LBX: []float64{1, 1},
		UBX: []float64{0, 0},
		Fg: func(x, p []float64) (float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], nil, nil
		},
		JacFg: func(x, p []float64) (float64, []float64, []float64, []float64, error) {
			return x[0]*x[0] + x[1]*x[1], []float64{2 * x[0], 2 * x[1]}, nil, nil, nil
		},
		HessL: func(x, p []float64, lamF float64, lamG []float64) ([]float64, error) {
			return []float64{2 * lamF, 0, 0, 2 * lamF}, nil
		},
	}

	opts := DefaultOptions()
	opts.QpSolver = qp.NewDenseSolver()
	opts.MaxIter = 5

	solver, err := NewSolver(problem, opts)
	require.NoError(t, err)

	ws := NewWorkspace(problem)
	res, err := solver.Solve(ws, []float64{0.5, 0.5}, nil, nil)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, MaximumIterationsExceeded, res.ReturnStatus)
	assert.Greater(t, res.InfPr, 0.0) // lbx > ubx, so the bound violation never clears
}
