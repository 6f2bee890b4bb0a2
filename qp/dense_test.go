package qp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sqpgo/sqpmethod/kernel"
)

// minimize ½‖d‖² + gᵗd over a box -- an unconstrained-by-rows QP whose
// analytic solution is d = -g clamped to the box, used to sanity check
// the LDLᵗ packing and bound-multiplier recovery independent of the
// general-constraint splitting path.
func TestDenseSolverBoxOnly(t *testing.T) {
	n := 2
	hsp := kernel.SymmetricDenseSparsity(n)
	hvals := make([]float64, hsp.NNZ())
	hvals[0], hvals[3] = 1, 1 // identity

	in := &Input{
		H:     hsp,
		HVals: hvals,
		G:     []float64{2, -0.1},
		LBX:   []float64{-1, -1},
		UBX:   []float64{1, 1},
	}
	out := &Output{}

	require.NoError(t, NewDenseSolver().Solve(in, out))
	assert.InDelta(t, -1.0, out.X[0], 1e-6) // clamps to lower bound
	assert.InDelta(t, 0.1, out.X[1], 1e-6)  // interior optimum -g
	require.Len(t, out.LamX, 2)
	assert.NotEqual(t, 0.0, out.LamX[0]) // bound active -> nonzero multiplier
}

func TestDenseSolverEqualityConstraint(t *testing.T) {
	n := 2
	hsp := kernel.SymmetricDenseSparsity(n)
	hvals := make([]float64, hsp.NNZ())
	hvals[0], hvals[3] = 1, 1

	asp := kernel.DenseSparsity(1, n)
	avals := []float64{1, 1} // d0 + d1 = 1

	in := &Input{
		H:     hsp,
		HVals: hvals,
		G:     []float64{0, 0},
		LBX:   []float64{-10, -10},
		UBX:   []float64{10, 10},
		A:     asp,
		AVals: avals,
		LBA:   []float64{1},
		UBA:   []float64{1},
	}
	out := &Output{}

	require.NoError(t, NewDenseSolver().Solve(in, out))
	assert.InDelta(t, 0.5, out.X[0], 1e-6)
	assert.InDelta(t, 0.5, out.X[1], 1e-6)
}

func TestDenseSolverTwoSidedInequality(t *testing.T) {
	n := 1
	hsp := kernel.SymmetricDenseSparsity(n)
	hvals := []float64{1}

	asp := kernel.DenseSparsity(1, n)
	avals := []float64{1}

	in := &Input{
		H:     hsp,
		HVals: hvals,
		G:     []float64{-5}, // minimize ½d² - 5d, unconstrained optimum d=5
		LBX:   []float64{-100},
		UBX:   []float64{100},
		A:     asp,
		AVals: avals,
		LBA:   []float64{-1},
		UBA:   []float64{1}, // row clamps d into [-1,1]
	}
	out := &Output{}

	require.NoError(t, NewDenseSolver().Solve(in, out))
	assert.InDelta(t, 1.0, out.X[0], 1e-6)
}
