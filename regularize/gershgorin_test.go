package regularize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sqpgo/sqpmethod/kernel"
)

func denseVals(n int, entries map[[2]int]float64) []float64 {
	sp := kernel.DenseSparsity(n, n)
	vals := make([]float64, sp.NNZ())
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			vals[j*n+i] = entries[[2]int{i, j}]
		}
	}
	return vals
}

func TestLBEigIdentityIsOne(t *testing.T) {
	sp := kernel.SymmetricDenseSparsity(3)
	bk := denseVals(3, map[[2]int]float64{{0, 0}: 1, {1, 1}: 1, {2, 2}: 1})
	assert.Equal(t, 1.0, LBEig(sp, bk))
}

func TestLBEigCatchesIndefiniteDiagonal(t *testing.T) {
	sp := kernel.SymmetricDenseSparsity(2)
	bk := denseVals(2, map[[2]int]float64{{0, 0}: -1, {1, 1}: 2})
	assert.Equal(t, -1.0, LBEig(sp, bk))
}

func TestEnsurePositiveDefiniteShiftsDiagonal(t *testing.T) {
	sp := kernel.SymmetricDenseSparsity(2)
	bk := denseVals(2, map[[2]int]float64{{0, 0}: -1, {1, 1}: 2})
	rho := EnsurePositiveDefinite(sp, bk, 1e-6)
	assert.Greater(t, rho, 0.0)
	assert.GreaterOrEqual(t, LBEig(sp, bk), 1e-6-1e-9)
}

func TestEnsurePositiveDefiniteNoopWhenAlreadyAboveFloor(t *testing.T) {
	sp := kernel.SymmetricDenseSparsity(2)
	bk := denseVals(2, map[[2]int]float64{{0, 0}: 5, {1, 1}: 5})
	rho := EnsurePositiveDefinite(sp, bk, 1e-6)
	assert.Equal(t, 0.0, rho)
}
