package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxpy(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 4, 3, 2, 1}
	Axpy(2, x, y)
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, y)
}

func TestDotSimple(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}
	assert.Equal(t, float64(1*4+2*5+3*6), Dot(x, y))
}

func TestNormInf(t *testing.T) {
	assert.Equal(t, 0.0, NormInf(nil))
	assert.Equal(t, 3.0, NormInf([]float64{-1, 3, -2}))
}

func TestMVDense(t *testing.T) {
	sp := DenseSparsity(2, 2)
	vals := []float64{1, 2, 3, 4} // column-major: col0=[1,2] col1=[3,4]
	x := []float64{1, 1}
	y := make([]float64, 2)
	MV(vals, sp, x, y, false)
	assert.Equal(t, []float64{4, 6}, y)

	yt := make([]float64, 2)
	MV(vals, sp, x, yt, true)
	assert.Equal(t, []float64{3, 7}, yt)
}

func TestBilinIdentity(t *testing.T) {
	sp := SymmetricDenseSparsity(2)
	vals := []float64{1, 0, 0, 1}
	u := []float64{3, 4}
	got := Bilin(vals, sp, u, u)
	assert.Equal(t, 25.0, got)
}

func TestMaxViol(t *testing.T) {
	z := []float64{0.5, -0.5, 2}
	lb := []float64{0, 0, 0}
	ub := []float64{1, 1, 1}
	assert.Equal(t, 1.0, MaxViol(z, lb, ub))
}

func TestBoundConsistencyClamps(t *testing.T) {
	z := []float64{-0.2, 0.5, 1.3}
	lam := []float64{0.1, 0.2, 0.3}
	lb := []float64{0, 0, 0}
	ub := []float64{1, 1, 1}
	BoundConsistency(z, lam, lb, ub)
	require.Len(t, z, 3)
	assert.Equal(t, 0.0, z[0])
	assert.Equal(t, 1.0, z[2])
	assert.Equal(t, 0.0, lam[1]) // interior point, inactive bound -> zeroed
}

func TestSparsityValidate(t *testing.T) {
	sp := DenseSparsity(3, 3)
	require.NoError(t, sp.Validate())
	sp.ColPtr[1] = -1
	require.Error(t, sp.Validate())
}

func TestSparsitySymmetric(t *testing.T) {
	assert.True(t, SymmetricDenseSparsity(3).Symmetric())

	// column-0 stores row 1, but column 1 never stores row 0: asymmetric.
	sp := &SparsityPattern{
		NRow: 2, NCol: 2,
		ColPtr: []int{0, 1, 1},
		Row:    []int{1},
	}
	assert.False(t, sp.Symmetric())

	assert.False(t, DenseSparsity(2, 3).Symmetric()) // non-square
}
