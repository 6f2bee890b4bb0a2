// Package kernel implements the sparse/dense numeric primitives the outer
// SQP driver builds on: compressed-sparse-column matrix-vector products,
// bilinear forms, and the small dense vector kernels borrowed from the
// teacher's blas.go.
package kernel

import "github.com/pkg/errors"

// SparsityPattern describes a matrix in compressed-sparse-column form:
// column j's nonzero rows are Row[ColPtr[j]:ColPtr[j+1]].
type SparsityPattern struct {
	NRow, NCol int
	ColPtr     []int
	Row        []int
}

// NNZ returns the number of structurally nonzero entries.
func (sp *SparsityPattern) NNZ() int {
	if len(sp.ColPtr) == 0 {
		return 0
	}
	return sp.ColPtr[len(sp.ColPtr)-1]
}

// Validate checks the CSC invariants: ColPtr is non-decreasing of length
// NCol+1, every row index lies in [0,NRow), and ColPtr[0] == 0.
func (sp *SparsityPattern) Validate() error {
	if sp.NRow < 0 || sp.NCol < 0 {
		return errors.New("sparsity pattern: negative dimension")
	}
	if len(sp.ColPtr) != sp.NCol+1 {
		return errors.Errorf("sparsity pattern: ColPtr length %d, want %d", len(sp.ColPtr), sp.NCol+1)
	}
	if sp.ColPtr[0] != 0 {
		return errors.New("sparsity pattern: ColPtr[0] must be 0")
	}
	for j := 0; j < sp.NCol; j++ {
		if sp.ColPtr[j+1] < sp.ColPtr[j] {
			return errors.Errorf("sparsity pattern: ColPtr not monotone at column %d", j)
		}
	}
	if len(sp.Row) != sp.ColPtr[sp.NCol] {
		return errors.Errorf("sparsity pattern: Row length %d, want %d", len(sp.Row), sp.ColPtr[sp.NCol])
	}
	for _, r := range sp.Row {
		if r < 0 || r >= sp.NRow {
			return errors.Errorf("sparsity pattern: row index %d out of range [0,%d)", r, sp.NRow)
		}
	}
	return nil
}

// Symmetric reports whether the pattern's nonzero structure is symmetric:
// for every stored (row,col), (col,row) is also stored. A non-square
// pattern is reported as not symmetric.
func (sp *SparsityPattern) Symmetric() bool {
	if sp.NRow != sp.NCol {
		return false
	}
	has := func(row, col int) bool {
		for k := sp.ColPtr[col]; k < sp.ColPtr[col+1]; k++ {
			if sp.Row[k] == row {
				return true
			}
		}
		return false
	}
	for j := 0; j < sp.NCol; j++ {
		for k := sp.ColPtr[j]; k < sp.ColPtr[j+1]; k++ {
			i := sp.Row[k]
			if !has(j, i) {
				return false
			}
		}
	}
	return true
}

// DenseSparsity builds the fully-dense NRow×NCol pattern, used by the
// reference QP backend and by tests that don't care about sparsity.
func DenseSparsity(nRow, nCol int) *SparsityPattern {
	colPtr := make([]int, nCol+1)
	row := make([]int, nRow*nCol)
	for j := 0; j < nCol; j++ {
		colPtr[j] = j * nRow
		for i := 0; i < nRow; i++ {
			row[j*nRow+i] = i
		}
	}
	colPtr[nCol] = nRow * nCol
	return &SparsityPattern{NRow: nRow, NCol: nCol, ColPtr: colPtr, Row: row}
}

// SymmetricDenseSparsity builds the dense n×n pattern used for Hessian
// storage (Bk is stored fully, not just the triangle, mirroring spec.md's
// dense symmetric update formula for component B).
func SymmetricDenseSparsity(n int) *SparsityPattern {
	return DenseSparsity(n, n)
}

// Dense returns the (i,j) entry of the CSC matrix (sp, vals), or 0 when
// (i,j) is not stored in the pattern.
func Dense(sp *SparsityPattern, vals []float64, i, j int) float64 {
	lo, hi := sp.ColPtr[j], sp.ColPtr[j+1]
	for k := lo; k < hi; k++ {
		if sp.Row[k] == i {
			return vals[k]
		}
	}
	return 0
}
