// Package bfgs implements the damped two-vector BFGS Hessian-of-Lagrangian
// approximation: a direct dense rank-2 update of Bk (not a maintained LDLᵗ
// factor). The damping ratio and the decision to damp follow the modified
// BFGS formula the teacher's slsqp.sqpSolver.updateBFGS uses on its
// Cholesky factor, adapted here to update the dense matrix itself because
// the outer driver needs Bk directly to assemble the QP subproblem's H.
package bfgs

import (
	"math"

	"github.com/sqpgo/sqpmethod/kernel"
)

// Reset sets Bk to the identity. The driver calls it at the first
// iteration and every LBFGSMemory iterations after that; Update falls back
// to it when an update leaves a non-finite entry in Bk.
func Reset(hsp *kernel.SparsityPattern, bk []float64) {
	if hsp.NRow != hsp.NCol {
		panic("bfgs: Hessian sparsity must be square")
	}
	n := hsp.NRow
	kernel.Fill(bk, 0)
	for i := 0; i < n; i++ {
		for k := hsp.ColPtr[i]; k < hsp.ColPtr[i+1]; k++ {
			if hsp.Row[k] == i {
				bk[k] = 1
			}
		}
	}
}

// Update performs one damped BFGS step:
//
//	s  = z_new - z_old          (primal step)
//	y  = ∇ℒ(z_new,λ) - ∇ℒ(z_old,λ)   (Lagrangian-gradient difference)
//
// and updates Bk in place with Powell's damping: when sᵗy < 0.2·sᵗBs, y is
// replaced by θy + (1-θ)Bs with θ = 0.8·sᵗBs/(sᵗBs - sᵗy), guaranteeing the
// updated matrix stays positive definite along s. scratch must have length
// 2*n (the Bs buffer and the damped secant vector q, both clobbered).
func Update(hsp *kernel.SparsityPattern, bk, s, y, scratch []float64) {
	n := hsp.NRow
	if len(s) != n || len(y) != n || len(scratch) != 2*n {
		panic("bfgs: dimension mismatch")
	}

	bs := scratch[:n]
	q := scratch[n : 2*n]

	kernel.MV(bk, hsp, s, bs, false) // bs = Bk*s

	sy := kernel.Dot(s, y)
	sBs := kernel.Dot(s, bs)

	if sBs == 0 {
		return // degenerate step, leave Bk untouched
	}

	theta := 1.0
	if sy < 0.2*sBs {
		theta = 0.8 * sBs / (sBs - sy)
	}

	// q = θy + (1-θ)Bs, the damped secant vector replacing y.
	for i := range q {
		q[i] = theta*y[i] + (1-theta)*bs[i]
	}
	sq := kernel.Dot(s, q)
	if sq == 0 || sBs == 0 {
		return
	}

	// Bk ← Bk − (Bs)(Bs)ᵗ/(sᵗBs) + qqᵗ/(sᵗq)
	for j := 0; j < n; j++ {
		for k := hsp.ColPtr[j]; k < hsp.ColPtr[j+1]; k++ {
			i := hsp.Row[k]
			bk[k] += q[i]*q[j]/sq - bs[i]*bs[j]/sBs
		}
	}

	if !isSymmetricFinite(bk) {
		Reset(hsp, bk)
	}
}

func isSymmetricFinite(bk []float64) bool {
	for _, v := range bk {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
