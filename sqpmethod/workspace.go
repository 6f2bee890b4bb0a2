package sqpmethod

import "github.com/sqpgo/sqpmethod/kernel"

// Workspace holds every per-solve scratch slice, each allocated as its own
// slice once by NewWorkspace and reused across iterations. Solve still
// allocates per iteration outside the Workspace (the QP input/output and
// the dense QP backend's buffers). Not safe for concurrent Solve calls -- share a
// *Problem across goroutines, give each its own *Workspace.
type Workspace struct {
	nx, ng int

	Z, LBZ, UBZ []float64 // length nx+ng: primal iterate and its bounds
	Lam         []float64 // length nx+ng: multipliers (x-block then g-block)
	DLam        []float64 // length nx+ng: QP-solver multiplier warm start/output

	Dx []float64 // length nx: search direction

	Gf      []float64 // length nx: objective gradient
	GLag    []float64 // length nx: Lagrangian gradient, current
	GLagOld []float64 // length nx: Lagrangian gradient, previous (for BFGS y)

	Jk []float64 // Asp.NNZ(): constraint Jacobian values
	Bk []float64 // Hsp.NNZ(): Hessian-of-Lagrangian approximation

	ZCand   []float64 // length nx+ng: line-search candidate iterate
	Scratch []float64 // length 2*nx: bfgs.Update's Bs and damped-secant q buffers

	LBDZ, UBDZ []float64 // length nx+ng: shifted bounds for the QP subproblem
	Y          []float64 // length nx: BFGS secant-pair y buffer

	iterCount int
}

// NewWorkspace allocates a Workspace sized for problem p. Hsp defaults to
// the dense n×n pattern when p.Hsp is nil (limited-memory mode still
// needs a concrete Bk layout to hand to the QP solver).
func NewWorkspace(p *Problem) *Workspace {
	nx, ng := p.NX, p.NG
	n := nx + ng

	hsp := p.Hsp
	if hsp == nil {
		hsp = kernel.SymmetricDenseSparsity(nx)
	}
	asp := p.Asp
	if asp == nil {
		asp = kernel.DenseSparsity(ng, nx)
	}

	return &Workspace{
		nx: nx, ng: ng,
		Z: make([]float64, n), LBZ: make([]float64, n), UBZ: make([]float64, n),
		Lam:  make([]float64, n),
		DLam: make([]float64, n),
		Dx:   make([]float64, nx),

		Gf:      make([]float64, nx),
		GLag:    make([]float64, nx),
		GLagOld: make([]float64, nx),

		Jk: make([]float64, asp.NNZ()),
		Bk: make([]float64, hsp.NNZ()),

		ZCand:   make([]float64, n),
		Scratch: make([]float64, 2*nx),

		LBDZ: make([]float64, n),
		UBDZ: make([]float64, n),
		Y:    make([]float64, nx),
	}
}
