package sqpmethod

import "github.com/sqpgo/sqpmethod/kernel"

// FgFunc evaluates the objective and constraint vector only -- the cheap
// oracle called repeatedly inside the line search. A non-nil error here is
// recoverable: the caller backtracks.
type FgFunc func(x, p []float64) (f float64, g []float64, err error)

// JacFgFunc evaluates objective, gradient, constraints, and constraint
// Jacobian (in Asp layout) at the top of an outer iteration. A non-nil
// error here is fatal.
type JacFgFunc func(x, p []float64) (f float64, gf, g, jk []float64, err error)

// HessLFunc evaluates the Hessian of the Lagrangian (in Hsp layout,
// symmetric) given multiplier seeds. Only called in "exact" Hessian mode.
// A non-nil error here is fatal.
type HessLFunc func(x, p []float64, lamF float64, lamG []float64) (bk []float64, err error)

// GradWant selects which post-solve outputs Refine should recompute.
type GradWant struct {
	F, G, LamX, LamP bool
}

// GradResult carries the outputs GradFunc was asked to recompute.
type GradResult struct {
	F           float64
	G           []float64
	LamX, LamP  []float64
}

// GradFunc is the optional post-solve polishing oracle (§5 of the
// expanded spec): it recomputes exactly the requested outputs at the
// final iterate, used by Result.Refine.
type GradFunc func(x, p []float64, lamF float64, lamG []float64, want GradWant) (*GradResult, error)

// Callback is the user progress callback; returning true requests a stop.
type Callback func(*Result) (stop bool)

// Problem is the immutable problem descriptor: dimensions, sparsity
// patterns, and oracle callbacks, borrowed read-only for the duration of
// a solve and shareable across concurrently solving workspaces.
type Problem struct {
	NX, NG, NP int

	Hsp *kernel.SparsityPattern // NX x NX, nil in limited-memory mode
	Asp *kernel.SparsityPattern // NG x NX

	Fg     FgFunc
	JacFg  JacFgFunc
	HessL  HessLFunc // nil in limited-memory mode
	Grad   GradFunc  // optional

	LBX, UBX []float64 // length NX
	LBG, UBG []float64 // length NG
}

func (p *Problem) validate(opts *Options) error {
	switch {
	case p.NX <= 0:
		return configError("NX must be positive")
	case p.NG < 0:
		return configError("NG must not be negative")
	case p.Fg == nil || p.JacFg == nil:
		return configError("Fg and JacFg oracles are required")
	case len(p.LBX) != p.NX || len(p.UBX) != p.NX:
		return configError("LBX/UBX must have length NX")
	case len(p.LBG) != p.NG || len(p.UBG) != p.NG:
		return configError("LBG/UBG must have length NG")
	case p.Asp != nil && (p.Asp.NRow != p.NG || p.Asp.NCol != p.NX):
		return configError("Asp dimensions must be NG x NX")
	}
	if opts.HessianApproximation == HessianExact {
		if p.HessL == nil {
			return configError("HessL oracle is required when HessianApproximation is \"exact\"")
		}
		if p.Hsp == nil {
			return configError("Hsp is required when HessianApproximation is \"exact\"")
		}
	}
	if p.Hsp != nil && p.Hsp.NRow != p.Hsp.NCol {
		return configError("Hsp must be square")
	}
	if p.Hsp != nil && p.Hsp.NRow != p.NX {
		return configError("Hsp dimensions must be NX x NX")
	}
	if p.Hsp != nil && !p.Hsp.Symmetric() {
		return configError("Hsp must be structurally symmetric")
	}
	return nil
}
