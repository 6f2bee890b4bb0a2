package sqpmethod

import (
	"go.uber.org/zap"

	"github.com/sqpgo/sqpmethod/qp"
)

// HessianApproximation selects how the Hessian of the Lagrangian is
// obtained each iteration.
type HessianApproximation int

const (
	// HessianExact calls Problem.HessL every iteration.
	HessianExact HessianApproximation = iota
	// HessianLimitedMemory maintains a damped BFGS approximation instead.
	HessianLimitedMemory
)

// Options configures a Solver. Zero-value Options is invalid; use
// DefaultOptions to get a starting point with the defaults this package's
// expanded spec carries over from the CasADi original (sqpmethod.cpp).
type Options struct {
	QpSolver qp.Solver // required

	HessianApproximation HessianApproximation

	MaxIter   int
	MinIter   int
	MaxIterLS int

	TolPr float64
	TolDu float64

	C1   float64
	Beta float64

	MeritMemory  int
	LBFGSMemory  int

	Regularize    bool
	RegularizeEps float64 // floor passed to regularize.EnsurePositiveDefinite

	MinStepSize float64

	PrintHeader    bool
	PrintIteration bool
	PrintStatus    bool

	Logger   *zap.Logger
	Callback Callback
}

// DefaultOptions returns the option defaults named in §6: max_iter=50,
// min_iter=0, max_iter_ls=3, tol_pr=tol_du=1e-6, c1=1e-4, beta=0.8,
// merit_memory=4, lbfgs_memory=10, regularize=false, min_step_size=1e-10,
// all print flags true. QpSolver must still be set by the caller.
func DefaultOptions() Options {
	return Options{
		HessianApproximation: HessianExact,
		MaxIter:              50,
		MinIter:              0,
		MaxIterLS:             3,
		TolPr:                 1e-6,
		TolDu:                 1e-6,
		C1:                    1e-4,
		Beta:                  0.8,
		MeritMemory:           4,
		LBFGSMemory:           10,
		Regularize:            false,
		RegularizeEps:         1e-8,
		MinStepSize:           1e-10,
		PrintHeader:           true,
		PrintIteration:        true,
		PrintStatus:           true,
		Logger:                zap.NewNop(),
	}
}

func (o *Options) validate() error {
	switch {
	case o.QpSolver == nil:
		return configError("QpSolver is required")
	case o.MaxIter <= 0:
		return configError("MaxIter must be positive")
	case o.MinIter < 0:
		return configError("MinIter must not be negative")
	case o.MaxIterLS < 0:
		return configError("MaxIterLS must not be negative")
	case o.MeritMemory <= 0:
		return configError("MeritMemory must be positive")
	case o.C1 <= 0 || o.C1 >= 1:
		return configError("C1 must lie in (0,1)")
	case o.Beta <= 0 || o.Beta >= 1:
		return configError("Beta must lie in (0,1)")
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}
