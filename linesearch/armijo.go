// Package linesearch implements the non-monotone ℓ₁-merit Armijo
// backtracking line search that globalises the outer SQP iteration.
package linesearch

import (
	"math"

	"go.uber.org/zap"

	"github.com/sqpgo/sqpmethod/kernel"
)

// State carries the line search's persistent memory across outer
// iterations: the penalty parameter and the non-monotone merit-value
// ring buffer.
type State struct {
	Sigma     float64
	MeritMem  []float64 // length M, ring buffer
	MeritInd  int
	IterCount int

	// Tuning, mirrors Options.C1/Options.Beta/Options.MaxIterLS.
	C1        float64
	Beta      float64
	MaxIterLS int

	Logger *zap.Logger
}

// NewState allocates a line-search state with a merit-memory buffer of
// size m (Options.MeritMemory).
func NewState(m int, c1, beta float64, maxIterLS int, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		MeritMem:  make([]float64, m),
		C1:        c1,
		Beta:      beta,
		MaxIterLS: maxIterLS,
		Logger:    logger,
	}
}

// EvalFunc evaluates the objective/constraints at a candidate primal
// point; returning a non-nil error is recoverable (the search backtracks).
type EvalFunc func(x []float64) (f float64, err error)

// Result reports the outcome of one call to Search.
type Result struct {
	T            float64 // accepted step length
	LSIterations int
	ForcedAccept bool // true if accepted only because max_iter_ls was hit
}

// Search performs the non-monotone Armijo backtracking line search.
//
//	x, dx    — current primal iterate (x-block only) and search direction
//	zFull    — full [x;g] iterate buffer, reused as scratch for z_cand
//	lbz, ubz — bounds on the full [x;g] iterate, for max_viol
//	gf       — objective gradient at x
//	dlamNorm — ‖dlam‖∞, used for the pre-loop penalty update
//	f        — objective value at x
//	eval     — recomputes (f_cand, err) given a candidate x; the caller is
//	           responsible for writing g(x_cand) into zFull's g-block
//	           before Search examines violations, since the contract in
//	           §4.E only re-evaluates f/g, not the full oracle bundle.
func (s *State) Search(x, dx []float64, zFull, lbz, ubz, gf []float64, dlamNorm, f float64, eval EvalFunc) (Result, error) {
	n := len(x)

	s.Sigma = math.Max(s.Sigma, 1.01*dlamNorm)

	vCur := kernel.MaxViol(zFull, lbz, ubz)
	l1dir := kernel.Dot(gf, dx) - s.Sigma*vCur
	l1merit := f + s.Sigma*vCur

	s.MeritMem[s.MeritInd%len(s.MeritMem)] = l1merit
	s.MeritInd++
	s.IterCount++

	meritMax := s.nonMonotoneMax(l1merit)

	if s.MaxIterLS == 0 {
		return Result{T: 1, LSIterations: 0}, nil
	}

	zCand := zFull
	t := 1.0
	for lsIter := 0; ; lsIter++ {
		for i := 0; i < n; i++ {
			zCand[i] = x[i] + t*dx[i]
		}
		fCand, err := eval(zCand[:n])
		if err != nil {
			s.Logger.Debug("line search candidate evaluation failed, backtracking", zap.Error(err), zap.Float64("t", t))
			t *= s.Beta
			if lsIter >= s.MaxIterLS {
				return Result{}, err
			}
			continue
		}
		// eval already wrote g(x_cand) into zCand[n:] == zFull[n:] (same
		// backing buffer, see the zFull doc comment above).
		vCand := kernel.MaxViol(zCand, lbz, ubz)
		meritCand := fCand + s.Sigma*vCand

		if meritCand <= meritMax+t*s.C1*l1dir {
			return Result{T: t, LSIterations: lsIter + 1}, nil
		}
		if lsIter == s.MaxIterLS {
			s.Logger.Debug("line search forced accept", zap.Int("iterations", lsIter+1))
			return Result{T: t, LSIterations: lsIter + 1, ForcedAccept: true}, nil
		}
		t *= s.Beta
	}
}

// nonMonotoneMax folds the merit-memory window the same way the window
// definition in §4.E and the teacher's vfmax intend: the last
// min(M,iter_count)-1 entries excluding slot 0, combined with slot 0 as
// the seed. Slot 0's exclusion from its own window (as opposed to from
// the seed) is preserved verbatim even though its rationale is unclear --
// see the design ledger's resolution of this open question.
func (s *State) nonMonotoneMax(current float64) float64 {
	m := len(s.MeritMem)
	k := s.IterCount
	if k > m {
		k = m
	}
	window := k - 1
	if window < 0 {
		window = 0
	}
	seed := s.MeritMem[0]
	if window == 0 {
		return seed
	}
	return kernel.VFMax(s.MeritMem[1:], window, seed)
}
