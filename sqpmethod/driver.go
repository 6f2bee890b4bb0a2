package sqpmethod

import (
	"math"

	"go.uber.org/zap"

	"github.com/sqpgo/sqpmethod/bfgs"
	"github.com/sqpgo/sqpmethod/kernel"
	"github.com/sqpgo/sqpmethod/linesearch"
	"github.com/sqpgo/sqpmethod/qp"
	"github.com/sqpgo/sqpmethod/regularize"
)

// Solver binds an immutable Problem to validated Options. One Solver may
// drive many Solve calls, each against its own Workspace.
type Solver struct {
	problem *Problem
	opts    Options

	hsp *kernel.SparsityPattern
	asp *kernel.SparsityPattern
}

// NewSolver validates p and opts (class-1 errors, §7) and returns a
// ready-to-use Solver.
func NewSolver(p *Problem, opts Options) (*Solver, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := p.validate(&opts); err != nil {
		return nil, err
	}
	hsp := p.Hsp
	if hsp == nil {
		hsp = kernel.SymmetricDenseSparsity(p.NX)
	}
	asp := p.Asp
	if asp == nil {
		asp = kernel.DenseSparsity(p.NG, p.NX)
	}
	return &Solver{problem: p, opts: opts, hsp: hsp, asp: asp}, nil
}

// Solve runs the outer SQP iteration (§4.F S0-S12) starting from x0 with
// optional multiplier warm start lam0 (nil means zero) and parameter
// vector p, writing into ws.
func (s *Solver) Solve(ws *Workspace, x0, lam0, p []float64) (*Result, error) {
	nx, ng := s.problem.NX, s.problem.NG
	if len(x0) != nx {
		panic("sqpmethod: x0 length must equal Problem.NX")
	}

	logger := s.opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// S0 init.
	kernel.Copy(ws.Z[:nx], x0)
	copy(ws.LBZ[:nx], s.problem.LBX)
	copy(ws.UBZ[:nx], s.problem.UBX)
	copy(ws.LBZ[nx:], s.problem.LBG)
	copy(ws.UBZ[nx:], s.problem.UBG)
	kernel.Fill(ws.Dx, 0)
	if lam0 != nil {
		copy(ws.Lam, lam0)
	} else {
		kernel.Fill(ws.Lam, 0)
	}

	ls := linesearch.NewState(s.opts.MeritMemory, s.opts.C1, s.opts.Beta, s.opts.MaxIterLS, logger)

	var reg float64
	lsSuccess := true
	qpFailed := false
	var lsTrials int

	res := &Result{problem: s.problem, p: p}

	for iter := 0; ; iter++ {
		// S1 evaluate.
		f, gf, g, jk, err := s.problem.JacFg(ws.Z[:nx], p)
		if err != nil {
			return nil, oracleError("JacFg", err)
		}
		copy(ws.Gf, gf)
		copy(ws.Jk, jk)
		copy(ws.Z[nx:], g)
		// Seed the line-search candidate buffer with the current iterate so
		// that Search's own pre-loop max_viol(zFull, ...) call (before any
		// candidate has been written into it) reads [x;g] at z, not zeros.
		copy(ws.ZCand, ws.Z)

		// S2 Lagrangian gradient: gLag = gf + Jkᵗ·lam_g + lam_x.
		kernel.MV(ws.Jk, s.asp, ws.Lam[nx:nx+ng], ws.GLag, true)
		kernel.Axpy(1, ws.Gf, ws.GLag)
		kernel.Axpy(1, ws.Lam[:nx], ws.GLag)

		// S3 metrics.
		prInf := kernel.MaxViol(ws.Z, ws.LBZ, ws.UBZ)
		duInf := kernel.NormInf(ws.GLag)
		dxNorm := kernel.NormInf(ws.Dx)

		res.X = append(res.X[:0], ws.Z[:nx]...)
		res.G = append(res.G[:0], ws.Z[nx:]...)
		res.LamX = append(res.LamX[:0], ws.Lam[:nx]...)
		res.LamG = append(res.LamG[:0], ws.Lam[nx:]...)
		res.F = f
		res.IterCount = iter
		res.InfPr = prInf
		res.InfDu = duInf
		res.DxNorm = dxNorm
		res.Reg = reg
		res.LSTrials = lsTrials
		res.LSForced = !lsSuccess

		// S4 diagnostics + callback.
		if s.opts.PrintIteration {
			s.logIteration(logger, iter, f, prInf, duInf, dxNorm, reg, lsTrials, !lsSuccess)
		}
		if s.opts.Callback != nil && s.opts.Callback(res) {
			res.Success = false
			res.ReturnStatus = UserRequestedStop
			return s.finalize(res), nil
		}

		// S5 convergence tests, in order.
		if iter >= s.opts.MinIter && prInf < s.opts.TolPr && duInf < s.opts.TolDu {
			res.Success = true
			res.ReturnStatus = SolveSucceeded
			return s.finalize(res), nil
		}
		if iter >= s.opts.MaxIter {
			res.Success = false
			res.ReturnStatus = MaximumIterationsExceeded
			return s.finalize(res), nil
		}
		if iter >= 1 && iter >= s.opts.MinIter && !qpFailed && dxNorm <= s.opts.MinStepSize {
			res.Success = false
			res.ReturnStatus = SearchDirectionTooSmall
			return s.finalize(res), nil
		}

		// S6 Hessian.
		reg = 0
		if s.opts.HessianApproximation == HessianExact {
			bk, err := s.problem.HessL(ws.Z[:nx], p, 1, ws.Lam[nx:nx+ng])
			if err != nil {
				return nil, oracleError("HessL", err)
			}
			copy(ws.Bk, bk)
			if s.opts.Regularize {
				reg = regularize.EnsurePositiveDefinite(s.hsp, ws.Bk, s.opts.RegularizeEps)
			}
		} else {
			if iter == 0 {
				bfgs.Reset(s.hsp, ws.Bk)
			} else {
				if s.opts.LBFGSMemory > 0 && iter%s.opts.LBFGSMemory == 0 {
					bfgs.Reset(s.hsp, ws.Bk)
				} else {
					copy(ws.Y, ws.GLag)
					kernel.Axpy(-1, ws.GLagOld, ws.Y)
					bfgs.Update(s.hsp, ws.Bk, ws.Dx, ws.Y, ws.Scratch)
				}
			}
		}

		// S7 QP assembly.
		for i := range ws.LBDZ {
			ws.LBDZ[i] = ws.LBZ[i] - ws.Z[i]
			ws.UBDZ[i] = ws.UBZ[i] - ws.Z[i]
		}
		kernel.Fill(ws.Dx, 0)
		copy(ws.DLam, ws.Lam)

		// S8 QP solve.
		qpIn := &qp.Input{
			H: s.hsp, HVals: ws.Bk,
			G:      ws.Gf,
			X0:     ws.Dx,
			LamX0:  ws.DLam[:nx],
			LamA0:  ws.DLam[nx:],
			LBX:    ws.LBDZ[:nx],
			UBX:    ws.UBDZ[:nx],
			A:      s.asp,
			AVals:  ws.Jk,
			LBA:    ws.LBDZ[nx:],
			UBA:    ws.UBDZ[nx:],
		}
		qpOut := &qp.Output{}
		// §7 class 3: QP infeasibility reported by the solver is a
		// numerical warning, not a fatal error -- the driver continues
		// with a zero step, which S5's step-size test ignores on the next
		// pass, so the convergence/iteration-limit tests decide the outcome.
		if err := s.opts.QpSolver.Solve(qpIn, qpOut); err != nil {
			logger.Warn("QP subproblem infeasible or singular, taking zero step", zap.Error(err))
			qpFailed = true
			continue
		}
		qpFailed = false
		copy(ws.Dx, qpOut.X)
		copy(ws.DLam[:nx], qpOut.LamX)
		copy(ws.DLam[nx:], qpOut.LamA)
		logger.Debug("QP solved", zap.Float64("cost", qpOut.Cost))

		// S9 indefiniteness check (warning-only).
		bd := ws.Scratch[:nx]
		kernel.MV(ws.Bk, s.hsp, ws.Dx, bd, false)
		if dBd := kernel.Dot(ws.Dx, bd); dBd < 0 {
			logger.Warn("indefinite step direction", zap.Float64("dBd", dBd))
		}

		// S10 line search. ‖dlam‖∞ on the raw QP multiplier output, per
		// spec.md's σ ← max(σ, 1.01·‖dlam‖∞) (no subtraction against lam).
		dlamNorm := kernel.NormInf(ws.DLam)
		logger.Debug("entering line search", zap.Float64("dx_norm", kernel.NormInf(ws.Dx)), zap.Float64("dlam_norm", dlamNorm))
		lsRes, err := ls.Search(ws.Z[:nx], ws.Dx, ws.ZCand, ws.LBZ, ws.UBZ, ws.Gf, dlamNorm, f,
			func(xCand []float64) (float64, error) {
				fCand, gCand, err := s.problem.Fg(xCand, p)
				if err != nil {
					return 0, err
				}
				copy(ws.ZCand[nx:], gCand)
				return fCand, nil
			})
		if err != nil {
			logger.Warn("line search exhausted without a usable candidate", zap.Error(err))
			res.Success = false
			res.ReturnStatus = SearchDirectionTooSmall
			return s.finalize(res), nil
		}
		lsTrials = lsRes.LSIterations
		lsSuccess = !lsRes.ForcedAccept

		// On acceptance: lam ← (1-t)·lam + t·dlam; dx ← t·dx.
		t := lsRes.T
		for i := range ws.Lam {
			ws.Lam[i] = (1-t)*ws.Lam[i] + t*ws.DLam[i]
		}
		kernel.Scal(t, ws.Dx)

		// S11 commit.
		kernel.Axpy(1, ws.Dx, ws.Z[:nx])

		// S12 BFGS mode: recompute gLagOld with OLD gf/Jk but NEW multipliers.
		if s.opts.HessianApproximation == HessianLimitedMemory {
			kernel.MV(ws.Jk, s.asp, ws.Lam[nx:nx+ng], ws.GLagOld, true)
			kernel.Axpy(1, ws.Gf, ws.GLagOld)
			kernel.Axpy(1, ws.Lam[:nx], ws.GLagOld)
		}
	}
}

// finalize applies the bound-consistency polish (§5 supplement) to the
// result's primal/dual iterate before it is handed back to the caller:
// z is clamped onto any bound it violates, and the multiplier is zeroed
// wherever z lies strictly inside its bounds.
func (s *Solver) finalize(res *Result) *Result {
	kernel.BoundConsistency(res.X, res.LamX, s.problem.LBX, s.problem.UBX)
	if s.problem.NG > 0 {
		kernel.BoundConsistency(res.G, res.LamG, s.problem.LBG, s.problem.UBG)
	}
	return res
}

func (s *Solver) logIteration(logger *zap.Logger, iter int, f, prInf, duInf, dxNorm, reg float64, lsTrials int, forced bool) {
	fields := []zap.Field{
		zap.Int("iter", iter),
		zap.Float64("objective", f),
		zap.Float64("inf_pr", prInf),
		zap.Float64("inf_du", duInf),
		zap.Float64("d_norm", dxNorm),
		zap.Int("ls_trials", lsTrials),
		zap.Bool("ls_forced", forced),
	}
	if reg > 0 {
		fields = append(fields, zap.Float64("log10_reg", math.Log10(reg)))
	} else {
		fields = append(fields, zap.String("reg", "-"))
	}
	logger.Info("iterate", fields...)
}
