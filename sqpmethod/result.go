package sqpmethod

// ReturnStatus is the coarse, string-valued outcome of a solve, mirroring
// the four statuses §6 names.
type ReturnStatus string

const (
	SolveSucceeded               ReturnStatus = "Solve_Succeeded"
	MaximumIterationsExceeded    ReturnStatus = "Maximum_Iterations_Exceeded"
	SearchDirectionTooSmall      ReturnStatus = "Search_Direction_Becomes_Too_Small"
	UserRequestedStop            ReturnStatus = "User_Requested_Stop"
)

// Result is the outcome of one Solve call, and the live progress view
// handed to Options.Callback each iteration.
type Result struct {
	Success      bool
	ReturnStatus ReturnStatus

	X, LamX []float64
	G, LamG []float64
	F       float64

	IterCount int
	InfPr     float64 // primal infeasibility, max_viol(z, lbz, ubz)
	InfDu     float64 // dual infeasibility, ‖gLag‖∞
	DxNorm    float64 // ‖dx‖∞ of the last accepted step
	Reg       float64 // last Gershgorin regularization shift, 0 if none
	LSTrials  int
	LSForced  bool

	problem *Problem
	p       []float64 // problem parameters, for Refine
}

// Stats returns an untyped summary dict, mirroring CasADi's get_stats
// without reintroducing the serialization machinery the expanded spec's
// Non-goals exclude.
func (r *Result) Stats() map[string]any {
	return map[string]any{
		"return_status": string(r.ReturnStatus),
		"iter_count":    r.IterCount,
		"success":       r.Success,
		"inf_pr":        r.InfPr,
		"inf_du":        r.InfDu,
	}
}

// Refine recomputes exactly the requested outputs at the final iterate via
// Problem.Grad, the optional post-solve polishing oracle (§5 supplement).
// It is a no-op returning nil if Grad was not supplied and nothing was
// requested.
func (r *Result) Refine(want GradWant) error {
	if !want.F && !want.G && !want.LamX && !want.LamP {
		return nil
	}
	if r.problem == nil || r.problem.Grad == nil {
		return configError("Refine requires Problem.Grad to be set")
	}
	lamG := r.LamG
	gr, err := r.problem.Grad(r.X, r.p, 1, lamG, want)
	if err != nil {
		return oracleError("Grad", err)
	}
	if want.F {
		r.F = gr.F
	}
	if want.G {
		r.G = gr.G
	}
	if want.LamX {
		r.LamX = gr.LamX
	}
	if want.LamP && gr.LamP != nil {
		// LamP has no dedicated Result field (no NP-length parameter
		// sensitivity slot in this core) and Stats does not report it;
		// the recomputed value is discarded.
	}
	return nil
}
