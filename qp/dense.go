// Package qp defines the capability interface the outer SQP driver uses to
// solve the per-iteration quadratic subproblem, and ships one concrete,
// dense reference backend built on the teacher's slsqp least-squares
// solver chain (LSQ → LSEI → LSI/LDP → HFTI/NNLS).
package qp

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sqpgo/sqpmethod/kernel"
	"github.com/sqpgo/sqpmethod/slsqp"
)

// Input mirrors the positional QP contract: minimize ½dᵗHd + Gᵗd subject to
// LBX ≤ d ≤ UBX (bounds already shifted onto the step by the caller) and
// LBA ≤ A·d ≤ UBA. X0, LamX0 and LamA0 are warm-start values; the dense
// backend does not read them.
type Input struct {
	H     *kernel.SparsityPattern
	HVals []float64
	G     []float64

	X0, LamX0, LamA0 []float64
	LBX, UBX         []float64

	A     *kernel.SparsityPattern
	AVals []float64
	LBA, UBA []float64
}

// Output is the QP solution: the step d in X, updated multipliers, and the
// subproblem's optimal objective value.
type Output struct {
	X, LamX, LamA []float64
	Cost          float64
}

// Solver is the capability interface the outer driver is built against.
// Callers can inject an external QP/LP package (qpOASES, OSQP, HiGHS
// bindings, ...) that satisfies this contract instead of NewDenseSolver.
type Solver interface {
	Solve(in *Input, out *Output) error
}

// infBound is the magnitude slsqp.LSQ treats as "no bound": it skips any
// bound at or beyond ±infBound, and any NaN bound.
const infBound = math.MaxFloat64

type denseSolver struct{}

// NewDenseSolver returns the reference QP backend. It classifies two-sided
// general constraints into equality/inequality rows, LDLᵗ-factors H into
// the packed format slsqp.LSQ expects, and recovers bound multipliers from
// KKT stationarity since LSQ itself only reports the general-constraint
// multipliers.
func NewDenseSolver() Solver { return denseSolver{} }

func (denseSolver) Solve(in *Input, out *Output) error {
	n := in.H.NRow
	if in.H.NCol != n {
		return errors.New("qp: H must be square")
	}
	if len(in.G) != n || len(in.LBX) != n || len(in.UBX) != n {
		return errors.New("qp: dimension mismatch in bounds/gradient")
	}

	nRows := 0
	if in.A != nil {
		nRows = in.A.NRow
	}

	rows, err := classifyRows(in, nRows)
	if err != nil {
		return err
	}

	meq := len(rows.eqRow)
	mineq := len(rows.ineqRow)
	m := meq + mineq
	la := max(1, m)

	// Assemble slsqp's column-major A (leading dim la) and b, equality
	// rows first. LSQ reads its rows as A·x + b = 0 / ≥ 0, so b carries
	// -rhs for a row coef·d = rhs / coef·d ≥ rhs.
	aFlat := make([]float64, la*n)
	b := make([]float64, la)
	for r, row := range rows.eqRow {
		for j := 0; j < n; j++ {
			aFlat[r+j*la] = row.coef[j]
		}
		b[r] = -row.rhs
	}
	for r, row := range rows.ineqRow {
		rr := meq + r
		for j := 0; j < n; j++ {
			aFlat[rr+j*la] = row.coef[j]
		}
		b[rr] = -row.rhs
	}

	dense := toDense(in.H, in.HVals, n)
	l := make([]float64, n*(n+1)/2+1)
	if err := ldlFactor(n, dense, l); err != nil {
		return err
	}

	xl := lowerBoundOrNaN(in.LBX)
	xu := upperBoundOrNaN(in.UBX)

	x := make([]float64, n)
	y := make([]float64, m+n+n)
	w, jw := scratch(n, meq, mineq)

	norm, mode := slsqp.LSQ(m, meq, n, n*(n+1)/2+1, l, in.G, aFlat, b, xl, xu,
		x, y, w, jw, 500, infBound)

	if mode != slsqp.HasSolution {
		return errors.Errorf("qp: subproblem infeasible or singular (mode=%d)", mode)
	}

	out.X = x
	out.Cost = 0.5*kernel.Bilin(in.HVals, in.H, x, x) + kernel.Dot(in.G, x)
	_ = norm

	// LSQ's multipliers y satisfy Hx + G = Σ y·row; they are negated here so
	// that Hx + G + Aᵗλ_A + λ_X = 0, the sign convention of the driver's
	// Lagrangian gradient (positive on an active upper bound, negative on an
	// active lower one).
	lamA := make([]float64, nRows)
	for r, orig := range rows.eqRow {
		lamA[orig.origRow] -= y[r]
	}
	for r, orig := range rows.ineqRow {
		lamA[orig.origRow] -= orig.sign * y[meq+r]
	}
	out.LamA = lamA

	// Recover bound multipliers from stationarity: λ_X = -(Hx + G + Aᵗλ_A),
	// nonzero only where a bound is active (LSQ reports NaN placeholders
	// for these, see slsqp.LSQ's "unused multipliers" comment).
	resid := make([]float64, n)
	kernel.MV(in.HVals, in.H, x, resid, false)
	kernel.Axpy(1, in.G, resid)
	if in.A != nil {
		atLam := make([]float64, n)
		kernel.MV(in.AVals, in.A, lamA, atLam, true)
		for i := range resid {
			resid[i] += atLam[i]
		}
	}
	lamX := make([]float64, n)
	for i := 0; i < n; i++ {
		atLower := !math.IsNaN(xl[i]) && x[i] <= xl[i]+1e-9
		atUpper := !math.IsNaN(xu[i]) && x[i] >= xu[i]-1e-9
		if atLower || atUpper {
			lamX[i] = -resid[i]
		}
	}
	out.LamX = lamX

	return nil
}

type constraintRow struct {
	coef    []float64
	rhs     float64
	origRow int
	sign    float64
}

type classifiedRows struct {
	eqRow, ineqRow []constraintRow
}

// classifyRows splits two-sided constraints lba ≤ A·d ≤ uba into an
// equality row when lba == uba, or one/two one-sided rows of the form
// coef·d ≥ rhs otherwise -- the same box-bound-splitting idea slsqp.LSQ
// applies internally to xl/xu, lifted to general rows.
func classifyRows(in *Input, nRows int) (classifiedRows, error) {
	var out classifiedRows
	if nRows == 0 {
		return out, nil
	}
	if len(in.LBA) != nRows || len(in.UBA) != nRows {
		return out, errors.New("qp: LBA/UBA dimension mismatch")
	}
	n := in.H.NRow
	dense := toDense(in.A, in.AVals, nRows)
	for r := 0; r < nRows; r++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = dense.at(r, j)
		}
		lb, ub := in.LBA[r], in.UBA[r]
		switch {
		case lb == ub:
			out.eqRow = append(out.eqRow, constraintRow{coef: row, rhs: lb, origRow: r, sign: 1})
		case !math.IsInf(lb, -1) && !math.IsInf(ub, 1):
			out.ineqRow = append(out.ineqRow, constraintRow{coef: row, rhs: lb, origRow: r, sign: 1})
			neg := negate(row)
			out.ineqRow = append(out.ineqRow, constraintRow{coef: neg, rhs: -ub, origRow: r, sign: -1})
		case !math.IsInf(lb, -1):
			out.ineqRow = append(out.ineqRow, constraintRow{coef: row, rhs: lb, origRow: r, sign: 1})
		case !math.IsInf(ub, 1):
			neg := negate(row)
			out.ineqRow = append(out.ineqRow, constraintRow{coef: neg, rhs: -ub, origRow: r, sign: -1})
		default:
			// unconstrained row, drop it entirely.
		}
	}
	return out, nil
}

func negate(v []float64) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = -x
	}
	return o
}

type denseMat struct {
	n, m int
	v    []float64
}

func (d denseMat) at(i, j int) float64 { return d.v[i+j*d.n] }

func toDense(sp *kernel.SparsityPattern, vals []float64, nRows int) denseMat {
	d := denseMat{n: nRows, m: sp.NCol, v: make([]float64, nRows*sp.NCol)}
	for j := 0; j < sp.NCol; j++ {
		for k := sp.ColPtr[j]; k < sp.ColPtr[j+1]; k++ {
			d.v[sp.Row[k]+j*nRows] = vals[k]
		}
	}
	return d
}

func lowerBoundOrNaN(b []float64) []float64 {
	out := make([]float64, len(b))
	for i, v := range b {
		if math.IsInf(v, -1) || v <= -infBound {
			out[i] = math.NaN()
		} else {
			out[i] = v
		}
	}
	return out
}

func upperBoundOrNaN(b []float64) []float64 {
	out := make([]float64, len(b))
	for i, v := range b {
		if math.IsInf(v, 1) || v >= infBound {
			out[i] = math.NaN()
		} else {
			out[i] = v
		}
	}
	return out
}

// scratch sizes slsqp.LSQ's temporary work arrays generously -- LSQ panics
// on out-of-bounds access rather than growing its buffers, so this
// deliberately over-allocates rather than replicating the exact minimal
// sizing formula the teacher's driver computes for its own, differently
// shaped, augmented-QP workspace.
func scratch(n, meq, mineq int) ([]float64, []int) {
	total := 4*(n+1)*(n+meq+mineq+2) + 10*(meq+mineq+1)*(meq+mineq+1) + 64
	return make([]float64, total), make([]int, max(mineq, n+1-mineq)+8)
}

// ldlFactor computes the LDLᵗ decomposition (unit lower triangular L,
// diagonal D) of the dense symmetric matrix b, packed column-by-column in
// the layout slsqp.LSQ expects: for column c, l holds D_cc followed by
// L_{c+1,c}..L_{n-1,c}, columns concatenated in increasing order, with one
// trailing unused slot for LSQ's augmented-problem rho slot.
func ldlFactor(n int, b denseMat, l []float64) error {
	d := make([]float64, n)
	lMat := make([]float64, n*n) // lMat[i+j*n] = L_ij, unit lower triangular
	for i := 0; i < n; i++ {
		lMat[i+i*n] = 1
	}
	for c := 0; c < n; c++ {
		s := b.at(c, c)
		for k := 0; k < c; k++ {
			s -= d[k] * lMat[c+k*n] * lMat[c+k*n]
		}
		if math.Abs(s) < 1e-14 {
			s = math.Copysign(1e-14, s)
			if s == 0 {
				s = 1e-14
			}
		}
		d[c] = s
		for r := c + 1; r < n; r++ {
			s := b.at(r, c)
			for k := 0; k < c; k++ {
				s -= d[k] * lMat[r+k*n] * lMat[c+k*n]
			}
			lMat[r+c*n] = s / d[c]
		}
	}

	off := 0
	for c := 0; c < n; c++ {
		blockLen := n - c
		l[off] = d[c]
		for t := 1; t < blockLen; t++ {
			l[off+t] = lMat[c+t+c*n]
		}
		off += blockLen
	}
	if off >= len(l) {
		return errors.New("qp: LDLt packing overflow")
	}
	l[off] = 0
	return nil
}
