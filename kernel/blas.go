package kernel

import "math"

// Copy copies src into dst; len(dst) must be >= len(src).
func Copy(dst, src []float64) {
	copy(dst, src)
}

// Fill sets every element of dst to v.
func Fill(dst []float64, v float64) {
	n := uint(len(dst))
	m := n % 4
	for i := uint(0); i < m; i++ {
		dst[i] = v
	}
	for i := m; i < n; i += 4 {
		d := dst[i : i+4 : i+4]
		d[0], d[1], d[2], d[3] = v, v, v, v
	}
}

// Axpy computes y += a*x in place.
func Axpy(a float64, x, y []float64) {
	if a == 0 {
		return
	}
	n := uint(len(x))
	if n > uint(len(y)) {
		panic("kernel: Axpy length mismatch")
	}
	m := n % 4
	for i := uint(0); i < m; i++ {
		y[i] += a * x[i]
	}
	for i := m; i < n; i += 4 {
		xs := x[i : i+4 : i+4]
		ys := y[i : i+4 : i+4]
		ys[0] += a * xs[0]
		ys[1] += a * xs[1]
		ys[2] += a * xs[2]
		ys[3] += a * xs[3]
	}
}

// Scal scales x by a in place.
func Scal(a float64, x []float64) {
	for i := range x {
		x[i] *= a
	}
}

// Dot returns the inner product of x and y.
func Dot(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("kernel: Dot length mismatch")
	}
	var s float64
	n := uint(len(x))
	m := n % 4
	for i := uint(0); i < m; i++ {
		s += x[i] * y[i]
	}
	for i := m; i < n; i += 4 {
		xs := x[i : i+4 : i+4]
		ys := y[i : i+4 : i+4]
		s += xs[0]*ys[0] + xs[1]*ys[1] + xs[2]*ys[2] + xs[3]*ys[3]
	}
	return s
}

// NormInf returns max(|x_i|), 0 for an empty slice.
func NormInf(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// MV computes y = A*x (transpose=false) or y = Aᵗ*x (transpose=true) for
// the CSC matrix (sp, vals), overwriting y.
func MV(vals []float64, sp *SparsityPattern, x, y []float64, transpose bool) {
	if !transpose {
		if len(x) != sp.NCol || len(y) != sp.NRow {
			panic("kernel: MV dimension mismatch")
		}
		Fill(y, 0)
		for j := 0; j < sp.NCol; j++ {
			xj := x[j]
			if xj == 0 {
				continue
			}
			for k := sp.ColPtr[j]; k < sp.ColPtr[j+1]; k++ {
				y[sp.Row[k]] += vals[k] * xj
			}
		}
		return
	}
	if len(x) != sp.NRow || len(y) != sp.NCol {
		panic("kernel: MV transpose dimension mismatch")
	}
	for j := 0; j < sp.NCol; j++ {
		var s float64
		for k := sp.ColPtr[j]; k < sp.ColPtr[j+1]; k++ {
			s += vals[k] * x[sp.Row[k]]
		}
		y[j] = s
	}
}

// Bilin returns the bilinear form uᵗ*A*v for the square CSC matrix
// (sp, vals), used by the dense QP backend to evaluate ½dᵗHd in its cost.
func Bilin(vals []float64, sp *SparsityPattern, u, v []float64) float64 {
	if sp.NRow != sp.NCol || len(u) != sp.NRow || len(v) != sp.NCol {
		panic("kernel: Bilin dimension mismatch")
	}
	var s float64
	for j := 0; j < sp.NCol; j++ {
		vj := v[j]
		if vj == 0 {
			continue
		}
		for k := sp.ColPtr[j]; k < sp.ColPtr[j+1]; k++ {
			s += vals[k] * vj * u[sp.Row[k]]
		}
	}
	return s
}

// MaxViol returns the largest bound violation max(lb-z, z-ub, 0) over all
// components, used by the outer driver to report inf_pr.
func MaxViol(z, lb, ub []float64) float64 {
	var m float64
	for i, zi := range z {
		if v := lb[i] - zi; v > m {
			m = v
		}
		if v := zi - ub[i]; v > m {
			m = v
		}
	}
	return m
}

// VFMax folds a ring buffer of the last k merit values with seed through
// math.Max, used by the non-monotone line search's merit-memory window.
func VFMax(buf []float64, k int, seed float64) float64 {
	m := seed
	for i := 0; i < k && i < len(buf); i++ {
		if buf[i] > m {
			m = buf[i]
		}
	}
	return m
}

// BoundConsistency clamps z onto violated bounds and zeroes the
// corresponding multiplier wherever a bound is inactive, the cheap
// post-solve polish CasADi's sqpmethod applies before returning.
func BoundConsistency(z, lam, lb, ub []float64) {
	for i := range z {
		switch {
		case z[i] < lb[i]:
			z[i] = lb[i]
		case z[i] > ub[i]:
			z[i] = ub[i]
		default:
			if lam[i] != 0 && lb[i] != ub[i] {
				lam[i] = 0
			}
		}
	}
}
