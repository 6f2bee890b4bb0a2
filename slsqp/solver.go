// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slsqp

import (
	"math"
)

// LSQ (Least Squares Quadratic programming) solves the problem
//
// minimize ‖ 𝐃¹ᐟ²𝐋ᵀ𝐱 + 𝐃⁻¹ᐟ²𝐋⁻¹𝐠 ‖₂ subject to
//   - 𝐀ⱼ𝐱 + 𝐛ⱼ = 0  (j = 1 ··· mₑ)
//   - 𝐀ⱼ𝐱 + 𝐛ⱼ ≥ 0  (j = mₑ+1 ··· m)
//   - 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// where
//   - 𝐋 is an n × n lower triangular matrix with unit diagonal elements
//   - 𝐃 is an n × n diagonal matrix
//   - 𝐠 is an n-vector
//   - 𝐀 is an m × n matrix
//   - 𝐛 is an m-vector
//
// LSQ can be solved as LSEI problem 𝚖𝚒𝚗‖ 𝐄𝐱 - 𝐟 ‖₂ subject to 𝐂𝐱 = 𝐝 and 𝐆𝐱 ≥ 𝐡 with:
//   - 𝐄 = 𝐃¹ᐟ²𝐋ᵀ
//   - 𝐟 = -𝐃⁻¹ᐟ²𝐋⁻¹𝐠
//   - 𝐂 = { 𝐀ⱼ: j = 1 ··· mₑ }
//   - 𝐝 = { -𝐛ⱼ: j = 1 ··· mₑ }
//   - 𝐆ⱼ = { 𝐀ⱼ: j = mₑ+1 ··· m }
//   - 𝐡ⱼ = { -𝐛ⱼ: j = mₑ+1 ··· m }
//
// and the bounds is equivalent to inequality constraints 𝐈𝐱 ≥ 𝒍 and -𝐈𝐱 ≥ -𝒖 such that:
//   - 𝐆ⱼ = { 𝐈ⱼ: j = m+1 ··· m+n }
//   - 𝐡ⱼ = { 𝒍ⱼ: j = m+1 ··· m+n }
//   - 𝐆ⱼ = { -𝐈ⱼ: j = m+n ··· m+2n }
//   - 𝐡ⱼ = { -𝒖ⱼ: j = m+n ··· m+2n }
//
// where
//   - 𝐄 is an n × n upper triangular matrix
//   - 𝐟 is an n-vector
//   - 𝐂 is an mₑ × n matrix
//   - 𝐝 is an mₑ-vector
//   - 𝐆 is an (m-mₑ+2n) × n matrix
//   - 𝐡 is an (m-mₑ+2n)-vector
func LSQ(m, meq, n, nl int,
	// l(nl) = 𝐋 + 𝐃
	// g(n) = 𝐠
	// a(m,n) = 𝐀
	// b(m) = 𝐛
	// xl(n), xu(n) = 𝒍, 𝒖
	l, g, a, b, xl, xu []float64,
	// x(n) : solution vector
	// y(m+n+n) : lagrange multiplier (constraints, lower+upper bounds)
	x, y []float64,
	// w, jw : temporary workspace
	w []float64, jw []int,
	maxIter int, infBnd float64) (float64, sqpMode) {

	mineq := m - meq
	m1 := mineq + n + n // ine
	la := max(m, 1)

	// Determine problem type
	var n1, n2, n3 int
	n1 = n + 1
	if (n+1)*n/2+1 == nl {
		// Solve the origin problem m × n
		n2, n3 = 0, n
	} else {
		// Solve the augmented problem m × (n+1)
		n2, n3 = 1, n-1
	}

	e0, f0 := 0, n*n                // Start index of E and f
	c0, d0 := f0+n, (f0+n)+meq*n    // Start index of C and d
	g0, h0 := d0+meq, (d0+meq)+m1*n // Start index of G and h
	w0 := h0 + m1                   // Start index of workspace

	// Recover matrix E and vector F from l and g
	i2, i3, i4 := 0, 0, 0
	for j := 0; j < n3; j++ {
		i := n - j
		diag := math.Sqrt(l[i2]) // 𝐃¹ᐟ²
		dzero(w[i3 : i3+i])
		dcopy(i-n2, l[i2:], 1, w[i3:], n) // 𝐄ⱼ = 𝐋ⱼᵀ
		dscal(i-n2, diag, w[i3:], n)      //  𝐄ⱼ = 𝐃¹ᐟ²𝐋ⱼᵀ
		w[i3] = diag                      //  𝐄ⱼⱼ = 𝐃¹ᐟ²ⱼⱼ
		// 𝐲 = 𝐋⁻¹𝐠  →  𝐲ⱼ = (𝐠ⱼ - ∑ᵢ𝐋ⱼᵢ𝐲ᵢ) / 𝐋ⱼⱼ
		// 𝐋ⱼⱼ = 1   →  (𝐋⁻¹𝐠)ⱼ = (𝐠ⱼ - ∑ᵢ𝐋ⱼᵢ𝐲ᵢ)
		w[f0+j] = (g[j] - ddot(j, w[i4:], 1, w[f0:], 1)) / diag // 𝐟ⱼ = 𝐃⁻¹ᐟ²ⱼⱼ(𝐋⁻¹𝐠)ⱼ
		i2 += i - n2
		i3 += n1
		i4 += n
	}
	if n2 == 1 {
		w[i3] = l[nl-1]      // 𝐄ⱼⱼ = 𝛒
		dzero(w[i4 : i4+n3]) //
		w[f0+n3] = zero      // 𝐟ⱼ = 0
	}
	dscal(n, -one, w[f0:f0+n], 1) // 𝐟ⱼ = -𝐃⁻¹ᐟ²𝐋⁻¹𝐠

	if meq > 0 {
		// Recover matrix C from upper part of A
		for i := 0; i < meq; i++ {
			dcopy(n, a[i:], la, w[c0+i:], meq) // 𝐂ⱼ = 𝐀ⱼ = - 𝒄ⱼ(𝐱ᵏ)
		}
		// Recover vector d from upper part of b
		dcopy(meq, b, 1, w[d0:], 1) // 𝐝ⱼ = -𝐛ⱼ = -𝒄ⱼ(𝐱ᵏ)
		dscal(meq, -one, w[d0:], 1)
	}

	if mineq > 0 {
		// Recover matrix G from lower part of A
		for i := 0; i < mineq; i++ {
			dcopy(n, a[meq+i:], la, w[g0+i:], m1) // 𝐆ⱼ = 𝐀ⱼ = - 𝒄ⱼ(𝐱ᵏ)
		}
		// Recover vector h from lower part of b
		dcopy(mineq, b[meq:], 1, w[h0:], 1) // 𝐡ⱼ = -𝐛ⱼ = -𝒄ⱼ(𝐱ᵏ)
		dscal(mineq, -one, w[h0:], 1)
	}

	// Augment matrix G with ±𝐈
	// Recover vector h from bounds
	bnd := mineq
	xl, xu = xl[:n], xu[:n]
	for i, l := range xl {
		if !math.IsNaN(l) && l > -infBnd {
			ip, il := g0+bnd, h0+bnd
			w[il] = l    // 𝐡ⱼ = 𝒍ⱼ
			w[ip] = zero // 𝐆ⱼ = 𝐈ⱼ
			dcopy(n, w[ip:], 0, w[ip:], m1)
			w[ip+m1*i] = one
			bnd++
		}
	}
	for i, u := range xu {
		if !math.IsNaN(u) && u < infBnd {
			ip, il := g0+bnd, h0+bnd
			w[il] = -u   // 𝐡ⱼ = -𝒖ⱼ
			w[ip] = zero // 𝐆ⱼ = -𝐈ⱼ
			dcopy(n, w[ip:], 0, w[ip:], m1)
			w[ip+m1*i] = -one
			bnd++
		}
	}

	nan := (n + n) - (bnd - mineq)
	norm, mode := LSEI(w[c0:d0], w[d0:g0], w[e0:f0], w[f0:c0], w[g0:h0], w[h0:w0], max(1, meq), meq, n, n, m1, m1-nan, n, x, w[w0:], jw, maxIter)

	if mode == HasSolution {
		// Restore Lagrange multipliers
		dcopy(m, w[w0:], 1, y, 1)
		if n3 > 0 {
			// Set unused multipliers to NaN
			y[m] = math.NaN()
			dcopy(n3+n3, y[m:], 0, y[m:], 1)
		}
		for i, l := range xl {
			if !math.IsNaN(l) && l > -infBnd && x[i] < l {
				x[i] = l
			}
		}
		for i, u := range xu {
			if !math.IsNaN(u) && u < infBnd && x[i] > u {
				x[i] = u
			}
		}
	}
	return norm, mode
}
