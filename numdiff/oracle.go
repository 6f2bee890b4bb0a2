package numdiff

// FgEval evaluates the objective f and the ng constraint values g at x,
// the minimal building block FiniteDifferenceFg/Jac need.
type FgEval func(x []float64) (f float64, g []float64)

// FiniteDifferenceFg adapts a bare FgEval into sqpmethod's FgFunc shape
// (f, g, err), for the cheap oracle the line search calls repeatedly.
func FiniteDifferenceFg(eval FgEval) func(x, p []float64) (float64, []float64, error) {
	return func(x, p []float64) (float64, []float64, error) {
		f, g := eval(x)
		return f, g, nil
	}
}

// FiniteDifferenceJacFg adapts a bare FgEval into sqpmethod's JacFgFunc
// shape by estimating the constraint Jacobian (and, since the objective
// gradient is just row 0 of the same map, the objective gradient) with
// ApproxSpec. jac is returned in dense column-major Asp layout (ng x n).
func FiniteDifferenceJacFg(n, ng int, eval FgEval, method Method) func(x, p []float64) (float64, []float64, []float64, []float64, error) {
	m := ng + 1
	object := func(x, y []float64) {
		f, g := eval(x)
		y[0] = f
		copy(y[1:], g)
	}
	spec := &ApproxSpec{N: n, M: m, Object: object, Method: method, TransJac: true}
	return func(x, p []float64) (float64, []float64, []float64, []float64, error) {
		f, g := eval(x)
		jac := make([]float64, n*m)
		if err := spec.Diff(append([]float64(nil), x...), jac); err != nil {
			return 0, nil, nil, nil, err
		}
		gf := make([]float64, n)
		jk := make([]float64, n*ng)
		for i := 0; i < n; i++ {
			gf[i] = jac[i*m] // row 0 of the (n x m) transposed layout Diff fills
			copy(jk[i*ng:(i+1)*ng], jac[i*m+1:i*m+m])
		}
		return f, gf, g, jk, nil
	}
}
