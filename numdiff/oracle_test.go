package numdiff

import (
	"math"
	"testing"
)

func TestFiniteDifferenceJacFgMatchesAnalytic(t *testing.T) {
	eval := func(x []float64) (float64, []float64) {
		f := x[0]*x[0] + x[1]*x[1]
		g := []float64{x[0] + x[1]}
		return f, g
	}

	fg := FiniteDifferenceJacFg(2, 1, eval, Central)
	f, gf, g, jk, err := fg([]float64{1, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(f-5) > 1e-9 {
		t.Fatalf("f = %v, want 5", f)
	}
	wantGf := []float64{2, 4}
	for i, v := range gf {
		if math.Abs(v-wantGf[i]) > 1e-4 {
			t.Fatalf("gf[%d] = %v, want %v", i, v, wantGf[i])
		}
	}
	if math.Abs(g[0]-3) > 1e-9 {
		t.Fatalf("g[0] = %v, want 3", g[0])
	}
	wantJk := []float64{1, 1}
	for i, v := range jk {
		if math.Abs(v-wantJk[i]) > 1e-4 {
			t.Fatalf("jk[%d] = %v, want %v", i, v, wantJk[i])
		}
	}
}
