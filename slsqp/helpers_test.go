// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slsqp

import (
	"math"
	"reflect"
)

func almostEqual[T float64 | []float64](a, b T, tol float64) bool {
	equalWithinAbs := func(a, b float64) bool {
		return a == b || math.Abs(a-b) <= tol
	}
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float64:
		return equalWithinAbs(any(a).(float64), any(b).(float64))
	case reflect.Slice:
		a, b := any(a).([]float64), any(b).([]float64)
		if len(a) != len(b) {
			return false
		}
		for i, a := range a {
			if !equalWithinAbs(a, b[i]) {
				return false
			}
		}
		return true
	default:
		panic("unknown type")
	}
}
