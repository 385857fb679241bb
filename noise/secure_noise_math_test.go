//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package noise

import (
	"math"
	"testing"
)

func TestCeilPowerOfTwoInputIsNotInDomain(t *testing.T) {
	for _, x := range []float64{
		0.0,
		-1.0,
		math.Inf(-1),
		math.Inf(1),
		math.NaN(),
		math.MaxFloat64,
	} {
		if got := ceilPowerOfTwo(x); !math.IsNaN(got) {
			t.Errorf("ceilPowerOfTwo(%f) = %f, want NaN", x, got)
		}
	}
}

func TestCeilPowerOfTwo(t *testing.T) {
	for exponent := -60.0; exponent <= 60; exponent++ {
		x := math.Pow(2.0, exponent)
		if got := ceilPowerOfTwo(x); got != x {
			t.Errorf("ceilPowerOfTwo(%g) = %g, want %g", x, got, x)
		}
		if got, want := ceilPowerOfTwo(x*1.001), 2*x; got != want {
			t.Errorf("ceilPowerOfTwo(%g) = %g, want %g", x*1.001, got, want)
		}
	}
}

func TestRoundToMultiple(t *testing.T) {
	for _, tc := range []struct {
		x, granularity, want int64
	}{
		{0, 4, 0},
		{5, 4, 4},
		{6, 4, 8},
		{7, 4, 8},
		{-5, 4, -4},
		{-6, 4, -4},
		{-7, 4, -8},
		{9, 1, 9},
		{-9, 1, -9},
	} {
		if got := roundToMultiple(tc.x, tc.granularity); got != tc.want {
			t.Errorf("roundToMultiple(%d, %d) = %d, want %d", tc.x, tc.granularity, got, tc.want)
		}
	}
}
