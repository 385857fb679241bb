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
)

const (
	exponentMask uint64 = 0x7ff0000000000000
	mantissaMask uint64 = 0x000fffffffffffff
	exponentUnit uint64 = 0x0010000000000000
)

// ceilPowerOfTwo returns the smallest power of 2 larger or equal to x. It
// returns NaN for nonpositive, infinite or NaN inputs and for inputs above
// 2^1023. Any other result is an exact power of 2.
func ceilPowerOfTwo(x float64) float64 {
	if x <= 0.0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return math.NaN()
	}
	b := math.Float64bits(x)
	// A finite positive float is a power of 2 iff its mantissa is empty.
	if b&mantissaMask == 0 {
		return x
	}
	exp := b & exponentMask
	if exp >= math.Float64bits(math.MaxFloat64)&exponentMask {
		return math.NaN()
	}
	return math.Float64frombits(exp + exponentUnit)
}

// roundToMultiple returns the multiple of granularity closest to x. Ties are
// broken towards positive infinity. granularity must be positive.
func roundToMultiple(x, granularity int64) int64 {
	r := x % granularity
	if r < 0 {
		r += granularity
	}
	down := x - r
	if 2*r >= granularity {
		return down + granularity
	}
	return down
}
