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

	"github.com/google/differential-privacy/diffgen/checks"
	"github.com/google/differential-privacy/diffgen/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// granularityParam determines the resolution of the noise relative to the
// sensitivity and epsilon. It corresponds to the value 2ᵏ of the secure noise
// generation paper. The probability of an overflow is less than 2⁻¹⁰⁰⁰ when it
// is at most 2⁴⁰ and epsilon is at least 2⁻⁵⁰.
//
// This parameter should be a power of 2.
var granularityParam = math.Exp2(40)

type laplace struct {
	r *rand.Rand
}

// Laplace returns a Noise instance that adds Laplace noise to its input.
//
// The noise is based on a geometric sampling mechanism that is robust against
// unintentional privacy leaks due to artifacts of floating point arithmetic.
func Laplace(r *rand.Rand) Noise {
	return laplace{r: r}
}

// AddNoiseInt64 adds Laplace noise of scale l1Sensitivity/ε to x.
func (l laplace) AddNoiseInt64(x, l1Sensitivity int64, epsilon float64) (int64, error) {
	if err := checkArgsLaplace(l1Sensitivity, epsilon); err != nil {
		return 0, err
	}
	granularity := ceilPowerOfTwo((float64(l1Sensitivity) / epsilon) / granularityParam)
	sample := l.twoSidedGeometric(granularity * epsilon / (float64(l1Sensitivity) + granularity))
	if granularity < 1 {
		return x + int64(math.Round(float64(sample)*granularity)), nil
	}
	return roundToMultiple(x, int64(granularity)) + sample*int64(granularity), nil
}

func (laplace) String() string {
	return "Laplace Noise"
}

type continuousLaplace struct {
	r *rand.Rand
}

// ContinuousLaplaceNoise returns a Noise instance that draws a continuous
// Laplace sample and truncates it toward zero before adding it to the input.
func ContinuousLaplaceNoise(r *rand.Rand) Noise {
	return continuousLaplace{r: r}
}

// AddNoiseInt64 adds the truncated Laplace sample of scale l1Sensitivity/ε to x.
func (c continuousLaplace) AddNoiseInt64(x, l1Sensitivity int64, epsilon float64) (int64, error) {
	if err := checkArgsLaplace(l1Sensitivity, epsilon); err != nil {
		return 0, err
	}
	d := distuv.Laplace{
		Mu:    0,
		Scale: laplaceLambda(l1Sensitivity, epsilon),
		Src:   c.r.Source(),
	}
	return x + int64(d.Rand()), nil
}

func (continuousLaplace) String() string {
	return "Continuous Laplace Noise"
}

func checkArgsLaplace(l1Sensitivity int64, epsilon float64) error {
	if err := checks.CheckL1Sensitivity(l1Sensitivity); err != nil {
		return err
	}
	return checks.CheckEpsilonVeryStrict(epsilon)
}

// laplaceLambda computes the scale parameter λ of the Laplace distribution
// required for ε-differential privacy on a count with the given L_1
// sensitivity.
func laplaceLambda(l1Sensitivity int64, epsilon float64) float64 {
	return float64(l1Sensitivity) / epsilon
}

// geometric draws a sample from a geometric distribution with parameter
//
//	p = 1 - e^-λ.
//
// It returns the number of Bernoulli trials until the first success, truncated
// to the max int64 value.
func (l laplace) geometric(lambda float64) int64 {
	if l.r.Uniform() > -1.0*math.Expm1(-1.0*lambda*math.MaxInt64) {
		return math.MaxInt64
	}

	// Binary search for the sample in (left, right]. Each iteration keeps the
	// subinterval that contains the sample with the matching probability.
	var left int64 = 0              // exclusive bound
	var right int64 = math.MaxInt64 // inclusive bound

	for left+1 < right {
		// A midpoint that splits the remaining probability mass roughly in half.
		mid := left - int64(math.Floor((math.Log(0.5)+math.Log1p(math.Exp(lambda*float64(left-right))))/lambda))
		if mid <= left {
			mid = left + 1
		} else if mid >= right {
			mid = right - 1
		}

		// q = Pr[X ≤ mid | left < X ≤ right]
		q := math.Expm1(lambda*float64(left-mid)) / math.Expm1(lambda*float64(left-right))
		if l.r.Uniform() <= q {
			right = mid
		} else {
			left = mid
		}
	}
	return right
}

// twoSidedGeometric draws a sample from a geometric distribution mirrored at 0.
func (l laplace) twoSidedGeometric(lambda float64) int64 {
	var sample int64 = 0
	var sign int64 = -1
	// Keep a sample of 0 only if the sign is positive. Otherwise, the
	// probability of 0 would be twice as high as it should be.
	for sample == 0 && sign == -1 {
		sample = l.geometric(lambda) - 1
		sign = int64(l.r.Sign())
	}
	return sample * sign
}
