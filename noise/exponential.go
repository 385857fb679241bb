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
	"fmt"
	"math"

	"github.com/google/differential-privacy/diffgen/checks"
	"github.com/google/differential-privacy/diffgen/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Exponential implements the exponential mechanism: it selects an index with
// probability proportional to exp(ε·score/(2·sensitivity)), optionally
// multiplied by a per-candidate width.
type Exponential struct {
	r *rand.Rand
}

// NewExponential returns an exponential mechanism drawing from r.
func NewExponential(r *rand.Rand) *Exponential {
	return &Exponential{r: r}
}

// Select returns an index into scores chosen with the exponential mechanism.
func (e *Exponential) Select(scores []float64, epsilon, sensitivity float64) (int, error) {
	return e.SelectWeighted(scores, nil, epsilon, sensitivity)
}

// SelectWeighted returns an index into scores chosen with the exponential
// mechanism, where the probability of each candidate is also proportional to
// its width. A nil widths slice weighs every candidate equally.
func (e *Exponential) SelectWeighted(scores, widths []float64, epsilon, sensitivity float64) (int, error) {
	p, err := Probabilities(scores, widths, epsilon, sensitivity)
	if err != nil {
		return 0, err
	}
	if len(p) == 1 {
		return 0, nil
	}
	c := distuv.NewCategorical(p, e.r.Source())
	return int(c.Rand()), nil
}

// Probabilities returns the normalized selection probabilities used by
// SelectWeighted. Scores are shifted by their maximum before exponentiation so
// that large scores do not overflow.
func Probabilities(scores, widths []float64, epsilon, sensitivity float64) ([]float64, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("exponential mechanism needs at least one candidate")
	}
	if widths != nil && len(widths) != len(scores) {
		return nil, fmt.Errorf("got %d widths for %d scores", len(widths), len(scores))
	}
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return nil, err
	}
	if err := checks.CheckSensitivity(sensitivity); err != nil {
		return nil, err
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("score %d is %f, must be finite", i, s)
		}
	}
	max := floats.Max(scores)
	p := make([]float64, len(scores))
	for i, s := range scores {
		w := math.Exp(epsilon * (s - max) / (2 * sensitivity))
		if widths != nil {
			if widths[i] < 0 || math.IsNaN(widths[i]) || math.IsInf(widths[i], 0) {
				return nil, fmt.Errorf("width %d is %f, must be finite and nonnegative", i, widths[i])
			}
			w *= widths[i]
		}
		p[i] = w
	}
	sum := floats.Sum(p)
	if sum <= 0 {
		return nil, fmt.Errorf("exponential mechanism weights sum to %f, need a positive total", sum)
	}
	floats.Scale(1/sum, p)
	return p, nil
}
