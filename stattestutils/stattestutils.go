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

// Package stattestutils provides statistical helpers for the randomized tests
// of the noise and selection mechanisms.
//
// This package is not optimized for performance or speed and is only intended
// to be used in tests.
package stattestutils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SampleMean returns the average of the values, or 0 for an empty slice.
func SampleMean(values []float64) float64 {
	return floats.Sum(values) / math.Max(1, float64(len(values)))
}

// SampleVariance returns the biased sample variance: the mean squared distance
// of the values to their mean.
func SampleVariance(values []float64) float64 {
	mean := SampleMean(values)
	var sumOfSquares float64
	for _, v := range values {
		sumOfSquares += (v - mean) * (v - mean)
	}
	return sumOfSquares / math.Max(1, float64(len(values)))
}

// Frequencies draws n samples from draw, which must return an index in
// [0, k), and returns the empirical frequency of every index.
func Frequencies(k, n int, draw func() int) []float64 {
	freq := make([]float64, k)
	for i := 0; i < n; i++ {
		freq[draw()]++
	}
	floats.Scale(1/math.Max(1, float64(n)), freq)
	return freq
}

// FrequencyTolerance returns the 99.9995% quantile of the deviation of an
// empirical frequency from its true probability p after n samples, based on
// the normal approximation of the binomial distribution.
func FrequencyTolerance(p float64, n int) float64 {
	return 4.41717 * math.Sqrt(p*(1-p)/float64(n))
}
