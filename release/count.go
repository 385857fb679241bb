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

package release

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/noise"
	"github.com/google/differential-privacy/diffgen/rand"
)

// Count calculates a differentially private count of the records of one class
// in one leaf partition using the Laplace mechanism.
//
// The released value is clamped at zero, so it is biased upwards for small
// counts.
//
// Not thread-safe.
type Count struct {
	// Parameters
	epsilon       float64
	l1Sensitivity int64
	noise         noise.Noise

	// State variables
	count int64
	state countState
}

// CountOptions contains the options necessary to initialize a Count.
//
// A record belongs to exactly one leaf and has exactly one class, so it
// contributes to a single count and the L_1 sensitivity is 1.
type CountOptions struct {
	Epsilon float64     // Privacy parameter ε. Required.
	Noise   noise.Noise // Type of noise used. Defaults to secure Laplace noise.
}

// NewCount returns a new Count, initialized at 0.
func NewCount(opt *CountOptions) (*Count, error) {
	if opt == nil {
		opt = &CountOptions{}
	}
	const l1 = 1
	n := opt.Noise
	if n == nil {
		n = noise.Laplace(rand.NewSecure())
	}
	// Check that the parameters are compatible with the noise by calling the
	// noise on a dummy value.
	if _, err := n.AddNoiseInt64(0, l1, opt.Epsilon); err != nil {
		return nil, fmt.Errorf("NewCount: %w", err)
	}
	return &Count{
		epsilon:       opt.Epsilon,
		l1Sensitivity: l1,
		noise:         n,
	}, nil
}

// IncrementBy increments the count by the given value.
func (c *Count) IncrementBy(count int64) {
	if c.state != defaultState {
		log.Fatalf("Count cannot be amended: %s", c.state.errorMessage())
	}
	c.count += count
}

// Result returns the noisy count, clamped at zero. The method can be called
// only once.
func (c *Count) Result() (int64, error) {
	if c.state != defaultState {
		log.Fatalf("Count's noised result cannot be computed: %s", c.state.errorMessage())
	}
	c.state = resultReturned
	return noise.AddNonNegativeNoiseInt64(c.noise, c.count, c.l1Sensitivity, c.epsilon)
}
