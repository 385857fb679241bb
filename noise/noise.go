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

// Package noise contains the two private primitives of the generalization
// engine: the Laplace mechanism, which perturbs counts, and the exponential
// mechanism, which picks one candidate out of many according to a score.
package noise

import (
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/rand"
)

// Kind is an enum type. Its values are the supported Laplace samplers.
type Kind int

// Laplace samplers used to perturb counts.
const (
	// SecureLaplace samples a two-sided geometric distribution on a grid,
	// which is robust against floating point artifacts.
	SecureLaplace Kind = iota
	// ContinuousLaplace samples a continuous Laplace distribution and
	// truncates the sample toward zero.
	ContinuousLaplace
	Unrecognised
)

func (k Kind) String() string {
	switch k {
	case SecureLaplace:
		return "secure"
	case ContinuousLaplace:
		return "continuous"
	}
	return "unrecognised"
}

// ParseKind converts the name of a sampler, as printed by Kind.String, into a
// Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "secure":
		return SecureLaplace, nil
	case "continuous":
		return ContinuousLaplace, nil
	}
	return Unrecognised, fmt.Errorf("unknown noise kind %q, want secure or continuous", s)
}

// ToNoise converts a Kind into a Noise instance drawing from r.
func ToNoise(k Kind, r *rand.Rand) Noise {
	switch k {
	case SecureLaplace:
		return Laplace(r)
	case ContinuousLaplace:
		return ContinuousLaplaceNoise(r)
	case Unrecognised:
		log.Warningf("ToNoise: Unrecognised noise specified, returning nil")
	default:
		log.Warningf("ToNoise: unknown kind (%v) specified, returning nil", k)
	}
	return nil
}

// Noise is an interface for primitives that add noise to counts to make them
// differentially private.
type Noise interface {
	// AddNoiseInt64 adds noise to the specified int64 x so that the output is
	// ε-differentially private given the L_1 sensitivity of the count.
	AddNoiseInt64(x, l1Sensitivity int64, epsilon float64) (int64, error)
}

// AddNonNegativeNoiseInt64 adds noise to x with n and clamps the result at
// zero. Truncating the negative tail is the release policy for every count
// the engine publishes, it biases small counts upwards.
func AddNonNegativeNoiseInt64(n Noise, x, l1Sensitivity int64, epsilon float64) (int64, error) {
	noisy, err := n.AddNoiseInt64(x, l1Sensitivity, epsilon)
	if err != nil {
		return 0, err
	}
	if noisy < 0 {
		return 0, nil
	}
	return noisy, nil
}
