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

// Package release finalizes the counts of the leaf partitions and keeps the
// privacy budget accounts of a run.
package release

import (
	"fmt"

	"github.com/google/differential-privacy/diffgen/checks"
)

// Units charged on a path for one specialization.
const (
	selectionUnits  = 1
	splitPointUnits = 1
	noiseUnits      = 1
)

// Budget splits a total privacy budget into equal per-decision units.
//
// The unit is sized for the longest possible path: every continuous attribute
// may spend one unit at the root, and every level of the tree may spend up to
// three (selection, split point and quota noise). The factor two leaves at
// least half of the total for the final release of the leaf counts.
type Budget struct {
	total         float64
	numContinuous int
	maxLevel      int
	unit          float64
}

// NewBudget returns the budget of a run with the given total epsilon, number
// of continuous quasi-identifiers and bound on the path length.
func NewBudget(total float64, numContinuous, maxLevel int) (*Budget, error) {
	if err := checks.CheckEpsilonStrict(total); err != nil {
		return nil, fmt.Errorf("NewBudget: %w", err)
	}
	if err := checks.CheckMaxLevel(maxLevel); err != nil {
		return nil, fmt.Errorf("NewBudget: %w", err)
	}
	if numContinuous < 0 {
		return nil, fmt.Errorf("NewBudget: numContinuous must be non-negative, got %d", numContinuous)
	}
	bound := numContinuous + 3*maxLevel
	if bound == 0 {
		return nil, fmt.Errorf("NewBudget: no quasi-identifier can be specialized")
	}
	return &Budget{
		total:         total,
		numContinuous: numContinuous,
		maxLevel:      maxLevel,
		unit:          total / float64(2*bound),
	}, nil
}

// Total returns the total epsilon.
func (b *Budget) Total() float64 {
	return b.total
}

// Unit returns epsilon', the epsilon spent by one private decision.
func (b *Budget) Unit() float64 {
	return b.unit
}

// PathBound returns the largest number of units a root-to-leaf path can be
// charged.
func (b *Budget) PathBound() int {
	return b.numContinuous + 3*b.maxLevel
}

// RootUnits returns the units charged to the root partition, one per
// continuous attribute.
func (b *Budget) RootUnits() int {
	return b.numContinuous
}

// SpecializationUnits returns the units charged to the children of a
// partition specialized on an attribute.
func SpecializationUnits(continuous bool) int {
	if continuous {
		return selectionUnits + splitPointUnits + noiseUnits
	}
	return selectionUnits + noiseUnits
}

// Remaining returns the epsilon left for the release of the leaf counts once
// the costliest path has spent maxUsage units.
func (b *Budget) Remaining(maxUsage int) (float64, error) {
	rem := b.total - float64(maxUsage)*b.unit
	if rem <= 0 {
		return 0, fmt.Errorf("not enough budget: %d units of %v spent out of %v", maxUsage, b.unit, b.total)
	}
	return rem, nil
}
