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
	"github.com/google/differential-privacy/diffgen/partition"
)

// Accounting reports the privacy budget spent by a run.
type Accounting struct {
	// Unit is epsilon', the epsilon of one private decision.
	Unit float64
	// MaxBudgetUsage is the largest number of units charged to a leaf.
	MaxBudgetUsage int
	// Remaining is the epsilon spent on each released count.
	Remaining float64
}

// MaxBudgetUsage returns the largest budget count among leaves.
func MaxBudgetUsage(leaves []*partition.Partition) int {
	m := 0
	for _, l := range leaves {
		if l.BudgetCount > m {
			m = l.BudgetCount
		}
	}
	return m
}

// Release adds Laplace noise to the per-class record counts of every leaf and
// stores them in the leaf's NoisyCounts. Every count is released with the
// epsilon left over by the costliest path.
func Release(leaves []*partition.Partition, b *Budget, n noise.Noise) (*Accounting, error) {
	acc := &Accounting{Unit: b.Unit(), MaxBudgetUsage: MaxBudgetUsage(leaves)}
	if acc.MaxBudgetUsage > b.PathBound() {
		log.Warningf("Release: a path spent %d units, more than the bound of %d", acc.MaxBudgetUsage, b.PathBound())
	}
	rem, err := b.Remaining(acc.MaxBudgetUsage)
	if err != nil {
		return nil, err
	}
	acc.Remaining = rem
	for _, l := range leaves {
		raw := l.ClassCounts()
		l.NoisyCounts = make([]int64, len(raw))
		for k, x := range raw {
			c, err := NewCount(&CountOptions{Epsilon: rem, Noise: n})
			if err != nil {
				return nil, fmt.Errorf("couldn't release leaf %d: %w", l.Index, err)
			}
			c.IncrementBy(x)
			if l.NoisyCounts[k], err = c.Result(); err != nil {
				return nil, fmt.Errorf("couldn't release class %d of leaf %d: %w", k, l.Index, err)
			}
		}
		log.V(2).Infof("leaf %d: counts %v released as %v", l.Index, raw, l.NoisyCounts)
	}
	log.Infof("Released %d leaves with epsilon %v per count", len(leaves), rem)
	return acc, nil
}
