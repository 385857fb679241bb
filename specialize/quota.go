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

package specialize

import (
	"fmt"

	"github.com/google/differential-privacy/diffgen/noise"
	"github.com/google/differential-privacy/diffgen/partition"
)

// quotaScale weighs record counts against the quota noise.
const quotaScale = 10000

// allocate divides k specializations among children in proportion to their
// record counts perturbed with Laplace noise. The shares are rounded down and
// the shortfall is handed out one unit at a time, round-robin.
func (sp *Specializer) allocate(children []*partition.Partition, parentRecords, k int) ([]int, error) {
	quotas := make([]int, len(children))
	if k <= 0 || len(children) == 0 {
		return quotas, nil
	}
	noisy := make([]int64, len(children))
	var noiseSum int64
	for i := range children {
		n, err := noise.AddNonNegativeNoiseInt64(sp.noise, 0, 1, sp.budget.Unit())
		if err != nil {
			return nil, fmt.Errorf("couldn't perturb the quota of partition %d, err = %w", children[i].Index, err)
		}
		noisy[i] = n
		noiseSum += n
	}
	if parentRecords > 0 {
		denom := float64(parentRecords)*quotaScale + float64(noiseSum)
		for i, c := range children {
			share := (float64(c.NumRecords())*quotaScale + float64(noisy[i])) / denom
			quotas[i] = int(share * float64(k))
		}
	}
	balance(quotas, k)
	return quotas, nil
}

// balance adjusts quotas one unit at a time so that they sum to k. Missing
// units go to the children in turn; surplus units are taken in turn from the
// children with a positive quota.
func balance(quotas []int, k int) {
	total := 0
	for _, q := range quotas {
		total += q
	}
	for i := 0; total < k; i = (i + 1) % len(quotas) {
		quotas[i]++
		total++
	}
	for i := 0; total > k; i = (i + 1) % len(quotas) {
		if quotas[i] > 0 {
			quotas[i]--
			total--
		}
	}
}
