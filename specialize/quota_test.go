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
	"testing"

	"github.com/google/differential-privacy/diffgen/partition"
	"github.com/google/differential-privacy/diffgen/rand"
	"github.com/google/go-cmp/cmp"
)

func TestBalance(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		quotas []int
		k      int
		want   []int
	}{
		{"already balanced", []int{2, 1}, 3, []int{2, 1}},
		{"short by three", []int{0, 0}, 3, []int{2, 1}},
		{"short by one", []int{1, 1, 1}, 4, []int{2, 1, 1}},
		{"surplus skips zeros", []int{0, 3, 1}, 2, []int{0, 2, 0}},
		{"surplus taken in turn", []int{1, 1, 3}, 2, []int{0, 0, 2}},
		{"zero quota", []int{0, 0, 0}, 0, []int{0, 0, 0}},
	} {
		got := append([]int(nil), tc.quotas...)
		balance(got, tc.k)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("balance: when %s diff (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestAllocate(t *testing.T) {
	s, recs := read(t, binaryAttributes, `East, Y
East, N
East, Y
West, Y
West, N
`, 4)
	sp, err := New(s, &Options{Epsilon: 1e9, Specializations: 1, Rand: rand.NewSeeded(1)})
	if err != nil {
		t.Fatalf("New: got err %v", err)
	}
	i := 0
	children, err := partition.NewRoot(s, recs.Training).Split(0, func() int { i++; return i })
	if err != nil {
		t.Fatalf("Split: got err %v", err)
	}
	for _, tc := range []struct {
		desc    string
		records int
		k       int
		want    []int
	}{
		{"proportional", 4, 8, []int{6, 2}},
		{"rounded down then balanced", 4, 3, []int{3, 0}},
		{"no quota", 4, 0, []int{0, 0}},
		{"empty parent", 0, 3, []int{2, 1}},
	} {
		got, err := sp.allocate(children, tc.records, tc.k)
		if err != nil {
			t.Fatalf("allocate: when %s got err %v", tc.desc, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("allocate: when %s diff (-want +got):\n%s", tc.desc, diff)
		}
	}
}
