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
	"github.com/google/differential-privacy/diffgen/partition"
)

// Node is a node of the specialization tree as it was when created.
type Node struct {
	Index int
	// Parent is the index of the parent node, -1 for the root.
	Parent int
	Level  int
	// Attribute is the attribute specialized to reach the node, -1 for the
	// root.
	Attribute int
	// Concept is the concept of Attribute the node descends into.
	Concept     string
	Records     int
	TestRecords int
	Quota       int
	BudgetCount int
	// Split is the attribute the node was specialized on, -1 if none.
	Split int
	Leaf  bool
}

func (r *run) record(p, tp *partition.Partition, parent int) {
	n := Node{
		Index:       p.Index,
		Parent:      parent,
		Level:       p.Level,
		Attribute:   -1,
		Records:     p.NumRecords(),
		TestRecords: tp.NumRecords(),
		Quota:       p.Quota,
		BudgetCount: p.BudgetCount,
		Split:       -1,
	}
	if len(p.Path) > 0 {
		last := p.Path[len(p.Path)-1]
		n.Attribute = last.Attribute
		n.Concept = last.Concept.Value
	}
	r.trace[p.Index] = len(r.res.Trace)
	r.res.Trace = append(r.res.Trace, n)
}
