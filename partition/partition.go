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

// Package partition implements the nodes of the specialization tree.
//
// A partition groups the records that share, for every quasi-identifier, the
// same current concept. Splitting a partition on one attribute specializes
// that attribute's concept into its children and routes every record to the
// child covering its raw value.
package partition

import (
	"fmt"

	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/score"
)

// Step is one specialization on the path from the root to a partition.
type Step struct {
	// Attribute is the index of the specialized attribute.
	Attribute int
	// Concept is the child concept the path descends into.
	Concept *hierarchy.Concept
}

// attrState is the per-attribute state of a partition.
type attrState struct {
	// candidate is inherited from the parent; once false it stays false.
	candidate bool
	table     *score.Table
	scores    score.Scores
}

// Partition is a node of the specialization tree.
type Partition struct {
	Index int
	// Level is the depth of the partition in the tree, 0 at the root.
	Level int
	// BudgetCount is the number of privacy budget units spent on the path
	// from the root to this partition.
	BudgetCount int
	// Quota is the number of specializations allotted to this partition.
	Quota int
	Path  []Step

	// Records are the records of the partition, shared with the caller.
	Records []*dataset.Record
	// Concepts holds the current concept of every quasi-identifier.
	Concepts []*hierarchy.Concept
	// NoisyCounts holds the released per-class counts of a leaf.
	NoisyCounts []int64

	schema *dataset.Schema
	attrs  []attrState
}

// GeneralizedRecord is the synthetic record of a partition for one class:
// every quasi-identifier generalized to the partition's current concept.
type GeneralizedRecord struct {
	Concepts []*hierarchy.Concept
	Class    int
}

// NewRoot returns the root partition of recs: every quasi-identifier is at
// its root concept and is a candidate for specialization.
func NewRoot(s *dataset.Schema, recs []*dataset.Record) *Partition {
	qis := s.QuasiIdentifiers()
	p := &Partition{
		Records:  recs,
		Concepts: make([]*hierarchy.Concept, len(qis)),
		schema:   s,
		attrs:    make([]attrState, len(qis)),
	}
	for i, a := range qis {
		p.Concepts[i] = a.Hierarchy.Root
		p.attrs[i].candidate = true
	}
	return p
}

// NumRecords returns the number of records of the partition.
func (p *Partition) NumRecords() int {
	return len(p.Records)
}

// ClassCounts returns the number of records of every class.
func (p *Partition) ClassCounts() []int64 {
	counts := make([]int64, p.schema.NumClasses())
	for _, r := range p.Records {
		counts[r.Class]++
	}
	return counts
}

// GeneralizedRecords returns one generalized record per class.
func (p *Partition) GeneralizedRecords() []GeneralizedRecord {
	gen := make([]GeneralizedRecord, p.schema.NumClasses())
	for k := range gen {
		gen[k] = GeneralizedRecord{Concepts: p.Concepts, Class: k}
	}
	return gen
}

// IsCandidate reports whether attribute a may still be specialized in p.
func (p *Partition) IsCandidate(a int) bool {
	return p.attrs[a].candidate
}

// Split specializes attribute a of p into the children of its current
// concept. Each child inherits p's level, budget count, path and candidate
// flags, and receives the records falling under its concept. nextIndex numbers
// the children.
func (p *Partition) Split(a int, nextIndex func() int) ([]*Partition, error) {
	if a < 0 || a >= len(p.Concepts) {
		return nil, fmt.Errorf("attribute index %d out of range [0, %d)", a, len(p.Concepts))
	}
	cur := p.Concepts[a]
	if cur.IsLeaf() {
		return nil, fmt.Errorf("cannot split partition %d on leaf concept %q", p.Index, cur.Value)
	}
	children := make([]*Partition, len(cur.Children))
	for i, c := range cur.Children {
		child := &Partition{
			Index:       nextIndex(),
			Level:       p.Level + 1,
			BudgetCount: p.BudgetCount,
			Path:        append(append(make([]Step, 0, len(p.Path)+1), p.Path...), Step{Attribute: a, Concept: c}),
			Concepts:    append([]*hierarchy.Concept(nil), p.Concepts...),
			schema:      p.schema,
			attrs:       make([]attrState, len(p.attrs)),
		}
		child.Concepts[a] = c
		for j := range p.attrs {
			child.attrs[j].candidate = p.attrs[j].candidate
		}
		children[i] = child
	}
	attr := p.schema.Attributes[a]
	for _, r := range p.Records {
		i, err := childIndex(r, attr, cur)
		if err != nil {
			return nil, err
		}
		children[i].Records = append(children[i].Records, r)
	}
	return children, nil
}

// childIndex returns the index of the child of cur covering r's value of a.
func childIndex(r *dataset.Record, a *dataset.Attribute, cur *hierarchy.Concept) (int, error) {
	v := r.Values[a.Index]
	if a.IsContinuous() {
		c, err := cur.ChildFor(v.Number)
		if err != nil {
			return 0, err
		}
		return c.ChildIndex, nil
	}
	c := v.Concept.AncestorAt(cur.Depth + 1)
	if c == nil || c.Parent != cur {
		return 0, fmt.Errorf("value %q of attribute %q is not under concept %q", v.Raw, a.Name, cur.Value)
	}
	return c.ChildIndex, nil
}
