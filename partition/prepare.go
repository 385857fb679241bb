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

package partition

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/score"
	"github.com/google/differential-privacy/diffgen/split"
)

// Candidate is an attribute that may be specialized in a partition, with the
// support table and scores of specializing it.
type Candidate struct {
	Attribute int
	Table     *score.Table
	Scores    score.Scores
}

// Prepare checks which attributes of p can still be specialized and scores
// each of them. An interval concept without children is first split with f.
// Attributes that cannot be specialized lose their candidate flag for good.
// Scores are computed once; later calls only re-check eligibility.
func (p *Partition) Prepare(f *split.Finder) error {
	for a := range p.attrs {
		st := &p.attrs[a]
		if !st.candidate {
			continue
		}
		cur := p.Concepts[a]
		if cur.IsContinuous() {
			if cur.Width() <= 1 {
				st.candidate = false
				continue
			}
			if cur.IsLeaf() {
				if err := p.divide(a, f); err != nil {
					return err
				}
			}
		}
		if cur.IsLeaf() {
			st.candidate = false
			continue
		}
		if st.table != nil {
			continue
		}
		t, err := p.supportTable(a)
		if err != nil {
			return err
		}
		s, err := score.Compute(t, childNCP(cur))
		if err != nil {
			return fmt.Errorf("couldn't score attribute %q of partition %d, err = %w", p.schema.Attributes[a].Name, p.Index, err)
		}
		st.table, st.scores = t, s
		log.V(2).Infof("Partition %d, attribute %q at %q: %+v", p.Index, p.schema.Attributes[a].Name, cur.Value, s)
	}
	return nil
}

// Candidates returns the scored attributes of p that may be specialized, in
// attribute order. Prepare must be called first.
func (p *Partition) Candidates() []Candidate {
	var cands []Candidate
	for a, st := range p.attrs {
		if st.candidate && st.table != nil {
			cands = append(cands, Candidate{Attribute: a, Table: st.table, Scores: st.scores})
		}
	}
	return cands
}

// divide splits the interval concept of attribute a at a privately chosen
// point. The split is recorded in the hierarchy, so partitions reaching the
// same concept later reuse it.
func (p *Partition) divide(a int, f *split.Finder) error {
	cur := p.Concepts[a]
	points := make([]split.Point, len(p.Records))
	for i, r := range p.Records {
		points[i] = split.Point{Value: r.Values[a].Number, Class: r.Class}
	}
	pt, err := f.Find(points, cur)
	if err != nil {
		return err
	}
	if pt == hierarchy.NoSplit {
		log.V(2).Infof("Partition %d: no split of %q", p.Index, cur.Value)
		return nil
	}
	if _, _, err := cur.Split(pt); err != nil {
		return err
	}
	log.V(2).Infof("Partition %d: split %q at %f", p.Index, cur.Value, pt)
	return nil
}

// supportTable counts the records of p per child of attribute a's current
// concept and per class.
func (p *Partition) supportTable(a int) (*score.Table, error) {
	cur := p.Concepts[a]
	t, err := score.NewTable(len(cur.Children), p.schema.NumClasses())
	if err != nil {
		return nil, err
	}
	attr := p.schema.Attributes[a]
	for _, r := range p.Records {
		i, err := childIndex(r, attr, cur)
		if err != nil {
			return nil, err
		}
		t.Add(i, r.Class, 1)
	}
	return t, nil
}

func childNCP(c *hierarchy.Concept) []float64 {
	ncp := make([]float64, len(c.Children))
	for i, child := range c.Children {
		ncp[i] = child.NCP()
	}
	return ncp
}
