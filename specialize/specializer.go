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

// Package specialize builds the specialization tree of a generalization run.
//
// Starting from a root partition where every quasi-identifier is fully
// generalized, the Specializer repeatedly picks an attribute with the
// exponential mechanism and splits the partition on it, depth-first, until the
// specialization quota is spent. Each split is replayed on a parallel tree of
// test records. The counts of the final leaves are released with Laplace
// noise.
package specialize

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/checks"
	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/noise"
	"github.com/google/differential-privacy/diffgen/partition"
	"github.com/google/differential-privacy/diffgen/rand"
	"github.com/google/differential-privacy/diffgen/release"
	"github.com/google/differential-privacy/diffgen/score"
	"github.com/google/differential-privacy/diffgen/split"
)

// Options contains the options necessary to initialize a Specializer.
type Options struct {
	Epsilon float64 // Total privacy budget ε. Required.
	// Specializations is the number of specializations of the whole tree.
	// Required.
	Specializations int
	// Score ranks the candidate attributes and split points. Defaults to
	// score.Max.
	Score score.Function
	// NoiseKind selects the Laplace sampler. Defaults to noise.SecureLaplace.
	NoiseKind noise.Kind
	// Rand is the source of every random draw. Defaults to a secure source.
	Rand *rand.Rand
}

// Specializer runs the top-down specialization of a data set.
type Specializer struct {
	schema *dataset.Schema
	opts   Options
	budget *release.Budget
	noise  noise.Noise
	mech   *noise.Exponential
	rand   *rand.Rand
}

// New returns a Specializer of records matching s.
func New(s *dataset.Schema, opt *Options) (*Specializer, error) {
	if opt == nil {
		opt = &Options{}
	}
	o := *opt
	if err := checks.CheckSpecializations(o.Specializations); err != nil {
		return nil, err
	}
	b, err := release.NewBudget(o.Epsilon, s.NumContinuous(), s.MaxLevel())
	if err != nil {
		return nil, err
	}
	if o.Rand == nil {
		o.Rand = rand.NewSecure()
	}
	n := noise.ToNoise(o.NoiseKind, o.Rand)
	if n == nil {
		return nil, fmt.Errorf("unsupported noise kind %v", o.NoiseKind)
	}
	return &Specializer{
		schema: s,
		opts:   o,
		budget: b,
		noise:  n,
		mech:   noise.NewExponential(o.Rand),
		rand:   o.Rand,
	}, nil
}

// Budget returns the privacy budget of the run.
func (sp *Specializer) Budget() *release.Budget {
	return sp.budget
}

// Result is the outcome of a run.
type Result struct {
	// Leaves are the leaf partitions of the training tree with their
	// released counts, in depth-first order.
	Leaves []*partition.Partition
	// TestLeaves are the non-empty leaves of the test tree.
	TestLeaves []*partition.Partition
	// Trace lists every node of the training tree, in creation order.
	Trace []Node
	// Specializations is the number of specializations performed.
	Specializations int
	// Remainder is the quota left unused.
	Remainder int
	release.Accounting
}

// run holds the state of one pass over the tree.
type run struct {
	sp     *Specializer
	finder *split.Finder
	// next is the index of the next partition created.
	next  int
	carry int

	res *Result
	// trace maps a partition index to its position in res.Trace.
	trace map[int]int
}

// Run specializes the training records of recs and replays every split on its
// test records. The hierarchies of continuous attributes are split in place.
func (sp *Specializer) Run(recs *dataset.Records) (*Result, error) {
	if len(recs.Training) == 0 || len(recs.Test) == 0 {
		return nil, fmt.Errorf("need training and test records, got %d and %d", len(recs.Training), len(recs.Test))
	}
	nClasses := sp.schema.NumClasses()
	if err := checks.CheckNumClasses(nClasses); err != nil {
		return nil, err
	}
	r := &run{
		sp: sp,
		finder: &split.Finder{
			Score:       sp.opts.Score,
			Epsilon:     sp.budget.Unit(),
			NumTraining: len(recs.Training),
			NumClasses:  nClasses,
			Mechanism:   sp.mech,
			Rand:        sp.rand,
		},
		res:   &Result{},
		trace: make(map[int]int),
	}
	root := partition.NewRoot(sp.schema, recs.Training)
	root.Index = r.nextIndex()
	root.BudgetCount = sp.budget.RootUnits()
	root.Quota = sp.opts.Specializations
	testRoot := partition.NewRoot(sp.schema, recs.Test)
	testRoot.Index = root.Index
	r.record(root, testRoot, -1)

	if err := r.visit(root, testRoot); err != nil {
		return nil, err
	}
	r.res.Remainder = r.carry
	r.res.TestLeaves = nonEmpty(r.res.TestLeaves)
	log.Infof("Partitioning finished: %d specializations, %d leaves, %d unused", r.res.Specializations, len(r.res.Leaves), r.res.Remainder)

	acc, err := release.Release(r.res.Leaves, sp.budget, sp.noise)
	if err != nil {
		return nil, err
	}
	r.res.Accounting = *acc
	log.Infof("Budget: epsilon' = %v, max usage %d units, %v left for the counts", acc.Unit, acc.MaxBudgetUsage, acc.Remaining)
	return r.res, nil
}

func (r *run) nextIndex() int {
	i := r.next
	r.next++
	return i
}

// visit specializes p, and tp in lockstep, then recurses into the children.
func (r *run) visit(p, tp *partition.Partition) error {
	p.Quota += r.carry
	r.carry = 0
	r.res.Trace[r.trace[p.Index]].Quota = p.Quota
	if p.Quota == 0 || p.Level >= r.sp.schema.MaxLevel() {
		r.leaf(p, tp)
		return nil
	}
	if err := p.Prepare(r.finder); err != nil {
		return fmt.Errorf("couldn't prepare partition %d, err = %w", p.Index, err)
	}
	cands := p.Candidates()
	if len(cands) == 0 {
		r.leaf(p, tp)
		return nil
	}
	c, err := r.choose(cands)
	if err != nil {
		return err
	}
	attr := r.sp.schema.Attributes[c.Attribute]
	p.BudgetCount += release.SpecializationUnits(attr.IsContinuous())

	children, err := p.Split(c.Attribute, r.nextIndex)
	if err != nil {
		return err
	}
	j := 0
	testChildren, err := tp.Split(c.Attribute, func() int {
		i := children[j].Index
		j++
		return i
	})
	if err != nil {
		return fmt.Errorf("couldn't replay split of partition %d on test records, err = %w", p.Index, err)
	}
	r.res.Specializations++
	r.res.Trace[r.trace[p.Index]].Split = c.Attribute
	log.V(2).Infof("Partition %d: specialized %q at %q into %d children", p.Index, attr.Name, p.Concepts[c.Attribute].Value, len(children))

	quotas, err := r.sp.allocate(children, p.NumRecords(), p.Quota-1)
	if err != nil {
		return err
	}
	for i, child := range children {
		child.Quota = quotas[i]
		r.record(child, testChildren[i], p.Index)
	}
	for i, child := range children {
		if err := r.visit(child, testChildren[i]); err != nil {
			return err
		}
	}
	return nil
}

// choose picks one of cands with the exponential mechanism.
func (r *run) choose(cands []partition.Candidate) (partition.Candidate, error) {
	fn := r.sp.opts.Score
	weights := make([]float64, len(cands))
	for i, c := range cands {
		weights[i] = c.Scores.Weight(fn, r.finder.NumTraining)
	}
	i, err := r.sp.mech.Select(weights, r.sp.budget.Unit(), score.Sensitivity(fn, r.finder.NumClasses))
	if err != nil {
		return partition.Candidate{}, fmt.Errorf("couldn't select an attribute, err = %w", err)
	}
	return cands[i], nil
}

// leaf ends the specialization of p and hands its unused quota to the next
// partition visited.
func (r *run) leaf(p, tp *partition.Partition) {
	r.carry += p.Quota
	r.res.Leaves = append(r.res.Leaves, p)
	r.res.TestLeaves = append(r.res.TestLeaves, tp)
	r.res.Trace[r.trace[p.Index]].Leaf = true
}

func nonEmpty(ps []*partition.Partition) []*partition.Partition {
	var out []*partition.Partition
	for _, p := range ps {
		if p.NumRecords() > 0 {
			out = append(out, p)
		}
	}
	return out
}
