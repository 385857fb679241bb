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

// Package score computes the support statistics of a candidate specialization
// and the scores the exponential mechanism ranks candidates by.
//
// A candidate specializes the current concept of one attribute into its child
// concepts. Its support table counts, for every child concept and every class,
// the records of the partition that fall under that child and carry that
// class.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/differential-privacy/diffgen/checks"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Function is an enum type. Its values are the supported scoring functions.
type Function int

// Scoring functions. A run uses exactly one of them.
const (
	Max Function = iota
	InformationGain
	Discernibility
	NCP
)

func (f Function) String() string {
	switch f {
	case Max:
		return "max"
	case InformationGain:
		return "infogain"
	case Discernibility:
		return "discernibility"
	case NCP:
		return "ncp"
	}
	return fmt.Sprintf("Function(%d)", int(f))
}

// ParseFunction converts the name of a scoring function, as printed by
// Function.String, into a Function.
func ParseFunction(s string) (Function, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max":
		return Max, nil
	case "infogain", "informationgain", "information_gain":
		return InformationGain, nil
	case "discernibility", "discern":
		return Discernibility, nil
	case "ncp":
		return NCP, nil
	}
	return Max, fmt.Errorf("unknown score function %q, want max, infogain, discernibility or ncp", s)
}

// discernScale is the upper end of the range normalized discernibility scores
// are mapped to.
const discernScale = 10000

// Table is a support table: counts indexed by (child concept, class).
type Table struct {
	m *mat.Dense
}

// NewTable returns an empty table with the given number of child concepts and
// classes. Both must be positive.
func NewTable(children, classes int) (*Table, error) {
	if children < 1 {
		return nil, fmt.Errorf("support table needs at least one child concept, got %d", children)
	}
	if err := checks.CheckNumClasses(classes); err != nil {
		return nil, err
	}
	return &Table{m: mat.NewDense(children, classes, nil)}, nil
}

// Dims returns the number of child concepts and of classes.
func (t *Table) Dims() (children, classes int) {
	return t.m.Dims()
}

// Add adds n records of the given class under the given child.
func (t *Table) Add(child, class int, n float64) {
	t.m.Set(child, class, t.m.At(child, class)+n)
}

// Move moves one record of the given class from one child to another.
func (t *Table) Move(class, from, to int) {
	t.Add(from, class, -1)
	t.Add(to, class, 1)
}

// At returns the count of the given child and class.
func (t *Table) At(child, class int) float64 {
	return t.m.At(child, class)
}

// SupportSums returns the number of records under every child.
func (t *Table) SupportSums() []float64 {
	r, _ := t.m.Dims()
	sums := make([]float64, r)
	for i := range sums {
		sums[i] = floats.Sum(t.m.RawRowView(i))
	}
	return sums
}

// ClassSums returns the number of records of every class.
func (t *Table) ClassSums() []float64 {
	_, c := t.m.Dims()
	sums := make([]float64, c)
	for j := range sums {
		sums[j] = mat.Sum(t.m.ColView(j))
	}
	return sums
}

// Total returns the number of records in the table.
func (t *Table) Total() float64 {
	return mat.Sum(t.m)
}

// Scores holds every score of one candidate.
type Scores struct {
	Max             float64
	InformationGain float64
	Discernibility  float64
	NCP             float64
}

// Compute returns every score of the table. childNCP holds the normalized
// certainty penalty of every child concept.
func Compute(t *Table, childNCP []float64) (Scores, error) {
	ncp, err := NCPScore(t, childNCP)
	if err != nil {
		return Scores{}, err
	}
	return Scores{
		Max:             MaxScore(t),
		InformationGain: InfoGain(t),
		Discernibility:  Discern(t),
		NCP:             ncp,
	}, nil
}

// MaxScore returns the sum over children of the count of their majority class.
func MaxScore(t *Table) float64 {
	r, _ := t.m.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		sum += floats.Max(t.m.RawRowView(i))
	}
	return sum
}

// Entropy returns the entropy, in bits, of the distribution given by counts.
// Empty counts contribute 0.
func Entropy(counts []float64) float64 {
	total := floats.Sum(counts)
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

// InfoGain returns the entropy of the class distribution minus the
// support-weighted entropy of every child. It is 0 for an empty table.
func InfoGain(t *Table) float64 {
	total := t.Total()
	if total <= 0 {
		return 0
	}
	sums := t.SupportSums()
	var conditional float64
	for i, s := range sums {
		if s > 0 {
			conditional += s / total * Entropy(t.m.RawRowView(i))
		}
	}
	return Entropy(t.ClassSums()) - conditional
}

// Discern returns the discernibility of the table, the sum of the squared
// support of every child.
func Discern(t *Table) float64 {
	sums := t.SupportSums()
	return floats.Dot(sums, sums)
}

// NCPScore returns Σ support[c] · childNCP[c].
func NCPScore(t *Table, childNCP []float64) (float64, error) {
	sums := t.SupportSums()
	if len(sums) != len(childNCP) {
		return 0, fmt.Errorf("got %d child penalties for %d children", len(childNCP), len(sums))
	}
	return floats.Dot(sums, childNCP), nil
}

// SplitNCP returns the penalty of splitting the interval [lower, upper) at
// point, where the two sides hold left and right records and rootWidth is the
// width of the attribute's root interval.
func SplitNCP(left, right, lower, upper, point, rootWidth float64) float64 {
	if rootWidth <= 0 {
		return 0
	}
	return left*(point-lower)/rootWidth + right*(upper-point)/rootWidth
}

// Weight returns the score the exponential mechanism ranks a candidate by.
// Discernibility and NCP are penalties, so they are turned into weights where
// higher is better, bounded by the number of training records.
func (s Scores) Weight(fn Function, numTraining int) float64 {
	switch fn {
	case Max:
		return s.Max
	case InformationGain:
		return s.InformationGain
	case Discernibility:
		u := float64(numTraining) * float64(numTraining)
		if u <= 0 {
			return 0
		}
		return discernScale * (u - s.Discernibility) / u
	case NCP:
		return float64(numTraining) - s.NCP
	}
	return 0
}

// Sensitivity returns the sensitivity of the weights of fn used to calibrate
// the exponential mechanism.
func Sensitivity(fn Function, numClasses int) float64 {
	if fn == InformationGain && numClasses >= 2 {
		return math.Log2(float64(numClasses))
	}
	return 1
}
