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

// Package split privately chooses the point at which a continuous concept is
// split in two.
package split

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/noise"
	"github.com/google/differential-privacy/diffgen/rand"
	"github.com/google/differential-privacy/diffgen/score"
	"golang.org/x/exp/slices"
)

// Point is the raw value of a continuous attribute and the class of the
// record holding it.
type Point struct {
	Value float64
	Class int
}

// Finder chooses split points with the exponential mechanism.
type Finder struct {
	// Score ranks the candidate cuts.
	Score score.Function
	// Epsilon is the privacy budget spent on one choice.
	Epsilon float64
	// NumTraining is the number of training records, used to turn penalties
	// into weights.
	NumTraining int
	// NumClasses is the number of class labels.
	NumClasses int

	Mechanism *noise.Exponential
	Rand      *rand.Rand
}

// candidate is a range of split points sharing the same support table.
type candidate struct {
	lower, upper float64
	weight       float64
}

func (c candidate) width() float64 {
	return c.upper - c.lower
}

// Find returns the point at which concept should be split given the values of
// the partition's records. The points are sorted in place.
//
// Every boundary between two distinct consecutive values is a candidate cut.
// A candidate is chosen with probability growing with its score and with the
// width of its range. The NCP score splits at the middle of the chosen range;
// the other scores split at a uniformly random point of it. Without any
// candidate, the split point is the middle of the concept (NCP) or a uniformly
// random point of it. A concept of zero width yields hierarchy.NoSplit. The
// point is snapped to the precision of interval bounds.
func (f *Finder) Find(points []Point, concept *hierarchy.Concept) (float64, error) {
	if !concept.IsContinuous() {
		return 0, fmt.Errorf("cannot find a split point for discrete concept %q", concept.Value)
	}
	if concept.Width() <= 0 {
		return hierarchy.NoSplit, nil
	}
	if len(points) <= 1 {
		return concept.Midpoint(), nil
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})

	cands, err := f.candidates(points, concept)
	if err != nil {
		return 0, err
	}
	if len(cands) == 0 {
		log.V(2).Infof("No boundary among %d equal values of %q", len(points), concept.Value)
		return f.pointIn(concept.Lower, concept.Upper), nil
	}

	weights := make([]float64, len(cands))
	widths := make([]float64, len(cands))
	for i, c := range cands {
		weights[i], widths[i] = c.weight, c.width()
	}
	idx, err := f.Mechanism.SelectWeighted(weights, widths, f.Epsilon, score.Sensitivity(f.Score, f.NumClasses))
	if err != nil {
		return 0, fmt.Errorf("couldn't choose a split point of %q, err = %w", concept.Value, err)
	}
	chosen := cands[idx]
	log.V(2).Infof("Chose cut (%f, %f) of %q among %d candidates", chosen.lower, chosen.upper, concept.Value, len(cands))
	return f.pointIn(chosen.lower, chosen.upper), nil
}

// candidates scans the sorted points, moving one record at a time from the
// right side of the cut to the left side.
func (f *Finder) candidates(points []Point, concept *hierarchy.Concept) ([]candidate, error) {
	t, err := score.NewTable(2, f.NumClasses)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if p.Class < 0 || p.Class >= f.NumClasses {
			return nil, fmt.Errorf("class index %d out of range [0, %d)", p.Class, f.NumClasses)
		}
		t.Add(1, p.Class, 1)
	}
	rootWidth := concept.Hierarchy().Root.Width()

	var cands []candidate
	for r := 0; r < len(points)-1; r++ {
		cur, next := points[r].Value, points[r+1].Value
		t.Move(points[r].Class, 1, 0)
		if cur == next {
			continue
		}
		sums := t.SupportSums()
		s := score.Scores{
			Max:             score.MaxScore(t),
			InformationGain: score.InfoGain(t),
			Discernibility:  score.Discern(t),
			NCP:             score.SplitNCP(sums[0], sums[1], concept.Lower, concept.Upper, (cur+next)/2, rootWidth),
		}
		cands = append(cands, candidate{lower: cur, upper: next, weight: s.Weight(f.Score, f.NumTraining)})
	}
	return cands, nil
}

// pointIn returns the middle of [lower, upper] for the NCP score and a
// uniformly random point of (lower, upper] otherwise.
func (f *Finder) pointIn(lower, upper float64) float64 {
	p := (lower + upper) / 2
	if f.Score != score.NCP {
		p = lower + f.Rand.Uniform()*(upper-lower)
	}
	return hierarchy.Snap(p, lower, upper)
}
