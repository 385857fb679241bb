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

// Package output writes the generalized data set in the formats read by
// downstream classifiers.
//
// In the C4.5 and SVM-light formats, every discrete concept used by a leaf
// partition becomes a binary attribute: a generalized value encodes 1 for the
// concepts it equals or falls under and 0 for the others. A continuous value
// is written as the midpoint of its interval (C4.5) or as the width of its
// interval relative to the whole domain (SVM-light).
package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/partition"
)

const (
	delimiter  = ","
	terminator = "."
	// valuePrecision is the number of decimals of continuous values.
	valuePrecision = 2
)

// Encoder turns the concepts of a partition into classifier attributes.
type Encoder struct {
	schema *dataset.Schema
	// targets holds, for every discrete quasi-identifier, the concepts used
	// by at least one leaf in flattened order. It is nil for continuous
	// attributes.
	targets [][]*hierarchy.Concept
}

// NewEncoder returns the Encoder of the leaves of a run.
func NewEncoder(s *dataset.Schema, leaves []*partition.Partition) *Encoder {
	qis := s.QuasiIdentifiers()
	e := &Encoder{schema: s, targets: make([][]*hierarchy.Concept, len(qis))}
	for a, attr := range qis {
		if attr.IsContinuous() {
			continue
		}
		used := make(map[*hierarchy.Concept]bool)
		for _, l := range leaves {
			used[l.Concepts[a]] = true
		}
		for _, c := range attr.Hierarchy.Concepts() {
			if used[c] {
				e.targets[a] = append(e.targets[a], c)
			}
		}
	}
	return e
}

// NumColumns returns the number of encoded quasi-identifier columns.
func (e *Encoder) NumColumns() int {
	n := 0
	for a, attr := range e.schema.QuasiIdentifiers() {
		if attr.IsContinuous() {
			n++
			continue
		}
		n += len(e.targets[a])
	}
	return n
}

// indicator reports whether a value generalized to cur is encoded as 1 for
// target.
func indicator(target, cur *hierarchy.Concept) bool {
	return target.Depth == 0 || target == cur || target.IsAncestorOf(cur)
}

// Row returns the numeric C4.5 encoding of concepts.
func (e *Encoder) Row(concepts []*hierarchy.Concept) []float64 {
	row := make([]float64, 0, e.NumColumns())
	for a, cur := range concepts {
		if cur.IsContinuous() {
			row = append(row, cur.Midpoint())
			continue
		}
		for _, t := range e.targets[a] {
			if indicator(t, cur) {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
	}
	return row
}

// c45 returns the attribute part of a C4.5 line, ending with a delimiter.
func (e *Encoder) c45(concepts []*hierarchy.Concept) string {
	var b strings.Builder
	for a, cur := range concepts {
		if cur.IsContinuous() {
			b.WriteString(formatFloat(cur.Midpoint()))
			b.WriteString(delimiter)
			continue
		}
		for _, t := range e.targets[a] {
			if indicator(t, cur) {
				b.WriteString("1")
			} else {
				b.WriteString("0")
			}
			b.WriteString(delimiter)
		}
	}
	return b.String()
}

// svm returns the attribute part of a SVM-light line. Indices start at 1 and
// zero-valued binary attributes are omitted.
func (e *Encoder) svm(concepts []*hierarchy.Concept) string {
	var fields []string
	idx := 1
	for a, cur := range concepts {
		if cur.IsContinuous() {
			root := cur.Hierarchy().Root
			fields = append(fields, fmt.Sprintf("%d:%s", idx, formatFloat(cur.Width()/root.Width())))
			idx++
			continue
		}
		for w, t := range e.targets[a] {
			if indicator(t, cur) {
				fields = append(fields, fmt.Sprintf("%d:1", idx+w))
			}
		}
		idx += len(e.targets[a])
	}
	return strings.Join(fields, " ")
}

// svmLabel returns the SVM-light label of a class: +1 for the first class
// and -1 for every other class.
func svmLabel(class int) string {
	if class == 0 {
		return "+1"
	}
	return "-1"
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', valuePrecision, 64)
}
