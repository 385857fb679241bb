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

// Package hierarchy implements concept hierarchies: the trees of
// generalization levels of an attribute, from the most general concept at the
// root down to the most specific concepts at the leaves.
//
// A discrete hierarchy is a fixed tree of labels parsed from a nested-bracket
// definition such as
//
//	{Any_Location {BC {Vancouver} {Surrey}} {AB {Calgary} {Edmonton}}}
//
// A continuous hierarchy is a tree of half-open intervals [lower, upper) whose
// values are written as "lower-upper". It usually starts as a single root
// interval and grows as intervals are split during specialization.
package hierarchy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is an enum type. Its values are the supported attribute kinds.
type Kind int

// Attribute kinds.
const (
	Discrete Kind = iota
	Continuous
)

func (k Kind) String() string {
	switch k {
	case Discrete:
		return "discrete"
	case Continuous:
		return "continuous"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts "discrete" or "continuous" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discrete":
		return Discrete, nil
	case "continuous":
		return Continuous, nil
	}
	return Discrete, fmt.Errorf("unknown attribute kind %q, want discrete or continuous", s)
}

const (
	openTag  = '{'
	closeTag = '}'
	dash     = '-'

	// ContinuousLevels is the number of specialization levels a continuous
	// attribute is assumed to contribute to the longest root-to-leaf path.
	ContinuousLevels = 7
	// rangePrecision is the number of decimals used to write interval bounds.
	rangePrecision = 2
)

// NoSplit is the split point returned when all the raw values of a partition
// are identical. Splitting a concept at NoSplit leaves it unchanged.
var NoSplit = math.MaxFloat64

// Hierarchy is the concept tree of one attribute. It owns its concepts and
// keeps them in a flattened list in creation order.
type Hierarchy struct {
	Kind Kind
	Root *Concept

	flat     []*Concept
	labels   map[string]*Concept
	maxDepth int
}

// Parse builds a hierarchy of the given kind from its nested-bracket
// definition.
func Parse(kind Kind, def string) (*Hierarchy, error) {
	h := &Hierarchy{Kind: kind, labels: make(map[string]*Concept)}
	p := &parser{s: def}
	root, err := p.concept(h, nil, 0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("unexpected %q after the root concept of hierarchy %q", p.s[p.pos:], def)
	}
	h.Root = root
	return h, nil
}

// MustParse is like Parse but panics on error. It is meant for hierarchies
// written in code.
func MustParse(kind Kind, def string) *Hierarchy {
	h, err := Parse(kind, def)
	if err != nil {
		panic(err)
	}
	return h
}

// Format writes the hierarchy back in its nested-bracket form. Parsing the
// output yields the same tree.
func (h *Hierarchy) Format() string {
	var b strings.Builder
	h.Root.format(&b)
	return b.String()
}

// Concepts returns every concept of the hierarchy in flattened order. The
// position of a concept in the slice is its FlatIndex.
func (h *Hierarchy) Concepts() []*Concept {
	return h.flat
}

// Lookup returns the discrete concept with the given label.
func (h *Hierarchy) Lookup(label string) (*Concept, bool) {
	c, ok := h.labels[label]
	return c, ok
}

// MaxDepth returns the depth of the deepest concept of a discrete hierarchy,
// and ContinuousLevels for a continuous one.
func (h *Hierarchy) MaxDepth() int {
	if h.Kind == Continuous {
		return ContinuousLevels
	}
	return h.maxDepth
}

// NumLeafConcepts returns the number of leaves of the whole hierarchy.
func (h *Hierarchy) NumLeafConcepts() int {
	return h.Root.NumLeafConcepts()
}

func (h *Hierarchy) add(c *Concept) {
	c.h = h
	c.FlatIndex = len(h.flat)
	h.flat = append(h.flat, c)
	if c.Depth > h.maxDepth {
		h.maxDepth = c.Depth
	}
	if c.Parent != nil {
		c.ChildIndex = len(c.Parent.Children)
		c.Parent.Children = append(c.Parent.Children, c)
	}
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\r' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) concept(h *Hierarchy, parent *Concept, depth int) (*Concept, error) {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != openTag {
		return nil, fmt.Errorf("expected %q at offset %d of hierarchy %q", openTag, p.pos, p.s)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != openTag && p.s[p.pos] != closeTag {
		p.pos++
	}
	value := strings.TrimSpace(p.s[start:p.pos])
	if value == "" {
		return nil, fmt.Errorf("empty concept at offset %d of hierarchy %q", start, p.s)
	}
	c := &Concept{Value: value, Depth: depth, Parent: parent}
	if h.Kind == Continuous {
		lower, upper, err := parseRange(value)
		if err != nil {
			return nil, err
		}
		c.Value = formatRange(lower, upper)
		c.Lower, c.Upper = roundBound(lower), roundBound(upper)
	} else {
		if _, dup := h.labels[value]; dup {
			return nil, fmt.Errorf("duplicate concept %q in hierarchy %q", value, p.s)
		}
		h.labels[value] = c
	}
	h.add(c)
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("missing %q for concept %q in hierarchy %q", closeTag, value, p.s)
		}
		if p.s[p.pos] == closeTag {
			p.pos++
			return c, nil
		}
		if _, err := p.concept(h, c, depth+1); err != nil {
			return nil, err
		}
	}
}

// parseRange parses "lower-upper". The lower bound may be negative.
func parseRange(s string) (lower, upper float64, err error) {
	i := -1
	if len(s) > 1 {
		i = strings.IndexByte(s[1:], dash)
	}
	if i < 0 {
		return 0, 0, fmt.Errorf("couldn't parse range %q, want lower-upper", s)
	}
	i++
	lower, err = strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("couldn't parse lower bound of range %q, err = %w", s, err)
	}
	upper, err = strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("couldn't parse upper bound of range %q, err = %w", s, err)
	}
	if lower > upper {
		return 0, 0, fmt.Errorf("range %q has lower bound above upper bound", s)
	}
	return lower, upper, nil
}

// roundBound rounds x to the precision of a written bound, so that a range
// survives a format and parse round trip unchanged.
func roundBound(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', rangePrecision, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Snap rounds the split point p to the precision of a written bound. When the
// rounded point leaves (lower, upper] and a written bound lies in that range,
// the smallest such bound is returned instead.
func Snap(p, lower, upper float64) float64 {
	r := roundBound(p)
	if r > lower && r <= upper {
		return r
	}
	step := math.Pow10(-rangePrecision)
	g := roundBound(math.Floor(lower/step) * step)
	for g <= lower {
		g = roundBound(g + step)
	}
	if g <= upper {
		return g
	}
	return r
}

func formatRange(lower, upper float64) string {
	return strconv.FormatFloat(lower, 'f', rangePrecision, 64) + string(dash) + strconv.FormatFloat(upper, 'f', rangePrecision, 64)
}
