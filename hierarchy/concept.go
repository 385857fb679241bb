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

package hierarchy

import (
	"fmt"
	"strings"
)

// Concept is a node of a hierarchy. Children are owned by their parent; the
// Parent field is a back-reference only.
type Concept struct {
	// Value is the label of a discrete concept, or "lower-upper" for an
	// interval.
	Value string
	// Lower and Upper bound a continuous concept's interval [Lower, Upper).
	Lower, Upper float64
	// Depth is 0 at the root.
	Depth int
	// ChildIndex is the position of the concept among its siblings.
	ChildIndex int
	// FlatIndex is the position of the concept in Hierarchy.Concepts.
	FlatIndex int

	Parent   *Concept
	Children []*Concept

	h      *Hierarchy
	leaves int
}

// IsContinuous reports whether the concept is an interval.
func (c *Concept) IsContinuous() bool {
	return c.h.Kind == Continuous
}

// IsLeaf reports whether the concept has no children.
func (c *Concept) IsLeaf() bool {
	return len(c.Children) == 0
}

// Hierarchy returns the hierarchy owning c.
func (c *Concept) Hierarchy() *Hierarchy {
	return c.h
}

// Width returns Upper - Lower.
func (c *Concept) Width() float64 {
	return c.Upper - c.Lower
}

// NumLeafConcepts returns the number of leaves under c, or 1 if c is a leaf.
// The count is memoized for discrete concepts, whose trees never change.
func (c *Concept) NumLeafConcepts() int {
	if c.leaves > 0 {
		return c.leaves
	}
	n := 0
	if c.IsLeaf() {
		n = 1
	}
	for _, child := range c.Children {
		n += child.NumLeafConcepts()
	}
	if !c.IsContinuous() {
		c.leaves = n
	}
	return n
}

// IsAncestorOf reports whether c is a proper ancestor of d. Concepts are
// compared by value along d's parent chain; a concept is never its own
// ancestor.
func (c *Concept) IsAncestorOf(d *Concept) bool {
	if c.Value == d.Value {
		return false
	}
	for a := d.Parent; a != nil; a = a.Parent {
		if a.Value == c.Value {
			return true
		}
	}
	return false
}

// AncestorAt returns the ancestor of c at the given depth, c itself when depth
// equals c.Depth, or nil when depth is out of range.
func (c *Concept) AncestorAt(depth int) *Concept {
	if depth < 0 || depth > c.Depth {
		return nil
	}
	a := c
	for a.Depth > depth {
		a = a.Parent
	}
	return a
}

// NCP returns the normalized certainty penalty of generalizing a value to c.
//
// For a discrete concept it is 0 when c is a leaf, and otherwise the share of
// the hierarchy's leaves covered by c. For an interval it is its width
// relative to the width of the root interval.
func (c *Concept) NCP() float64 {
	if c.IsContinuous() {
		rw := c.h.Root.Width()
		if rw <= 0 {
			return 0
		}
		return c.Width() / rw
	}
	n := c.NumLeafConcepts()
	if n == 1 {
		return 0
	}
	return float64(n) / float64(c.h.NumLeafConcepts())
}

// Split gives an interval leaf two children, [Lower, p) and [p, Upper), and
// registers them in the hierarchy. Splitting at NoSplit is a no-op that
// returns nil children.
func (c *Concept) Split(p float64) (left, right *Concept, err error) {
	if p == NoSplit {
		return nil, nil, nil
	}
	if !c.IsContinuous() {
		return nil, nil, fmt.Errorf("cannot split discrete concept %q", c.Value)
	}
	if !c.IsLeaf() {
		return nil, nil, fmt.Errorf("concept %q is already split", c.Value)
	}
	p = roundBound(p)
	if p < c.Lower || p > c.Upper {
		return nil, nil, fmt.Errorf("split point %f is outside concept %q", p, c.Value)
	}
	left = &Concept{Value: formatRange(c.Lower, p), Lower: c.Lower, Upper: p, Depth: c.Depth + 1, Parent: c}
	right = &Concept{Value: formatRange(p, c.Upper), Lower: p, Upper: c.Upper, Depth: c.Depth + 1, Parent: c}
	c.h.add(left)
	c.h.add(right)
	return left, right, nil
}

// ChildFor returns the child of an interval concept whose interval contains
// x. Values below the first child's upper bound go to the first child; values
// beyond the last bound go to the last child.
func (c *Concept) ChildFor(x float64) (*Concept, error) {
	if c.IsLeaf() {
		return nil, fmt.Errorf("concept %q has no children", c.Value)
	}
	for _, child := range c.Children[:len(c.Children)-1] {
		if x < child.Upper {
			return child, nil
		}
	}
	return c.Children[len(c.Children)-1], nil
}

// Midpoint returns the center of an interval concept.
func (c *Concept) Midpoint() float64 {
	return (c.Lower + c.Upper) / 2
}

func (c *Concept) String() string {
	return c.Value
}

func (c *Concept) format(b *strings.Builder) {
	b.WriteByte(openTag)
	b.WriteString(c.Value)
	for _, child := range c.Children {
		b.WriteByte(' ')
		child.format(b)
	}
	b.WriteByte(closeTag)
}
