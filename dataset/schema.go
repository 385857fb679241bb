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

// Package dataset reads the attribute definitions and the raw records of a
// generalization run.
//
// The attribute file holds two lines per attribute: a header
//
//	name: discrete|continuous[: generalization|suppression]
//
// followed by the attribute's concept hierarchy in nested-bracket form. The
// character '|' starts a comment. The attribute named "classes" holds the
// class labels and is always moved to the end of the schema; an attribute
// named "vid" is ignored.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/hierarchy"
)

const (
	commentMarker = "|"
	// ClassAttributeName names the class attribute in the attribute file.
	ClassAttributeName = "classes"
	vidAttributeName   = "vid"
	suppressionMask    = "suppression"
)

// Attribute is a column of the data set together with its concept hierarchy.
type Attribute struct {
	// Index is the position of the attribute in Schema.Attributes and of its
	// value in Record.Values.
	Index     int
	Name      string
	Kind      hierarchy.Kind
	Hierarchy *hierarchy.Hierarchy
	// Suppression is set for discrete attributes masked by suppression rather
	// than generalization.
	Suppression bool
}

// IsContinuous reports whether the attribute holds numbers.
func (a *Attribute) IsContinuous() bool {
	return a.Kind == hierarchy.Continuous
}

// Schema lists the attributes of a data set. The quasi-identifiers come first
// in file order and the class attribute is last.
type Schema struct {
	Attributes []*Attribute
}

// QuasiIdentifiers returns every attribute but the class.
func (s *Schema) QuasiIdentifiers() []*Attribute {
	return s.Attributes[:len(s.Attributes)-1]
}

// Class returns the class attribute.
func (s *Schema) Class() *Attribute {
	return s.Attributes[len(s.Attributes)-1]
}

// NumClasses returns the number of class labels, i.e. the number of children
// of the class hierarchy's root.
func (s *Schema) NumClasses() int {
	return len(s.Class().Hierarchy.Root.Children)
}

// ClassLabels returns the class labels in class index order.
func (s *Schema) ClassLabels() []string {
	var labels []string
	for _, c := range s.Class().Hierarchy.Root.Children {
		labels = append(labels, c.Value)
	}
	return labels
}

// NumContinuous returns the number of continuous quasi-identifiers.
func (s *Schema) NumContinuous() int {
	n := 0
	for _, a := range s.QuasiIdentifiers() {
		if a.IsContinuous() {
			n++
		}
	}
	return n
}

// MaxLevel estimates the length of the longest root-to-leaf specialization
// path: the sum of the depths of the quasi-identifier hierarchies, where a
// continuous attribute counts for hierarchy.ContinuousLevels.
func (s *Schema) MaxLevel() int {
	n := 0
	for _, a := range s.QuasiIdentifiers() {
		n += a.Hierarchy.MaxDepth()
	}
	return n
}

// ReadSchemaFile reads an attribute file.
func ReadSchemaFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the attribute file = %q, err = %w", path, err)
	}
	defer f.Close()
	s, err := ReadSchema(f)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the attribute file = %q, err = %w", path, err)
	}
	log.Infof("Read %d attributes (%d continuous, %d classes) from %q", len(s.Attributes), s.NumContinuous(), s.NumClasses(), path)
	return s, nil
}

// ReadSchema reads attribute definitions from r.
func ReadSchema(r io.Reader) (*Schema, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var (
		attrs []*Attribute
		class *Attribute
	)
	for sc.Scan() {
		header := stripComment(sc.Text())
		if header == "" {
			continue
		}
		name, kind, suppression, err := parseHeader(header)
		if err != nil {
			return nil, err
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("attribute %q has no hierarchy line", name)
		}
		def := stripComment(sc.Text())
		if def == "" {
			return nil, fmt.Errorf("attribute %q has an empty hierarchy line", name)
		}
		if strings.EqualFold(name, vidAttributeName) {
			continue
		}
		h, err := hierarchy.Parse(kind, def)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse the hierarchy of attribute %q, err = %w", name, err)
		}
		a := &Attribute{Name: name, Kind: kind, Hierarchy: h, Suppression: suppression}
		if strings.EqualFold(name, ClassAttributeName) {
			if class != nil {
				return nil, fmt.Errorf("attribute %q is defined twice", name)
			}
			class = a
			continue
		}
		a.Index = len(attrs)
		attrs = append(attrs, a)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("no %q attribute found", ClassAttributeName)
	}
	if class.Hierarchy.Root.IsLeaf() {
		return nil, fmt.Errorf("attribute %q has no class labels", ClassAttributeName)
	}
	class.Index = len(attrs)
	return &Schema{Attributes: append(attrs, class)}, nil
}

func parseHeader(line string) (name string, kind hierarchy.Kind, suppression bool, err error) {
	parts := strings.Split(line, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, false, fmt.Errorf("malformed attribute header %q, want name: kind[: mask]", line)
	}
	name = strings.TrimSpace(parts[0])
	if name == "" {
		return "", 0, false, fmt.Errorf("attribute header %q has no name", line)
	}
	kind, err = hierarchy.ParseKind(parts[1])
	if err != nil {
		return "", 0, false, fmt.Errorf("attribute %q: %w", name, err)
	}
	if len(parts) == 3 {
		suppression = strings.EqualFold(strings.TrimSpace(parts[2]), suppressionMask)
	}
	isClass := strings.EqualFold(name, ClassAttributeName)
	switch {
	case suppression && kind == hierarchy.Continuous:
		return "", 0, false, fmt.Errorf("continuous attribute %q cannot be masked by suppression", name)
	case suppression && isClass:
		return "", 0, false, fmt.Errorf("attribute %q cannot be masked by suppression", name)
	case isClass && kind == hierarchy.Continuous:
		return "", 0, false, fmt.Errorf("attribute %q must be discrete", name)
	}
	return name, kind, suppression, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, commentMarker); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
