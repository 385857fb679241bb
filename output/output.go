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

package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/partition"
)

// Format is an enum type. Its values are the supported output formats.
type Format int

// Output formats.
const (
	C45 Format = iota
	SVM
	Diff
)

func (f Format) String() string {
	switch f {
	case C45:
		return "c45"
	case SVM:
		return "svm"
	case Diff:
		return "diff"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts the name of a format, as printed by Format.String,
// into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c45", "c4.5":
		return C45, nil
	case "svm":
		return SVM, nil
	case "diff":
		return Diff, nil
	}
	return 0, fmt.Errorf("unknown output format %q, want c45, svm or diff", s)
}

// Paths are the files written for an output prefix.
type Paths struct {
	Names, Data, Test string
}

// PathsFor returns the names, data and test file paths of prefix.
func PathsFor(prefix string) Paths {
	return Paths{
		Names: prefix + ".names",
		Data:  prefix + ".data",
		Test:  prefix + ".test",
	}
}

// WriteNames writes the names file of the C4.5 and SVM-light formats: the
// class labels, then one line per continuous attribute and one binary
// attribute per target concept.
func (e *Encoder) WriteNames(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s%s\n\n", strings.Join(e.schema.ClassLabels(), delimiter+" "), terminator); err != nil {
		return err
	}
	for a, attr := range e.schema.QuasiIdentifiers() {
		if attr.IsContinuous() {
			if _, err := fmt.Fprintf(w, "%s: continuous%s\n", attr.Name, terminator); err != nil {
				return err
			}
			continue
		}
		for _, t := range e.targets[a] {
			if _, err := fmt.Fprintf(w, "%s: 0, 1%s\n", t.Value, terminator); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteC45 writes the generalized records of every leaf, each repeated as
// many times as its released count, to data, and every test record
// generalized to its test leaf to test.
func (e *Encoder) WriteC45(data, test io.Writer, leaves, testLeaves []*partition.Partition) error {
	labels := e.schema.ClassLabels()
	for _, l := range leaves {
		attrs := e.c45(l.Concepts)
		for _, g := range l.GeneralizedRecords() {
			if err := repeat(data, attrs+labels[g.Class]+terminator, noisyCount(l, g.Class)); err != nil {
				return err
			}
		}
	}
	for _, l := range testLeaves {
		attrs := e.c45(l.Concepts)
		for _, r := range l.Records {
			if _, err := fmt.Fprintf(test, "%s%s%s\n", attrs, labels[r.Class], terminator); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSVM is WriteC45 in the SVM-light format.
func (e *Encoder) WriteSVM(data, test io.Writer, leaves, testLeaves []*partition.Partition) error {
	for _, l := range leaves {
		attrs := e.svm(l.Concepts)
		for _, g := range l.GeneralizedRecords() {
			if err := repeat(data, svmLabel(g.Class)+" "+attrs, noisyCount(l, g.Class)); err != nil {
				return err
			}
		}
	}
	for _, l := range testLeaves {
		attrs := e.svm(l.Concepts)
		for _, r := range l.Records {
			if _, err := fmt.Fprintf(test, "%s %s\n", svmLabel(r.Class), attrs); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteDiff writes the generalized records with their concept labels, each
// repeated as many times as its released count, to data, and the test
// records generalized to their test leaf to test.
func WriteDiff(data, test io.Writer, s *dataset.Schema, leaves, testLeaves []*partition.Partition) error {
	labels := s.ClassLabels()
	for _, l := range leaves {
		attrs := diffLine(l.Concepts)
		for _, g := range l.GeneralizedRecords() {
			if err := repeat(data, attrs+labels[g.Class]+terminator, noisyCount(l, g.Class)); err != nil {
				return err
			}
		}
	}
	for _, l := range testLeaves {
		attrs := diffLine(l.Concepts)
		for _, r := range l.Records {
			if _, err := fmt.Fprintf(test, "%s%s%s\n", attrs, labels[r.Class], terminator); err != nil {
				return err
			}
		}
	}
	return nil
}

func diffLine(concepts []*hierarchy.Concept) string {
	var b strings.Builder
	for _, c := range concepts {
		b.WriteString(c.Value)
		b.WriteString(delimiter)
	}
	return b.String()
}

func noisyCount(l *partition.Partition, class int) int64 {
	if class >= len(l.NoisyCounts) {
		return 0
	}
	return l.NoisyCounts[class]
}

func repeat(w io.Writer, line string, n int64) error {
	for i := int64(0); i < n; i++ {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteFiles writes the names (C4.5 and SVM-light only), data and test files
// of prefix in the given format.
func WriteFiles(prefix string, f Format, s *dataset.Schema, leaves, testLeaves []*partition.Partition) error {
	paths := PathsFor(prefix)
	enc := NewEncoder(s, leaves)
	if f != Diff {
		if err := writeFile(paths.Names, enc.WriteNames); err != nil {
			return err
		}
	}
	return writeFile(paths.Data, func(data io.Writer) error {
		return writeFile(paths.Test, func(test io.Writer) error {
			switch f {
			case C45:
				return enc.WriteC45(data, test, leaves, testLeaves)
			case SVM:
				return enc.WriteSVM(data, test, leaves, testLeaves)
			case Diff:
				return WriteDiff(data, test, s, leaves, testLeaves)
			}
			return fmt.Errorf("unknown output format %v", f)
		})
	})
}

// writeFile creates path and writes it with write through a buffer.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't open the output file = %q, err = %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("couldn't write to the output file = %q, err = %v", path, combineErrors(err, f.Close()))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("couldn't write to the output file = %q, err = %v", path, combineErrors(err, f.Close()))
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("couldn't close the output file = %q, err = %w", path, err)
	}
	log.Infof("Wrote %q", path)
	return nil
}

func combineErrors(errors ...error) string {
	var nonNilErrors []error
	for _, err := range errors {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}
	return fmt.Sprintf("%+v", nonNilErrors)
}
