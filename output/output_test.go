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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/differential-privacy/diffgen/partition"
	"github.com/google/go-cmp/cmp"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

const attributes = `age: continuous
{0-100}
location: discrete
{Any_Location {BC {Vancouver} {Surrey}} {AB {Calgary} {Edmonton}}}
classes: discrete
{Any {Y} {N}}
`

const data = `25, Vancouver, Y
31, Surrey, N
47, Calgary, Y
70, Calgary, N
33, Surrey, Y
`

// fixture returns the leaves of a split on location, with released counts
// of 2 Y records in BC and 1 N record in AB.
func fixture(t *testing.T) (*dataset.Schema, []*partition.Partition, []*partition.Partition) {
	t.Helper()
	s, err := dataset.ReadSchema(strings.NewReader(attributes))
	if err != nil {
		t.Fatalf("ReadSchema: got err %v", err)
	}
	recs, err := dataset.ReadRecords(strings.NewReader(data), s, dataset.ReadOptions{NumInput: -1, NumTraining: 3})
	if err != nil {
		t.Fatalf("ReadRecords: got err %v", err)
	}
	i := 0
	next := func() int { i++; return i }
	leaves, err := partition.NewRoot(s, recs.Training).Split(1, next)
	if err != nil {
		t.Fatalf("Split: got err %v", err)
	}
	testLeaves, err := partition.NewRoot(s, recs.Test).Split(1, next)
	if err != nil {
		t.Fatalf("Split: got err %v", err)
	}
	leaves[0].NoisyCounts = []int64{2, 0}
	leaves[1].NoisyCounts = []int64{0, 1}
	return s, leaves, testLeaves
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{C45, SVM, Diff} {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q): got %v, %v, want %v", f.String(), got, err, f)
		}
	}
	if _, err := ParseFormat("arff"); err == nil {
		t.Errorf("ParseFormat(\"arff\"): got nil err, want error")
	}
}

func TestIndicator(t *testing.T) {
	s, _, _ := fixture(t)
	h := s.Attributes[1].Hierarchy
	lookup := func(label string) *hierarchy.Concept {
		c, ok := h.Lookup(label)
		if !ok {
			t.Fatalf("Lookup(%q): not found", label)
		}
		return c
	}
	for _, tc := range []struct {
		target, cur string
		want        bool
	}{
		{"Any_Location", "Vancouver", true},
		{"BC", "BC", true},
		{"BC", "Vancouver", true},
		{"Vancouver", "BC", false},
		{"AB", "Vancouver", false},
		{"Calgary", "Edmonton", false},
	} {
		if got := indicator(lookup(tc.target), lookup(tc.cur)); got != tc.want {
			t.Errorf("indicator(%s, %s): got %t, want %t", tc.target, tc.cur, got, tc.want)
		}
	}
}

func TestWriteNames(t *testing.T) {
	s, leaves, _ := fixture(t)
	var b bytes.Buffer
	if err := NewEncoder(s, leaves).WriteNames(&b); err != nil {
		t.Fatalf("WriteNames: got err %v", err)
	}
	want := "Y, N.\n\nage: continuous.\nBC: 0, 1.\nAB: 0, 1.\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("WriteNames: diff (-want +got):\n%s", diff)
	}
}

func TestWriteFormats(t *testing.T) {
	s, leaves, testLeaves := fixture(t)
	enc := NewEncoder(s, leaves)
	for _, tc := range []struct {
		format   Format
		write    func(data, test *bytes.Buffer) error
		wantData string
		wantTest string
	}{
		{
			C45,
			func(d, te *bytes.Buffer) error { return enc.WriteC45(d, te, leaves, testLeaves) },
			"50.00,1,0,Y.\n50.00,1,0,Y.\n50.00,0,1,N.\n",
			"50.00,1,0,Y.\n50.00,0,1,N.\n",
		},
		{
			SVM,
			func(d, te *bytes.Buffer) error { return enc.WriteSVM(d, te, leaves, testLeaves) },
			"+1 1:1.00 2:1\n+1 1:1.00 2:1\n-1 1:1.00 3:1\n",
			"+1 1:1.00 2:1\n-1 1:1.00 3:1\n",
		},
		{
			Diff,
			func(d, te *bytes.Buffer) error { return WriteDiff(d, te, s, leaves, testLeaves) },
			"0.00-100.00,BC,Y.\n0.00-100.00,BC,Y.\n0.00-100.00,AB,N.\n",
			"0.00-100.00,BC,Y.\n0.00-100.00,AB,N.\n",
		},
	} {
		var d, te bytes.Buffer
		if err := tc.write(&d, &te); err != nil {
			t.Fatalf("Write %v: got err %v", tc.format, err)
		}
		if diff := cmp.Diff(tc.wantData, d.String()); diff != "" {
			t.Errorf("Write %v data: diff (-want +got):\n%s", tc.format, diff)
		}
		if diff := cmp.Diff(tc.wantTest, te.String()); diff != "" {
			t.Errorf("Write %v test: diff (-want +got):\n%s", tc.format, diff)
		}
	}
}

func TestMatrices(t *testing.T) {
	s, leaves, testLeaves := fixture(t)
	train, test, err := NewEncoder(s, leaves).Matrices(leaves, testLeaves)
	if err != nil {
		t.Fatalf("Matrices: got err %v", err)
	}
	wantTrain := mat.NewDense(3, 4, []float64{
		50, 1, 0, 0,
		50, 1, 0, 0,
		50, 0, 1, 1,
	})
	wantTest := mat.NewDense(2, 4, []float64{
		50, 1, 0, 0,
		50, 0, 1, 1,
	})
	if !mat.Equal(train, wantTrain) {
		t.Errorf("Matrices: got training set\n%v\nwant\n%v", mat.Formatted(train), mat.Formatted(wantTrain))
	}
	if !mat.Equal(test, wantTest) {
		t.Errorf("Matrices: got test set\n%v\nwant\n%v", mat.Formatted(test), mat.Formatted(wantTest))
	}

	var b bytes.Buffer
	if err := WriteNPY(&b, train); err != nil {
		t.Fatalf("WriteNPY: got err %v", err)
	}
	r, err := npyio.NewReader(&b)
	if err != nil {
		t.Fatalf("npyio.NewReader: got err %v", err)
	}
	var m mat.Dense
	if err := r.Read(&m); err != nil {
		t.Fatalf("Read: got err %v", err)
	}
	if !mat.Equal(&m, wantTrain) {
		t.Errorf("WriteNPY: read back\n%v\nwant\n%v", mat.Formatted(&m), mat.Formatted(wantTrain))
	}
}

func TestMatricesWithoutRecords(t *testing.T) {
	s, leaves, testLeaves := fixture(t)
	for _, l := range leaves {
		l.NoisyCounts = []int64{0, 0}
	}
	if _, _, err := NewEncoder(s, leaves).Matrices(leaves, testLeaves); err == nil {
		t.Errorf("Matrices with zero released records: got nil err, want error")
	}
}

func TestWriteFiles(t *testing.T) {
	s, leaves, testLeaves := fixture(t)
	prefix := filepath.Join(t.TempDir(), "adult")
	if err := WriteFiles(prefix, C45, s, leaves, testLeaves); err != nil {
		t.Fatalf("WriteFiles: got err %v", err)
	}
	paths := PathsFor(prefix)
	for path, want := range map[string]string{
		paths.Names: "Y, N.\n\nage: continuous.\nBC: 0, 1.\nAB: 0, 1.\n",
		paths.Data:  "50.00,1,0,Y.\n50.00,1,0,Y.\n50.00,0,1,N.\n",
		paths.Test:  "50.00,1,0,Y.\n50.00,0,1,N.\n",
	} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q): got err %v", path, err)
		}
		if diff := cmp.Diff(want, string(got)); diff != "" {
			t.Errorf("WriteFiles %q: diff (-want +got):\n%s", path, diff)
		}
	}
	if err := WriteNPYFiles(prefix, NewEncoder(s, leaves), leaves, testLeaves); err != nil {
		t.Fatalf("WriteNPYFiles: got err %v", err)
	}
	if _, err := os.Stat(paths.Data + ".npy"); err != nil {
		t.Errorf("WriteNPYFiles: got err %v for the training file", err)
	}
}

func TestWriteFilesBadPrefix(t *testing.T) {
	s, leaves, testLeaves := fixture(t)
	prefix := filepath.Join(t.TempDir(), "missing", "adult")
	if err := WriteFiles(prefix, Diff, s, leaves, testLeaves); err == nil {
		t.Errorf("WriteFiles in a missing directory: got nil err, want error")
	}
}

func TestClean(t *testing.T) {
	in := `| adult sample
39, State-gov, Y.
50, ?, N.

38, Private, ? .
53, Private, N. | trailing comment
`
	var b bytes.Buffer
	kept, dropped, err := Clean(strings.NewReader(in), &b)
	if err != nil {
		t.Fatalf("Clean: got err %v", err)
	}
	if kept != 2 || dropped != 2 {
		t.Errorf("Clean: kept %d and dropped %d records, want 2 and 2", kept, dropped)
	}
	want := "39, State-gov, Y.\n53, Private, N.\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("Clean: diff (-want +got):\n%s", diff)
	}
}
