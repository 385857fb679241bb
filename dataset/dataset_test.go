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

package dataset

import (
	"strings"
	"testing"

	"github.com/google/differential-privacy/diffgen/hierarchy"
	"github.com/google/go-cmp/cmp"
)

const attributes = `| Adult subset.
age: continuous
{0-100}
vid: discrete
{Any}
classes: discrete
{Any_Class {>50K} {<=50K}}
location: discrete: generalization
{Any_Location {BC {Vancouver} {Surrey}} {AB {Calgary} {Edmonton}}}   | provinces
`

func mustSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := ReadSchema(strings.NewReader(attributes))
	if err != nil {
		t.Fatalf("ReadSchema: got err %v", err)
	}
	return s
}

func TestReadSchema(t *testing.T) {
	s := mustSchema(t)
	var names []string
	for i, a := range s.Attributes {
		names = append(names, a.Name)
		if a.Index != i {
			t.Errorf("Index of %q: got %d, want %d", a.Name, a.Index, i)
		}
	}
	if diff := cmp.Diff([]string{"age", "location", "classes"}, names); diff != "" {
		t.Errorf("attribute names: diff (-want +got):\n%s", diff)
	}
	if got := s.Class().Name; got != "classes" {
		t.Errorf("Class: got %q, want classes", got)
	}
	if got := len(s.QuasiIdentifiers()); got != 2 {
		t.Errorf("QuasiIdentifiers: got %d attributes, want 2", got)
	}
	if got := s.NumClasses(); got != 2 {
		t.Errorf("NumClasses: got %d, want 2", got)
	}
	if diff := cmp.Diff([]string{">50K", "<=50K"}, s.ClassLabels()); diff != "" {
		t.Errorf("ClassLabels: diff (-want +got):\n%s", diff)
	}
	if got := s.NumContinuous(); got != 1 {
		t.Errorf("NumContinuous: got %d, want 1", got)
	}
	if got, want := s.MaxLevel(), hierarchy.ContinuousLevels+2; got != want {
		t.Errorf("MaxLevel: got %d, want %d", got, want)
	}
	if s.Attributes[1].Suppression {
		t.Errorf("location: got suppression, want generalization")
	}
}

func TestReadSchemaErrors(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		input string
	}{
		{"no class attribute", "age: continuous\n{0-100}\n"},
		{"header without kind", "age\n{0-100}\nclasses: discrete\n{C {a} {b}}\n"},
		{"unknown kind", "age: ordinal\n{0-100}\nclasses: discrete\n{C {a} {b}}\n"},
		{"missing hierarchy", "classes: discrete\n{C {a} {b}}\nage: continuous\n"},
		{"empty hierarchy", "age: continuous\n| only a comment\nclasses: discrete\n{C {a} {b}}\n"},
		{"continuous suppression", "age: continuous: suppression\n{0-100}\nclasses: discrete\n{C {a} {b}}\n"},
		{"class suppression", "classes: discrete: suppression\n{C {a} {b}}\n"},
		{"continuous class", "classes: continuous\n{0-1}\n"},
		{"class without labels", "classes: discrete\n{C}\n"},
		{"malformed hierarchy", "sex: discrete\n{Any {M}\nclasses: discrete\n{C {a} {b}}\n"},
		{"class defined twice", "classes: discrete\n{C {a} {b}}\nclasses: discrete\n{C {a} {b}}\n"},
	} {
		if _, err := ReadSchema(strings.NewReader(tc.input)); err == nil {
			t.Errorf("ReadSchema: when %s got nil err", tc.desc)
		}
	}
}

const records = `| age, location, class
25, Vancouver, >50K.
31, Surrey, <=50K.
?, Calgary, >50K.
47, Edmonton, <=50K   | no terminator

52, Calgary, >50K.
60, Vancouver, <=50K.
`

func TestReadRecords(t *testing.T) {
	s := mustSchema(t)
	recs, err := ReadRecords(strings.NewReader(records), s, ReadOptions{NumInput: -1, NumTraining: 3})
	if err != nil {
		t.Fatalf("ReadRecords: got err %v", err)
	}
	if got := len(recs.Training); got != 3 {
		t.Errorf("Training: got %d records, want 3", got)
	}
	if got := len(recs.Test); got != 2 {
		t.Errorf("Test: got %d records, want 2", got)
	}
	if recs.Discarded != 1 {
		t.Errorf("Discarded: got %d, want 1", recs.Discarded)
	}
	first := recs.Training[0]
	if first.Values[0].Number != 25 || first.Values[1].Concept.Value != "Vancouver" || first.Class != 0 {
		t.Errorf("first record: got %v with class %d", first, first.Class)
	}
	if got := first.String(); got != "25,Vancouver,>50K" {
		t.Errorf("String: got %q, want %q", got, "25,Vancouver,>50K")
	}
	if got := recs.Training[2].Class; got != 1 {
		t.Errorf("class of third record: got %d, want 1", got)
	}
	for i, r := range recs.Test {
		if r.ID != i {
			t.Errorf("ID of test record %d: got %d", i, r.ID)
		}
	}
}

func TestReadRecordsNumInput(t *testing.T) {
	s := mustSchema(t)
	recs, err := ReadRecords(strings.NewReader(records), s, ReadOptions{NumInput: 4, NumTraining: 2})
	if err != nil {
		t.Fatalf("ReadRecords: got err %v", err)
	}
	if len(recs.Training) != 2 || len(recs.Test) != 2 {
		t.Errorf("ReadRecords with NumInput 4: got %d training and %d test records, want 2 and 2", len(recs.Training), len(recs.Test))
	}
}

func TestReadRecordsErrors(t *testing.T) {
	s := mustSchema(t)
	for _, tc := range []struct {
		desc  string
		input string
		opts  ReadOptions
	}{
		{"empty field", "25, , >50K\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"too few fields", "25, >50K\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"unknown concept", "25, Toronto, >50K\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"generalized value", "25, BC, >50K\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"bad number", "abc, Surrey, >50K\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"class root as value", "25, Surrey, Any_Class\n30, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"no test records", "25, Surrey, >50K\n", ReadOptions{NumInput: -1, NumTraining: 5}},
		{"no records", "| nothing\n", ReadOptions{NumInput: -1, NumTraining: 1}},
		{"no training requested", records, ReadOptions{NumInput: -1, NumTraining: 0}},
		{"training uses all input", records, ReadOptions{NumInput: 3, NumTraining: 3}},
	} {
		if _, err := ReadRecords(strings.NewReader(tc.input), s, tc.opts); err == nil {
			t.Errorf("ReadRecords: when %s got nil err", tc.desc)
		}
	}
}
