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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/checks"
	"github.com/google/differential-privacy/diffgen/hierarchy"
)

const (
	fieldDelimiter = ","
	unknownValue   = "?"
	lineTerminator = "."
)

// Value is the raw content of one field of a record.
type Value struct {
	Raw string
	// Number is the parsed value of a continuous field.
	Number float64
	// Concept is the most specific concept matching a discrete field, nil for
	// continuous fields.
	Concept *hierarchy.Concept
}

// Record is one row of the data set. Values are in schema order, so the class
// value is last.
type Record struct {
	ID     int
	Values []Value
	// Class is the index of the record's class label, the sibling index of
	// the depth-1 class concept covering its class value.
	Class int
}

// Records holds the records of a run, split into training and test records.
type Records struct {
	Training []*Record
	Test     []*Record
	// Discarded counts the records dropped for holding an unknown value.
	Discarded int
}

// ReadOptions controls how many records are read and how they are split.
type ReadOptions struct {
	// NumInput is the maximum number of records kept. A negative value keeps
	// every record of the file.
	NumInput int
	// NumTraining is the number of leading records used for training. The
	// remaining records are test records.
	NumTraining int
}

// ReadRecordsFile reads a raw data file.
func ReadRecordsFile(path string, s *Schema, opts ReadOptions) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the data file = %q, err = %w", path, err)
	}
	defer f.Close()
	recs, err := ReadRecords(f, s, opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the data file = %q, err = %w", path, err)
	}
	log.Infof("Read %d training and %d test records from %q, discarded %d records with unknown values",
		len(recs.Training), len(recs.Test), path, recs.Discarded)
	return recs, nil
}

// ReadRecords reads records matching s from r. Lines may hold '|' comments
// and a trailing '.'. A record with a field equal to "?" is discarded.
func ReadRecords(r io.Reader, s *Schema, opts ReadOptions) (*Records, error) {
	if err := checks.CheckTrainingSplit(opts.NumTraining, opts.NumInput); err != nil {
		return nil, err
	}
	recs := &Records{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		line = strings.TrimSpace(strings.TrimSuffix(line, lineTerminator))
		if line == "" {
			continue
		}
		rec, err := parseRecord(line, s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if rec == nil {
			recs.Discarded++
			continue
		}
		if len(recs.Training) < opts.NumTraining {
			rec.ID = len(recs.Training)
			recs.Training = append(recs.Training, rec)
		} else {
			rec.ID = len(recs.Test)
			recs.Test = append(recs.Test, rec)
		}
		if opts.NumInput >= 0 && len(recs.Training)+len(recs.Test) >= opts.NumInput {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(recs.Training) == 0 {
		return nil, fmt.Errorf("no training records read")
	}
	if len(recs.Test) == 0 {
		return nil, fmt.Errorf("no test records read, %d records are all used for training", len(recs.Training))
	}
	return recs, nil
}

// parseRecord returns nil and no error for a record holding an unknown value.
func parseRecord(line string, s *Schema) (*Record, error) {
	fields := strings.Split(line, fieldDelimiter)
	if len(fields) != len(s.Attributes) {
		return nil, fmt.Errorf("got %d fields, want %d", len(fields), len(s.Attributes))
	}
	rec := &Record{Values: make([]Value, len(fields))}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("empty value for attribute %q", s.Attributes[i].Name)
		}
		if f == unknownValue {
			return nil, nil
		}
		v, err := parseValue(f, s.Attributes[i], i == len(fields)-1)
		if err != nil {
			return nil, err
		}
		rec.Values[i] = v
	}
	class := rec.Values[len(rec.Values)-1].Concept.AncestorAt(1)
	if class == nil {
		return nil, fmt.Errorf("class value %q is not below a class label", rec.Values[len(rec.Values)-1].Raw)
	}
	rec.Class = class.ChildIndex
	return rec, nil
}

func parseValue(f string, a *Attribute, isClass bool) (Value, error) {
	v := Value{Raw: f}
	if a.IsContinuous() {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Value{}, fmt.Errorf("couldn't read %s = %q as a number, err = %w", a.Name, f, err)
		}
		v.Number = n
		return v, nil
	}
	c, ok := a.Hierarchy.Lookup(f)
	if !ok {
		return Value{}, fmt.Errorf("value %q is not a concept of attribute %q", f, a.Name)
	}
	if !isClass && !c.IsLeaf() {
		return Value{}, fmt.Errorf("value %q of attribute %q is not a leaf concept", f, a.Name)
	}
	v.Concept = c
	return v, nil
}

// String writes the raw values of the record, comma separated.
func (r *Record) String() string {
	raw := make([]string, len(r.Values))
	for i, v := range r.Values {
		raw[i] = v.Raw
	}
	return strings.Join(raw, fieldDelimiter)
}
