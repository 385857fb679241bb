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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/differential-privacy/diffgen/config"
	"github.com/google/differential-privacy/diffgen/output"
)

const attributes = `| sample of the adult data set
age: continuous
{17-90}
education: discrete
{Any_Education {Secondary {HS-grad} {11th}} {University {Bachelors} {Masters}}}
classes: discrete
{Any {>50K} {<=50K}}
`

var rows = []string{
	"39, Bachelors, <=50K.",
	"50, Bachelors, >50K.",
	"38, HS-grad, <=50K.",
	"53, 11th, <=50K.",
	"28, Bachelors, <=50K.",
	"37, Masters, >50K.",
	"49, ?, <=50K.",
	"52, HS-grad, >50K.",
	"31, Masters, >50K.",
	"42, Bachelors, >50K.",
	"37, HS-grad, <=50K.",
	"30, Bachelors, >50K.",
}

func writeInputs(t *testing.T) (dir string, c *config.Config) {
	t.Helper()
	dir = t.TempDir()
	attrFile := filepath.Join(dir, "adult.hchy")
	dataFile := filepath.Join(dir, "adult.rawdata")
	if err := os.WriteFile(attrFile, []byte(attributes), 0644); err != nil {
		t.Fatalf("WriteFile: got err %v", err)
	}
	if err := os.WriteFile(dataFile, []byte(strings.Join(rows, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: got err %v", err)
	}
	d := config.Default()
	d.AttributeFile = attrFile
	d.DataFile = dataFile
	d.OutputPrefix = filepath.Join(dir, "adult")
	d.NumTraining = 8
	d.Specializations = 4
	d.Seed = 1
	return dir, &d
}

func TestGeneralize(t *testing.T) {
	for _, format := range []output.Format{output.C45, output.SVM, output.Diff} {
		dir, c := writeInputs(t)
		c.Format = format.String()
		c.SummaryFile = filepath.Join(dir, "summary.yaml")
		if format == output.C45 {
			// A large budget keeps released records in the NumPy training set.
			c.NPY, c.Epsilon = true, 50
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("Validate: got err %v", err)
		}
		if err := generalize(c); err != nil {
			t.Fatalf("generalize with format %v: got err %v", format, err)
		}
		paths := output.PathsFor(c.OutputPrefix)
		want := []string{paths.Data, paths.Test, c.SummaryFile}
		if format != output.Diff {
			want = append(want, paths.Names)
		}
		for _, path := range want {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("generalize with format %v: got err %v for %q", format, err, path)
			}
		}
		test, err := os.ReadFile(paths.Test)
		if err != nil {
			t.Fatalf("ReadFile: got err %v", err)
		}
		// Three of the eleven known records are test records.
		if got := strings.Count(string(test), "\n"); got != 3 {
			t.Errorf("generalize with format %v: got %d test records, want 3", format, got)
		}
	}
}

func TestGeneralizeMissingData(t *testing.T) {
	_, c := writeInputs(t)
	c.DataFile = filepath.Join(t.TempDir(), "missing.rawdata")
	if err := generalize(c); err == nil {
		t.Errorf("generalize with a missing data file: got nil err, want error")
	}
}

func TestRunCommand(t *testing.T) {
	dir, c := writeInputs(t)
	cmd := rootCmd()
	cmd.SetArgs([]string{
		"run",
		"--attributes", c.AttributeFile,
		"--data", c.DataFile,
		"--output", c.OutputPrefix,
		"--num_training", "8",
		"--specializations", "2",
		"--score", "ncp",
		"--format", "diff",
		"--seed", "3",
		"--summary", filepath.Join(dir, "summary.yaml"),
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: got err %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "summary.yaml")); err != nil {
		t.Errorf("Execute: got err %v for the summary file", err)
	}
}

func TestCleanCommand(t *testing.T) {
	_, c := writeInputs(t)
	dst := filepath.Join(t.TempDir(), "clean.rawdata")
	cmd := rootCmd()
	cmd.SetArgs([]string{"clean", "--data", c.DataFile, "--output", dst})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: got err %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: got err %v", err)
	}
	if n := strings.Count(string(got), "\n"); n != len(rows)-1 {
		t.Errorf("clean: got %d records, want %d", n, len(rows)-1)
	}
	if strings.Contains(string(got), "?") {
		t.Errorf("clean: got a record with an unknown value:\n%s", got)
	}
}
