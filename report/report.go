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

// Package report measures the information loss of a generalization run and
// renders its outcome.
package report

import (
	"fmt"
	"io"
	"os"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/partition"
	"github.com/google/differential-privacy/diffgen/specialize"
	"gopkg.in/yaml.v3"
)

// noisyTotal returns the released size of a leaf.
func noisyTotal(l *partition.Partition) int64 {
	var n int64
	for _, c := range l.NoisyCounts {
		n += c
	}
	return n
}

// Discernibility returns the sum over leaves of the squared released leaf
// size.
func Discernibility(leaves []*partition.Partition) float64 {
	var d float64
	for _, l := range leaves {
		n := float64(noisyTotal(l))
		d += n * n
	}
	return d
}

// NCP returns the average normalized certainty penalty of the released
// records over all quasi-identifiers, in [0, 1]. It is 0 when nothing was
// released.
func NCP(leaves []*partition.Partition, s *dataset.Schema) float64 {
	nQI := len(s.QuasiIdentifiers())
	var penalty, total float64
	for _, l := range leaves {
		n := float64(noisyTotal(l))
		var sum float64
		for _, c := range l.Concepts {
			sum += c.NCP()
		}
		penalty += n * sum
		total += n
	}
	if total == 0 || nQI == 0 {
		return 0
	}
	return penalty / (total * float64(nQI))
}

// LongestPath returns the number of specializations on the longest
// root-to-leaf path.
func LongestPath(leaves []*partition.Partition) int {
	m := 0
	for _, l := range leaves {
		if len(l.Path) > m {
			m = len(l.Path)
		}
	}
	return m
}

// Summary describes a finished run.
type Summary struct {
	Leaves          int     `yaml:"leaves"`
	TestLeaves      int     `yaml:"test_leaves"`
	Specializations int     `yaml:"specializations"`
	Unused          int     `yaml:"unused_specializations"`
	Epsilon         float64 `yaml:"epsilon"`
	EpsilonUnit     float64 `yaml:"epsilon_unit"`
	MaxBudgetUsage  int     `yaml:"max_budget_usage"`
	PathBound       int     `yaml:"path_bound"`
	CountEpsilon    float64 `yaml:"count_epsilon"`
	ReleasedRecords int64   `yaml:"released_records"`
	Discernibility  float64 `yaml:"discernibility"`
	NCP             float64 `yaml:"ncp"`
	LongestPath     int     `yaml:"longest_path"`
}

// Summarize returns the summary of res.
func Summarize(res *specialize.Result, sp *specialize.Specializer, s *dataset.Schema) Summary {
	sum := Summary{
		Leaves:          len(res.Leaves),
		TestLeaves:      len(res.TestLeaves),
		Specializations: res.Specializations,
		Unused:          res.Remainder,
		Epsilon:         sp.Budget().Total(),
		EpsilonUnit:     res.Unit,
		MaxBudgetUsage:  res.MaxBudgetUsage,
		PathBound:       sp.Budget().PathBound(),
		CountEpsilon:    res.Remaining,
		Discernibility:  Discernibility(res.Leaves),
		NCP:             NCP(res.Leaves, s),
		LongestPath:     LongestPath(res.Leaves),
	}
	for _, l := range res.Leaves {
		sum.ReleasedRecords += noisyTotal(l)
	}
	return sum
}

// WriteSummary writes sum to w as YAML.
func WriteSummary(w io.Writer, sum Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sum); err != nil {
		return err
	}
	return enc.Close()
}

// WriteSummaryFile writes sum to path as YAML.
func WriteSummaryFile(path string, sum Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't open the summary file = %q, err = %w", path, err)
	}
	if err := WriteSummary(f, sum); err != nil {
		f.Close()
		return fmt.Errorf("couldn't write to the summary file = %q, err = %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("couldn't close the summary file = %q, err = %w", path, err)
	}
	log.Infof("Wrote run summary to %q", path)
	return nil
}
