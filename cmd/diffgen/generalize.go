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
	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/config"
	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/output"
	"github.com/google/differential-privacy/diffgen/rand"
	"github.com/google/differential-privacy/diffgen/report"
	"github.com/google/differential-privacy/diffgen/specialize"
)

// generalize runs the generalization described by c and writes its outputs.
func generalize(c *config.Config) error {
	fn, err := c.ScoreFunction()
	if err != nil {
		return err
	}
	kind, err := c.NoiseKind()
	if err != nil {
		return err
	}
	format, err := c.OutputFormat()
	if err != nil {
		return err
	}

	s, err := dataset.ReadSchemaFile(c.AttributeFile)
	if err != nil {
		return err
	}
	recs, err := dataset.ReadRecordsFile(c.DataFile, s, dataset.ReadOptions{NumInput: c.NumInput, NumTraining: c.NumTraining})
	if err != nil {
		return err
	}

	r := rand.NewSecure()
	if c.Seed >= 0 {
		log.Warningf("Using seed %d: the release is reproducible and not private", c.Seed)
		r = rand.NewSeeded(uint64(c.Seed))
	}
	sp, err := specialize.New(s, &specialize.Options{
		Epsilon:         c.Epsilon,
		Specializations: c.Specializations,
		Score:           fn,
		NoiseKind:       kind,
		Rand:            r,
	})
	if err != nil {
		return err
	}
	res, err := sp.Run(recs)
	if err != nil {
		return err
	}

	if err := output.WriteFiles(c.OutputPrefix, format, s, res.Leaves, res.TestLeaves); err != nil {
		return err
	}
	if c.NPY {
		if err := output.WriteNPYFiles(c.OutputPrefix, output.NewEncoder(s, res.Leaves), res.Leaves, res.TestLeaves); err != nil {
			return err
		}
	}

	sum := report.Summarize(res, sp, s)
	log.Infof("Longest root-to-leaf path is %d, discernibility %v, NCP %v", sum.LongestPath, sum.Discernibility, sum.NCP)
	if c.SummaryFile != "" {
		if err := report.WriteSummaryFile(c.SummaryFile, sum); err != nil {
			return err
		}
	}
	if c.ChartFile != "" {
		if err := report.PlotLeafCounts(res.Leaves, c.ChartFile); err != nil {
			return err
		}
	}
	if c.TreeFile != "" {
		if err := report.RenderTreeFile(c.TreeFile, res.Trace, s); err != nil {
			return err
		}
	}
	return nil
}
