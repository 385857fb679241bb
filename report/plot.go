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

package report

import (
	"fmt"

	"github.com/google/differential-privacy/diffgen/partition"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// LeafCountsPlot returns a bar chart of the raw and released size of every
// leaf.
func LeafCountsPlot(leaves []*partition.Partition) (*plot.Plot, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("no leaves to plot")
	}
	raw := make(plotter.Values, len(leaves))
	noisy := make(plotter.Values, len(leaves))
	names := make([]string, len(leaves))
	for i, l := range leaves {
		raw[i] = float64(l.NumRecords())
		noisy[i] = float64(noisyTotal(l))
		names[i] = fmt.Sprint(l.Index)
	}

	p := plot.New()
	p.Title.Text = "Records Per Leaf Partition"
	p.X.Label.Text = "Partition"
	p.Y.Label.Text = "Records"

	w := vg.Points(10)
	rawBars, err := plotter.NewBarChart(raw, w)
	if err != nil {
		return nil, fmt.Errorf("could not create bars from raw counts %v: %v", raw, err)
	}
	rawBars.LineStyle.Width = vg.Length(0)
	rawBars.Color = plotutil.Color(0)
	rawBars.Offset = -w / 2

	noisyBars, err := plotter.NewBarChart(noisy, w)
	if err != nil {
		return nil, fmt.Errorf("could not create bars from released counts %v: %v", noisy, err)
	}
	noisyBars.LineStyle.Width = vg.Length(0)
	noisyBars.Color = plotutil.Color(1)
	noisyBars.Offset = w / 2

	p.Add(rawBars, noisyBars)
	p.Legend.Add("raw", rawBars)
	p.Legend.Add("released", noisyBars)
	p.Legend.Top = true
	p.NominalX(names...)
	return p, nil
}

// PlotLeafCounts saves the leaf size chart to output. The image format
// follows the file extension.
func PlotLeafCounts(leaves []*partition.Partition, output string) error {
	p, err := LeafCountsPlot(leaves)
	if err != nil {
		return err
	}
	width := vg.Length(len(leaves)) * vg.Points(30)
	if width < 5*vg.Inch {
		width = 5 * vg.Inch
	}
	if err := p.Save(width, 5*vg.Inch, output); err != nil {
		return fmt.Errorf("could not save plot: %v", err)
	}
	return nil
}
