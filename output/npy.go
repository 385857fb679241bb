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
	"fmt"
	"io"

	"github.com/google/differential-privacy/diffgen/partition"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Matrices returns the numeric C4.5 encoding of the training and test sets,
// with the class index as last column. A training row is repeated as many
// times as its released count.
func (e *Encoder) Matrices(leaves, testLeaves []*partition.Partition) (train, test *mat.Dense, err error) {
	var trainRows, testRows [][]float64
	for _, l := range leaves {
		row := e.Row(l.Concepts)
		for _, g := range l.GeneralizedRecords() {
			for i := int64(0); i < noisyCount(l, g.Class); i++ {
				trainRows = append(trainRows, append(row[:len(row):len(row)], float64(g.Class)))
			}
		}
	}
	for _, l := range testLeaves {
		row := e.Row(l.Concepts)
		for _, r := range l.Records {
			testRows = append(testRows, append(row[:len(row):len(row)], float64(r.Class)))
		}
	}
	cols := e.NumColumns() + 1
	if train, err = dense(trainRows, cols); err != nil {
		return nil, nil, fmt.Errorf("training set: %w", err)
	}
	if test, err = dense(testRows, cols); err != nil {
		return nil, nil, fmt.Errorf("test set: %w", err)
	}
	return train, test, nil
}

func dense(rows [][]float64, cols int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to write")
	}
	m := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m, nil
}

// WriteNPY writes m to w in the NumPy .npy format.
func WriteNPY(w io.Writer, m *mat.Dense) error {
	return npyio.Write(w, m)
}

// WriteNPYFiles writes the encoded training and test sets of prefix to
// prefix.data.npy and prefix.test.npy.
func WriteNPYFiles(prefix string, e *Encoder, leaves, testLeaves []*partition.Partition) error {
	train, test, err := e.Matrices(leaves, testLeaves)
	if err != nil {
		return err
	}
	paths := PathsFor(prefix)
	if err := writeFile(paths.Data+".npy", func(w io.Writer) error { return WriteNPY(w, train) }); err != nil {
		return err
	}
	return writeFile(paths.Test+".npy", func(w io.Writer) error { return WriteNPY(w, test) })
}
