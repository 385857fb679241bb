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
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/differential-privacy/diffgen/dataset"
	"github.com/google/differential-privacy/diffgen/specialize"
)

var graphvizFormats = map[string]graphviz.Format{
	".dot": graphviz.XDOT,
	".png": graphviz.PNG,
	".svg": graphviz.SVG,
	".jpg": graphviz.JPG,
}

// nodeLabel describes a node of the specialization tree.
func nodeLabel(n specialize.Node, s *dataset.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", n.Index)
	if n.Attribute >= 0 {
		fmt.Fprintf(&b, "\n%s = %s", s.Attributes[n.Attribute].Name, n.Concept)
	}
	fmt.Fprintf(&b, "\nrecords %d, test %d", n.Records, n.TestRecords)
	fmt.Fprintf(&b, "\nquota %d, budget %d", n.Quota, n.BudgetCount)
	return b.String()
}

// drawTree adds the nodes of trace to g, each linked to its parent.
func drawTree(g *cgraph.Graph, trace []specialize.Node, s *dataset.Schema) error {
	nodes := make(map[int]*cgraph.Node, len(trace))
	for _, n := range trace {
		gn, err := g.CreateNode(fmt.Sprint(n.Index))
		if err != nil {
			return err
		}
		gn.Set("label", nodeLabel(n, s))
		if n.Leaf {
			gn.Set("shape", "box")
		}
		nodes[n.Index] = gn
		if parent, ok := nodes[n.Parent]; ok {
			if _, err := g.CreateEdge("", parent, gn); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawTree builds the graph of the specialization tree. The caller closes
// both returned values.
func DrawTree(trace []specialize.Node, s *dataset.Schema) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	g, err := gv.Graph()
	if err != nil {
		gv.Close()
		return nil, nil, err
	}
	if err := drawTree(g, trace, s); err != nil {
		g.Close()
		gv.Close()
		return nil, nil, fmt.Errorf("couldn't draw the specialization tree, err = %w", err)
	}
	return gv, g, nil
}

// RenderTree renders the specialization tree to w in the given format.
func RenderTree(w io.Writer, format graphviz.Format, trace []specialize.Node, s *dataset.Schema) error {
	gv, g, err := DrawTree(trace, s)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer g.Close()
	return gv.Render(g, format, w)
}

// RenderTreeFile renders the specialization tree to path. The format follows
// the file extension: .dot, .png, .svg or .jpg.
func RenderTreeFile(path string, trace []specialize.Node, s *dataset.Schema) error {
	format, ok := graphvizFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported tree file extension %q, want .dot, .png, .svg or .jpg", filepath.Ext(path))
	}
	gv, g, err := DrawTree(trace, s)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer g.Close()
	if err := gv.RenderFilename(g, format, path); err != nil {
		return fmt.Errorf("couldn't render the tree file = %q, err = %w", path, err)
	}
	return nil
}
