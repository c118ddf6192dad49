// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emer/emergent/emer"
	"github.com/goki/mat32"
)

// GraphFile is the name of the architecture description in the run directory.
const GraphFile = "model_graph.json"

// Graph describes the architecture of a network: its layers in order,
// and the projections between them.
type Graph struct {
	Network string       `json:"network"`
	Layers  []GraphLayer `json:"layers"`
	Prjns   []GraphPrjn  `json:"prjns"`
}

// GraphLayer describes one layer.
type GraphLayer struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Class string     `json:"class,omitempty"`
	Shape []int      `json:"shape"`
	Off   bool       `json:"off,omitempty"`
	Pos   mat32.Vec3 `json:"pos"`
}

// GraphPrjn describes one projection, from Send to Recv.
type GraphPrjn struct {
	Send    string `json:"send"`
	Recv    string `json:"recv"`
	Pattern string `json:"pattern"`
	Type    string `json:"type"`
	Off     bool   `json:"off,omitempty"`
}

// NewGraph returns the architecture of net. Projections are listed
// by receiving layer, in layer order.
func NewGraph(net emer.Network) *Graph {
	gr := &Graph{Network: net.Name()}
	nl := net.NLayers()
	gr.Layers = make([]GraphLayer, 0, nl)
	for li := 0; li < nl; li++ {
		ly := net.Layer(li)
		gr.Layers = append(gr.Layers, GraphLayer{
			Name:  ly.Name(),
			Type:  ly.Type().String(),
			Class: ly.Class(),
			Shape: append([]int(nil), ly.Shape().Shp...),
			Off:   ly.IsOff(),
			Pos:   ly.Pos(),
		})
		for pi := 0; pi < ly.NRecvPrjns(); pi++ {
			pj := ly.RecvPrjn(pi)
			gp := GraphPrjn{
				Send: pj.SendLay().Name(),
				Recv: ly.Name(),
				Type: pj.Type().String(),
				Off:  pj.IsOff(),
			}
			if pat := pj.Pattern(); pat != nil {
				gp.Pattern = pat.Name()
			}
			gr.Prjns = append(gr.Prjns, gp)
		}
	}
	return gr
}

// LayerNames returns the names of the layers, in order.
func (gr *Graph) LayerNames() []string {
	nms := make([]string, len(gr.Layers))
	for i := range gr.Layers {
		nms[i] = gr.Layers[i].Name
	}
	return nms
}

// LayerIndex returns the index of the named layer, -1 if not found.
func (gr *Graph) LayerIndex(name string) int {
	for i := range gr.Layers {
		if gr.Layers[i].Name == name {
			return i
		}
	}
	return -1
}

// WriteModelGraph writes the architecture of net as JSON to
// logdir/runName/model_graph.json.
func WriteModelGraph(net emer.Network, logdir, runName string) error {
	b, err := json.MarshalIndent(NewGraph(net), "", "  ")
	if err != nil {
		return err
	}
	fn := filepath.Join(RunPath(logdir, runName), GraphFile)
	return os.WriteFile(fn, append(b, '\n'), 0644)
}

// ReadModelGraph reads a graph file written by WriteModelGraph.
func ReadModelGraph(path string) (*Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	gr := &Graph{}
	if err := json.Unmarshal(b, gr); err != nil {
		return nil, fmt.Errorf("runlog: reading graph %s: %w", path, err)
	}
	return gr, nil
}
