// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/etrun/examples/ra25"
	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T) *ra25.Sim {
	t.Helper()
	ss, err := ra25.New(1)
	require.NoError(t, err)
	return ss
}

func TestModelGraphRoundTrip(t *testing.T) {
	ss := newSim(t)
	logdir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(logdir, "run"), 0755))
	require.NoError(t, runlog.WriteModelGraph(ss.Net, logdir, "run"))

	gr, err := runlog.ReadModelGraph(filepath.Join(logdir, "run", runlog.GraphFile))
	require.NoError(t, err)
	assert.Equal(t, "RA25", gr.Network)

	var names []string
	for _, ly := range ss.Net.Layers {
		names = append(names, ly.Name())
	}
	assert.Equal(t, names, gr.LayerNames())
	assert.Equal(t, []int{2, 4, 3, 2}, gr.Layers[2].Shape)
	assert.Equal(t, "Input", gr.Layers[0].Type)
	assert.Len(t, gr.Prjns, 5)
	assert.Equal(t, runlog.GraphPrjn{Send: "Input", Recv: "Hidden1", Pattern: "Full", Type: "Forward"}, gr.Prjns[0])
}

func TestReadModelGraphErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runlog.ReadModelGraph(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = runlog.ReadModelGraph(bad)
	assert.Error(t, err)
}

func TestGraphMermaid(t *testing.T) {
	gr := runlog.NewGraph(newSim(t).Net)
	mm := gr.Mermaid()
	for _, s := range []string{
		"graph TD\n",
		`Input[/"Input [5 5]"/]`,
		`Hidden1["Hidden1 [7 7]"]`,
		`Output("Output [5 5]")`,
		`Input -- "Full" --> Hidden1`,
		`Hidden2 -. "Full" .-> Hidden1`,
	} {
		assert.Contains(t, mm, s)
	}
}

func TestDrawModelPlots(t *testing.T) {
	ss := newSim(t)
	logdir := t.TempDir()
	// the directory is made if missing
	require.NoError(t, runlog.DrawModelPlots(ss.Net, logdir, "run"))
	fi, err := os.Stat(filepath.Join(logdir, "run", runlog.PlotFile))
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
	// and is fine if it exists
	require.NoError(t, runlog.DrawModelPlots(ss.Net, logdir, "run"))
}

func TestPlotStyleDraw(t *testing.T) {
	gr := runlog.NewGraph(newSim(t).Net)
	st := runlog.DefaultPlotStyle()
	dc := st.Draw(gr)
	assert.Greater(t, dc.Height(), 4*int(st.BoxHeight))
	assert.Greater(t, dc.Width(), 120)

	empty := st.Draw(&runlog.Graph{})
	assert.Equal(t, int(2*st.Margin), empty.Height())
}
