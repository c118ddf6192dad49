// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"path/filepath"
	"testing"

	"github.com/emer/etrun/etorch"
	"github.com/emer/etrun/examples/ra25"
	"github.com/emer/etrun/runlog"
	"github.com/goki/gi/gi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointPeriod(t *testing.T) {
	ss := newSim(t)
	dir := t.TempDir()
	ck := runlog.NewCheckpoint(filepath.Join(dir, "model-{epoch:02d}-{val_acc:.4f}.wts.gz"), "val_loss", 2)
	require.NoError(t, runlog.Loop(ss.Net, ck, 5, ss.TrainEpoch))

	require.Len(t, ck.Saved, 2)
	assert.Regexp(t, `model-02-[0-9]\.[0-9]{4}\.wts\.gz$`, ck.Saved[0])
	assert.Regexp(t, `model-04-[0-9]\.[0-9]{4}\.wts\.gz$`, ck.Saved[1])
	assert.FileExists(t, ck.Saved[0])

	cp := newSim(t)
	require.NoError(t, cp.Net.OpenWtsJSON(gi.FileName(ck.Saved[1])))
	assert.Equal(t, "4", cp.Net.MetaData["epoch"])
	assert.Contains(t, cp.Net.MetaData, "val_loss")
}

func TestCheckpointRestoresWeights(t *testing.T) {
	ss := newSim(t)
	dir := t.TempDir()
	ck := runlog.NewCheckpoint(filepath.Join(dir, "model-{epoch}.wts"), "val_loss", 1)
	require.NoError(t, runlog.Loop(ss.Net, ck, 1, ss.TrainEpoch))
	require.Len(t, ck.Saved, 1)

	cp, err := ra25.New(2)
	require.NoError(t, err)
	require.NoError(t, cp.Net.OpenWtsJSON(gi.FileName(ck.Saved[0])))
	for li, lyi := range ss.Net.Layers {
		ly := lyi.(*etorch.Layer)
		cly := cp.Net.Layers[li].(*etorch.Layer)
		for pi := range ly.RcvPrjns {
			assert.Equal(t, ly.RcvPrjns[pi].(*etorch.Prjn).States["Wt"].Values, cly.RcvPrjns[pi].(*etorch.Prjn).States["Wt"].Values)
		}
	}
}

func TestCheckpointSaveBestOnly(t *testing.T) {
	ss := newSim(t)
	dir := t.TempDir()
	ck := runlog.NewCheckpoint(filepath.Join(dir, "best-{epoch}.wts"), "val_loss", 1)
	ck.SaveBestOnly = true
	require.NoError(t, ck.OnTrainBegin(ss.Net))

	losses := []float64{0.5, 0.4, 0.45, 0.3}
	for ep, l := range losses {
		require.NoError(t, ck.OnEpochEnd(ep, runlog.Logs{"val_loss": l}))
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "best-1.wts"),
		filepath.Join(dir, "best-2.wts"),
		filepath.Join(dir, "best-4.wts"),
	}, ck.Saved)
	assert.Equal(t, 0.3, ck.Best)

	// a missing monitored metric skips the save
	require.NoError(t, ck.OnEpochEnd(4, runlog.Logs{"loss": 0.1}))
	assert.Len(t, ck.Saved, 3)
}

func TestCheckpointModeMax(t *testing.T) {
	ss := newSim(t)
	dir := t.TempDir()
	ck := runlog.NewCheckpoint(filepath.Join(dir, "best-{epoch}.wts"), "val_acc", 1)
	ck.SaveBestOnly = true
	require.NoError(t, ck.OnTrainBegin(ss.Net))
	for ep, a := range []float64{0.5, 0.4, 0.6} {
		require.NoError(t, ck.OnEpochEnd(ep, runlog.Logs{"val_acc": a}))
	}
	assert.Len(t, ck.Saved, 2)
	assert.Equal(t, 0.6, ck.Best)
}

func TestCheckpointMissingTemplateValue(t *testing.T) {
	ss := newSim(t)
	ck := runlog.NewCheckpoint(filepath.Join(t.TempDir(), "model-{epoch:02d}-{val_acc:.4f}.wts"), "val_loss", 1)
	require.NoError(t, ck.OnTrainBegin(ss.Net))
	err := ck.OnEpochEnd(0, runlog.Logs{"val_loss": 0.2})
	assert.ErrorContains(t, err, "val_acc")
	assert.Empty(t, ck.Saved)
}

func TestCheckpointSaveError(t *testing.T) {
	ss := newSim(t)
	ck := runlog.NewCheckpoint(filepath.Join(t.TempDir(), "missing", "model-{epoch}.wts"), "val_loss", 1)
	require.NoError(t, ck.OnTrainBegin(ss.Net))
	assert.Error(t, ck.OnEpochEnd(0, runlog.Logs{"val_loss": 0.2}))
	assert.Empty(t, ck.Saved)
}
