// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCallbacks(t *testing.T) {
	ss := newSim(t)
	logdir := t.TempDir()
	opts := runlog.DefaultOptions()
	opts.LogDir = logdir
	opts.Prefix = "ra25"
	opts.RunTime = runTime

	logpath, cbs, err := runlog.DefaultCallbacks(ss.Net, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(logdir, "ra25", "2026-10-19_14-03-02"), logpath)
	assert.FileExists(t, filepath.Join(logpath, runlog.PlotFile))
	assert.FileExists(t, filepath.Join(logpath, runlog.GraphFile))

	require.Len(t, cbs, 3)
	bd, ok := cbs[0].(*runlog.Board)
	require.True(t, ok)
	assert.Equal(t, logpath, bd.LogDir)
	assert.Equal(t, 32, bd.BatchSize)
	assert.True(t, bd.WriteGraph)

	cl, ok := cbs[1].(*runlog.CSVLogger)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(logpath, runlog.CSVLogFile), cl.Filename)
	assert.Equal(t, ',', cl.Separator)
	assert.False(t, cl.Append)

	ck, ok := cbs[2].(*runlog.Checkpoint)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(logpath, runlog.CheckpointTemplate), ck.Filepath)
	assert.Equal(t, "val_loss", ck.Monitor)
	assert.Equal(t, 50, ck.Period)

	require.NoError(t, runlog.Loop(ss.Net, cbs, 3, ss.TrainEpoch))
	assert.Len(t, readLines(t, cl.Filename), 4)
	assert.FileExists(t, filepath.Join(logpath, runlog.BoardEpochFile))
	assert.Empty(t, ck.Saved)

	_, _, err = runlog.DefaultCallbacks(ss.Net, opts)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestDefaultCallbacksInvalid(t *testing.T) {
	ss := newSim(t)
	opts := runlog.DefaultOptions()
	opts.LogDir = t.TempDir()
	opts.BatchSize = 0
	_, _, err := runlog.DefaultCallbacks(ss.Net, opts)
	assert.Error(t, err)
}
