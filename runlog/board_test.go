// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	ss := newSim(t)
	dir := filepath.Join(t.TempDir(), "board")
	bd := runlog.NewBoard(dir, 32, true)
	require.NoError(t, runlog.Loop(ss.Net, bd, 3, ss.TrainEpoch))

	// 100 samples in batches of 32, 32, 32, 4: three batch rows per epoch
	require.NotNil(t, bd.BatchLog)
	assert.Equal(t, 9, bd.BatchLog.Rows)
	assert.Equal(t, []string{"Epoch", "Batch", "acc", "loss"}, bd.BatchLog.ColNames)
	assert.Len(t, readLines(t, filepath.Join(dir, runlog.BoardBatchFile)), 10)

	require.NotNil(t, bd.EpochLog)
	assert.Equal(t, 3, bd.EpochLog.Rows)
	assert.Equal(t, []string{"Epoch", "acc", "loss", "val_acc", "val_loss"}, bd.EpochLog.ColNames)
	assert.Equal(t, 2.0, bd.EpochLog.CellFloat("Epoch", 2))
	assert.Len(t, readLines(t, filepath.Join(dir, runlog.BoardEpochFile)), 4)

	rg, ok := bd.Range("loss")
	require.True(t, ok)
	assert.LessOrEqual(t, rg.Min, rg.Max)
	_, ok = bd.Range("nope")
	assert.False(t, ok)

	assert.FileExists(t, filepath.Join(dir, runlog.BoardPlotFile))
	mmd, err := os.ReadFile(filepath.Join(dir, runlog.BoardGraphFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(mmd), "graph TD"))
}

func TestBoardBatchWithoutSize(t *testing.T) {
	dir := t.TempDir()
	bd := runlog.NewBoard(dir, 4, false)
	require.NoError(t, bd.OnTrainBegin(nil))
	require.NoError(t, bd.OnEpochBegin(0))
	for bi := 0; bi < 3; bi++ {
		require.NoError(t, bd.OnBatchEnd(bi, runlog.Logs{"loss": float64(bi)}))
	}
	require.NoError(t, bd.OnTrainEnd())
	assert.Equal(t, 3, bd.BatchLog.Rows)
	assert.Equal(t, 2.0, bd.BatchLog.CellFloat("Batch", 2))
	assert.NoFileExists(t, filepath.Join(dir, runlog.BoardGraphFile))
	assert.NoFileExists(t, filepath.Join(dir, runlog.BoardPlotFile))
}
