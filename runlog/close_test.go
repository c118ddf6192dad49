// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardRestartClosesFiles(t *testing.T) {
	bd := NewBoard(t.TempDir(), 1, false)
	require.NoError(t, bd.OnTrainBegin(nil))
	bf, ef := bd.batchFile, bd.epochFile
	require.NoError(t, bd.OnTrainBegin(nil))
	assert.ErrorIs(t, bf.Close(), os.ErrClosed)
	assert.ErrorIs(t, ef.Close(), os.ErrClosed)
	assert.NotSame(t, bf, bd.batchFile)

	require.NoError(t, bd.OnTrainEnd())
	assert.Nil(t, bd.batchFile)
	assert.Nil(t, bd.epochFile)
	require.NoError(t, bd.OnTrainEnd())
}

func TestCSVLoggerRestartClosesFile(t *testing.T) {
	cl := NewCSVLogger(filepath.Join(t.TempDir(), "log.csv"), ',', false)
	require.NoError(t, cl.OnTrainBegin(nil))
	fp := cl.file
	require.NoError(t, cl.OnTrainBegin(nil))
	assert.ErrorIs(t, fp.Close(), os.ErrClosed)
	require.NoError(t, cl.OnTrainEnd())
	assert.Nil(t, cl.file)
}
