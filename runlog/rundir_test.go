// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runTime = time.Date(2026, 10, 19, 14, 3, 2, 0, time.UTC)

func TestRunName(t *testing.T) {
	assert.Equal(t, "2026-10-19_14-03-02", runlog.RunName("", runTime))
	assert.Equal(t, filepath.Join("mnist", "2026-10-19_14-03-02"), runlog.RunName("mnist", runTime))
}

func TestCreateRunDirectory(t *testing.T) {
	logdir := filepath.Join(t.TempDir(), "logs")
	runName := runlog.RunName("exp", runTime)

	path, err := runlog.CreateRunDirectory(logdir, runName)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(logdir, "exp", "2026-10-19_14-03-02"), path)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	_, err = runlog.CreateRunDirectory(logdir, runName)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestCreateRunDirectoryUnwritable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	_, err := runlog.CreateRunDirectory(blocker, "run")
	assert.Error(t, err)
}
