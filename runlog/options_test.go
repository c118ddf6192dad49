// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestDefaultOptions(t *testing.T) {
	opts := runlog.DefaultOptions()
	assert.Equal(t, "", opts.Prefix)
	assert.Equal(t, 32, opts.BatchSize)
	assert.Equal(t, "../logs", opts.LogDir)
	assert.True(t, opts.RunTime.IsZero())
	assert.NoError(t, opts.Validate())
}

func TestLoadOptions(t *testing.T) {
	fn := writeFile(t, "run.yaml", "prefix: mnist\nbatch_size: 64\n")
	opts, err := runlog.LoadOptions(fn)
	require.NoError(t, err)
	assert.Equal(t, "mnist", opts.Prefix)
	assert.Equal(t, 64, opts.BatchSize)
	assert.Equal(t, runlog.DefaultLogDir, opts.LogDir)
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := runlog.LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = runlog.LoadOptions(writeFile(t, "bad.yaml", "batch_size: [1\n"))
	assert.Error(t, err)

	_, err = runlog.LoadOptions(writeFile(t, "neg.yaml", "batch_size: -1\n"))
	assert.ErrorContains(t, err, "batch size")

	_, err = runlog.LoadOptions(writeFile(t, "empty.yaml", "logdir: \"\"\n"))
	assert.ErrorContains(t, err, "log dir")
}
