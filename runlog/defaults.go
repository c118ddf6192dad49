// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"path/filepath"
	"time"

	"github.com/emer/emergent/emer"
)

// DefaultCallbacks prepares a training run of net: it makes the run
// directory logdir/prefix/timestamp, draws the model diagram, writes the
// model graph, and returns the run directory with the default dashboard,
// CSV logger and checkpoint callbacks, in that order.
func DefaultCallbacks(net emer.Network, opts Options) (string, Callbacks, error) {
	if err := opts.Validate(); err != nil {
		return "", nil, err
	}
	now := opts.RunTime
	if now.IsZero() {
		now = time.Now()
	}
	runName := RunName(opts.Prefix, now)

	logpath, err := CreateRunDirectory(opts.LogDir, runName)
	if err != nil {
		return logpath, nil, err
	}
	if err := DrawModelPlots(net, opts.LogDir, runName); err != nil {
		return logpath, nil, err
	}
	if err := WriteModelGraph(net, opts.LogDir, runName); err != nil {
		return logpath, nil, err
	}
	bd := DefaultBoard(runName, opts.BatchSize, opts.LogDir)
	cl := DefaultCSVLogger(runName, opts.LogDir)
	ck := DefaultModelCheckpoint(runName, opts.LogDir)
	return logpath, Callbacks{bd, cl, ck}, nil
}

// DefaultBoard returns a dashboard logging into the run directory,
// writing the network graph.
func DefaultBoard(runName string, batchSize int, logdir string) *Board {
	return NewBoard(RunPath(logdir, runName), batchSize, true)
}

// DefaultCSVLogger returns a comma separated logger of every epoch,
// writing training.log in the run directory, truncating any existing file.
func DefaultCSVLogger(runName, logdir string) *CSVLogger {
	return NewCSVLogger(filepath.Join(RunPath(logdir, runName), CSVLogFile), ',', false)
}

// DefaultModelCheckpoint returns a checkpoint saving the model every
// 50 epochs into the run directory, monitoring val_loss.
func DefaultModelCheckpoint(runName, logdir string) *Checkpoint {
	return NewCheckpoint(filepath.Join(RunPath(logdir, runName), CheckpointTemplate), "val_loss", 50)
}
