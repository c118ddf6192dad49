// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// TimeFormat is the layout of the time stamp in run names.
var TimeFormat = "2006-01-02_15-04-05"

// RunName returns prefix/timestamp for a run started at t.
func RunName(prefix string, t time.Time) string {
	return filepath.Join(prefix, t.Format(TimeFormat))
}

// RunPath returns the directory of the run: logdir/runName.
func RunPath(logdir, runName string) string {
	return filepath.Join(logdir, runName)
}

// CreateRunDirectory makes logdir/runName, including any parents,
// and returns its path. It is an error (fs.ErrExist) if the directory
// already exists.
func CreateRunDirectory(logdir, runName string) (string, error) {
	logpath := RunPath(logdir, runName)
	if _, err := os.Stat(logpath); err == nil {
		return logpath, &fs.PathError{Op: "mkdir", Path: logpath, Err: fs.ErrExist}
	}
	if err := os.MkdirAll(filepath.Dir(logpath), 0755); err != nil {
		return logpath, err
	}
	if err := os.Mkdir(logpath, 0755); err != nil {
		return logpath, err
	}
	log.Printf("runlog: created run directory %s\n", logpath)
	return logpath, nil
}

// ensureDir makes dir if it does not exist yet.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	return nil
}
