// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultLogDir is the directory under which run directories are made.
const DefaultLogDir = "../logs"

// DefaultBatchSize is the batch size the dashboard logs at by default.
const DefaultBatchSize = 32

// Options configures DefaultCallbacks.
type Options struct {
	Prefix    string    `yaml:"prefix" desc:"optional name prefix: runs are grouped under logdir/prefix"`
	BatchSize int       `yaml:"batch_size" desc:"number of samples between rows of the dashboard batch log"`
	LogDir    string    `yaml:"logdir" desc:"root directory for all runs"`
	RunTime   time.Time `yaml:"-" desc:"time stamp for the run name -- current time if zero"`
}

// DefaultOptions returns the default options: no prefix, batch size 32,
// log dir ../logs.
func DefaultOptions() Options {
	return Options{BatchSize: DefaultBatchSize, LogDir: DefaultLogDir}
}

// LoadOptions reads options from a YAML file, on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	b, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(b, &opts); err != nil {
		return opts, fmt.Errorf("runlog: parsing options %s: %w", path, err)
	}
	return opts, opts.Validate()
}

// Validate checks that the options can make a run.
func (o *Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("runlog: batch size must be positive, got %d", o.BatchSize)
	}
	if o.LogDir == "" {
		return fmt.Errorf("runlog: log dir is empty")
	}
	return nil
}
