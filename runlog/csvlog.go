// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/emer/emergent/emer"
)

// CSVLogFile is the name of the per-epoch CSV log in the run directory.
const CSVLogFile = "training.log"

// CSVLogger writes one row per epoch to a CSV file: the epoch index
// followed by the metric values, in sorted metric name order.
// The header row is written once, from the metrics of the first epoch.
type CSVLogger struct {
	Filename  string `desc:"file to write"`
	Separator rune   `desc:"field separator"`
	Append    bool   `desc:"append to an existing file instead of truncating it -- no header is written if the file already has content"`

	keys   []string
	hdr    bool
	file   *os.File
	writer *csv.Writer
}

// NewCSVLogger returns a logger writing to filename, fields separated by sep.
func NewCSVLogger(filename string, sep rune, appnd bool) *CSVLogger {
	return &CSVLogger{Filename: filename, Separator: sep, Append: appnd}
}

// Keys returns the metric columns, after the first epoch has been logged.
func (cl *CSVLogger) Keys() []string {
	return cl.keys
}

// OnTrainBegin opens the file, closing any left open by a previous run.
func (cl *CSVLogger) OnTrainBegin(net emer.Network) error {
	if err := cl.OnTrainEnd(); err != nil {
		log.Println(err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	cl.hdr = true
	if cl.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if fi, err := os.Stat(cl.Filename); err == nil && fi.Size() > 0 {
			cl.hdr = false
		}
	}
	fp, err := os.OpenFile(cl.Filename, flags, 0644)
	if err != nil {
		return err
	}
	cl.file = fp
	cl.writer = csv.NewWriter(fp)
	if cl.Separator != 0 {
		cl.writer.Comma = cl.Separator
	}
	cl.keys = nil
	return nil
}

func (cl *CSVLogger) OnEpochBegin(epoch int) error          { return nil }
func (cl *CSVLogger) OnBatchEnd(batch int, logs Logs) error { return nil }

// OnEpochEnd writes the row for the epoch. Metrics missing from logs are
// written as NA, and metrics not in the header are dropped.
func (cl *CSVLogger) OnEpochEnd(epoch int, logs Logs) error {
	if cl.writer == nil {
		return fmt.Errorf("runlog: csv logger %s is not open", cl.Filename)
	}
	if cl.keys == nil {
		cl.keys = logs.Keys()
	}
	if cl.hdr {
		hdr := append([]string{"epoch"}, cl.keys...)
		if err := cl.writer.Write(hdr); err != nil {
			return err
		}
		cl.hdr = false
	}
	row := make([]string, 0, len(cl.keys)+1)
	row = append(row, strconv.Itoa(epoch))
	for _, k := range cl.keys {
		v, ok := logs[k]
		if !ok {
			row = append(row, "NA")
			continue
		}
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := cl.writer.Write(row); err != nil {
		return err
	}
	cl.writer.Flush()
	return cl.writer.Error()
}

// OnTrainEnd flushes and closes the file.
func (cl *CSVLogger) OnTrainEnd() error {
	if cl.file == nil {
		return nil
	}
	cl.writer.Flush()
	err := cl.writer.Error()
	if cerr := cl.file.Close(); err == nil {
		err = cerr
	}
	cl.file = nil
	cl.writer = nil
	return err
}
