// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/emer/emergent/emer"
	"github.com/goki/gi/gi"
)

// CheckpointTemplate is the default checkpoint file name within a run directory.
const CheckpointTemplate = "model-{epoch:02d}-{val_acc:.4f}.wts.gz"

// Modes for deciding whether a monitored value improved.
const (
	ModeAuto = "auto"
	ModeMin  = "min"
	ModeMax  = "max"
)

// metaSetter is implemented by networks that save metadata with their weights.
type metaSetter interface {
	SetMeta(key, val string)
}

// Checkpoint saves the network weights every Period epochs, to a file
// named by formatting Filepath with the 1-based epoch and the epoch logs.
type Checkpoint struct {
	Filepath     string       `desc:"file name template, with {epoch} and metric placeholders -- .gz extension compresses"`
	Monitor      string       `desc:"metric compared across epochs when SaveBestOnly is set"`
	Period       int          `desc:"number of epochs between saves"`
	SaveBestOnly bool         `desc:"only save when the monitored metric improves on the best seen so far"`
	Mode         string       `desc:"min, max or auto: whether lower or higher Monitor values are better -- auto is max for accuracy metrics, min otherwise"`
	Net          emer.Network `view:"-" desc:"network whose weights are saved, set at train begin"`
	Saved        []string     `desc:"files saved so far, in order"`
	Best         float64      `desc:"best monitored value seen"`

	sinceLast int
}

// NewCheckpoint returns a checkpoint saving every period epochs, monitoring the given metric.
func NewCheckpoint(filepath, monitor string, period int) *Checkpoint {
	ck := &Checkpoint{Filepath: filepath, Monitor: monitor, Period: period, Mode: ModeAuto}
	ck.resetBest()
	return ck
}

// higherBetter returns true if larger monitored values are improvements.
func (ck *Checkpoint) higherBetter() bool {
	switch ck.Mode {
	case ModeMax:
		return true
	case ModeMin:
		return false
	}
	return strings.Contains(ck.Monitor, "acc") || strings.HasPrefix(ck.Monitor, "fmeasure")
}

func (ck *Checkpoint) resetBest() {
	if ck.higherBetter() {
		ck.Best = math.Inf(-1)
	} else {
		ck.Best = math.Inf(1)
	}
}

func (ck *Checkpoint) OnTrainBegin(net emer.Network) error {
	switch ck.Mode {
	case ModeAuto, ModeMin, ModeMax:
	case "":
		ck.Mode = ModeAuto
	default:
		log.Printf("runlog: checkpoint mode %q unknown, using auto\n", ck.Mode)
		ck.Mode = ModeAuto
	}
	if ck.Period < 1 {
		ck.Period = 1
	}
	ck.Net = net
	ck.sinceLast = 0
	ck.Saved = nil
	ck.resetBest()
	return nil
}

func (ck *Checkpoint) OnEpochBegin(epoch int) error          { return nil }
func (ck *Checkpoint) OnBatchEnd(batch int, logs Logs) error { return nil }
func (ck *Checkpoint) OnTrainEnd() error                     { return nil }

// OnEpochEnd saves the weights when Period epochs have passed since the
// last save (and, under SaveBestOnly, the monitored metric improved).
func (ck *Checkpoint) OnEpochEnd(epoch int, logs Logs) error {
	ck.sinceLast++
	if ck.sinceLast < ck.Period {
		return nil
	}
	ck.sinceLast = 0
	vals := make(map[string]float64, len(logs)+1)
	for k, v := range logs {
		vals[k] = v
	}
	vals["epoch"] = float64(epoch + 1)
	fn, err := FormatTemplate(ck.Filepath, vals)
	if err != nil {
		return err
	}
	if ck.SaveBestOnly {
		cur, ok := logs[ck.Monitor]
		if !ok {
			log.Printf("runlog: can save best model only with %s available, skipping\n", ck.Monitor)
			return nil
		}
		if !ck.improved(cur) {
			return nil
		}
		log.Printf("runlog: epoch %05d: %s improved from %.5f to %.5f, saving model to %s\n", epoch+1, ck.Monitor, ck.Best, cur, fn)
		ck.Best = cur
	}
	return ck.save(fn, epoch, logs)
}

func (ck *Checkpoint) improved(cur float64) bool {
	if ck.higherBetter() {
		return cur > ck.Best
	}
	return cur < ck.Best
}

func (ck *Checkpoint) save(fn string, epoch int, logs Logs) error {
	if ck.Net == nil {
		return fmt.Errorf("runlog: checkpoint has no network -- OnTrainBegin not called")
	}
	if ms, ok := ck.Net.(metaSetter); ok {
		ms.SetMeta("epoch", strconv.Itoa(epoch+1))
		for _, k := range logs.Keys() {
			ms.SetMeta(k, strconv.FormatFloat(logs[k], 'g', -1, 64))
		}
	}
	if err := ck.Net.SaveWtsJSON(gi.FileName(fn)); err != nil {
		return fmt.Errorf("runlog: saving checkpoint %s: %w", fn, err)
	}
	log.Printf("runlog: epoch %05d: saved checkpoint %s\n", epoch+1, fn)
	ck.Saved = append(ck.Saved, fn)
	return nil
}
