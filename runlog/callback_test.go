// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/emer/emergent/emer"
	"github.com/emer/etrun/runlog"
	"github.com/stretchr/testify/assert"
)

// recorder records the events it receives, failing on failAt.
type recorder struct {
	name   string
	events *[]string
	failAt string
}

func (rc *recorder) event(ev string) error {
	*rc.events = append(*rc.events, rc.name+":"+ev)
	if ev == rc.failAt {
		return errors.New(rc.name + " failed at " + ev)
	}
	return nil
}

func (rc *recorder) OnTrainBegin(net emer.Network) error { return rc.event("train") }
func (rc *recorder) OnEpochBegin(epoch int) error        { return rc.event(fmt.Sprintf("epoch%d", epoch)) }
func (rc *recorder) OnBatchEnd(batch int, logs runlog.Logs) error {
	return rc.event(fmt.Sprintf("batch%d", batch))
}
func (rc *recorder) OnEpochEnd(epoch int, logs runlog.Logs) error {
	return rc.event(fmt.Sprintf("end%d", epoch))
}
func (rc *recorder) OnTrainEnd() error { return rc.event("done") }

func twoBatches(epoch int, batch func(bi int, logs runlog.Logs) error) (runlog.Logs, error) {
	for bi := 0; bi < 2; bi++ {
		if err := batch(bi, runlog.Logs{"loss": 1}); err != nil {
			return nil, err
		}
	}
	return runlog.Logs{"loss": 1}, nil
}

func TestLoop(t *testing.T) {
	var evs []string
	cbs := runlog.Callbacks{&recorder{name: "a", events: &evs}, &recorder{name: "b", events: &evs}}
	assert.NoError(t, runlog.Loop(nil, cbs, 1, twoBatches))
	assert.Equal(t, []string{
		"a:train", "b:train",
		"a:epoch0", "b:epoch0",
		"a:batch0", "b:batch0",
		"a:batch1", "b:batch1",
		"a:end0", "b:end0",
		"a:done", "b:done",
	}, evs)
}

func TestLoopError(t *testing.T) {
	var evs []string
	cbs := runlog.Callbacks{&recorder{name: "a", events: &evs, failAt: "batch1"}, &recorder{name: "b", events: &evs, failAt: "done"}}
	err := runlog.Loop(nil, cbs, 2, twoBatches)
	assert.EqualError(t, err, "a failed at batch1")
	// b never sees the failed batch, and every callback is still ended
	assert.Equal(t, []string{
		"a:train", "b:train",
		"a:epoch0", "b:epoch0",
		"a:batch0", "b:batch0",
		"a:batch1",
		"a:done", "b:done",
	}, evs)
}

func TestLoopTrainBeginError(t *testing.T) {
	var evs []string
	cbs := runlog.Callbacks{&recorder{name: "a", events: &evs, failAt: "train"}}
	assert.Error(t, runlog.Loop(nil, cbs, 2, twoBatches))
	assert.Equal(t, []string{"a:train"}, evs)
}

func TestLogsKeys(t *testing.T) {
	lg := runlog.Logs{"val_loss": 1, "acc": 2, "loss": 3}
	assert.Equal(t, []string{"acc", "loss", "val_loss"}, lg.Keys())
}
