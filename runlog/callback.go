// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"sort"

	"github.com/emer/emergent/emer"
)

// Logs holds metric values by name for one batch or epoch,
// e.g., loss, acc, val_loss, val_acc.
type Logs map[string]float64

// Keys returns the metric names in sorted order.
func (lg Logs) Keys() []string {
	keys := make([]string, 0, len(lg))
	for k := range lg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Callback receives the events of a training run, in order:
// OnTrainBegin, then for each epoch OnEpochBegin, OnBatchEnd for each
// batch and OnEpochEnd, and finally OnTrainEnd.
// Epoch and batch indexes are 0-based.
type Callback interface {
	OnTrainBegin(net emer.Network) error
	OnEpochBegin(epoch int) error
	OnBatchEnd(batch int, logs Logs) error
	OnEpochEnd(epoch int, logs Logs) error
	OnTrainEnd() error
}

// Callbacks is a list of callbacks, itself a Callback that passes each
// event to all of them in order, stopping at the first error.
type Callbacks []Callback

func (cl Callbacks) OnTrainBegin(net emer.Network) error {
	for _, cb := range cl {
		if err := cb.OnTrainBegin(net); err != nil {
			return err
		}
	}
	return nil
}

func (cl Callbacks) OnEpochBegin(epoch int) error {
	for _, cb := range cl {
		if err := cb.OnEpochBegin(epoch); err != nil {
			return err
		}
	}
	return nil
}

func (cl Callbacks) OnBatchEnd(batch int, logs Logs) error {
	for _, cb := range cl {
		if err := cb.OnBatchEnd(batch, logs); err != nil {
			return err
		}
	}
	return nil
}

func (cl Callbacks) OnEpochEnd(epoch int, logs Logs) error {
	for _, cb := range cl {
		if err := cb.OnEpochEnd(epoch, logs); err != nil {
			return err
		}
	}
	return nil
}

// OnTrainEnd calls OnTrainEnd on all callbacks even if some fail,
// so that every file gets closed, and returns the first error.
func (cl Callbacks) OnTrainEnd() error {
	var rerr error
	for _, cb := range cl {
		if err := cb.OnTrainEnd(); err != nil && rerr == nil {
			rerr = err
		}
	}
	return rerr
}

// EpochFunc trains one epoch. It calls batch after each batch with
// that batch's logs, and returns the epoch logs.
type EpochFunc func(epoch int, batch func(bi int, logs Logs) error) (Logs, error)

// Loop runs epochs of training with fn, sending the events to cb.
// OnTrainEnd is always called once OnTrainBegin succeeded.
func Loop(net emer.Network, cb Callback, epochs int, fn EpochFunc) (err error) {
	if err = cb.OnTrainBegin(net); err != nil {
		return err
	}
	defer func() {
		if eerr := cb.OnTrainEnd(); err == nil {
			err = eerr
		}
	}()
	for ep := 0; ep < epochs; ep++ {
		if err = cb.OnEpochBegin(ep); err != nil {
			return err
		}
		var logs Logs
		logs, err = fn(ep, cb.OnBatchEnd)
		if err != nil {
			return err
		}
		if err = cb.OnEpochEnd(ep, logs); err != nil {
			return err
		}
	}
	return nil
}
