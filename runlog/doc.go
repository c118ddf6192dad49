// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package runlog sets up the logs and checkpoints of a training run of an
emer.Network.

DefaultCallbacks makes a time stamped run directory under the log dir,

	<logdir>/<prefix>/<timestamp>/

saves the architecture there as model_graph.json and model.png, and
returns three callbacks for the training loop:

  - Board: batch and epoch metrics as etable TSV logs plus a metrics plot
  - CSVLogger: one comma separated row per epoch in training.log
  - Checkpoint: the network weights every 50 epochs, as
    model-<epoch>-<val_acc>.wts.gz

The training loop owns the events: it calls the Callback methods, or
uses Loop to drive them from an EpochFunc.
*/
package runlog
