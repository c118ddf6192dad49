// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
etrun sets up logging and checkpointing for training runs of emergent
networks.

The etorch package provides an emer.Network whose layers and projections
hold named state tensors (Net, Act, Bias on units, Wt, DWt on synapses)
which a training loop fills in, and which save and load their learned
state in the emergent weights JSON format.

The runlog package makes a time stamped run directory for a network,
writes its architecture as model_graph.json and model.png, and provides
the callbacks a training loop calls each batch and epoch: a metrics
dashboard, a per-epoch CSV log, and periodic weight checkpoints.

The etrun command runs a synthetic training of the examples/ra25 network
with the default callbacks, and lists the layers of a saved graph.
*/
package etrun
