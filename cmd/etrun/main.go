// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// etrun runs a synthetic training of the ra25 network with the default
// run logging and checkpointing callbacks, and inspects saved graphs.
package main

import (
	"os"

	"github.com/emer/etrun/cmd/etrun/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
