// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli holds the etrun commands.
package cli

import (
	"fmt"
	"log"

	"github.com/emer/etrun/examples/ra25"
	"github.com/emer/etrun/runlog"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the etrun command with its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "etrun",
		Short:        "etrun -- run logging and checkpointing for emergent networks",
		SilenceUsage: true,
	}
	cmd.AddCommand(newDemoCmd(), newGraphCmd())
	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		config string
		epochs int
		seed   int64
		opts   = runlog.DefaultOptions()
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Train the ra25 network with a synthetic rule, logging into a new run directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if config != "" {
				fopts, err := runlog.LoadOptions(config)
				if err != nil {
					return err
				}
				// flags given on the command line win over the file
				fl := cmd.Flags()
				if !fl.Changed("prefix") {
					opts.Prefix = fopts.Prefix
				}
				if !fl.Changed("batch-size") {
					opts.BatchSize = fopts.BatchSize
				}
				if !fl.Changed("logdir") {
					opts.LogDir = fopts.LogDir
				}
			}
			ss, err := ra25.New(seed)
			if err != nil {
				return err
			}
			ss.BatchSz = opts.BatchSize
			logpath, cbs, err := runlog.DefaultCallbacks(ss.Net, opts)
			if err != nil {
				return err
			}
			if err := runlog.Loop(ss.Net, cbs, epochs, ss.TrainEpoch); err != nil {
				return err
			}
			log.Printf("etrun: run logged to %s\n", logpath)
			fmt.Fprintln(cmd.OutOrStdout(), logpath)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&config, "config", "", "YAML file with prefix, batch_size and logdir")
	fl.StringVar(&opts.Prefix, "prefix", opts.Prefix, "name prefix of the run directory")
	fl.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "samples per batch")
	fl.StringVar(&opts.LogDir, "logdir", opts.LogDir, "root directory of runs")
	fl.IntVar(&epochs, "epochs", 100, "number of epochs to train")
	fl.Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <model_graph.json>",
		Short: "List the layers and projections of a saved model graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gr, err := runlog.ReadModelGraph(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Network: %s\n", gr.Network)
			for _, ly := range gr.Layers {
				off := ""
				if ly.Off {
					off = " (off)"
				}
				fmt.Fprintf(w, "  %-12s %-8s %v%s\n", ly.Name, ly.Type, ly.Shape, off)
			}
			for _, pj := range gr.Prjns {
				fmt.Fprintf(w, "  %s -> %s  %s %s\n", pj.Send, pj.Recv, pj.Type, pj.Pattern)
			}
			return nil
		},
	}
}
