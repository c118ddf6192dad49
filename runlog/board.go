// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/emer/emergent/emer"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// File names written by the Board in its LogDir.
const (
	BoardBatchFile   = "board_batch.tsv"
	BoardEpochFile   = "board_epoch.tsv"
	BoardPlotFile    = "metrics.png"
	BoardGraphFile   = "graph.mmd"
	BoardLogPrec     = 4
	boardSizeMetric  = "size"
	boardBatchMetric = "batch"
)

// Board is the metrics dashboard logger: it records batch and epoch
// metrics into etable logs, streams them as TSV files, and plots the
// epoch metrics to an image after every epoch.
type Board struct {
	LogDir     string                 `desc:"directory the dashboard files are written to"`
	BatchSize  int                    `desc:"number of samples between rows of the batch log -- batches report their sample count as the size metric"`
	WriteGraph bool                   `desc:"write the network graph as a Mermaid flowchart at train begin"`
	Net        emer.Network           `view:"-" desc:"network being trained, set at train begin"`
	BatchLog   *etable.Table          `view:"no-inline" desc:"batch-level log"`
	EpochLog   *etable.Table          `view:"no-inline" desc:"epoch-level log"`
	Ranges     map[string]*minmax.F64 `view:"-" desc:"range of each epoch metric seen so far"`

	epoch     int
	seen      int
	batchFile *os.File
	epochFile *os.File
	batchHdrs bool
	epochHdrs bool
}

// NewBoard returns a dashboard logging into logdir.
func NewBoard(logdir string, batchSize int, writeGraph bool) *Board {
	return &Board{LogDir: logdir, BatchSize: batchSize, WriteGraph: writeGraph}
}

// OnTrainBegin starts new logs, closing any left open by a previous run.
func (bd *Board) OnTrainBegin(net emer.Network) error {
	if err := bd.closeFiles(); err != nil {
		log.Println(err)
	}
	bd.Net = net
	if err := ensureDir(bd.LogDir); err != nil {
		return err
	}
	if bd.BatchSize < 1 {
		bd.BatchSize = 1
	}
	if bd.WriteGraph && net != nil {
		fn := filepath.Join(bd.LogDir, BoardGraphFile)
		if err := os.WriteFile(fn, []byte(NewGraph(net).Mermaid()), 0644); err != nil {
			return err
		}
	}
	bd.BatchLog = nil
	bd.EpochLog = nil
	bd.Ranges = make(map[string]*minmax.F64)
	bd.seen = 0
	var err error
	if bd.batchFile, err = os.Create(filepath.Join(bd.LogDir, BoardBatchFile)); err != nil {
		return err
	}
	if bd.epochFile, err = os.Create(filepath.Join(bd.LogDir, BoardEpochFile)); err != nil {
		bd.batchFile.Close()
		bd.batchFile = nil
		return err
	}
	bd.batchHdrs = false
	bd.epochHdrs = false
	return nil
}

func (bd *Board) OnEpochBegin(epoch int) error {
	bd.epoch = epoch
	return nil
}

// metricKeys returns the sorted metric names in logs, without the
// bookkeeping entries.
func metricKeys(logs Logs) []string {
	keys := logs.Keys()
	out := keys[:0]
	for _, k := range keys {
		if k == boardSizeMetric || k == boardBatchMetric {
			continue
		}
		out = append(out, k)
	}
	return out
}

// ConfigLog configures dt with integer index columns followed by a
// float column per metric.
func ConfigLog(dt *etable.Table, name, desc string, idxCols []string, metrics []string) {
	dt.SetMetaData("name", name)
	dt.SetMetaData("desc", desc)
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(BoardLogPrec))

	sch := etable.Schema{}
	for _, c := range idxCols {
		sch = append(sch, etable.Column{Name: c, Type: etensor.INT64, CellShape: nil, DimNames: nil})
	}
	for _, m := range metrics {
		sch = append(sch, etable.Column{Name: m, Type: etensor.FLOAT64, CellShape: nil, DimNames: nil})
	}
	dt.SetFromSchema(sch, 0)
}

// addRow appends a row of values to dt, for the metric columns it has.
func addRow(dt *etable.Table, idx map[string]int, logs Logs) int {
	row := dt.Rows
	dt.SetNumRows(row + 1)
	for c, v := range idx {
		dt.SetCellFloat(c, row, float64(v))
	}
	for k, v := range logs {
		dt.SetCellFloat(k, row, v)
	}
	return row
}

// OnBatchEnd records a batch row each time BatchSize more samples
// have been seen. A batch without a size metric counts as BatchSize samples.
func (bd *Board) OnBatchEnd(batch int, logs Logs) error {
	n := bd.BatchSize
	if sz, ok := logs[boardSizeMetric]; ok && sz > 0 {
		n = int(sz)
	}
	bd.seen += n
	if bd.seen < bd.BatchSize {
		return nil
	}
	bd.seen %= bd.BatchSize
	if bd.BatchLog == nil {
		bd.BatchLog = &etable.Table{}
		ConfigLog(bd.BatchLog, "BoardBatch", "Record of metrics over training batches", []string{"Epoch", "Batch"}, metricKeys(logs))
	}
	dt := bd.BatchLog
	row := addRow(dt, map[string]int{"Epoch": bd.epoch, "Batch": batch}, bd.known(dt, logs))
	return bd.writeRow(dt, bd.batchFile, &bd.batchHdrs, row)
}

// OnEpochEnd records the epoch row and redraws the metrics plot.
func (bd *Board) OnEpochEnd(epoch int, logs Logs) error {
	if bd.EpochLog == nil {
		bd.EpochLog = &etable.Table{}
		ConfigLog(bd.EpochLog, "BoardEpoch", "Record of metrics over training epochs", []string{"Epoch"}, metricKeys(logs))
	}
	dt := bd.EpochLog
	vals := bd.known(dt, logs)
	row := addRow(dt, map[string]int{"Epoch": epoch}, vals)
	for k, v := range vals {
		rg, ok := bd.Ranges[k]
		if !ok {
			rg = &minmax.F64{}
			rg.SetInfinity()
			bd.Ranges[k] = rg
		}
		rg.FitValInRange(v)
	}
	if err := bd.writeRow(dt, bd.epochFile, &bd.epochHdrs, row); err != nil {
		return err
	}
	return bd.SavePlot(filepath.Join(bd.LogDir, BoardPlotFile))
}

// known returns the logs restricted to the metric columns of dt.
func (bd *Board) known(dt *etable.Table, logs Logs) Logs {
	vals := make(Logs, len(logs))
	for k, v := range logs {
		if k == boardSizeMetric || k == boardBatchMetric {
			continue
		}
		if _, err := dt.ColByNameTry(k); err != nil {
			continue
		}
		vals[k] = v
	}
	return vals
}

// writeRow streams row of dt to fp, writing the headers first if needed.
func (bd *Board) writeRow(dt *etable.Table, fp *os.File, hdrs *bool, row int) error {
	if fp == nil {
		return nil
	}
	if !*hdrs {
		if _, err := dt.WriteCSVHeaders(fp, etable.Tab); err != nil {
			return err
		}
		*hdrs = true
	}
	return dt.WriteCSVRow(fp, row, etable.Tab)
}

// Range returns the min / max of the given epoch metric, and false if it
// has not been logged.
func (bd *Board) Range(metric string) (minmax.F64, bool) {
	rg, ok := bd.Ranges[metric]
	if !ok {
		return minmax.F64{}, false
	}
	return *rg, true
}

// SavePlot plots every epoch metric against the epoch, to fname.
func (bd *Board) SavePlot(fname string) error {
	dt := bd.EpochLog
	if dt == nil || dt.Rows == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = "Training metrics"
	p.X.Label.Text = "Epoch"
	p.Legend.Top = true
	ymin, ymax := math.Inf(1), math.Inf(-1)
	ci := 0
	for _, col := range dt.ColNames {
		if col == "Epoch" {
			continue
		}
		xys := make(plotter.XYs, dt.Rows)
		for r := 0; r < dt.Rows; r++ {
			xys[r].X = dt.CellFloat("Epoch", r)
			xys[r].Y = dt.CellFloat(col, r)
		}
		ln, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("runlog: plotting %s: %w", col, err)
		}
		ln.Color = plotutil.Color(ci)
		ci++
		p.Add(ln)
		p.Legend.Add(col, ln)
		if rg, ok := bd.Ranges[col]; ok {
			ymin = math.Min(ymin, rg.Min)
			ymax = math.Max(ymax, rg.Max)
		}
	}
	if ymin < ymax {
		pad := 0.05 * (ymax - ymin)
		p.Y.Min = ymin - pad
		p.Y.Max = ymax + pad
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, fname)
}

// OnTrainEnd closes the log files.
func (bd *Board) OnTrainEnd() error {
	err := bd.closeFiles()
	if err != nil {
		log.Println(err)
	}
	return err
}

// closeFiles closes the open log files, returning the first error.
func (bd *Board) closeFiles() error {
	var rerr error
	for _, fp := range []*os.File{bd.batchFile, bd.epochFile} {
		if fp == nil {
			continue
		}
		if err := fp.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}
	bd.batchFile = nil
	bd.epochFile = nil
	return rerr
}
