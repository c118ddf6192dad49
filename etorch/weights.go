// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package etorch

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/emer/emergent/weights"
	"github.com/goki/gi/gi"
)

// LayerWtsVars are the layer-level state variables that adapt with learning
// and are saved with the weights, as weights.Layer Units.
var LayerWtsVars = []string{"Bias"}

// PrjnWtsVar is the synaptic state variable saved with the weights.
const PrjnWtsVar = "Wt"

///////////////////////////////////////////////////////////////////////
//  Network

// WtsNet returns the weights of the network in the weights.Network
// structure that is written as JSON.
func (nt *Network) WtsNet() *weights.Network {
	nw := &weights.Network{Network: nt.Nm}
	if len(nt.MetaData) > 0 {
		nw.MetaData = make(map[string]string, len(nt.MetaData))
		for k, v := range nt.MetaData {
			nw.MetaData[k] = v
		}
	}
	for _, lyi := range nt.Layers {
		ly := lyi.(*Layer)
		if ly.IsOff() {
			continue
		}
		nw.Layers = append(nw.Layers, *ly.WtsLayer())
	}
	return nw
}

// WriteWtsJSON writes network weights (and any other state that adapts with learning)
// to JSON-formatted output.
func (nt *Network) WriteWtsJSON(w io.Writer) error {
	b, err := json.MarshalIndent(nt.WtsNet(), "", "\t")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// ReadWtsJSON reads network weights from JSON-formatted input,
// decoding into a weights.Network that is applied with SetWts.
func (nt *Network) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err
	}
	return nt.SetWts(nw)
}

// SetWts sets the weights for this network from weights.Network decoded values
func (nt *Network) SetWts(nw *weights.Network) error {
	var errs []string
	if nw.Network != "" && nw.Network != nt.Nm {
		log.Printf("etorch.Network %s: setting weights saved from network %s\n", nt.Nm, nw.Network)
	}
	for k, v := range nw.MetaData {
		nt.SetMeta(k, v)
	}
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		ly, err := nt.LayerByNameTry(lw.Layer)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := ly.SetWts(lw); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("etorch.Network SetWts: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SaveWtsJSON saves network weights (and any other state that adapts with learning)
// to a JSON-formatted file.  If filename has .gz extension, then file is gzip compressed.
func (nt *Network) SaveWtsJSON(filename gi.FileName) error {
	fp, err := os.Create(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	if filepath.Ext(string(filename)) == ".gz" {
		gzw := gzip.NewWriter(fp)
		err = nt.WriteWtsJSON(gzw)
		if cerr := gzw.Close(); err == nil {
			err = cerr
		}
	} else {
		bw := bufio.NewWriter(fp)
		err = nt.WriteWtsJSON(bw)
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Println(err)
	}
	return err
}

// OpenWtsJSON opens network weights (and any other state that adapts with learning)
// from a JSON-formatted file.  If filename has .gz extension, then file is gzip uncompressed.
func (nt *Network) OpenWtsJSON(filename gi.FileName) error {
	fp, err := os.Open(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	if filepath.Ext(string(filename)) == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return nt.ReadWtsJSON(gzr)
	}
	return nt.ReadWtsJSON(bufio.NewReader(fp))
}

///////////////////////////////////////////////////////////////////////
//  Layer

// WtsLayer returns the weights of this layer and its receiving projections.
func (ly *Layer) WtsLayer() *weights.Layer {
	lw := &weights.Layer{Layer: ly.Nm}
	for _, vn := range LayerWtsVars {
		st, ok := ly.States[vn]
		if !ok {
			continue
		}
		if lw.Units == nil {
			lw.Units = make(map[string][]float32)
		}
		lw.Units[vn] = append([]float32(nil), st.Values...)
	}
	for _, pji := range ly.RcvPrjns {
		pj := pji.(*Prjn)
		if pj.IsOff() {
			continue
		}
		lw.Prjns = append(lw.Prjns, *pj.WtsPrjn())
	}
	return lw
}

// WriteWtsJSON writes the weights from this layer from the receiver-side perspective
// in a JSON text format, indented to the given depth.
func (ly *Layer) WriteWtsJSON(w io.Writer, depth int) {
	b, err := json.MarshalIndent(ly.WtsLayer(), strings.Repeat("\t", depth), "\t")
	if err != nil {
		log.Println(err)
		return
	}
	w.Write(b)
}

// ReadWtsJSON reads the weights for this layer only, as written by
// Layer.WriteWtsJSON.
func (ly *Layer) ReadWtsJSON(r io.Reader) error {
	var lw weights.Layer
	if err := json.NewDecoder(r).Decode(&lw); err != nil {
		return err
	}
	return ly.SetWts(&lw)
}

// SetWts sets the weights for this layer from weights.Layer decoded values
func (ly *Layer) SetWts(lw *weights.Layer) error {
	var errs []string
	for vn, vals := range lw.Units {
		st, ok := ly.States[vn]
		if !ok {
			errs = append(errs, fmt.Sprintf("layer %s: no state variable %s", ly.Nm, vn))
			continue
		}
		if len(vals) != st.Len() {
			errs = append(errs, fmt.Sprintf("layer %s: %s has %d values, want %d", ly.Nm, vn, len(vals), st.Len()))
			continue
		}
		copy(st.Values, vals)
	}
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		pj, err := ly.RcvPrjns.SendNameTry(pw.From)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := pj.SetWts(pw); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////
//  Prjn

// WtsPrjn returns the weights of this projection, one weights.Recv per
// receiving unit, listing the sending unit indexes and their weights.
func (pj *Prjn) WtsPrjn() *weights.Prjn {
	pw := &weights.Prjn{From: pj.Send.Name()}
	if pj.Typ != 0 {
		pw.MetaData = map[string]string{"Type": pj.PrjnTypeName()}
	}
	wt := pj.States[PrjnWtsVar]
	for ri := 0; ri < pj.Rcv.NUnits(); ri++ {
		st, nc := pj.Rcv.Range(ri)
		rw := weights.Recv{Ri: ri, N: nc, Si: make([]int, nc), Wt: make([]float32, nc)}
		for ci := 0; ci < nc; ci++ {
			rw.Si[ci] = int(pj.Rcv.Idx[st+ci])
			if wt != nil {
				rw.Wt[ci] = wt.Values[st+ci]
			}
		}
		pw.Rs = append(pw.Rs, rw)
	}
	return pw
}

// WriteWtsJSON writes the weights from this projection from the receiver-side perspective
// in a JSON text format, indented to the given depth.
func (pj *Prjn) WriteWtsJSON(w io.Writer, depth int) {
	b, err := json.MarshalIndent(pj.WtsPrjn(), strings.Repeat("\t", depth), "\t")
	if err != nil {
		log.Println(err)
		return
	}
	w.Write(b)
}

// ReadWtsJSON reads the weights for this projection only, as written by
// Prjn.WriteWtsJSON.
func (pj *Prjn) ReadWtsJSON(r io.Reader) error {
	var pw weights.Prjn
	if err := json.NewDecoder(r).Decode(&pw); err != nil {
		return err
	}
	return pj.SetWts(&pw)
}

// SetWts sets the weights for this projection from weights.Prjn decoded values
func (pj *Prjn) SetWts(pw *weights.Prjn) error {
	for ri := range pw.Rs {
		rw := &pw.Rs[ri]
		if rw.Ri < 0 || rw.Ri >= pj.Rcv.NUnits() {
			return fmt.Errorf("%v: recv unit index %d out of range", pj.String(), rw.Ri)
		}
		if len(rw.Wt) < len(rw.Si) {
			return fmt.Errorf("%v: recv unit %d has %d weights for %d senders", pj.String(), rw.Ri, len(rw.Wt), len(rw.Si))
		}
		for ci, si := range rw.Si {
			if err := pj.SetSynVal(PrjnWtsVar, si, rw.Ri, rw.Wt[ci]); err != nil {
				return err
			}
		}
	}
	return nil
}
