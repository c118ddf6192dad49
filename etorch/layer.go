// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package etorch

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/relpos"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/gi/giv"
	"github.com/goki/mat32"
)

// LayerVarProps are the display properties of the unit variables.
var LayerVarProps = map[string]string{
	"Net": `auto-scale:"+"`,
}

// Layer is a layer of units with a float32 state tensor per unit
// variable (Net, Act, Bias by default), in the layer shape.
// Bias is saved with the weights.
type Layer struct {
	Network  emer.Network                `copy:"-" json:"-" xml:"-" view:"-" desc:"network the layer belongs to"`
	Nm       string                      `desc:"layer name, unique within the network"`
	Cls      string                      `desc:"space separated classes for param sheet selectors"`
	Off      bool                        `desc:"turn the layer off: it is not built or saved, nor are its projections"`
	Shp      etensor.Shape               `desc:"shape of the units: 2D Y, X or 4D pool Y, pool X, unit Y, unit X"`
	Typ      emer.LayerType              `desc:"Hidden, Input, Target or Compare -- also a param sheet class (.Hidden etc)"`
	Thr      int                         `desc:"thread the layer is assigned to"`
	Rel      relpos.Rel                  `view:"inline" desc:"position relative to another layer"`
	Ps       mat32.Vec3                  `desc:"lower-left corner of the layer, computed from Rel by Network.Layout"`
	Idx      int                         `desc:"index of the layer in the network"`
	RcvPrjns emer.Prjns                  `desc:"projections into this layer"`
	SndPrjns emer.Prjns                  `desc:"projections out of this layer"`
	States   map[string]*etensor.Float32 `desc:"unit state by variable name"`
	Vars     StateVars                   `view:"-" desc:"unit variable names"`
}

// InitName sets the name and the network of the layer.
func (ly *Layer) InitName(_ emer.Layer, name string, net emer.Network) {
	ly.Nm = name
	ly.Network = net
}

func (ly *Layer) Name() string               { return ly.Nm }
func (ly *Layer) SetName(nm string)          { ly.Nm = nm }
func (ly *Layer) Label() string              { return ly.Nm }
func (ly *Layer) Class() string              { return ly.Typ.String() + " " + ly.Cls }
func (ly *Layer) SetClass(cls string)        { ly.Cls = cls }
func (ly *Layer) TypeName() string           { return "Layer" }
func (ly *Layer) Type() emer.LayerType       { return ly.Typ }
func (ly *Layer) SetType(typ emer.LayerType) { ly.Typ = typ }
func (ly *Layer) IsOff() bool                { return ly.Off }
func (ly *Layer) SetOff(off bool)            { ly.Off = off }
func (ly *Layer) Shape() *etensor.Shape      { return &ly.Shp }
func (ly *Layer) Is2D() bool                 { return ly.Shp.NumDims() == 2 }
func (ly *Layer) Is4D() bool                 { return ly.Shp.NumDims() == 4 }
func (ly *Layer) Thread() int                { return ly.Thr }
func (ly *Layer) SetThread(thr int)          { ly.Thr = thr }
func (ly *Layer) RelPos() relpos.Rel         { return ly.Rel }
func (ly *Layer) Pos() mat32.Vec3            { return ly.Ps }
func (ly *Layer) SetPos(pos mat32.Vec3)      { ly.Ps = pos }
func (ly *Layer) Index() int                 { return ly.Idx }
func (ly *Layer) SetIndex(idx int)           { ly.Idx = idx }
func (ly *Layer) RecvPrjns() *emer.Prjns     { return &ly.RcvPrjns }
func (ly *Layer) NRecvPrjns() int            { return len(ly.RcvPrjns) }
func (ly *Layer) RecvPrjn(idx int) emer.Prjn { return ly.RcvPrjns[idx] }
func (ly *Layer) SendPrjns() *emer.Prjns     { return &ly.SndPrjns }
func (ly *Layer) NSendPrjns() int            { return len(ly.SndPrjns) }
func (ly *Layer) SendPrjn(idx int) emer.Prjn { return ly.SndPrjns[idx] }

// Idx4DFrom2D maps a 2D display coordinate of a 4D layer back to its
// pool Y, pool X, unit Y, unit X index.
func (ly *Layer) Idx4DFrom2D(x, y int) ([]int, bool) {
	nuy, nux := ly.Shp.Dim(2), ly.Shp.Dim(3)
	idx := []int{y / nuy, x / nux, y % nuy, x % nux}
	if !ly.Shp.IdxIsValid(idx) {
		return nil, false
	}
	return idx, true
}

// Defaults sets the default relative position spacing, and the
// defaults of the receiving projections.
func (ly *Layer) Defaults() {
	if ly.Rel.Scale == 0 {
		ly.Rel.Defaults()
	}
	for _, pj := range ly.RcvPrjns {
		pj.Defaults()
	}
}

func (ly *Layer) SetRelPos(rel relpos.Rel) {
	ly.Rel = rel
	if ly.Rel.Scale == 0 {
		ly.Rel.Defaults()
	}
}

// Size is the X, Y display extent of the layer. 4D layers lay their
// pools out side by side.
func (ly *Layer) Size() mat32.Vec2 {
	if ly.Rel.Scale == 0 {
		ly.Rel.Defaults()
	}
	var x, y int
	switch {
	case ly.Is2D():
		x, y = ly.Shp.Dim(1), ly.Shp.Dim(0)
	case ly.Is4D():
		x, y = ly.Shp.Dim(1)*ly.Shp.Dim(3), ly.Shp.Dim(0)*ly.Shp.Dim(2)
	default:
		x, y = ly.Shp.Len(), 1
	}
	return mat32.Vec2{X: float32(x), Y: float32(y)}.MulScalar(ly.Rel.Scale)
}

// SetShape sets the unit shape, naming the dimensions of 2D and 4D shapes.
func (ly *Layer) SetShape(shape []int) {
	var dnms []string
	switch len(shape) {
	case 2:
		dnms = emer.LayerDimNames2D
	case 4:
		dnms = emer.LayerDimNames4D
	}
	ly.Shp.SetShape(shape, nil, dnms)
}

// AddVars adds unit variables, allocated at Build.
func (ly *Layer) AddVars(nms ...string) {
	ly.Vars.Add(nms...)
}

// Config sets the shape and type, and adds the Net, Act and Bias variables.
func (ly *Layer) Config(shape []int, typ emer.LayerType) {
	ly.SetShape(shape)
	ly.Typ = typ
	ly.AddVars("Net", "Act", "Bias")
}

// ApplyParams applies the param sheet to the layer and its receiving
// projections, logging each value set when setMsg is true.
// The last error is returned.
func (ly *Layer) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied, rerr := pars.Apply(ly, setMsg)
	for _, pj := range ly.RcvPrjns {
		app, err := pj.ApplyParams(pars, setMsg)
		applied = applied || app
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// NonDefaultParams lists the params of the layer and its receiving
// projections that differ from their def: values.
func (ly *Layer) NonDefaultParams() string {
	nds := giv.StructNonDefFieldsStr(ly, ly.Nm)
	for _, pj := range ly.RcvPrjns {
		nds += pj.NonDefaultParams()
	}
	return nds
}

func (ly *Layer) UpdateParams() {
	for _, pj := range ly.RcvPrjns {
		pj.UpdateParams()
	}
}

// AllParams lists the structural params of the layer and its receiving
// projections.
func (ly *Layer) AllParams() string {
	str := fmt.Sprintf("/////////////////////////////////////////////////\nLayer: %v\nType: %v Shape: %v Off: %v\n", ly.Nm, ly.Typ, ly.Shp.Shp, ly.Off)
	for _, pj := range ly.RcvPrjns {
		str += pj.AllParams()
	}
	return str
}

// BuildVarNames sorts the unit variable names.
func (ly *Layer) BuildVarNames() {
	ly.Vars.Build()
}

func (ly *Layer) UnitVarNames() []string          { return ly.Vars.Names }
func (ly *Layer) UnitVarProps() map[string]string { return LayerVarProps }
func (ly *Layer) UnitVarNum() int                 { return ly.Vars.Len() }

// UnitVarIdx returns the index of varNm in UnitVarNames.
func (ly *Layer) UnitVarIdx(varNm string) (int, error) {
	vi, ok := ly.Vars.Index(varNm)
	if !ok {
		return -1, fmt.Errorf("etorch.Layer %s: no unit variable %s", ly.Nm, varNm)
	}
	return vi, nil
}

// state returns the unit state tensor of varNm.
func (ly *Layer) state(varNm string) (*etensor.Float32, error) {
	st, ok := ly.States[varNm]
	if !ok {
		return nil, fmt.Errorf("etorch.Layer %s: no unit variable %s", ly.Nm, varNm)
	}
	return st, nil
}

// UnitVal1D returns the value of variable varIdx on unit idx,
// NaN if either index is out of range.
func (ly *Layer) UnitVal1D(varIdx int, idx int) float32 {
	if varIdx < 0 || varIdx >= ly.Vars.Len() {
		return mat32.NaN()
	}
	st, err := ly.state(ly.Vars.Names[varIdx])
	if err != nil || idx < 0 || idx >= st.Len() {
		return mat32.NaN()
	}
	return st.Values[idx]
}

// UnitVals copies the values of varNm for all units into vals, resizing
// it as needed. On error the values are all NaN.
func (ly *Layer) UnitVals(vals *[]float32, varNm string) error {
	nanVals(vals, ly.Shp.Len())
	st, err := ly.state(varNm)
	if err != nil {
		return err
	}
	copy(*vals, st.Values)
	return nil
}

// nanVals ensures vals has length n and sets every value to NaN.
func nanVals(vals *[]float32, n int) {
	if cap(*vals) < n {
		*vals = make([]float32, n)
	}
	*vals = (*vals)[:n]
	nan := mat32.NaN()
	for i := range *vals {
		(*vals)[i] = nan
	}
}

// UnitValsTensor sets tsr to the layer shape and fills it with the
// values of varNm, or NaN on error.
func (ly *Layer) UnitValsTensor(tsr etensor.Tensor, varNm string) error {
	if tsr == nil {
		err := fmt.Errorf("etorch.UnitValsTensor: Tensor is nil")
		log.Println(err)
		return err
	}
	tsr.SetShape(ly.Shp.Shp, ly.Shp.Strd, ly.Shp.Nms)
	st, err := ly.state(varNm)
	for i := 0; i < tsr.Len(); i++ {
		if err != nil {
			tsr.SetFloat1D(i, math.NaN())
			continue
		}
		tsr.SetFloat1D(i, float64(st.Values[i]))
	}
	return err
}

// UnitVal returns the value of varNm on the unit at the shaped index idx.
func (ly *Layer) UnitVal(varNm string, idx []int) float32 {
	st, err := ly.state(varNm)
	if err != nil {
		return mat32.NaN()
	}
	return st.Value(idx)
}

// RecvPrjnVals fills vals with the synapse values of varNm from unit
// sendIdx1D of sendLay to every unit of this layer, NaN where not
// connected. prjnType picks among several prjns between the layers.
func (ly *Layer) RecvPrjnVals(vals *[]float32, varNm string, sendLay emer.Layer, sendIdx1D int, prjnType string) error {
	nn := ly.Shp.Len()
	nanVals(vals, nn)
	if sendLay == nil {
		return fmt.Errorf("sending layer is nil")
	}
	pj, err := findPrjn(sendLay.SendPrjns().RecvNameTypeTry, sendLay.SendPrjns().RecvNameTry, ly.Nm, prjnType)
	if pj == nil {
		return err
	}
	for ri := 0; ri < nn; ri++ {
		(*vals)[ri] = pj.SynVal(varNm, sendIdx1D, ri)
	}
	return nil
}

// SendPrjnVals fills vals with the synapse values of varNm from every
// unit of this layer to unit recvIdx1D of recvLay, NaN where not
// connected. prjnType picks among several prjns between the layers.
func (ly *Layer) SendPrjnVals(vals *[]float32, varNm string, recvLay emer.Layer, recvIdx1D int, prjnType string) error {
	nn := ly.Shp.Len()
	nanVals(vals, nn)
	if recvLay == nil {
		return fmt.Errorf("receiving layer is nil")
	}
	pj, err := findPrjn(recvLay.RecvPrjns().SendNameTypeTry, recvLay.RecvPrjns().SendNameTry, ly.Nm, prjnType)
	if pj == nil {
		return err
	}
	for si := 0; si < nn; si++ {
		(*vals)[si] = pj.SynVal(varNm, si, recvIdx1D)
	}
	return nil
}

// findPrjn looks up a projection by layer name, and by type first when prjnType is set.
func findPrjn(byType func(lay, typ string) (emer.Prjn, error), byName func(lay string) (emer.Prjn, error), lay, prjnType string) (emer.Prjn, error) {
	if prjnType != "" {
		if pj, err := byType(lay, prjnType); pj != nil {
			return pj, err
		}
	}
	return byName(lay)
}

// BuildPrjns builds the receiving projections that are on.
func (ly *Layer) BuildPrjns() error {
	var errs []error
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		errs = append(errs, pj.Build())
	}
	return errors.Join(errs...)
}

// Build allocates the unit state tensors and builds the receiving projections.
func (ly *Layer) Build() error {
	if ly.Shp.Len() == 0 {
		return fmt.Errorf("etorch.Layer %s: no units in shape", ly.Nm)
	}
	ly.BuildVarNames()
	ly.States = make(map[string]*etensor.Float32, ly.Vars.Len())
	for _, vn := range ly.Vars.Names {
		ly.States[vn] = etensor.NewFloat32Shape(&ly.Shp, nil)
	}
	return ly.BuildPrjns()
}

// VarRange returns the min and max of varNm over the units.
func (ly *Layer) VarRange(varNm string) (min, max float32, err error) {
	st, err := ly.state(varNm)
	if err != nil || st.Len() == 0 {
		return 0, 0, err
	}
	var rg minmax.F32
	rg.SetInfinity()
	for _, v := range st.Values {
		rg.FitValInRange(v)
	}
	return rg.Min, rg.Max, nil
}
