// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package etorch

import (
	"fmt"
	"log"
	"strings"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/gi/giv"
	"github.com/goki/mat32"
)

// PrjnVarProps are the display properties of the synapse variables.
var PrjnVarProps = map[string]string{
	"DWt": `auto-scale:"+"`,
}

// Cons indexes one side of the connections of a projection: for each
// unit, its number of connections and the start of its block in Idx.
type Cons struct {
	N      []int32         `view:"-" desc:"number of connections of each unit"`
	St     []int32         `view:"-" desc:"start of each unit's block of connections in Idx"`
	Idx    []int32         `view:"-" desc:"index of the unit on the other side, for each connection"`
	AvgMax minmax.AvgMax32 `inactive:"+" desc:"average and maximum number of connections per unit"`
}

// alloc sets N and St from the per-unit counts in tn, allocates Idx,
// and returns the total number of connections.
func (cn *Cons) alloc(tn *etensor.Int32) int {
	cn.N = make([]int32, len(tn.Values))
	copy(cn.N, tn.Values)
	cn.St = make([]int32, len(cn.N))
	cn.AvgMax.Init()
	tot := int32(0)
	for ui, n := range cn.N {
		cn.St[ui] = tot
		tot += n
		cn.AvgMax.UpdateVal(float32(n), ui)
	}
	cn.AvgMax.CalcAvg()
	cn.Idx = make([]int32, tot)
	return int(tot)
}

// Range returns the start and number of the connections of unit ui.
func (cn *Cons) Range(ui int) (st, n int) {
	return int(cn.St[ui]), int(cn.N[ui])
}

// NUnits is the number of units on this side.
func (cn *Cons) NUnits() int { return len(cn.N) }

// Prjn connects a sending to a receiving layer. Synapse state is stored
// receiver-major: the synapses of receiving unit ri are Rcv.Range(ri),
// which is also the order weights are saved in.
type Prjn struct {
	Off     bool                        `desc:"turn the projection off: it is not built, trained or saved"`
	Cls     string                      `desc:"space separated classes for param sheet selectors"`
	Notes   string                      `desc:"free form notes"`
	Send    emer.Layer                  `desc:"sending layer"`
	Recv    emer.Layer                  `desc:"receiving layer"`
	Pat     prjn.Pattern                `desc:"pattern of connectivity"`
	Typ     emer.PrjnType               `desc:"Forward, Back or Lateral -- also a param sheet class (.Back etc)"`
	Lrate   float32                     `min:"0" def:"1" desc:"learning rate multiplier of this projection, applied on top of the trainer's rate"`
	Rcv     Cons                        `view:"-" desc:"connections of each receiving unit, in sending unit order"`
	Snd     Cons                        `view:"-" desc:"connections of each sending unit, in receiving unit order"`
	SSynIdx []int32                     `view:"-" desc:"synapse index of each sending-side connection"`
	States  map[string]*etensor.Float32 `desc:"synapse state by variable name (Wt, DWt), one value per synapse"`
	Vars    StateVars                   `view:"-" desc:"synapse variable names"`
}

// Init registers the Wt and DWt synapse variables and sets defaults.
func (pj *Prjn) Init(_ emer.Prjn) {
	pj.AddVars("Wt", "DWt")
	pj.Defaults()
}

func (pj *Prjn) TypeName() string              { return "Prjn" }
func (pj *Prjn) Class() string                 { return pj.PrjnTypeName() + " " + pj.Cls }
func (pj *Prjn) SetClass(cls string) emer.Prjn { pj.Cls = cls; return pj }
func (pj *Prjn) Name() string                  { return pj.Send.Name() + "To" + pj.Recv.Name() }
func (pj *Prjn) Label() string                 { return pj.Name() }
func (pj *Prjn) RecvLay() emer.Layer           { return pj.Recv }
func (pj *Prjn) SendLay() emer.Layer           { return pj.Send }
func (pj *Prjn) Pattern() prjn.Pattern         { return pj.Pat }
func (pj *Prjn) Type() emer.PrjnType           { return pj.Typ }
func (pj *Prjn) PrjnTypeName() string          { return pj.Typ.String() }
func (pj *Prjn) SetOff(off bool)               { pj.Off = off }

func (pj *Prjn) SetPattern(pat prjn.Pattern) emer.Prjn { pj.Pat = pat; return pj }
func (pj *Prjn) SetType(typ emer.PrjnType) emer.Prjn   { pj.Typ = typ; return pj }

// IsOff is true if the projection or either of its layers is off.
func (pj *Prjn) IsOff() bool {
	return pj.Off || pj.Recv.IsOff() || pj.Send.IsOff()
}

// Defaults sets Lrate to 1.
func (pj *Prjn) Defaults() {
	pj.Lrate = 1
}

// UpdateParams keeps Lrate non-negative after params are applied.
func (pj *Prjn) UpdateParams() {
	if pj.Lrate < 0 {
		pj.Lrate = 0
	}
}

// Connect sets the layers, pattern and type of the projection.
func (pj *Prjn) Connect(slay, rlay emer.Layer, pat prjn.Pattern, typ emer.PrjnType) {
	pj.Send = slay
	pj.Recv = rlay
	pj.Pat = pat
	pj.Typ = typ
}

// Validate returns an error naming the unset layers and pattern, if any,
// also logging it if logmsg is set.
func (pj *Prjn) Validate(logmsg bool) error {
	var miss []string
	if pj.Pat == nil {
		miss = append(miss, "Pat")
	}
	if pj.Recv == nil {
		miss = append(miss, "Recv")
	}
	if pj.Send == nil {
		miss = append(miss, "Send")
	}
	if len(miss) == 0 {
		return nil
	}
	err := fmt.Errorf("etorch.Prjn: %s not set", strings.Join(miss, ", "))
	if logmsg {
		log.Println(err)
	}
	return err
}

// AddVars adds synapse variables, allocated at Build.
func (pj *Prjn) AddVars(nms ...string) {
	pj.Vars.Add(nms...)
}

// Build connects the units of the layers according to Pat, and
// allocates a state tensor per synapse variable.
func (pj *Prjn) Build() error {
	if pj.Off {
		return nil
	}
	if err := pj.Validate(true); err != nil {
		return err
	}
	ssh := pj.Send.Shape()
	rsh := pj.Recv.Shape()
	sendn, recvn, cons := pj.Pat.Connect(ssh, rsh, pj.Recv == pj.Send)
	nsyn := pj.Rcv.alloc(recvn)
	if nsnd := pj.Snd.alloc(sendn); nsnd != nsyn {
		return fmt.Errorf("%v: %d recv connections != %d send connections", pj, nsyn, nsnd)
	}
	pj.SSynIdx = make([]int32, nsyn)
	slen := ssh.Len()
	sfill := make([]int32, slen)
	for ri := 0; ri < rsh.Len(); ri++ {
		rst, rn := pj.Rcv.Range(ri)
		syn := rst
		for si := 0; si < slen; si++ {
			if !cons.Values.Index(ri*slen + si) {
				continue
			}
			if syn >= rst+rn || sfill[si] >= pj.Snd.N[si] {
				return fmt.Errorf("%v: connection count exceeded at recv: %d, send: %d", pj, ri, si)
			}
			pj.Rcv.Idx[syn] = int32(si)
			sc := pj.Snd.St[si] + sfill[si]
			pj.Snd.Idx[sc] = int32(ri)
			pj.SSynIdx[sc] = int32(syn)
			sfill[si]++
			syn++
		}
	}
	pj.BuildVarNames()
	pj.States = make(map[string]*etensor.Float32, pj.Vars.Len())
	for _, vn := range pj.Vars.Names {
		pj.States[vn] = etensor.NewFloat32([]int{nsyn}, nil, nil)
	}
	return nil
}

// BuildVarNames sorts the synapse variable names.
func (pj *Prjn) BuildVarNames() {
	pj.Vars.Build()
}

func (pj *Prjn) String() string {
	rnm, snm, pnm := "nil", "nil", "nil"
	if pj.Recv != nil {
		rnm = pj.Recv.Name()
	}
	if pj.Send != nil {
		snm = pj.Send.Name()
	}
	if pj.Pat != nil {
		pnm = pj.Pat.Name()
	}
	return fmt.Sprintf("%s <- %s Pat=%s", rnm, snm, pnm)
}

// ApplyParams applies the param sheet to the projection, logging each
// value set when setMsg is true.
func (pj *Prjn) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(pj, setMsg)
	if app {
		pj.UpdateParams()
	}
	return app, err
}

// NonDefaultParams lists the params that differ from their def: values.
func (pj *Prjn) NonDefaultParams() string {
	return giv.StructNonDefFieldsStr(pj, pj.Recv.Name()+"."+pj.Name())
}

// AllParams lists the structural params of the projection.
func (pj *Prjn) AllParams() string {
	str := "///////////////////////////////////////////////////\nPrjn: " + pj.Name() + "\n"
	str += fmt.Sprintf("Type: %v Off: %v Lrate: %g ", pj.Typ, pj.Off, pj.Lrate)
	if pj.Pat != nil {
		str += "Pattern: " + pj.Pat.Name()
	}
	return str + "\n"
}

func (pj *Prjn) SynVarNames() []string          { return pj.Vars.Names }
func (pj *Prjn) SynVarProps() map[string]string { return PrjnVarProps }
func (pj *Prjn) SynVarNum() int                 { return pj.Vars.Len() }
func (pj *Prjn) Syn1DNum() int                  { return len(pj.Rcv.Idx) }

// state returns the synapse state tensor of varNm.
func (pj *Prjn) state(varNm string) (*etensor.Float32, error) {
	st, ok := pj.States[varNm]
	if !ok {
		return nil, fmt.Errorf("etorch.Prjn %s: no synapse variable %s", pj.Name(), varNm)
	}
	return st, nil
}

// SynVarIdx returns the index of varNm in SynVarNames.
func (pj *Prjn) SynVarIdx(varNm string) (int, error) {
	vi, ok := pj.Vars.Index(varNm)
	if !ok {
		return -1, fmt.Errorf("etorch.Prjn %s: no synapse variable %s", pj.Name(), varNm)
	}
	return vi, nil
}

// SynIdx returns the synapse index from send unit sidx to recv unit ridx
// (1D unit indexes), or -1 if they are not connected.
func (pj *Prjn) SynIdx(sidx, ridx int) int {
	if ridx < 0 || ridx >= pj.Rcv.NUnits() {
		return -1
	}
	st, n := pj.Rcv.Range(ridx)
	for syn := st; syn < st+n; syn++ {
		if int(pj.Rcv.Idx[syn]) == sidx {
			return syn
		}
	}
	return -1
}

// SynVal1D returns the value of variable varIdx at synapse synIdx,
// NaN if either index is out of range.
func (pj *Prjn) SynVal1D(varIdx int, synIdx int) float32 {
	if varIdx < 0 || varIdx >= pj.Vars.Len() {
		return mat32.NaN()
	}
	st, err := pj.state(pj.Vars.Names[varIdx])
	if err != nil || synIdx < 0 || synIdx >= st.Len() {
		return mat32.NaN()
	}
	return st.Values[synIdx]
}

// SynVals copies the values of varNm for all synapses, in synapse order,
// into vals, resizing it as needed.
func (pj *Prjn) SynVals(vals *[]float32, varNm string) error {
	st, err := pj.state(varNm)
	if err != nil {
		return err
	}
	if cap(*vals) < st.Len() {
		*vals = make([]float32, st.Len())
	}
	*vals = (*vals)[:st.Len()]
	copy(*vals, st.Values)
	return nil
}

// SynVal returns the value of varNm on the synapse from send unit sidx
// to recv unit ridx, NaN if there is none.
func (pj *Prjn) SynVal(varNm string, sidx, ridx int) float32 {
	st, err := pj.state(varNm)
	if err != nil {
		return mat32.NaN()
	}
	syn := pj.SynIdx(sidx, ridx)
	if syn < 0 {
		return mat32.NaN()
	}
	return st.Values[syn]
}

// SetSynVal sets the value of varNm on the synapse from send unit sidx
// to recv unit ridx. It is an error if they are not connected.
func (pj *Prjn) SetSynVal(varNm string, sidx, ridx int, val float32) error {
	st, err := pj.state(varNm)
	if err != nil {
		return err
	}
	syn := pj.SynIdx(sidx, ridx)
	if syn < 0 {
		return fmt.Errorf("%v: no synapse between send: %d and recv: %d", pj, sidx, ridx)
	}
	st.Values[syn] = val
	return nil
}
