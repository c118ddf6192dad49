// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package etorch

import (
	"errors"
	"fmt"
	"log"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/emergent/relpos"
	"github.com/goki/mat32"
)

// etorch.Network holds the layers of the network
type Network struct {
	EmerNet         emer.Network          `copy:"-" json:"-" xml:"-" view:"-" desc:"pointer to ourselves as an emer.Network, so that methods called on embedded types reach the outer type"`
	Nm              string                `desc:"overall name of network -- helps discriminate if there are multiple"`
	Layers          emer.Layers           `desc:"list of layers"`
	LayMap          map[string]emer.Layer `view:"-" desc:"map of name to layers -- layer names must be unique"`
	MinPos          mat32.Vec3            `view:"-" desc:"minimum display position in network"`
	MaxPos          mat32.Vec3            `view:"-" desc:"maximum display position in network"`
	MetaData        map[string]string     `desc:"optional metadata saved with the weights, e.g., the epoch a checkpoint was taken at and the monitored metric values"`
	UnitVars        StateVars             `view:"-" desc:"unit variable names across layers"`
	SynVars         StateVars             `view:"-" desc:"synapse variable names across prjns"`
}

// NewNetwork returns a new network with its emer.Network pointer initialized.
func NewNetwork(name string) *Network {
	nt := &Network{}
	nt.InitName(nt, name)
	return nt
}

// InitName MUST be called to initialize the network's pointer to itself as an emer.Network
// which enables the proper interface methods to be called.  Also sets the name.
func (nt *Network) InitName(net emer.Network, name string) {
	nt.EmerNet = net
	nt.Nm = name
}

// emer.Network interface methods:
func (nt *Network) Name() string                  { return nt.Nm }
func (nt *Network) Label() string                 { return nt.Nm }
func (nt *Network) NLayers() int                  { return len(nt.Layers) }
func (nt *Network) Layer(idx int) emer.Layer      { return nt.Layers[idx] }
func (nt *Network) Bounds() (min, max mat32.Vec3) { min = nt.MinPos; max = nt.MaxPos; return }

// LayerByName returns a layer by name, nil if not found.
// The layer map is rebuilt when it is out of sync with the layers slice.
func (nt *Network) LayerByName(name string) emer.Layer {
	if nt.LayMap == nil || len(nt.LayMap) != len(nt.Layers) {
		nt.MakeLayMap()
	}
	return nt.LayMap[name]
}

// LayerByNameTry returns a layer by name, with an error if not found.
func (nt *Network) LayerByNameTry(name string) (emer.Layer, error) {
	ly := nt.LayerByName(name)
	if ly == nil {
		return nil, fmt.Errorf("layer named: %v not found in network: %v", name, nt.Nm)
	}
	return ly, nil
}

// MakeLayMap updates layer map based on current layers
func (nt *Network) MakeLayMap() {
	nt.LayMap = make(map[string]emer.Layer, len(nt.Layers))
	for _, ly := range nt.Layers {
		nt.LayMap[ly.Name()] = ly
	}
}

// SetMeta sets a network-level metadata value, which is saved with the weights.
func (nt *Network) SetMeta(key, val string) {
	if nt.MetaData == nil {
		nt.MetaData = make(map[string]string)
	}
	nt.MetaData[key] = val
}

// StdVertLayout stacks each layer above the previous one.
func (nt *Network) StdVertLayout() {
	lstnm := ""
	for li, ly := range nt.Layers {
		if li == 0 {
			ly.SetRelPos(relpos.Rel{Rel: relpos.NoRel})
		} else {
			ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstnm, XAlign: relpos.Middle, YAlign: relpos.Front})
		}
		lstnm = ly.Name()
	}
}

// Layout computes the 3D layout of layers based on their relative position settings
func (nt *Network) Layout() {
	for itr := 0; itr < 5; itr++ {
		var lstly emer.Layer
		for _, ly := range nt.Layers {
			rp := ly.RelPos()
			var oly emer.Layer
			switch {
			case lstly != nil && rp.Rel == relpos.NoRel:
				oly = lstly
				ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstly.Name(), XAlign: relpos.Middle, YAlign: relpos.Front})
				rp = ly.RelPos()
			case rp.Other != "":
				var err error
				oly, err = nt.LayerByNameTry(rp.Other)
				if err != nil {
					log.Println(err)
					continue
				}
			case lstly != nil:
				oly = lstly
				ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstly.Name(), XAlign: relpos.Middle, YAlign: relpos.Front})
				rp = ly.RelPos()
			}
			if oly != nil {
				ly.SetPos(rp.Pos(oly.Pos(), oly.Size(), ly.Size()))
			}
			lstly = ly
		}
	}
	nt.BoundsUpdt()
}

// BoundsUpdt updates the Min / Max display bounds for 3D display
func (nt *Network) BoundsUpdt() {
	mn := mat32.NewVec3Scalar(mat32.Infinity)
	mx := mat32.Vec3Zero
	for _, ly := range nt.Layers {
		ps := ly.Pos()
		sz := ly.Size()
		ru := ps
		ru.X += sz.X
		ru.Y += sz.Y
		mn.SetMin(ps)
		mx.SetMax(ru)
	}
	nt.MinPos = mn
	nt.MaxPos = mx
}

// ApplyParams applies given parameter style Sheet to layers and prjns in this network.
// returns true if any params were set, and error if there were any errors.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, ly := range nt.Layers {
		app, err := ly.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// NonDefaultParams returns a listing of all parameters in the Network that
// are not at their default values.
func (nt *Network) NonDefaultParams() string {
	nds := ""
	for _, ly := range nt.Layers {
		nds += ly.NonDefaultParams()
	}
	return nds
}

// AllParams returns a listing of all parameters in the Network.
func (nt *Network) AllParams() string {
	nds := ""
	for _, ly := range nt.Layers {
		nds += ly.AllParams()
	}
	return nds
}

// AddLayerInit adds the given layer to the network and configures it.
func (nt *Network) AddLayerInit(ly emer.Layer, name string, shape []int, typ emer.LayerType) {
	if nt.EmerNet == nil {
		log.Printf("Network EmerNet is nil -- you MUST call InitName on network, passing a pointer to the network to initialize properly!")
		return
	}
	ly.InitName(ly, name, nt.EmerNet)
	ly.Config(shape, typ)
	nt.Layers = append(nt.Layers, ly)
	nt.MakeLayMap()
}

// AddLayer adds a new layer with given name and shape to the network.
// shape is in row-major format with outer-most dimensions first.
func (nt *Network) AddLayer(name string, shape []int, typ emer.LayerType) emer.Layer {
	ly := nt.EmerNet.NewLayer() // essential to use EmerNet interface here!
	nt.AddLayerInit(ly, name, shape, typ)
	return ly
}

// AddLayer2D adds a new layer with given name and 2D shape to the network.
func (nt *Network) AddLayer2D(name string, shapeY, shapeX int, typ emer.LayerType) emer.Layer {
	return nt.AddLayer(name, []int{shapeY, shapeX}, typ)
}

// AddLayer4D adds a new layer with given name and 4D shape to the network:
// Y-X pools, each with Y-X units.
func (nt *Network) AddLayer4D(name string, nPoolsY, nPoolsX, nNeurY, nNeurX int, typ emer.LayerType) emer.Layer {
	return nt.AddLayer(name, []int{nPoolsY, nPoolsX, nNeurY, nNeurX}, typ)
}

// ConnectLayerNames establishes a projection between two layers, referenced by name.
// Does not yet actually connect the units within the layers -- that requires Build.
func (nt *Network) ConnectLayerNames(send, recv string, pat prjn.Pattern, typ emer.PrjnType) (rlay, slay emer.Layer, pj emer.Prjn, err error) {
	rlay, err = nt.LayerByNameTry(recv)
	if err != nil {
		return
	}
	slay, err = nt.LayerByNameTry(send)
	if err != nil {
		return
	}
	pj = nt.ConnectLayers(slay, rlay, pat, typ)
	return
}

// ConnectLayers establishes a projection between two layers.
// Does not yet actually connect the units within the layers -- that requires Build.
func (nt *Network) ConnectLayers(send, recv emer.Layer, pat prjn.Pattern, typ emer.PrjnType) emer.Prjn {
	pj := nt.EmerNet.NewPrjn() // essential to use EmerNet interface here!
	return nt.ConnectLayersPrjn(send, recv, pat, typ, pj)
}

// ConnectLayersPrjn makes connection using given projection between two layers,
// adding it to the recv and send projection lists on each side.
func (nt *Network) ConnectLayersPrjn(send, recv emer.Layer, pat prjn.Pattern, typ emer.PrjnType, pj emer.Prjn) emer.Prjn {
	pj.Init(pj)
	pj.Connect(send, recv, pat, typ)
	recv.RecvPrjns().Add(pj)
	send.SendPrjns().Add(pj)
	return pj
}

// BidirConnectLayers establishes a Forward projection from low to high
// and a Back projection from high to low.
func (nt *Network) BidirConnectLayers(low, high emer.Layer, pat prjn.Pattern) (fwdpj, backpj emer.Prjn) {
	fwdpj = nt.ConnectLayers(low, high, pat, emer.Forward)
	backpj = nt.ConnectLayers(high, low, pat, emer.Back)
	return
}

// LateralConnectLayer establishes a self-projection within given layer.
func (nt *Network) LateralConnectLayer(lay emer.Layer, pat prjn.Pattern) emer.Prjn {
	pj := nt.EmerNet.NewPrjn() // essential to use EmerNet interface here!
	pj.Init(pj)
	pj.Connect(lay, lay, pat, emer.Lateral)
	lay.RecvPrjns().Add(pj)
	lay.SendPrjns().Add(pj)
	return pj
}

// Build constructs the layer and projection state based on the layer shapes
// and patterns of interconnectivity
func (nt *Network) Build() error {
	emsg := ""
	for li, ly := range nt.Layers {
		ly.SetIndex(li)
		if ly.IsOff() {
			continue
		}
		err := ly.Build()
		if err != nil {
			emsg += err.Error() + "\n"
		}
	}
	nt.Layout()
	nt.BuildVarNames()
	if emsg != "" {
		return errors.New(emsg)
	}
	return nil
}

// VarRange returns the min / max values for given variable across layers
func (nt *Network) VarRange(varNm string) (min, max float32, err error) {
	first := true
	for _, ly := range nt.Layers {
		lmin, lmax, lerr := ly.VarRange(varNm)
		if lerr != nil {
			err = lerr
			return
		}
		if first {
			min = lmin
			max = lmax
			first = false
			continue
		}
		if lmin < min {
			min = lmin
		}
		if lmax > max {
			max = lmax
		}
	}
	return
}

// NewLayer returns new layer of proper type
func (nt *Network) NewLayer() emer.Layer {
	return &Layer{}
}

// NewPrjn returns new prjn of proper type
func (nt *Network) NewPrjn() emer.Prjn {
	return &Prjn{}
}

// Defaults sets all the default parameters for all layers and projections
func (nt *Network) Defaults() {
	for li, ly := range nt.Layers {
		ly.Defaults()
		ly.SetIndex(li)
	}
}

// UpdateParams updates all the derived parameters if any have changed
func (nt *Network) UpdateParams() {
	for _, ly := range nt.Layers {
		ly.UpdateParams()
	}
}

// BuildVarNames collects the state variable names across layers and prjns
func (nt *Network) BuildVarNames() {
	nt.UnitVars = StateVars{}
	nt.SynVars = StateVars{}
	for _, lyi := range nt.Layers {
		ly := lyi.(*Layer)
		nt.UnitVars.Add(ly.Vars.Names...)
		for _, pji := range ly.RcvPrjns {
			nt.SynVars.Add(pji.(*Prjn).Vars.Names...)
		}
	}
	nt.UnitVars.Build()
	nt.SynVars.Build()
}

// UnitVarNames returns a list of variable names available on the units in this network.
// This is typically a global list so do not modify!
func (nt *Network) UnitVarNames() []string {
	return nt.UnitVars.Names
}

// UnitVarProps returns properties for variables
func (nt *Network) UnitVarProps() map[string]string {
	return nil
}

// SynVarNames returns the names of all the variables on the synapses in this network.
// This is typically a global list so do not modify!
func (nt *Network) SynVarNames() []string {
	return nt.SynVars.Names
}

// SynVarProps returns properties for variables
func (nt *Network) SynVarProps() map[string]string {
	return nil
}
