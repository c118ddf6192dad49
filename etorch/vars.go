// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package etorch

import "sort"

// StateVars is a set of state variable names, as held by layers, prjns
// and the network. Once built, Names is in alpha order and Idx maps each
// name to its position in Names.
type StateVars struct {
	Idx   map[string]int `desc:"index of each name in Names"`
	Names []string       `desc:"variable names, alpha order"`
}

// Add adds variable names. Build must be called again before indexing.
func (sv *StateVars) Add(nms ...string) {
	if sv.Idx == nil {
		sv.Idx = make(map[string]int)
	}
	for _, nm := range nms {
		sv.Idx[nm] = -1
	}
	sv.Names = nil
}

// Build sorts the names and sets their indexes.
func (sv *StateVars) Build() {
	sv.Names = make([]string, 0, len(sv.Idx))
	for nm := range sv.Idx {
		sv.Names = append(sv.Names, nm)
	}
	sort.Strings(sv.Names)
	for i, nm := range sv.Names {
		sv.Idx[nm] = i
	}
}

// Index returns the index of nm, and false if it is not a built variable.
func (sv *StateVars) Index(nm string) (int, bool) {
	i, ok := sv.Idx[nm]
	return i, ok && i >= 0
}

// Len is the number of variables.
func (sv *StateVars) Len() int { return len(sv.Names) }
