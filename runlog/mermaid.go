// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"strings"
)

// Mermaid returns the graph as a Mermaid flowchart, top down.
// Input layers are drawn as parallelograms, Target and Compare layers
// as rounded boxes. Back projections are dotted, lateral ones are
// labeled loops.
func (gr *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, ly := range gr.Layers {
		opener, closer := "[", "]"
		switch ly.Type {
		case "Input":
			opener, closer = "[/", "/]"
		case "Target", "Compare":
			opener, closer = "(", ")"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s %v\"%s\n", mermaidID(ly.Name), opener, ly.Name, ly.Shape, closer)
	}
	for _, pj := range gr.Prjns {
		arrow := "-->"
		switch pj.Type {
		case "Back":
			arrow = "-.->"
		case "Lateral":
			arrow = "-- lateral -->"
		}
		if pj.Pattern != "" && pj.Type != "Lateral" {
			if arrow == "-->" {
				arrow = fmt.Sprintf("-- \"%s\" -->", pj.Pattern)
			} else {
				arrow = fmt.Sprintf("-. \"%s\" .->", pj.Pattern)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(pj.Send), arrow, mermaidID(pj.Recv))
	}
	for _, ly := range gr.Layers {
		if ly.Off {
			fmt.Fprintf(&sb, "    style %s stroke-dasharray: 5 5\n", mermaidID(ly.Name))
		}
	}
	return sb.String()
}

// mermaidID replaces characters Mermaid does not accept in node ids.
func mermaidID(nm string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, nm)
}
