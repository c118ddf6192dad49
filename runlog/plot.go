// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/emer/emergent/emer"
	"github.com/fogleman/gg"
)

// PlotFile is the name of the architecture diagram in the run directory.
const PlotFile = "model.png"

// PlotStyle holds the geometry of the model diagram, in pixels.
type PlotStyle struct {
	Margin    float64 `desc:"space around the diagram"`
	BoxHeight float64 `desc:"height of each layer box"`
	BoxPad    float64 `desc:"horizontal padding of text within a box"`
	Gap       float64 `desc:"vertical space between boxes"`
	Lane      float64 `desc:"horizontal space between back projection lanes on the right"`
	ShowShape bool    `desc:"show the layer shape under its name"`
	ShowNames bool    `desc:"show the layer names"`
}

// DefaultPlotStyle shows layer names and shapes.
func DefaultPlotStyle() PlotStyle {
	return PlotStyle{Margin: 20, BoxHeight: 44, BoxPad: 16, Gap: 36, Lane: 14, ShowShape: true, ShowNames: true}
}

// DrawModelPlots draws the architecture of net into logdir/runName/model.png,
// making the directory if needed.
func DrawModelPlots(net emer.Network, logdir, runName string) error {
	dir := RunPath(logdir, runName)
	if err := ensureDir(dir); err != nil {
		return err
	}
	st := DefaultPlotStyle()
	dc := st.Draw(NewGraph(net))
	return dc.SavePNG(filepath.Join(dir, PlotFile))
}

// boxLabel returns the text lines for a layer box.
func (st *PlotStyle) boxLabel(ly *GraphLayer) (string, string) {
	top := ly.Type
	if st.ShowNames {
		top = ly.Name + ": " + ly.Type
	}
	shp := ""
	if st.ShowShape {
		shp = fmt.Sprintf("%v", ly.Shape)
	}
	return top, shp
}

// Draw renders the graph, one box per layer stacked top to bottom in
// layer order. Projections going down the stack are drawn straight
// between boxes; projections going up (and lateral ones) are routed
// through lanes on the right side.
func (st *PlotStyle) Draw(gr *Graph) *gg.Context {
	nl := len(gr.Layers)
	// measure with a scratch context, using the default font face
	mc := gg.NewContext(1, 1)
	boxW := 120.0
	for i := range gr.Layers {
		top, shp := st.boxLabel(&gr.Layers[i])
		for _, s := range []string{top, shp} {
			w, _ := mc.MeasureString(s)
			boxW = math.Max(boxW, w+2*st.BoxPad)
		}
	}
	nup := 0
	for _, pj := range gr.Prjns {
		if gr.LayerIndex(pj.Send) >= gr.LayerIndex(pj.Recv) {
			nup++
		}
	}
	width := 2*st.Margin + boxW + float64(nup+1)*st.Lane
	height := 2*st.Margin + float64(nl)*st.BoxHeight + float64(max(nl-1, 0))*st.Gap
	if nl == 0 {
		height = 2 * st.Margin
	}
	dc := gg.NewContext(int(math.Ceil(width)), int(math.Ceil(height)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	boxY := func(li int) float64 { return st.Margin + float64(li)*(st.BoxHeight+st.Gap) }
	left := st.Margin
	right := st.Margin + boxW
	cx := st.Margin + boxW/2

	for li := range gr.Layers {
		ly := &gr.Layers[li]
		y := boxY(li)
		dc.DrawRectangle(left, y, boxW, st.BoxHeight)
		if ly.Off {
			dc.SetRGB(0.9, 0.9, 0.9)
		} else {
			dc.SetRGB(0.88, 0.93, 1)
		}
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.SetLineWidth(1.5)
		dc.Stroke()
		top, shp := st.boxLabel(ly)
		dc.SetRGB(0, 0, 0)
		if shp == "" {
			dc.DrawStringAnchored(top, cx, y+st.BoxHeight/2, 0.5, 0.5)
		} else {
			dc.DrawStringAnchored(top, cx, y+st.BoxHeight/3, 0.5, 0.5)
			dc.DrawStringAnchored(shp, cx, y+2*st.BoxHeight/3, 0.5, 0.5)
		}
	}

	lane := 0
	for _, pj := range gr.Prjns {
		si := gr.LayerIndex(pj.Send)
		ri := gr.LayerIndex(pj.Recv)
		if si < 0 || ri < 0 {
			continue
		}
		if pj.Off {
			dc.SetRGB(0.7, 0.7, 0.7)
		} else if si < ri {
			dc.SetRGB(0.1, 0.1, 0.1)
		} else {
			dc.SetRGB(0.75, 0.2, 0.15)
		}
		dc.SetLineWidth(1.5)
		if si < ri {
			x0, y0 := cx, boxY(si)+st.BoxHeight
			x1, y1 := cx, boxY(ri)
			// skip connections run left of center so they do not cross boxes' labels
			if ri-si > 1 {
				x0 = cx - boxW/4
				x1 = x0
			}
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
			drawArrowHead(dc, x0, y0, x1, y1)
			continue
		}
		lane++
		lx := right + float64(lane)*st.Lane
		ys := boxY(si) + st.BoxHeight*0.35
		yr := boxY(ri) + st.BoxHeight*0.65
		dc.MoveTo(right, ys)
		dc.LineTo(lx, ys)
		dc.LineTo(lx, yr)
		dc.LineTo(right, yr)
		dc.Stroke()
		drawArrowHead(dc, lx, yr, right, yr)
	}
	return dc
}

// drawArrowHead fills an arrow head at x1,y1 pointing away from x0,y0.
func drawArrowHead(dc *gg.Context, x0, y0, x1, y1 float64) {
	const sz = 7.0
	ang := math.Atan2(y1-y0, x1-x0)
	dc.MoveTo(x1, y1)
	dc.LineTo(x1-sz*math.Cos(ang-math.Pi/7), y1-sz*math.Sin(ang-math.Pi/7))
	dc.LineTo(x1-sz*math.Cos(ang+math.Pi/7), y1-sz*math.Sin(ang+math.Pi/7))
	dc.ClosePath()
	dc.Fill()
}
