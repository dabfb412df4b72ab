/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
// Package render draws frames onto SVG, PNG and PDF outputs. A Canvas records the frame box,
// axes, grids and layer polylines as a display list in pad coordinates; the writers replay it.
package render

import (
	"context"
	"image/color"
	"log/slog"
	"math"
	"sort"
	"sync"

	"plotframe/internal/axis"
	"plotframe/internal/frame"
	plog "plotframe/internal/log"
	"plotframe/internal/vector"
)

// Anchor is the horizontal alignment of a label around its position.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

type line struct {
	A, B  vector.Pt
	Width float64
	Color color.RGBA
	Dash  bool
}

type label struct {
	At     vector.Pt // baseline position
	Text   string
	Size   float64
	Anchor Anchor
	Rotate float64 // degrees, counter-clockwise
}

type layer struct {
	lines  []line
	labels []label
}

type axisKey struct {
	name  axis.Name
	other bool
}

// Style holds the drawing parameters of a canvas.
type Style struct {
	FontSize   float64
	MajorTick  float64
	MinorTick  float64
	LabelGap   float64
	AxisColor  color.RGBA
	GridColor  color.RGBA
	DataColor  color.RGBA
	Background color.RGBA
}

// DefaultStyle is black axes on white with light dashed grids.
var DefaultStyle = Style{
	FontSize:   11,
	MajorTick:  8,
	MinorTick:  4,
	LabelGap:   3,
	AxisColor:  color.RGBA{A: 255},
	GridColor:  color.RGBA{R: 200, G: 200, B: 200, A: 255},
	DataColor:  color.RGBA{R: 31, G: 119, B: 180, A: 255},
	Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
}

// Canvas is a frame.Surface that keeps what was drawn for export. It is safe for the
// concurrent DrawAxis calls of a draw pass.
type Canvas struct {
	pad     vector.Size
	style   Style
	measure Measurer
	log     *slog.Logger

	mu    sync.Mutex
	geom  frame.Geometry
	begun bool
	axes  map[axisKey]layer
	grids map[axis.Name]layer
	data  map[string]layer
}

// Option configures a Canvas.
type Option func(*Canvas)

func WithStyle(s Style) Option       { return func(c *Canvas) { c.style = s } }
func WithMeasurer(m Measurer) Option { return func(c *Canvas) { c.measure = m } }

// NewCanvas creates a canvas for a pad of the given pixel size.
func NewCanvas(pad vector.Size, opts ...Option) *Canvas {
	c := &Canvas{
		pad:     pad,
		style:   DefaultStyle,
		measure: BasicMeasurer{},
		log:     plog.WithComponent("render"),
		axes:    make(map[axisKey]layer),
		grids:   make(map[axis.Name]layer),
		data:    make(map[string]layer),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Pad is the canvas size in pixels.
func (c *Canvas) Pad() vector.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pad
}

// SetPad changes the canvas size. The frame must be laid out and drawn again.
func (c *Canvas) SetPad(pad vector.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pad = pad
	c.begun = false
}

// BeginFrame starts a new pass: previous axes, grids and data are dropped.
func (c *Canvas) BeginFrame(_ context.Context, g frame.Geometry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geom = g
	c.begun = true
	c.axes = make(map[axisKey]layer)
	c.grids = make(map[axis.Name]layer)
	c.data = make(map[string]layer)
	return nil
}

// ClearAxes drops drawn axes and grids but keeps the frame box.
func (c *Canvas) ClearAxes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.axes = make(map[axisKey]layer)
	c.grids = make(map[axis.Name]layer)
}

func (c *Canvas) geometry() frame.Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

// DrawAxis records the axis line, ticks and labels of req.
func (c *Canvas) DrawAxis(ctx context.Context, req frame.AxisRequest) (frame.AxisResult, error) {
	if err := ctx.Err(); err != nil {
		return frame.AxisResult{}, err
	}
	g := c.geometry()
	st := c.style
	vertical := req.Transform != nil && req.Transform.Vertical()
	side := float64(req.Side)
	if side == 0 {
		side = 1
	}
	textRot := 0.0
	if g.Rotated {
		textRot = 90
	}

	var ly layer
	add := func(a, b vector.Pt) {
		ly.lines = append(ly.lines, line{A: g.ToPad(a), B: g.ToPad(b), Width: 1, Color: st.AxisColor})
	}

	var extent float64
	if vertical {
		add(vector.Pt{X: req.Offset, Y: 0}, vector.Pt{X: req.Offset, Y: g.Height})
		anchor := AnchorEnd
		if side < 0 {
			anchor = AnchorStart
		}
		var maxW float64
		for _, tk := range req.Ticks {
			n := st.MinorTick
			if tk.Major {
				n = st.MajorTick
			}
			add(vector.Pt{X: req.Offset, Y: tk.Pos}, vector.Pt{X: req.Offset - side*n, Y: tk.Pos})
			if !tk.Major || req.HideLabels || tk.Label == "" {
				continue
			}
			if req.Avoid > 0 && math.Abs(tk.Pos-g.Height) < st.FontSize/2 {
				continue
			}
			w := c.measure.Width(tk.Label, st.FontSize)
			maxW = math.Max(maxW, w)
			at := vector.Pt{X: req.Offset - side*(st.MajorTick+st.LabelGap), Y: tk.Pos + st.FontSize/3}
			ly.labels = append(ly.labels, label{At: g.ToPad(at), Text: tk.Label, Size: st.FontSize, Anchor: anchor, Rotate: textRot})
		}
		if maxW > 0 {
			extent = st.MajorTick + st.LabelGap + maxW
		}
	} else {
		add(vector.Pt{X: 0, Y: req.Offset}, vector.Pt{X: g.Width, Y: req.Offset})
		lh := c.measure.LineHeight(st.FontSize)
		var labelled bool
		for _, tk := range req.Ticks {
			n := st.MinorTick
			if tk.Major {
				n = st.MajorTick
			}
			add(vector.Pt{X: tk.Pos, Y: req.Offset}, vector.Pt{X: tk.Pos, Y: req.Offset + side*n})
			if !tk.Major || req.HideLabels || tk.Label == "" {
				continue
			}
			labelled = true
			y := req.Offset + side*(st.MajorTick+st.LabelGap)
			if side > 0 {
				y += lh
			}
			ly.labels = append(ly.labels, label{At: g.ToPad(vector.Pt{X: tk.Pos, Y: y}), Text: tk.Label, Size: st.FontSize, Anchor: AnchorMiddle, Rotate: textRot})
		}
		if labelled {
			extent = st.MajorTick + st.LabelGap + lh
		}
	}

	c.mu.Lock()
	c.axes[axisKey{name: req.Name, other: req.OtherSide}] = ly
	c.mu.Unlock()
	c.log.Debug("axis drawn", slog.String("axis", req.Name.String()), slog.Int("ticks", len(req.Ticks)), slog.Bool("other_side", req.OtherSide))
	return frame.AxisResult{LabelExtent: extent}, nil
}

// DrawGrid records dashed grid lines across the frame.
func (c *Canvas) DrawGrid(ctx context.Context, req frame.GridRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g := c.geometry()
	vertical := req.Transform != nil && req.Transform.Vertical()
	var ly layer
	for _, p := range req.Positions {
		a, b := vector.Pt{X: p, Y: 0}, vector.Pt{X: p, Y: g.Height}
		if vertical {
			a, b = vector.Pt{X: 0, Y: p}, vector.Pt{X: g.Width, Y: p}
		}
		ly.lines = append(ly.lines, line{A: g.ToPad(a), B: g.ToPad(b), Width: 1, Color: c.style.GridColor, Dash: true})
	}
	c.mu.Lock()
	c.grids[req.Name] = ly
	c.mu.Unlock()
	return nil
}

// DrawPolyline records a layer polyline given in frame coordinates. Points outside the frame
// are kept; writers clip to the frame box.
func (c *Canvas) DrawPolyline(name string, pts []vector.Pt) {
	g := c.geometry()
	var ly layer
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if math.IsNaN(a.X+a.Y+b.X+b.Y) || math.IsInf(a.X+a.Y+b.X+b.Y, 0) {
			continue
		}
		ly.lines = append(ly.lines, line{A: g.ToPad(a), B: g.ToPad(b), Width: 1.5, Color: c.style.DataColor})
	}
	c.mu.Lock()
	c.data[name] = ly
	c.mu.Unlock()
}

// frameBox is the frame outline in pad coordinates.
func (c *Canvas) frameBox(g frame.Geometry) []line {
	corners := g.Rect().Corners()
	out := make([]line, 0, 4)
	for i := range corners {
		out = append(out, line{A: g.ToPad(corners[i]), B: g.ToPad(corners[(i+1)%4]), Width: 1, Color: c.style.AxisColor})
	}
	return out
}

// display is a stable snapshot of the display list: grids, data, frame box, axes.
type display struct {
	pad    vector.Size
	clip   vector.Rect
	bg     color.RGBA
	grid   []line
	data   []line
	lines  []line
	labels []label
}

func (c *Canvas) snapshot() display {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := display{pad: c.pad, bg: c.style.Background}
	if !c.begun {
		return d
	}
	g := c.geom
	d.clip = vector.BBox(g.ToPad(vector.Pt{}), g.ToPad(vector.Pt{X: g.Width, Y: g.Height}))

	gnames := make([]axis.Name, 0, len(c.grids))
	for n := range c.grids {
		gnames = append(gnames, n)
	}
	sort.Slice(gnames, func(i, j int) bool { return gnames[i] < gnames[j] })
	for _, n := range gnames {
		d.grid = append(d.grid, c.grids[n].lines...)
	}

	dnames := make([]string, 0, len(c.data))
	for n := range c.data {
		dnames = append(dnames, n)
	}
	sort.Strings(dnames)
	for _, n := range dnames {
		d.data = append(d.data, c.data[n].lines...)
	}

	d.lines = append(d.lines, c.frameBox(g)...)
	keys := make([]axisKey, 0, len(c.axes))
	for k := range c.axes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return !keys[i].other && keys[j].other
	})
	for _, k := range keys {
		d.lines = append(d.lines, c.axes[k].lines...)
		d.labels = append(d.labels, c.axes[k].labels...)
	}
	return d
}
