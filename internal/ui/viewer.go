/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
// Package ui connects a frame to pointer and keyboard input. Viewer holds the input logic and
// is headless; the fyne window around it is only built with -tags fyne.
package ui

import (
	"context"
	"image"
	"log/slog"
	"math"
	"strings"
	"sync"

	"plotframe/internal/axis"
	"plotframe/internal/frame"
	plog "plotframe/internal/log"
	"plotframe/internal/render"
	"plotframe/internal/vector"
)

// scrollStep is the zoom factor of one wheel notch.
const scrollStep = 0.9

// minBand is the smallest rubber band extent, in pixels, that zooms an axis.
const minBand = 5

// Viewer renders a frame onto a canvas and turns input into frame operations. Input methods
// are expected on one goroutine, as toolkits deliver them; key subscriptions may change from
// any goroutine.
type Viewer struct {
	frame  *frame.Frame
	canvas *render.Canvas
	curves []*render.Curve
	log    *slog.Logger

	secondX, secondY bool

	mu      sync.Mutex
	subs    map[int]func(frame.KeyEvent)
	nextSub int
	changed func()
}

// NewViewer creates a viewer drawing onto c. Attach connects the frame.
func NewViewer(c *render.Canvas) *Viewer {
	return &Viewer{canvas: c, log: plog.WithComponent("ui"), subs: make(map[int]func(frame.KeyEvent))}
}

// Attach registers the curves as frame layers, sets the full ranges from their bounds and
// subscribes the frame to key presses. Curves flagged SecondX or SecondY set the x2 and y2
// ranges; when no curve uses a primary axis it spans all curves.
func (v *Viewer) Attach(ctx context.Context, f *frame.Frame, curves ...*render.Curve) {
	v.frame = f
	v.curves = curves
	var xs, ys, x2s, y2s, allX, allY []axis.Range
	for _, c := range curves {
		f.AddLayer(c)
		x, y := c.Bounds()
		allX, allY = append(allX, x), append(allY, y)
		if c.SecondX {
			x2s = append(x2s, x)
			v.secondX = true
		} else {
			xs = append(xs, x)
		}
		if c.SecondY {
			y2s = append(y2s, y)
			v.secondY = true
		} else {
			ys = append(ys, y)
		}
	}
	if len(xs) == 0 {
		xs = allX
	}
	if len(ys) == 0 {
		ys = allY
	}
	if len(curves) > 0 {
		f.SetAxesRanges(union(xs), union(ys), axis.Range{})
		f.SetAxes2Ranges(v.secondX, union(x2s), v.secondY, union(y2s))
	}
	f.Resize(v.canvas.Pad())
	f.EnableKeys(ctx, v)
}

func union(rs []axis.Range) axis.Range {
	if len(rs) == 0 {
		return axis.Range{}
	}
	out := rs[0]
	for _, r := range rs[1:] {
		out.Min, out.Max = math.Min(out.Min, r.Min), math.Max(out.Max, r.Max)
	}
	return out
}

// Frame returns the attached frame.
func (v *Viewer) Frame() *frame.Frame { return v.frame }

// OnChange sets the callback run after every completed render.
func (v *Viewer) OnChange(fn func()) {
	v.mu.Lock()
	v.changed = fn
	v.mu.Unlock()
}

// Subscribe implements frame.KeySource.
func (v *Viewer) Subscribe(handler func(frame.KeyEvent)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = handler
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Key delivers a key press to the subscribers. Toolkit names such as "Left" map to
// "arrowleft".
func (v *Viewer) Key(key string, shift bool) {
	ev := frame.KeyEvent{Key: normalizeKey(key), Shift: shift}
	v.mu.Lock()
	hs := make([]func(frame.KeyEvent), 0, len(v.subs))
	for _, h := range v.subs {
		hs = append(hs, h)
	}
	v.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

func normalizeKey(k string) string {
	switch strings.ToLower(k) {
	case "left":
		return "arrowleft"
	case "right":
		return "arrowright"
	case "up":
		return "arrowup"
	case "down":
		return "arrowdown"
	}
	return strings.ToLower(k)
}

// InteractiveRedraw implements frame.Redrawer.
func (v *Viewer) InteractiveRedraw(ctx context.Context, _, _ string) error { return v.Render(ctx) }

// Render draws the frame axes, the secondary axes in use and the curves.
func (v *Viewer) Render(ctx context.Context) error {
	if v.frame == nil {
		return nil
	}
	if _, err := v.frame.DrawAxes(ctx); err != nil {
		return err
	}
	if (v.secondX || v.secondY) && v.frame.Drawn() {
		if err := v.frame.DrawAxes2(ctx, v.secondX, v.secondY); err != nil {
			return err
		}
	}
	for _, c := range v.curves {
		c.Draw(v.canvas, v.frame.GrFuncs(c.SecondX, c.SecondY))
	}
	v.mu.Lock()
	fn := v.changed
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// Image rasterizes the current canvas.
func (v *Viewer) Image() (image.Image, error) { return v.canvas.Rasterize() }

// Resize changes the pad size and redraws.
func (v *Viewer) Resize(ctx context.Context, pad vector.Size) error {
	v.canvas.SetPad(pad)
	if v.frame == nil {
		return nil
	}
	v.frame.Resize(pad)
	return v.Render(ctx)
}

// axesAt returns the names of the horizontal and vertical axes.
func (v *Viewer) axesAt() (h, vert axis.Name) {
	if v.frame.SwapXY() {
		return axis.Y, axis.X
	}
	return axis.X, axis.Y
}

// toFrame maps a pad point into the frame and reports whether it lies inside.
func (v *Viewer) toFrame(p vector.Pt) (vector.Pt, bool) {
	g := v.frame.Geometry()
	q := g.ToFrame(p)
	return q, g.Rect().Contains(q)
}

// Scroll zooms around the pad point at: positive notches zoom in, negative ones out.
func (v *Viewer) Scroll(ctx context.Context, at vector.Pt, notches float64) bool {
	if v.frame == nil || notches == 0 {
		return false
	}
	q, ok := v.toFrame(at)
	if !ok {
		return false
	}
	factor := math.Pow(scrollStep, notches)
	hn, vn := v.axesAt()
	req := frame.Request{Interactive: axis.Interactive}
	xr, xok := v.zoomAround(hn, q.X, factor)
	yr, yok := v.zoomAround(vn, q.Y, factor)
	if v.frame.SwapXY() {
		xr, yr, xok, yok = yr, xr, yok, xok
	}
	if xok {
		req.X = xr
	}
	if yok {
		req.Y = yr
	}
	if req.X == nil && req.Y == nil {
		return false
	}
	v.log.Debug("scroll zoom", slog.Float64("factor", factor))
	return v.frame.Zoom(ctx, req)
}

// zoomAround scales the visible range of n by factor keeping the value under px in place.
// Log axes scale in decades.
func (v *Viewer) zoomAround(n axis.Name, px, factor float64) (*axis.Range, bool) {
	t := v.frame.Handle(n)
	if t == nil || !t.Configured() {
		return nil, false
	}
	s := t.Scale()
	c := t.Inverse(px)
	if t.IsLog() && s.Min > 0 && c > 0 {
		lmin, lmax, lc := math.Log10(s.Min), math.Log10(s.Max), math.Log10(c)
		return frame.Span(math.Pow(10, lc-(lc-lmin)*factor), math.Pow(10, lc+(lmax-lc)*factor)), true
	}
	return frame.Span(c-(c-s.Min)*factor, c+(s.Max-c)*factor), true
}

// ZoomRect zooms to the rubber band spanned by two pad points. A band thinner than minBand
// pixels leaves that axis alone.
func (v *Viewer) ZoomRect(ctx context.Context, a, b vector.Pt) bool {
	if v.frame == nil {
		return false
	}
	g := v.frame.Geometry()
	p, q := g.ToFrame(a), g.ToFrame(b)
	clampPt := func(pt vector.Pt) vector.Pt {
		return vector.Pt{X: math.Max(0, math.Min(g.Width, pt.X)), Y: math.Max(0, math.Min(g.Height, pt.Y))}
	}
	p, q = clampPt(p), clampPt(q)

	hn, vn := v.axesAt()
	rangeOf := func(n axis.Name, p0, p1 float64) *axis.Range {
		if math.Abs(p1-p0) < minBand {
			return nil
		}
		lo, hi := v.frame.RevertAxis(n, p0), v.frame.RevertAxis(n, p1)
		if lo > hi {
			lo, hi = hi, lo
		}
		return frame.Span(lo, hi)
	}
	hr, vr := rangeOf(hn, p.X, q.X), rangeOf(vn, p.Y, q.Y)
	req := frame.Request{Interactive: axis.Interactive}
	if v.frame.SwapXY() {
		req.X, req.Y = vr, hr
	} else {
		req.X, req.Y = hr, vr
	}
	if req.X == nil && req.Y == nil {
		return false
	}
	return v.frame.Zoom(ctx, req)
}

// Unzoom resets every axis, as a double click does.
func (v *Viewer) Unzoom(ctx context.Context) bool {
	if v.frame == nil {
		return false
	}
	return v.frame.Unzoom(ctx, "all")
}

// Status describes the pad point at in axis values, for a status line.
func (v *Viewer) Status(at vector.Pt) string {
	if v.frame == nil {
		return ""
	}
	q, ok := v.toFrame(at)
	if !ok {
		return ""
	}
	hn, vn := v.axesAt()
	gf := v.frame.GrFuncs(false, false)
	return hn.String() + "=" + gf.AxisAsText(hn, v.frame.RevertAxis(hn, q.X)) +
		"  " + vn.String() + "=" + gf.AxisAsText(vn, v.frame.RevertAxis(vn, q.Y))
}

// Export writes the current canvas to path; the extension picks the format.
func (v *Viewer) Export(path string) error { return render.Export(path, v.canvas) }
