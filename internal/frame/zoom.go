/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"plotframe/internal/axis"
	"plotframe/internal/history"
	"plotframe/internal/projection"
	"plotframe/internal/session"
)

// Request is a combined zoom of x, y and z. A nil range leaves the axis alone, a range with
// equal non-zero bounds is ignored and the zero range unzooms the axis.
type Request struct {
	X, Y, Z     *axis.Range
	Interactive axis.Interaction
}

// Span returns a pointer to the range [min, max] for use in a Request.
func Span(min, max float64) *axis.Range { return &axis.Range{Min: min, Max: max} }

// pending is the classification of one axis of a zoom call.
type pending struct {
	name   axis.Name
	slot   int
	r      axis.Range
	zoom   bool
	unzoom bool
}

func (f *Frame) classify(n axis.Name, slot int, want *axis.Range) pending {
	p := pending{name: n, slot: slot}
	if want == nil {
		return p
	}
	if want.Min != want.Max {
		r, full := f.axes.Get(n).Clamp(want.Min, want.Max)
		switch {
		case full:
			p.unzoom = true
		case !r.Empty():
			p.zoom, p.r = true, r
		default:
			f.log.Debug("zoom outside full range ignored", slog.String("axis", n.String()))
		}
		return p
	}
	p.unzoom = want.Min == 0
	return p
}

// consensus offers the pending zooms to the registered layers. The first layer accepting an
// axis commits it. When no layer can validate and the frame draws its own axes, all pending
// zooms are accepted.
func (f *Frame) consensus(ps []*pending, commit func(p *pending)) {
	anyZoom := false
	for _, p := range ps {
		anyZoom = anyZoom || p.zoom
	}
	checked := false
	check := func(v ZoomValidator, layer string) {
		for _, p := range ps {
			if !p.zoom {
				continue
			}
			if v != nil && !v.CanZoomInside(p.name.Base(), p.r.Min, p.r.Max) {
				f.log.Debug("zoom rejected", slog.String("axis", p.name.String()), slog.String("layer", layer))
				continue
			}
			f.log.Debug("zoom accepted", slog.String("axis", p.name.String()), slog.String("layer", layer),
				slog.Float64("min", p.r.Min), slog.Float64("max", p.r.Max))
			p.zoom = false
			commit(p)
		}
	}
	if anyZoom {
		for _, l := range f.layers {
			if v, ok := l.(ZoomValidator); ok {
				checked = true
				check(v, l.LayerName())
			}
		}
	}
	if !checked && f.attrs.DrawAxes {
		check(nil, "frame")
	}
}

// Zoom applies a combined zoom and reports whether any axis changed. Requests covering the
// full range of an axis unzoom it. It is refused while a projection is active.
func (f *Frame) Zoom(ctx context.Context, req Request) bool {
	if f.proj.Active() != projection.None {
		return false
	}
	px := f.classify(axis.X, 0, req.X)
	py := f.classify(axis.Y, 1, req.Y)
	pz := f.classify(axis.Z, 2, req.Z)
	ps := []*pending{&px, &py, &pz}

	before := f.snapshot()
	ranges := session.NewRanges(session.CombinedSlots)
	var changedAxes [3]bool

	f.consensus(ps, func(p *pending) {
		m := f.axes.Get(p.name)
		m.SetZoom(p.r)
		changedAxes[p.slot] = true
		ranges.Set(p.slot, p.r.Min, p.r.Max)
		if req.Interactive != axis.NotInteractive {
			m.MarkInteractive(req.Interactive)
		}
	})

	for _, p := range ps {
		if !p.unzoom {
			continue
		}
		m := f.axes.Get(p.name)
		if m.Zoomed() {
			changedAxes[p.slot] = true
		}
		m.ClearZoom()
		ranges.Unzoom(p.slot)
		if req.Interactive != axis.NotInteractive {
			m.MarkInteractive(req.Interactive)
		}
	}

	var tag strings.Builder
	tag.WriteString("zoom")
	for slot, c := range changedAxes {
		if c {
			tag.WriteString(strconv.Itoa(slot))
		}
	}
	if tag.Len() == len("zoom") {
		return false
	}
	f.commit(ctx, before, ranges, tag.String())
	return true
}

// ZoomAxis zooms a single axis through the combined path for x, y and z and through
// ZoomSingle for the secondary axes.
func (f *Frame) ZoomAxis(ctx context.Context, n axis.Name, min, max float64, interactive axis.Interaction) bool {
	r := Span(min, max)
	switch n {
	case axis.X:
		return f.Zoom(ctx, Request{X: r, Interactive: interactive})
	case axis.Y:
		return f.Zoom(ctx, Request{Y: r, Interactive: interactive})
	case axis.Z:
		return f.Zoom(ctx, Request{Z: r, Interactive: interactive})
	}
	return f.ZoomSingle(ctx, n, min, max, interactive)
}

// ZoomSingle zooms one axis, including x2 and y2. Equal zero bounds unzoom it. It is refused
// while a projection is active or when the axis has no transform; z is always addressable.
func (f *Frame) ZoomSingle(ctx context.Context, n axis.Name, min, max float64, interactive axis.Interaction) bool {
	if f.proj.Active() != projection.None || !n.Valid() || (f.handles[n] == nil && n != axis.Z) {
		return false
	}
	p := f.classify(n, int(n), Span(min, max))
	before := f.snapshot()
	ranges := session.NewRanges(session.SingleSlots)
	m := f.axes.Get(n)
	changed := false

	f.consensus([]*pending{&p}, func(p *pending) {
		m.SetZoom(p.r)
		ranges.Set(p.slot, p.r.Min, p.r.Max)
		changed = true
	})
	if p.unzoom {
		if m.Zoomed() {
			changed = true
		}
		m.ClearZoom()
		ranges.Unzoom(p.slot)
	}
	if !changed {
		return false
	}
	if interactive != axis.NotInteractive {
		m.MarkInteractive(interactive)
	}
	f.commit(ctx, before, ranges, "zoom"+strconv.Itoa(p.slot))
	return true
}

// UnzoomSingle unzooms one axis as an interactive unzoom.
func (f *Frame) UnzoomSingle(ctx context.Context, n axis.Name) bool {
	return f.ZoomSingle(ctx, n, 0, 0, axis.Unzoom)
}

// Unzoom unzooms the named axes: "all" (x2, y2, then x, y and z), "x2", "y2" or any
// combination of the letters x, y and z. An empty string means "xyz".
func (f *Frame) Unzoom(ctx context.Context, axes string) bool {
	switch axes {
	case "all":
		a := f.Unzoom(ctx, "x2")
		b := f.Unzoom(ctx, "y2")
		c := f.Unzoom(ctx, "xyz")
		return a || b || c
	case "x2", "y2":
		n, _ := axis.Parse(axes)
		return f.UnzoomSingle(ctx, n)
	case "":
		axes = "xyz"
	}
	req := Request{Interactive: axis.Unzoom}
	if strings.Contains(axes, "x") {
		req.X = &axis.Range{}
	}
	if strings.Contains(axes, "y") {
		req.Y = &axis.Range{}
	}
	if strings.Contains(axes, "z") {
		req.Z = &axis.Range{}
	}
	return f.Zoom(ctx, req)
}

// ResetZoom clears zoom and interactive memo of every axis.
func (f *Frame) ResetZoom() {
	f.axes.ResetZoom()
	f.invalidateAxes()
}

func (f *Frame) IsAxisZoomed(n axis.Name) bool {
	return n.Valid() && f.axes.Get(n).Zoomed()
}

// ZoomChangedInteractive reports whether the zoom of an axis was changed by the user.
func (f *Frame) ZoomChangedInteractive(n axis.Name) bool {
	return n.Valid() && f.axes.Get(n).Memo().Changed()
}

// AnyZoomChangedInteractive reports ZoomChangedInteractive for any of x, y and z.
func (f *Frame) AnyZoomChangedInteractive() bool {
	return f.ZoomChangedInteractive(axis.X) || f.ZoomChangedInteractive(axis.Y) || f.ZoomChangedInteractive(axis.Z)
}

// commit finishes a zoom that changed at least one axis: history, session message, redraw.
func (f *Frame) commit(ctx context.Context, before history.Snapshot, ranges session.Ranges, tag string) {
	f.invalidateAxes()
	if f.hist != nil {
		f.hist.Push(before)
	}
	f.submit(ctx, ranges)
	f.log.Debug("zoom committed", slog.String("tag", tag))
	f.requestRedraw(ctx, tag)
}

func (f *Frame) submit(ctx context.Context, ranges session.Ranges) {
	if f.mode != session.Live || f.sink == nil {
		return
	}
	if err := f.sink.Submit(ctx, f.id, session.NewZoomRequest(ranges)); err != nil {
		f.log.Warn("zoom request not sent", slog.Any("err", err))
	}
}

func (f *Frame) snapshot() history.Snapshot {
	s := history.Snapshot{Frame: f.id, TS: f.now()}
	for _, n := range axis.Names {
		s.Zoom[n] = f.axes.Get(n).Zoom
	}
	return s
}

// ZoomBack restores the zoom state before the last committed zoom.
func (f *Frame) ZoomBack(ctx context.Context) bool {
	if f.hist == nil || f.proj.Active() != projection.None {
		return false
	}
	s, ok := f.hist.Back(f.snapshot())
	if !ok {
		return false
	}
	return f.restore(ctx, s)
}

// ZoomForward re-applies a zoom undone by ZoomBack.
func (f *Frame) ZoomForward(ctx context.Context) bool {
	if f.hist == nil || f.proj.Active() != projection.None {
		return false
	}
	s, ok := f.hist.Forward(f.snapshot())
	if !ok {
		return false
	}
	return f.restore(ctx, s)
}

func (f *Frame) restore(ctx context.Context, s history.Snapshot) bool {
	ranges := session.NewRanges(session.SingleSlots)
	tag := "zoom"
	for _, n := range axis.Names {
		m := f.axes.Get(n)
		if m.Zoom == s.Zoom[n] {
			continue
		}
		m.SetZoom(s.Zoom[n])
		m.MarkInteractive(axis.Interactive)
		if s.Zoom[n].Empty() {
			ranges.Unzoom(int(n))
		} else {
			ranges.Set(int(n), s.Zoom[n].Min, s.Zoom[n].Max)
		}
		tag += strconv.Itoa(int(n))
	}
	if tag == "zoom" {
		return false
	}
	f.invalidateAxes()
	f.submit(ctx, ranges)
	f.requestRedraw(ctx, tag)
	return true
}

// State is the persistable zoom state of a frame.
type State struct {
	Zoom [axis.Count]axis.Range
	Memo [axis.Count]axis.Memo
}

// State returns the current zoom state.
func (f *Frame) State() State {
	var st State
	for _, n := range axis.Names {
		m := f.axes.Get(n)
		st.Zoom[n], st.Memo[n] = m.Zoom, m.Memo()
	}
	return st
}

// RestoreState installs a saved zoom state without consensus or transmission.
func (f *Frame) RestoreState(st State) {
	for _, n := range axis.Names {
		m := f.axes.Get(n)
		m.SetZoom(st.Zoom[n])
		m.RestoreMemo(st.Memo[n])
	}
	f.invalidateAxes()
}

// Describe summarizes the ranges of every axis in one line, for crash reports.
func (f *Frame) Describe() string {
	var b strings.Builder
	b.WriteString("frame ")
	b.WriteString(f.id)
	b.WriteString(":")
	for _, n := range axis.Names {
		m := f.axes.Get(n)
		if m.Full.Empty() && !m.Zoomed() {
			continue
		}
		b.WriteString(" ")
		b.WriteString(n.String())
		b.WriteString("=")
		b.WriteString(m.Full.String())
		if m.Zoomed() {
			b.WriteString(" zoom=")
			b.WriteString(m.Zoom.String())
		}
		if m.Memo().Changed() {
			b.WriteString(" memo=")
			b.WriteString(m.Memo().String())
		}
	}
	if f.swapXY {
		b.WriteString(" swapped")
	}
	return b.String()
}
