/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package frame owns the geometry and the interactive zoom state of a plot frame: the range
// model of every axis, the data to pixel transforms, zoom consensus between the layers drawn
// in the frame and the sequencing of axis drawing.
//
// A Frame is owned by one goroutine. Only calls into the Surface may run concurrently with
// each other, never with mutations of the frame.
package frame

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"plotframe/internal/axis"
	"plotframe/internal/history"
	plog "plotframe/internal/log"
	"plotframe/internal/projection"
	"plotframe/internal/session"
	"plotframe/internal/vector"
)

// Layer is a plot drawn inside the frame.
type Layer interface {
	LayerName() string
}

// ZoomValidator is implemented by layers that have an opinion on zoom ranges. Layers without
// it are skipped during consensus.
type ZoomValidator interface {
	CanZoomInside(name axis.Name, min, max float64) bool
}

// Redrawer triggers a redraw of the surrounding pad. reason identifies what changed, for
// example "zoom01" after a zoom of x and y.
type Redrawer interface {
	InteractiveRedraw(ctx context.Context, kind, reason string) error
}

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func(ctx context.Context, kind, reason string) error

func (f RedrawFunc) InteractiveRedraw(ctx context.Context, kind, reason string) error {
	return f(ctx, kind, reason)
}

type nopRedrawer struct{}

func (nopRedrawer) InteractiveRedraw(context.Context, string, string) error { return nil }

// Option configures a Frame.
type Option func(*Frame)

func WithLogger(l *slog.Logger) Option { return func(f *Frame) { f.log = l } }

func WithSurface(s Surface) Option { return func(f *Frame) { f.surface = s } }

func WithRedrawer(r Redrawer) Option { return func(f *Frame) { f.redraw = r } }

// WithSession attaches a sink. Requests are only transmitted in session.Live mode.
func WithSession(s session.Sink, mode session.Mode) Option {
	return func(f *Frame) { f.sink, f.mode = s, mode }
}

func WithHistory(h *history.Manager) Option { return func(f *Frame) { f.hist = h } }

func WithID(id string) Option { return func(f *Frame) { f.id = id } }

func WithClock(now func() time.Time) Option { return func(f *Frame) { f.now = now } }

// Frame is the geometric and interactive state of one plot frame.
type Frame struct {
	id      string
	log     *slog.Logger
	attrs   Attributes
	axes    axis.Set
	handles [axis.Count]*axis.Transform
	layers  []Layer

	surface Surface
	redraw  Redrawer
	sink    session.Sink
	mode    session.Mode
	hist    *history.Manager
	proj    *projection.Engine
	now     func() time.Time

	pad  vector.Size
	geom Geometry

	layerAxes  bool // transforms were configured by ConfigureAxes
	layerOpts  XYOptions
	layerStale bool // ranges or geometry changed since the layer transforms were built
	swapXY     bool
	drawn      bool
	drawing    bool
	epoch      uint64

	keysOff func()
}

// New creates a frame with the given attributes.
func New(attrs Attributes, opts ...Option) *Frame {
	f := &Frame{attrs: attrs, redraw: nopRedrawer{}, now: time.Now}
	for _, o := range opts {
		o(f)
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	if f.log == nil {
		f.log = plog.WithComponent("frame")
	}
	f.log = f.log.With(slog.String("frame", f.id))
	if f.surface == nil {
		f.surface = nopSurface{}
	}
	f.proj = projection.NewEngine(f.log)
	f.geom = Layout(f.pad, attrs.Margins, attrs.Rotate)
	return f
}

func (f *Frame) ID() string { return f.id }

func (f *Frame) Geometry() Geometry { return f.geom }

func (f *Frame) Attributes() Attributes { return f.attrs }

// Axis returns the range model of an axis.
func (f *Frame) Axis(n axis.Name) *axis.Model { return f.axes.Get(n) }

// Handle returns the configured transform of an axis, or nil.
func (f *Frame) Handle(n axis.Name) *axis.Transform {
	if !n.Valid() {
		return nil
	}
	return f.handles[n]
}

// Drawn reports whether the primary axes are drawn for the current state.
func (f *Frame) Drawn() bool { return f.drawn }

func (f *Frame) SwapXY() bool { return f.swapXY }

// Projection returns the projection applied to the x/y scale.
func (f *Frame) Projection() projection.ID { return f.proj.Active() }

// AddLayer registers a layer. Consensus consults layers in registration order.
func (f *Frame) AddLayer(l Layer) { f.layers = append(f.layers, l) }

func (f *Frame) RemoveLayer(l Layer) bool {
	for i, x := range f.layers {
		if x == l {
			f.layers = append(f.layers[:i], f.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Frame) Layers() []Layer { return append([]Layer(nil), f.layers...) }

// Resize lays the frame out inside a pad of the given size. Axes are redrawn on the next
// DrawAxes.
func (f *Frame) Resize(pad vector.Size) Geometry {
	f.pad = pad
	f.geom = Layout(pad, f.attrs.Margins, f.attrs.Rotate)
	f.invalidateAxes()
	return f.geom
}

// SetFullRange sets the full range of one axis; see axis.Model.SetFullRange.
func (f *Frame) SetFullRange(n axis.Name, min, max float64) bool {
	if !n.Valid() {
		return false
	}
	return f.axes.Get(n).SetFullRange(min, max, f.attrs.Axes[n].Hints())
}

// SetAxesRanges sets the full ranges of x, y and z. It is ignored once axes are drawn.
func (f *Frame) SetAxesRanges(x, y, z axis.Range) {
	if f.drawn {
		return
	}
	f.SetFullRange(axis.X, x.Min, x.Max)
	f.SetFullRange(axis.Y, y.Min, y.Max)
	f.SetFullRange(axis.Z, z.Min, z.Max)
}

// SetAxes2Ranges sets the full ranges of the secondary axes that are in use.
func (f *Frame) SetAxes2Ranges(secondX bool, x2 axis.Range, secondY bool, y2 axis.Range) {
	if secondX {
		f.SetFullRange(axis.X2, x2.Min, x2.Max)
	}
	if secondY {
		f.SetFullRange(axis.Y2, y2.Min, y2.Max)
	}
}

// ApplyAttributes replaces the attributes. Configured zoom hints reach axes whose zoom was not
// changed interactively; the pad is redrawn.
func (f *Frame) ApplyAttributes(ctx context.Context, a Attributes) {
	f.attrs = a
	for _, n := range axis.Names {
		if f.axes.Get(n).PushHints(a.Axes[n].Hints()) {
			f.log.Debug("zoom hint applied", slog.String("axis", n.String()))
		}
	}
	f.geom = Layout(f.pad, a.Margins, a.Rotate)
	f.invalidateAxes()
	f.requestRedraw(ctx, "attr")
}

// ToggleAxisLog flips the log flag of an axis and redraws. It returns the new flag.
func (f *Frame) ToggleAxisLog(ctx context.Context, n axis.Name) bool {
	if !n.Valid() {
		return false
	}
	f.attrs.Axes[n].Log = !f.attrs.Axes[n].Log
	f.invalidateAxes()
	f.requestRedraw(ctx, "log")
	return f.attrs.Axes[n].Log
}

func (f *Frame) invalidateAxes() {
	f.drawn = false
	f.layerStale = true
}

func (f *Frame) requestRedraw(ctx context.Context, reason string) {
	if err := f.redraw.InteractiveRedraw(ctx, "pad", reason); err != nil {
		f.log.Warn("redraw failed", slog.String("reason", reason), slog.Any("err", err))
	}
}

// cleanXY drops all transforms.
func (f *Frame) cleanXY() {
	f.handles = [axis.Count]*axis.Transform{}
	f.layerAxes = false
}

// cleanupAxes drops transforms and drawn axes. Pending draw passes become no-ops.
func (f *Frame) cleanupAxes() {
	f.cleanXY()
	f.surface.ClearAxes()
	f.drawn = false
	f.drawing = false
	f.epoch++
}

// CleanFrameDrawings removes all axes and resets all ranges. Interactive memos survive; only
// ResetZoom erases them.
func (f *Frame) CleanFrameDrawings() {
	f.cleanupAxes()
	f.axes.Reset()
	f.proj = projection.NewEngine(f.log)
}

// Cleanup releases the frame: drawings, ranges, layers, key handler and zoom history.
func (f *Frame) Cleanup() {
	f.CleanFrameDrawings()
	f.DisableKeys()
	f.layers = nil
	if f.hist != nil {
		f.hist.Clear(f.id)
	}
}
