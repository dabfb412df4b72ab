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
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"plotframe/internal/axis"
	"plotframe/internal/projection"
)

// ErrPrimaryNotDrawn is returned by DrawAxes2 before the primary axes were drawn.
var ErrPrimaryNotDrawn = errors.New("primary axes not drawn")

// Log floors relative to the scale maximum used for layer-configured axes.
const (
	logFloorX = 1e-4
	logFloorY = 3e-4
)

// XYOptions describe how the main layer wants its axes built.
type XYOptions struct {
	Ndim     int
	SwapXY   bool
	ReverseX bool
	ReverseY bool
	SymlogX  bool
	SymlogY  bool
	// ExtraYSpace pads the upper y bound of an unzoomed axis.
	ExtraYSpace bool
	// ZoomX and ZoomY are zoom ranges pushed by the layer. They are ignored for axes whose
	// zoom was changed interactively.
	ZoomX, ZoomY axis.Range
	// YMinNonZero is the smallest positive y value of the data, used as log floor.
	YMinNonZero float64
}

func (f *Frame) handle(n axis.Name) *axis.Transform {
	if f.handles[n] == nil {
		f.handles[n] = axis.NewTransform(n, f.axes.Get(n))
	}
	return f.handles[n]
}

// ConfigureAxes builds fresh x/y transforms for a layer that controls its axes. Frames that
// draw their own axes ignore it.
func (f *Frame) ConfigureAxes(opts XYOptions) {
	if f.attrs.DrawAxes {
		return
	}
	f.cleanXY()
	f.layerAxes = true
	f.layerOpts = opts
	f.swapXY = opts.SwapXY

	x, y := f.axes.Get(axis.X), f.axes.Get(axis.Y)
	if !opts.ZoomX.Empty() && x.PushZoom(opts.ZoomX) {
		f.log.Debug("layer zoom applied", slog.String("axis", "x"))
	}
	if !opts.ZoomY.Empty() && y.PushZoom(opts.ZoomY) {
		f.log.Debug("layer zoom applied", slog.String("axis", "y"))
	}
	f.configureLayer()
}

// configureLayer reconfigures the layer transforms in place from the options of the last
// ConfigureAxes call. Zoom pushes are not repeated.
func (f *Frame) configureLayer() {
	opts := f.layerOpts
	f.layerStale = false
	x, y := f.axes.Get(axis.X), f.axes.Get(axis.Y)
	x.ResolveScale()
	y.ResolveScale()

	logx, logy := f.attrs.Axes[axis.X].Log, f.attrs.Axes[axis.Y].Log
	symx := opts.SymlogX || f.attrs.Axes[axis.X].Symlog
	symy := opts.SymlogY || f.attrs.Axes[axis.Y].Symlog
	if opts.SwapXY {
		logx, logy = logy, logx
		symx, symy = symy, symx
	}
	if opts.ExtraYSpace && !y.Zoomed() {
		y.PadUpper(logy)
	}

	w, h := f.geom.Width, f.geom.Height
	xPix, yPix := [2]float64{0, w}, [2]float64{h, 0}
	if opts.SwapXY {
		xPix, yPix = [2]float64{h, 0}, [2]float64{0, w}
	}
	f.handle(axis.X).Configure(x.Full, x.Scale, xPix, axis.Options{
		Reverse:        opts.ReverseX,
		Log:            logx,
		Symlog:         symx,
		LogFloorFactor: logFloorX,
		Vertical:       opts.SwapXY,
		Swapped:        opts.SwapXY,
	})
	var minNZ float64
	if opts.YMinNonZero > 0 && opts.YMinNonZero < y.Full.Max {
		minNZ = 0.5 * opts.YMinNonZero
	}
	f.handle(axis.Y).Configure(y.Full, y.Scale, yPix, axis.Options{
		Reverse:        opts.ReverseY,
		Log:            logy,
		Symlog:         symy,
		LogFloorFactor: logFloorY,
		LogMinNonZero:  minNZ,
		Vertical:       !opts.SwapXY,
		Swapped:        opts.SwapXY,
	})
}

// configureOwn builds the transforms of a frame that draws its own axes.
func (f *Frame) configureOwn() {
	f.swapXY = false
	x, y, z := f.axes.Get(axis.X), f.axes.Get(axis.Y), f.axes.Get(axis.Z)
	x.ResolveScale()
	y.ResolveScale()
	z.ResolveScale()
	if f.attrs.Projection != projection.None || f.proj.Active() != projection.None {
		f.proj.Recalculate(f.attrs.Projection, x, y)
	}

	w, h := f.geom.Width, f.geom.Height
	ax := f.attrs.Axes
	f.handle(axis.X).Configure(x.Full, x.Scale, [2]float64{0, w}, axis.Options{
		Reverse: ax[axis.X].Reverse, Log: ax[axis.X].Log, Symlog: ax[axis.X].Symlog,
	})
	f.handle(axis.Y).Configure(y.Full, y.Scale, [2]float64{h, 0}, axis.Options{
		Reverse: ax[axis.Y].Reverse, Log: ax[axis.Y].Log, Symlog: ax[axis.Y].Symlog, Vertical: true,
	})
	f.handle(axis.Z).Configure(z.Full, z.Scale, [2]float64{0, 0}, axis.Options{
		Log: ax[axis.Z].Log, Symlog: ax[axis.Z].Symlog,
	})
}

// DrawAxes draws the primary axes and grids once. It returns true immediately when the axes
// are already drawn or a range is empty, and false without drawing when a pass is already
// running or the frame was cleaned up while the surface was busy.
func (f *Frame) DrawAxes(ctx context.Context) (bool, error) {
	x, y := f.axes.Get(axis.X), f.axes.Get(axis.Y)
	if f.drawn {
		return true, nil
	}
	if x.Full.Empty() || y.Full.Empty() {
		return true, nil
	}
	if f.drawing {
		return false, nil
	}
	f.drawing = true
	epoch := f.epoch
	defer func() {
		if f.epoch == epoch {
			f.drawing = false
		}
	}()
	l := f.log.With(slog.String("op", "draw_axes"))

	switch {
	case !f.layerAxes:
		f.configureOwn()
	case f.layerStale:
		f.configureLayer()
	}
	if err := f.surface.BeginFrame(ctx, f.geom); err != nil {
		return false, fmt.Errorf("begin frame: %w", err)
	}
	if f.epoch != epoch {
		return false, nil
	}

	horiz, vert := f.handles[axis.X], f.handles[axis.Y]
	if f.swapXY {
		horiz, vert = vert, horiz
	}
	// attributes follow the axis, not the screen edge it lands on
	ax, ay := f.attrs.Axes[horiz.Name()], f.attrs.Axes[vert.Name()]
	w, h := f.geom.Width, f.geom.Height
	sidex, sidey := ax.Side(), ay.Side()

	var hres AxisResult
	if ax.Ticks > TicksOff {
		off := 0.0
		if sidex > 0 {
			off = h
		}
		res, err := f.surface.DrawAxis(ctx, AxisRequest{
			Name: horiz.Name(), Transform: horiz, Ticks: horiz.Ticks(),
			Offset: off, Side: sidex, HideLabels: ax.LabelsHide,
		})
		if err != nil {
			return false, fmt.Errorf("draw %s axis: %w", horiz.Name(), err)
		}
		hres = res
	}
	if f.epoch != epoch {
		return false, nil
	}
	if ay.Ticks > TicksOff {
		off := w
		if sidey > 0 {
			off = 0
		}
		if _, err := f.surface.DrawAxis(ctx, AxisRequest{
			Name: vert.Name(), Transform: vert, Ticks: vert.Ticks(),
			Offset: off, Side: sidey, HideLabels: ay.LabelsHide,
			Avoid: hres.LabelExtent,
		}); err != nil {
			return false, fmt.Errorf("draw %s axis: %w", vert.Name(), err)
		}
	}
	if f.epoch != epoch {
		return false, nil
	}

	// both-sides modes: the copies do not depend on each other
	g, gctx := errgroup.WithContext(ctx)
	if ax.Ticks > TicksNormal {
		off := 0.0
		if sidex < 0 {
			off = h
		}
		req := AxisRequest{
			Name: horiz.Name(), Transform: horiz, Ticks: horiz.Ticks(),
			Offset: off, Side: -sidex, OtherSide: true, HideLabels: ax.Ticks == TicksBothSides,
		}
		g.Go(func() error {
			_, err := f.surface.DrawAxis(gctx, req)
			return err
		})
	}
	if ay.Ticks > TicksNormal {
		off := 0.0
		if sidey > 0 {
			off = w
		}
		req := AxisRequest{
			Name: vert.Name(), Transform: vert, Ticks: vert.Ticks(),
			Offset: off, Side: -sidey, OtherSide: true, HideLabels: ay.Ticks == TicksBothSides,
		}
		g.Go(func() error {
			_, err := f.surface.DrawAxis(gctx, req)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("draw other side: %w", err)
	}
	if f.epoch != epoch {
		return false, nil
	}

	if err := f.drawGrids(ctx); err != nil {
		return false, err
	}
	if f.epoch != epoch {
		return false, nil
	}
	f.drawn = true
	l.Debug("axes drawn", slog.String("x", x.Scale.String()), slog.String("y", y.Scale.String()))
	return true, nil
}

// drawGrids draws grid lines at the major ticks of the primary transforms.
func (f *Frame) drawGrids(ctx context.Context) error {
	for _, n := range []axis.Name{axis.X, axis.Y} {
		t := f.handles[n]
		if t == nil || !f.attrs.Axes[n].Grid {
			continue
		}
		if err := f.surface.DrawGrid(ctx, GridRequest{Name: n, Transform: t, Positions: t.MajorPositions()}); err != nil {
			return fmt.Errorf("draw %s grid: %w", n, err)
		}
	}
	return nil
}

// DrawAxes2 configures and draws the secondary axes that are in use. Both render
// concurrently.
func (f *Frame) DrawAxes2(ctx context.Context, secondX, secondY bool) error {
	if !f.drawn {
		return ErrPrimaryNotDrawn
	}
	w, h := f.geom.Width, f.geom.Height
	var reqs []AxisRequest
	if secondX {
		if m := f.axes.Get(axis.X2); !m.Full.Empty() {
			m.ResolveScale()
			t := f.handle(axis.X2)
			t.Configure(m.Full, m.Scale, [2]float64{0, w}, axis.Options{Log: f.attrs.Axes[axis.X2].Log})
			reqs = append(reqs, AxisRequest{Name: axis.X2, Transform: t, Ticks: t.Ticks(), Offset: 0, Side: -1})
		}
	}
	if secondY {
		if m := f.axes.Get(axis.Y2); !m.Full.Empty() {
			m.ResolveScale()
			t := f.handle(axis.Y2)
			t.Configure(m.Full, m.Scale, [2]float64{h, 0}, axis.Options{Log: f.attrs.Axes[axis.Y2].Log, Vertical: true})
			reqs = append(reqs, AxisRequest{Name: axis.Y2, Transform: t, Ticks: t.Ticks(), Offset: w, Side: -1})
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, req := range reqs {
		g.Go(func() error {
			if _, err := f.surface.DrawAxis(gctx, req); err != nil {
				return fmt.Errorf("draw %s axis: %w", req.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// GrFuncs resolves the transforms a layer drawing on secondary axes should use.
type GrFuncs struct {
	X, Y         *axis.Transform
	UseX2, UseY2 bool
	frame        *Frame
}

// GrFuncs returns the x/y transform pair for a layer, substituting x2 and y2 when requested
// and configured.
func (f *Frame) GrFuncs(secondX, secondY bool) GrFuncs {
	g := GrFuncs{X: f.handles[axis.X], Y: f.handles[axis.Y], frame: f}
	if secondX && f.handles[axis.X2] != nil {
		g.X, g.UseX2 = f.handles[axis.X2], true
	}
	if secondY && f.handles[axis.Y2] != nil {
		g.Y, g.UseY2 = f.handles[axis.Y2], true
	}
	return g
}

func (g GrFuncs) resolve(n axis.Name) axis.Name {
	if n == axis.X && g.UseX2 {
		return axis.X2
	}
	if n == axis.Y && g.UseY2 {
		return axis.Y2
	}
	return n
}

func (g GrFuncs) SwapXY() bool { return g.frame.swapXY }

func (g GrFuncs) RevertAxis(n axis.Name, px float64) float64 {
	return g.frame.RevertAxis(g.resolve(n), px)
}

func (g GrFuncs) AxisAsText(n axis.Name, v float64) string {
	return g.frame.AxisAsText(g.resolve(n), v)
}

// RevertAxis converts a pixel coordinate into an axis value; 0 without a transform.
func (f *Frame) RevertAxis(n axis.Name, px float64) float64 {
	t := f.Handle(n)
	if t == nil || !t.Configured() {
		return 0
	}
	return t.Inverse(px)
}

// AxisAsText formats an axis value the way the axis labels it.
func (f *Frame) AxisAsText(n axis.Name, v float64) string {
	t := f.Handle(n)
	if t == nil || !t.Configured() {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	return t.AsText(v)
}
