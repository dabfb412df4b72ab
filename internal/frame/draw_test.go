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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotframe/internal/axis"
	"plotframe/internal/vector"
)

func TestDrawAxesIsIdempotent(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	ok, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	calls := fx.surface.axisCalls()
	assert.Equal(t, 2, calls)

	ok, err = fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, calls, fx.surface.axisCalls(), "second draw must not render again")
	assert.Equal(t, 1, fx.surface.begins)

	require.True(t, fx.f.Zoom(ctx, Request{X: Span(2, 4)}))
	assert.False(t, fx.f.Drawn())
	_, err = fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*calls, fx.surface.axisCalls())
}

func TestDrawAxesOrderAndOffsets(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)

	require.Len(t, fx.surface.axes, 2)
	hx, vy := fx.surface.axes[0], fx.surface.axes[1]
	assert.Equal(t, axis.X, hx.Name)
	assert.Equal(t, axis.Y, vy.Name)
	g := fx.f.Geometry()
	assert.Equal(t, g.Height, hx.Offset)
	assert.Equal(t, 0.0, vy.Offset)
	assert.Equal(t, 12.0, vy.Avoid, "vertical axis receives the horizontal label extent")
	assert.NotEmpty(t, hx.Ticks)

	// the y transform maps the data maximum to the top of the frame
	assert.InDelta(t, 0, vy.Transform.Forward(100), 1e-9)
	assert.InDelta(t, g.Height, vy.Transform.Forward(0), 1e-9)
}

func TestDrawAxesBothSidesAndGrids(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) {
		a.Axes[axis.X].Ticks = TicksBothSides
		a.Axes[axis.Y].Ticks = LabelsBothSides
		a.Axes[axis.Y].SwapSide = true
		a.Axes[axis.X].Grid = true
		a.Axes[axis.Y].Grid = true
	})
	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	require.Len(t, fx.surface.axes, 4)

	var others []AxisRequest
	for _, r := range fx.surface.axes {
		if r.OtherSide {
			others = append(others, r)
		}
	}
	require.Len(t, others, 2)
	for _, r := range others {
		switch r.Name {
		case axis.X:
			assert.True(t, r.HideLabels)
			assert.Equal(t, -1, r.Side)
			assert.Equal(t, 0.0, r.Offset)
		case axis.Y:
			assert.False(t, r.HideLabels)
			assert.Equal(t, 1, r.Side)
			assert.Equal(t, 0.0, r.Offset, "swapped y draws its copy on the left")
		}
	}
	assert.Equal(t, fx.f.Geometry().Width, fx.surface.axes[1].Offset, "swapped y is drawn on the right")
	require.Len(t, fx.surface.grids, 2)
	assert.NotEmpty(t, fx.surface.grids[0].Positions)
}

func TestDrawAxesTicksOff(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.Axes[axis.X].Ticks = TicksOff })
	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	require.Len(t, fx.surface.axes, 1)
	assert.Equal(t, axis.Y, fx.surface.axes[0].Name)
}

func TestDrawAxesEmptyDomain(t *testing.T) {
	surface := &recordingSurface{}
	f := New(DefaultAttributes(), WithLogger(quiet()), WithSurface(surface))
	f.SetAxesRanges(axis.Range{Min: 0, Max: 1}, axis.Range{Min: 5, Max: 5}, axis.Range{})
	ok, err := f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, f.Drawn())
	assert.Zero(t, surface.axisCalls())
}

func TestDrawAxesReentryIgnored(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	var inner bool
	var innerErr error
	fx.surface.onAxis = func(AxisRequest) {
		if inner {
			return
		}
		inner = true
		ok, err := fx.f.DrawAxes(ctx)
		innerErr = err
		assert.False(t, ok, "nested draw must be ignored")
	}
	ok, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.NoError(t, innerErr)
	assert.True(t, ok)
	assert.Equal(t, 2, fx.surface.axisCalls())
}

func TestCleanupDuringDrawMakesCompletionNoop(t *testing.T) {
	fx := newFixture(t, nil)
	fx.surface.onAxis = func(AxisRequest) { fx.f.CleanFrameDrawings() }
	ok, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, fx.f.Drawn())
	assert.Nil(t, fx.f.Handle(axis.X))
	assert.Equal(t, 1, fx.surface.axisCalls())
}

func TestDrawAxesSurfaceError(t *testing.T) {
	fx := newFixture(t, nil)
	boom := errors.New("boom")
	fx.surface.err = boom
	ok, err := fx.f.DrawAxes(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.False(t, fx.f.Drawn())

	fx.surface.err = nil
	ok, err = fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "a failed pass does not block the next one")
}

func TestDrawAxes2RequiresPrimary(t *testing.T) {
	fx := newFixture(t, nil)
	assert.ErrorIs(t, fx.f.DrawAxes2(context.Background(), true, true), ErrPrimaryNotDrawn)
}

func TestDrawAxes2Concurrent(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.f.SetAxes2Ranges(true, axis.Range{Min: 1, Max: 1000}, true, axis.Range{Min: -1, Max: 1})
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.f.DrawAxes2(ctx, true, true))
	assert.Equal(t, 4, fx.surface.axisCalls())

	g := fx.f.GrFuncs(true, false)
	assert.True(t, g.UseX2)
	assert.False(t, g.UseY2)
	assert.Same(t, fx.f.Handle(axis.X2), g.X)
	assert.Same(t, fx.f.Handle(axis.Y), g.Y)
	w := fx.f.Geometry().Width
	assert.InDelta(t, 1000, g.RevertAxis(axis.X, w), 1e-9)
	assert.InDelta(t, 10, fx.f.RevertAxis(axis.X, w), 1e-9)
}

func TestConfigureAxesForLayer(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) {
		a.DrawAxes = false
		a.Axes[axis.Y].Log = true
	})
	fx.f.ConfigureAxes(XYOptions{Ndim: 1, ExtraYSpace: true, ZoomX: axis.Range{Min: 1, Max: 5}})

	x, y := fx.f.Handle(axis.X), fx.f.Handle(axis.Y)
	require.NotNil(t, x)
	require.NotNil(t, y)
	assert.Equal(t, axis.Range{Min: 1, Max: 5}, x.Scale())
	assert.InDelta(t, math.Pow(100, 1.1), y.Scale().Max, 1e-9)
	assert.InDelta(t, math.Pow(100, 1.1)*3e-4, y.Scale().Min, 1e-9, "log floor")
	assert.True(t, y.IsLog())

	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.Same(t, x, fx.f.Handle(axis.X), "layer transforms are drawn as configured")
}

func TestConfigureAxesRespectsInteractiveZoom(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.DrawAxes = false })
	fx.f.AddLayer(&validatingLayer{name: "v", accept: always(true)})
	ctx := context.Background()
	require.True(t, fx.f.ZoomAxis(ctx, axis.X, 2, 3, axis.Interactive))

	fx.f.ConfigureAxes(XYOptions{ZoomX: axis.Range{Min: 6, Max: 9}})
	assert.Equal(t, axis.Range{Min: 2, Max: 3}, fx.f.Handle(axis.X).Scale())
}

func TestConfigureAxesSwapped(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.DrawAxes = false })
	fx.f.ConfigureAxes(XYOptions{SwapXY: true})
	g := fx.f.Geometry()
	assert.Equal(t, [2]float64{g.Height, 0}, fx.f.Handle(axis.X).Pixels())
	assert.Equal(t, [2]float64{0, g.Width}, fx.f.Handle(axis.Y).Pixels())
	assert.True(t, fx.f.SwapXY())

	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, axis.Y, fx.surface.axes[0].Name, "y is the horizontal axis of a swapped frame")
}

func TestSwappedAxesKeepTheirAttributes(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) {
		a.DrawAxes = false
		a.Axes[axis.X].Ticks = TicksOff
		a.Axes[axis.Y].LabelsHide = true
	})
	fx.f.ConfigureAxes(XYOptions{SwapXY: true})
	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)

	// x is vertical now and stays off; y moved to the bottom with its labels hidden
	require.Len(t, fx.surface.axes, 1)
	assert.Equal(t, axis.Y, fx.surface.axes[0].Name)
	assert.True(t, fx.surface.axes[0].HideLabels)
	assert.Equal(t, fx.f.Geometry().Height, fx.surface.axes[0].Offset)
}

func TestConfigureAxesIgnoredWhenFrameDrawsAxes(t *testing.T) {
	fx := newFixture(t, nil)
	fx.f.ConfigureAxes(XYOptions{SwapXY: true})
	assert.Nil(t, fx.f.Handle(axis.X))
	assert.False(t, fx.f.SwapXY())
}

func TestAxisAsText(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Equal(t, "3.142", fx.f.AxisAsText(axis.X, math.Pi), "no transform yet")
	_, err := fx.f.DrawAxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.5", fx.f.AxisAsText(axis.X, 2.5))
	assert.Equal(t, 0.0, fx.f.RevertAxis(axis.X2, 10))
}

func TestToggleAxisLogRedraws(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.True(t, fx.f.ToggleAxisLog(ctx, axis.Y))
	assert.Equal(t, "log", fx.redraw.last())
	assert.False(t, fx.f.Drawn())
	_, err = fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.True(t, fx.f.Handle(axis.Y).IsLog())
}

func TestCleanupResetsRangesButKeepsMemo(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	require.True(t, fx.f.ZoomAxis(ctx, axis.X, 2, 3, axis.Interactive))
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)

	fx.f.CleanFrameDrawings()
	assert.True(t, fx.f.Axis(axis.X).Full.Empty())
	assert.False(t, fx.f.IsAxisZoomed(axis.X))
	assert.True(t, fx.f.ZoomChangedInteractive(axis.X))
	assert.Nil(t, fx.f.Handle(axis.X))
	assert.Equal(t, 1, fx.surface.clears)
}

func TestLayoutGeometry(t *testing.T) {
	m := Margins{Left: 0.1, Right: 0.1, Bottom: 0.1, Top: 0.1}
	g := Layout(vector.Size{W: 400, H: 300}, m, false)
	assert.Equal(t, Geometry{X: 40, Y: 30, Width: 320, Height: 240, Transform: "translate(40,30)", Affine: vector.Translate(40, 30)}, g)

	r := Layout(vector.Size{W: 400, H: 300}, m, true)
	assert.True(t, r.Rotated)
	assert.Equal(t, 240.0, r.Width)
	assert.Equal(t, 320.0, r.Height)
	assert.Equal(t, "rotate(-90,40,30) translate(-200,30)", r.Transform)
	p := r.ToPad(vector.Pt{})
	assert.InDelta(t, 40, p.X, 1e-9)
	assert.InDelta(t, 270, p.Y, 1e-9)
	back := r.ToFrame(p)
	assert.InDelta(t, 0, back.X, 1e-9)
	assert.InDelta(t, 0, back.Y, 1e-9)

	d := Layout(vector.Size{}, Margins{Left: 0.7, Right: 0.7}, false)
	assert.Equal(t, math.Round(10*(1-DefaultMargins.Left-DefaultMargins.Right)), d.Width, "invalid margins fall back")
}

func TestKeys(t *testing.T) {
	keys := &fakeKeys{}
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.f.EnableKeys(ctx, keys)
	fx.f.EnableKeys(ctx, keys)
	assert.Equal(t, 1, keys.subs)

	require.True(t, fx.f.Zoom(ctx, Request{X: Span(2, 4)}))
	keys.press("ArrowRight")
	assert.InDelta(t, 2.2, fx.f.Axis(axis.X).Zoom.Min, 1e-9)
	assert.InDelta(t, 4.2, fx.f.Axis(axis.X).Zoom.Max, 1e-9)
	assert.True(t, fx.f.ZoomChangedInteractive(axis.X))

	keys.press("u")
	assert.False(t, fx.f.IsAxisZoomed(axis.X))

	keys.press("L")
	assert.True(t, fx.f.Attributes().Axes[axis.X].Log)

	fx.f.Cleanup()
	assert.Nil(t, keys.handler)
}

func TestPanStopsAtFullRange(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	require.True(t, fx.f.Zoom(ctx, Request{X: Span(0.25, 2.75)}))
	assert.True(t, fx.f.ProcessKey(ctx, KeyEvent{Key: "ArrowLeft"}))
	assert.Equal(t, axis.Range{Min: 0, Max: 2.5}, fx.f.Axis(axis.X).Zoom)
	assert.False(t, fx.f.ProcessKey(ctx, KeyEvent{Key: "ArrowLeft"}))
	assert.False(t, fx.f.ProcessKey(ctx, KeyEvent{Key: "ArrowUp"}), "y is not zoomed")
}

func TestLayerAxesFollowZoomAndResize(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.DrawAxes = false })
	fx.f.AddLayer(&validatingLayer{name: "v", accept: always(true)})
	ctx := context.Background()

	fx.f.ConfigureAxes(XYOptions{ExtraYSpace: true})
	x := fx.f.Handle(axis.X)
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, axis.Range{Min: 0, Max: 10}, x.Scale())

	require.True(t, fx.f.ZoomAxis(ctx, axis.X, 2, 8, axis.Interactive))
	_, err = fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.Same(t, x, fx.f.Handle(axis.X), "transforms are reconfigured in place")
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Handle(axis.X).Scale())
	assert.InDelta(t, 110, fx.f.Handle(axis.Y).Scale().Max, 1e-9, "extra y space is kept")

	fx.f.Resize(vector.Size{W: 1000, H: 800})
	_, err = fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 850}, fx.f.Handle(axis.X).Pixels())
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Handle(axis.X).Scale())
}

func TestLayerZoomPushIsNotReplayed(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.DrawAxes = false })
	fx.f.AddLayer(&validatingLayer{name: "v", accept: always(true)})
	ctx := context.Background()

	fx.f.ConfigureAxes(XYOptions{ZoomX: axis.Range{Min: 1, Max: 5}})
	require.True(t, fx.f.Zoom(ctx, Request{X: &axis.Range{}}))
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, axis.Range{Min: 0, Max: 10}, fx.f.Handle(axis.X).Scale())
}
