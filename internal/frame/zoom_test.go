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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotframe/internal/axis"
	"plotframe/internal/history"
	"plotframe/internal/projection"
	"plotframe/internal/session"
	"plotframe/internal/vector"
)

func f64(v float64) *float64 { return &v }

type fixture struct {
	f       *Frame
	surface *recordingSurface
	sink    *recordingSink
	redraw  *redrawLog
}

func newFixture(t *testing.T, mutate func(*Attributes), opts ...Option) *fixture {
	t.Helper()
	attrs := DefaultAttributes()
	if mutate != nil {
		mutate(&attrs)
	}
	fx := &fixture{surface: &recordingSurface{}, sink: &recordingSink{}, redraw: &redrawLog{}}
	opts = append([]Option{
		WithLogger(quiet()),
		WithSurface(fx.surface),
		WithRedrawer(fx.redraw),
		WithSession(fx.sink, session.Live),
	}, opts...)
	fx.f = New(attrs, opts...)
	fx.f.Resize(vector.Size{W: 500, H: 400})
	fx.f.SetAxesRanges(axis.Range{Min: 0, Max: 10}, axis.Range{Min: 0, Max: 100}, axis.Range{})
	return fx
}

func TestSetFullRangeIsIdempotent(t *testing.T) {
	fx := newFixture(t, nil)
	assert.False(t, fx.f.SetFullRange(axis.X, -3, 42))
	assert.Equal(t, axis.Range{Min: 0, Max: 10}, fx.f.Axis(axis.X).Full)
}

func TestConfiguredBoundsOverrideData(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) {
		a.Axes[axis.Y2].Min = f64(-1)
		a.Axes[axis.Y2].ZoomMax = f64(4)
	})
	fx.f.SetAxes2Ranges(false, axis.Range{}, true, axis.Range{Min: 0, Max: 5})
	m := fx.f.Axis(axis.Y2)
	assert.Equal(t, axis.Range{Min: -1, Max: 5}, m.Full)
	assert.Equal(t, axis.Range{Min: -1, Max: 4}, m.Zoom)
	assert.True(t, fx.f.Axis(axis.X2).Full.Empty())
}

func TestZoomCoveringFullRangeUnzooms(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	assert.False(t, fx.f.Zoom(ctx, Request{X: Span(-5, 20)}), "not zoomed before, nothing changes")
	assert.False(t, fx.f.IsAxisZoomed(axis.X))
	assert.Empty(t, fx.sink.reqs)

	require.True(t, fx.f.Zoom(ctx, Request{X: Span(2, 8)}))
	require.True(t, fx.f.Zoom(ctx, Request{X: Span(-5, 20)}))
	assert.False(t, fx.f.IsAxisZoomed(axis.X))
	assert.Equal(t, axis.Range{}, fx.f.Axis(axis.X).Zoom)

	last := fx.sink.reqs[len(fx.sink.reqs)-1].Ranges
	min, max, set := last.Axis(0)
	assert.False(t, set)
	assert.Equal(t, -1.0, min)
	assert.Equal(t, -1.0, max)
	assert.Equal(t, "zoom0", fx.redraw.last())
}

func TestZoomClampsToFullRange(t *testing.T) {
	fx := newFixture(t, nil)
	require.True(t, fx.f.Zoom(context.Background(), Request{X: Span(-5, 4), Y: Span(30, 70)}))
	assert.Equal(t, axis.Range{Min: 0, Max: 4}, fx.f.Axis(axis.X).Zoom)
	assert.Equal(t, axis.Range{Min: 30, Max: 70}, fx.f.Axis(axis.Y).Zoom)
	assert.Equal(t, "zoom01", fx.redraw.last())

	req := fx.sink.reqs[0].Ranges
	assert.Equal(t, []float64{0, 4, 30, 70, 0, 0}, req.Values)
	assert.Equal(t, []bool{true, true, true, true, false, false}, req.Flags)
	assert.Equal(t, session.TypeZoomRequest, fx.sink.reqs[0].Type)
}

func TestDegenerateZoomIsIgnored(t *testing.T) {
	fx := newFixture(t, nil)
	assert.False(t, fx.f.Zoom(context.Background(), Request{X: Span(3, 3)}))
	assert.Empty(t, fx.redraw.reasons)
}

func TestInteractiveZoomSurvivesConfigPush(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	require.True(t, fx.f.ZoomAxis(ctx, axis.X, 2, 8, axis.Interactive))
	assert.True(t, fx.f.ZoomChangedInteractive(axis.X))
	assert.True(t, fx.f.AnyZoomChangedInteractive())

	pushed := fx.f.Attributes()
	pushed.Axes[axis.X].ZoomMin = f64(1)
	pushed.Axes[axis.X].ZoomMax = f64(3)
	fx.f.ApplyAttributes(ctx, pushed)
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Axis(axis.X).Zoom)

	fx.f.ResetZoom()
	assert.False(t, fx.f.ZoomChangedInteractive(axis.X))
	fx.f.ApplyAttributes(ctx, pushed)
	assert.Equal(t, axis.Range{Min: 1, Max: 3}, fx.f.Axis(axis.X).Zoom)
}

func TestUnzoomLatch(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.True(t, fx.f.ZoomSingle(ctx, axis.X, 2, 8, axis.NotInteractive))
	require.Equal(t, axis.MemoUnset, fx.f.Axis(axis.X).Memo())

	assert.True(t, fx.f.UnzoomSingle(ctx, axis.X))
	first := fx.f.Axis(axis.X).Memo()
	assert.Equal(t, axis.MemoUnzoomLatched, first)

	assert.False(t, fx.f.UnzoomSingle(ctx, axis.X))
	assert.Equal(t, first, fx.f.Axis(axis.X).Memo())

	fx.f.Unzoom(ctx, "x")
	fx.f.Unzoom(ctx, "x")
	assert.Equal(t, first, fx.f.Axis(axis.X).Memo())
}

func TestConsensusFirstFit(t *testing.T) {
	a := &validatingLayer{name: "a", accept: always(false)}
	b := &validatingLayer{name: "b", accept: always(true)}
	c := &validatingLayer{name: "c", accept: always(true)}
	fx := newFixture(t, func(at *Attributes) { at.DrawAxes = false })
	fx.f.AddLayer(&plainLayer{name: "plain"})
	fx.f.AddLayer(a)
	fx.f.AddLayer(b)
	fx.f.AddLayer(c)

	require.True(t, fx.f.Zoom(context.Background(), Request{X: Span(2, 8)}))
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Axis(axis.X).Zoom)
	assert.Equal(t, []axis.Name{axis.X}, a.asked)
	assert.Equal(t, []axis.Name{axis.X}, b.asked)
	assert.Empty(t, c.asked, "accepted axes are not offered to later layers")
}

func TestConsensusNoValidator(t *testing.T) {
	ctx := context.Background()

	owned := newFixture(t, nil)
	owned.f.AddLayer(&plainLayer{name: "plain"})
	assert.True(t, owned.f.Zoom(ctx, Request{Y: Span(10, 20)}), "self-drawing frame force-accepts")

	foreign := newFixture(t, func(a *Attributes) { a.DrawAxes = false })
	foreign.f.AddLayer(&plainLayer{name: "plain"})
	assert.False(t, foreign.f.Zoom(ctx, Request{Y: Span(10, 20)}))
	assert.False(t, foreign.f.IsAxisZoomed(axis.Y))

	rejecting := newFixture(t, nil)
	rejecting.f.AddLayer(&validatingLayer{name: "r", accept: always(false)})
	assert.False(t, rejecting.f.Zoom(ctx, Request{Y: Span(10, 20)}), "a validator that rejects blocks force-accept")
}

func TestSecondaryAxisAskedWithBaseName(t *testing.T) {
	v := &validatingLayer{name: "v", accept: always(true)}
	fx := newFixture(t, nil)
	fx.f.AddLayer(v)
	ctx := context.Background()
	fx.f.SetAxes2Ranges(true, axis.Range{Min: 100, Max: 200}, false, axis.Range{})

	assert.False(t, fx.f.ZoomSingle(ctx, axis.X2, 120, 150, axis.Interactive), "x2 has no transform yet")
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.f.DrawAxes2(ctx, true, false))

	require.True(t, fx.f.ZoomSingle(ctx, axis.X2, 120, 150, axis.Interactive))
	assert.Equal(t, []axis.Name{axis.X}, v.asked)
	assert.Equal(t, "zoom3", fx.redraw.last())
	req := fx.sink.reqs[len(fx.sink.reqs)-1].Ranges
	require.Len(t, req.Values, session.SingleSlots)
	min, max, set := req.Axis(3)
	assert.True(t, set)
	assert.Equal(t, 120.0, min)
	assert.Equal(t, 150.0, max)
}

func TestUnzoomAll(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.f.SetAxes2Ranges(false, axis.Range{}, true, axis.Range{Min: 0, Max: 1})
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.f.DrawAxes2(ctx, false, true))
	require.True(t, fx.f.ZoomSingle(ctx, axis.Y2, 0.2, 0.4, axis.Interactive))
	require.True(t, fx.f.Zoom(ctx, Request{X: Span(1, 2), Z: Span(5, 6)}))
	assert.Equal(t, "zoom02", fx.redraw.last())

	fx.redraw.reasons = nil
	assert.True(t, fx.f.Unzoom(ctx, "all"))
	assert.Equal(t, []string{"zoom4", "zoom02"}, fx.redraw.reasons)
	for _, n := range axis.Names {
		assert.False(t, fx.f.IsAxisZoomed(n), n.String())
	}
	assert.False(t, fx.f.Unzoom(ctx, "all"))
}

func TestZoomRefusedWhileProjected(t *testing.T) {
	fx := newFixture(t, func(a *Attributes) { a.Projection = projection.Sinusoidal })
	ctx := context.Background()
	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.Equal(t, projection.Sinusoidal, fx.f.Projection())
	assert.False(t, fx.f.Zoom(ctx, Request{X: Span(2, 3)}))
	assert.False(t, fx.f.ZoomSingle(ctx, axis.Z, 2, 3, axis.Interactive))
}

func TestOfflineModeDoesNotTransmit(t *testing.T) {
	sink := &recordingSink{}
	fx := newFixture(t, nil, WithSession(sink, session.Offline))
	require.True(t, fx.f.Zoom(context.Background(), Request{X: Span(2, 3)}))
	assert.Empty(t, sink.reqs)
	assert.Equal(t, "zoom0", fx.redraw.last())
}

func TestZoomHistory(t *testing.T) {
	clock := time.Unix(0, 0)
	fx := newFixture(t, nil,
		WithHistory(history.NewManager(history.Config{})),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }))
	ctx := context.Background()
	require.True(t, fx.f.Zoom(ctx, Request{X: Span(2, 8)}))
	require.True(t, fx.f.Zoom(ctx, Request{X: Span(3, 4)}))

	require.True(t, fx.f.ZoomBack(ctx))
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Axis(axis.X).Zoom)
	require.True(t, fx.f.ZoomBack(ctx))
	assert.False(t, fx.f.IsAxisZoomed(axis.X))
	assert.False(t, fx.f.ZoomBack(ctx))

	require.True(t, fx.f.ZoomForward(ctx))
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Axis(axis.X).Zoom)
	assert.True(t, fx.f.ZoomChangedInteractive(axis.X))
}

func TestStateRoundTrip(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	require.True(t, fx.f.ZoomAxis(ctx, axis.Y, 10, 20, axis.Interactive))
	st := fx.f.State()

	other := newFixture(t, nil)
	other.f.RestoreState(st)
	assert.Equal(t, axis.Range{Min: 10, Max: 20}, other.f.Axis(axis.Y).Zoom)
	assert.Equal(t, axis.MemoInteractive, other.f.Axis(axis.Y).Memo())
	assert.Empty(t, other.sink.reqs)
}

func TestDescribeListsZoomAndMemo(t *testing.T) {
	fx := newFixture(t, nil, WithID("f1"))
	require.True(t, fx.f.Zoom(context.Background(), Request{X: Span(2, 8), Interactive: axis.Interactive}))

	d := fx.f.Describe()
	assert.Contains(t, d, "frame f1:")
	assert.Contains(t, d, "x=[0, 10] zoom=[2, 8] memo=interactive")
	assert.Contains(t, d, "y=[0, 100]")
	assert.NotContains(t, d, "y=[0, 100] zoom")
	assert.NotContains(t, d, " z=")
}

func TestZoomOutsideFullRangeChangesNothing(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	for _, r := range []*axis.Range{Span(20, 30), Span(-50, -10), Span(10, 30), Span(math.NaN(), 5), Span(2, math.Inf(1))} {
		assert.False(t, fx.f.Zoom(ctx, Request{X: r, Interactive: axis.Interactive}), "%v", *r)
	}
	assert.False(t, fx.f.IsAxisZoomed(axis.X))
	assert.Equal(t, axis.MemoUnset, fx.f.Axis(axis.X).Memo())
	assert.Empty(t, fx.sink.reqs)
	assert.Empty(t, fx.redraw.reasons)

	require.True(t, fx.f.Zoom(ctx, Request{X: Span(2, 8)}))
	assert.False(t, fx.f.Zoom(ctx, Request{X: Span(20, 30)}), "an existing zoom is kept")
	assert.Equal(t, axis.Range{Min: 2, Max: 8}, fx.f.Axis(axis.X).Zoom)
	assert.Len(t, fx.sink.reqs, 1)

	_, err := fx.f.DrawAxes(ctx)
	require.NoError(t, err)
	require.NotNil(t, fx.f.Handle(axis.Y))
	assert.False(t, fx.f.ZoomSingle(ctx, axis.Y, -3, -1, axis.Interactive))
	assert.False(t, fx.f.IsAxisZoomed(axis.Y))
}
