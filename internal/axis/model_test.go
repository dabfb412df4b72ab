/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package axis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestSetFullRange_FirstWriterWins(t *testing.T) {
	var m Model
	require.True(t, m.SetFullRange(0, 10, Hints{}))
	assert.False(t, m.SetFullRange(-100, 100, Hints{}))
	assert.Equal(t, Range{Min: 0, Max: 10}, m.Full)
}

func TestSetFullRange_ConfiguredBoundsWin(t *testing.T) {
	var m Model
	m.SetFullRange(0, 10, Hints{Min: f64(-5)})
	assert.Equal(t, Range{Min: -5, Max: 10}, m.Full)
}

func TestSetFullRange_InvertedInputIgnored(t *testing.T) {
	var m Model
	assert.False(t, m.SetFullRange(10, 0, Hints{}))
	assert.True(t, m.Full.Empty())
}

func TestSetFullRange_SeedsZoomFromHints(t *testing.T) {
	var m Model
	m.SetFullRange(0, 10, Hints{ZoomMin: f64(3)})
	assert.Equal(t, Range{Min: 3, Max: 10}, m.Zoom, "missing zoom max defaults to full max")
}

func TestSetFullRange_NoSeedAfterInteractiveChange(t *testing.T) {
	var m Model
	m.MarkInteractive(Unzoom)
	m.SetFullRange(0, 10, Hints{ZoomMin: f64(3), ZoomMax: f64(4)})
	assert.False(t, m.Zoomed())
}

func TestPushHints_RespectsInteractiveMemo(t *testing.T) {
	var m Model
	m.SetFullRange(0, 10, Hints{})
	m.SetZoom(Range{Min: 2, Max: 8})
	m.MarkInteractive(Interactive)

	assert.False(t, m.PushHints(Hints{ZoomMin: f64(1), ZoomMax: f64(3)}))
	assert.False(t, m.PushZoom(Range{Min: 1, Max: 3}))
	assert.Equal(t, Range{Min: 2, Max: 8}, m.Zoom)

	m.ResetZoom()
	assert.True(t, m.PushHints(Hints{ZoomMin: f64(1), ZoomMax: f64(3)}))
	assert.Equal(t, Range{Min: 1, Max: 3}, m.Zoom)
}

func TestMarkInteractive_UnzoomLatch(t *testing.T) {
	var m Model
	m.MarkInteractive(Unzoom)
	first := m.Memo()
	m.MarkInteractive(Unzoom)
	assert.Equal(t, MemoUnzoomLatched, first)
	assert.Equal(t, first, m.Memo())

	m.MarkInteractive(Interactive)
	m.MarkInteractive(Unzoom)
	assert.Equal(t, MemoInteractive, m.Memo(), "unzoom must not downgrade an interactive memo")
	m.MarkInteractive(NotInteractive)
	assert.Equal(t, MemoInteractive, m.Memo())
}

func TestClamp(t *testing.T) {
	var m Model
	m.SetFullRange(0, 10, Hints{})

	r, full := m.Clamp(-5, 20)
	assert.True(t, full)
	assert.Equal(t, Range{Min: 0, Max: 10}, r)

	r, full = m.Clamp(-5, 4)
	assert.False(t, full)
	assert.Equal(t, Range{Min: 0, Max: 4}, r)

	r, _ = m.Clamp(8, 2)
	assert.Equal(t, Range{Min: 2, Max: 8}, r, "reversed endpoints are normalized")

	var unset Model
	r, full = unset.Clamp(2, 8)
	assert.False(t, full)
	assert.Equal(t, Range{Min: 2, Max: 8}, r)

	nothing := []struct {
		name     string
		min, max float64
	}{
		{"above full", 20, 30},
		{"below full", -50, -10},
		{"touching upper bound", 10, 30},
		{"touching lower bound", -5, 0},
		{"NaN min", math.NaN(), 5},
		{"NaN max", 2, math.NaN()},
		{"both NaN", math.NaN(), math.NaN()},
		{"infinite max", 2, math.Inf(1)},
		{"infinite min", math.Inf(-1), 5},
	}
	for _, tc := range nothing {
		r, full := m.Clamp(tc.min, tc.max)
		assert.False(t, full, tc.name)
		assert.True(t, r.Empty(), "%s: got %v", tc.name, r)
	}
	r, full = unset.Clamp(math.NaN(), 1)
	assert.False(t, full)
	assert.True(t, r.Empty())
}

func TestResolveScaleAndPad(t *testing.T) {
	var m Model
	m.SetFullRange(0, 100, Hints{})
	assert.Equal(t, Range{Min: 0, Max: 100}, m.ResolveScale())
	m.SetZoom(Range{Min: 10, Max: 20})
	assert.Equal(t, Range{Min: 10, Max: 20}, m.ResolveScale())
	m.PadUpper(false)
	assert.InDelta(t, 21, m.Scale.Max, 1e-12)
	assert.Equal(t, Range{Min: 10, Max: 20}, m.Original)

	m.ClearZoom()
	m.ResolveScale()
	m.PadUpper(true)
	assert.InDelta(t, 158.489, m.Scale.Max, 1e-3) // 100^1.1
}

func TestSet_ResetZoomClearsEverything(t *testing.T) {
	var s Set
	for _, n := range Names {
		m := s.Get(n)
		m.SetFullRange(0, 1, Hints{})
		m.SetZoom(Range{Min: 0.2, Max: 0.4})
		m.MarkInteractive(Interactive)
	}
	s.ResetZoom()
	for _, n := range Names {
		m := s.Get(n)
		assert.False(t, m.Zoomed(), n.String())
		assert.Equal(t, MemoUnset, m.Memo(), n.String())
		assert.Equal(t, Range{Min: 0, Max: 1}, m.Full, n.String())
	}
	s.Reset()
	assert.True(t, s.Get(X).Full.Empty())
}

func TestParseName(t *testing.T) {
	n, ok := Parse(" X2 ")
	require.True(t, ok)
	assert.Equal(t, X2, n)
	assert.Equal(t, X, n.Base())
	assert.True(t, n.Secondary())
	_, ok = Parse("w")
	assert.False(t, ok)
	assert.Equal(t, "y2", Y2.String())
}
