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
	"strconv"
)

// Range is a closed numeric interval. Min == Max means "unset".
type Range struct{ Min, Max float64 }

func (r Range) Empty() bool      { return r.Min == r.Max }
func (r Range) Span() float64    { return r.Max - r.Min }
func (r Range) Straddles0() bool { return r.Min < 0 && r.Max > 0 }

func (r Range) String() string {
	return "[" + strconv.FormatFloat(r.Min, 'g', -1, 64) + ", " + strconv.FormatFloat(r.Max, 'g', -1, 64) + "]"
}

// Memo records whether the zoom of an axis was changed by the user.
type Memo uint8

const (
	MemoUnset Memo = iota
	// MemoInteractive is set by a genuine interactive zoom.
	MemoInteractive
	// MemoUnzoomLatched is set by the first interactive unzoom of an untouched axis.
	MemoUnzoomLatched
)

// Changed reports whether the memo protects the zoom from external pushes.
func (m Memo) Changed() bool { return m != MemoUnset }

func (m Memo) String() string {
	switch m {
	case MemoInteractive:
		return "interactive"
	case MemoUnzoomLatched:
		return "unzoom-latched"
	default:
		return "unset"
	}
}

// Interaction tags the origin of a zoom request.
type Interaction uint8

const (
	NotInteractive Interaction = iota
	Interactive
	Unzoom
)

// Hints are externally configured bounds; nil means not configured.
type Hints struct {
	Min, Max         *float64
	ZoomMin, ZoomMax *float64
}

func (h Hints) hasZoom() bool { return h.ZoomMin != nil || h.ZoomMax != nil }

// Model is the range state of one axis.
type Model struct {
	Full  Range
	Zoom  Range
	Scale Range
	// Original keeps the scale range from before a projection was applied.
	Original Range

	memo Memo
}

// SetFullRange sets the full range once; later calls are no-ops while it is set.
// Configured bounds in h override min/max. When the axis is neither zoomed nor
// interactively changed, the zoom is seeded from the zoom hints.
// It reports whether the full range was written.
func (m *Model) SetFullRange(min, max float64, h Hints) bool {
	if !m.Full.Empty() {
		return false
	}
	if h.Min != nil {
		min = *h.Min
	}
	if h.Max != nil {
		max = *h.Max
	}
	written := false
	if min < max {
		m.Full = Range{Min: min, Max: max}
		written = true
	}
	if m.Zoom.Empty() && !m.memo.Changed() {
		m.applyZoomHints(h)
	}
	return written
}

// PushHints re-applies configured zoom hints, e.g. after a configuration reload.
// Axes changed interactively keep their zoom.
func (m *Model) PushHints(h Hints) bool {
	if m.memo.Changed() || !h.hasZoom() {
		return false
	}
	before := m.Zoom
	m.applyZoomHints(h)
	return m.Zoom != before
}

func (m *Model) applyZoomHints(h Hints) {
	if !h.hasZoom() {
		return
	}
	m.Zoom = m.Full
	if h.ZoomMin != nil {
		m.Zoom.Min = *h.ZoomMin
	}
	if h.ZoomMax != nil {
		m.Zoom.Max = *h.ZoomMax
	}
}

// PushZoom applies a programmatic zoom coming from a drawing layer.
// It is ignored for degenerate ranges and for axes changed interactively.
func (m *Model) PushZoom(r Range) bool {
	if r.Empty() || m.memo.Changed() {
		return false
	}
	m.Zoom = r
	return true
}

// Clamp limits a requested zoom to the full range. full reports that both
// endpoints had to be clamped, i.e. the request covers the entire full range.
// An unset full range leaves the request untouched. A request with a non-finite
// endpoint, or one lying entirely outside the full range, yields the empty range
// with full false: there is nothing to zoom to.
func (m *Model) Clamp(min, max float64) (r Range, full bool) {
	if !finite(min) || !finite(max) {
		return Range{}, false
	}
	if min > max {
		min, max = max, min
	}
	if m.Full.Empty() {
		return Range{Min: min, Max: max}, false
	}
	cnt := 0
	if min <= m.Full.Min {
		min = m.Full.Min
		cnt++
	}
	if max >= m.Full.Max {
		max = m.Full.Max
		cnt++
	}
	if cnt == 2 {
		return Range{Min: min, Max: max}, true
	}
	if min >= max {
		return Range{}, false
	}
	return Range{Min: min, Max: max}, false
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ClearZoom marks the axis as not zoomed.
func (m *Model) ClearZoom() { m.Zoom = Range{} }

func (m *Model) Memo() Memo { return m.memo }

// MarkInteractive updates the memo. An unzoom only latches an untouched axis;
// repeated unzooms leave the memo as it is.
func (m *Model) MarkInteractive(i Interaction) {
	switch i {
	case Interactive:
		m.memo = MemoInteractive
	case Unzoom:
		if m.memo == MemoUnset {
			m.memo = MemoUnzoomLatched
		}
	}
}

// RestoreMemo installs a memo saved from another model.
func (m *Model) RestoreMemo(memo Memo) {
	if memo <= MemoUnzoomLatched {
		m.memo = memo
	}
}

// ResetZoom clears zoom and memo.
func (m *Model) ResetZoom() {
	m.Zoom = Range{}
	m.memo = MemoUnset
}

// Reset drops all ranges. The memo survives.
func (m *Model) Reset() {
	m.Full, m.Zoom, m.Scale, m.Original = Range{}, Range{}, Range{}, Range{}
}

// ResolveScale sets Scale to the zoom range when zoomed, else to the full range.
func (m *Model) ResolveScale() Range {
	if m.Zoomed() {
		m.Scale = m.Zoom
	} else {
		m.Scale = m.Full
	}
	m.Original = m.Scale
	return m.Scale
}

// PadUpper extends the upper scale bound by 10%, in log space for log axes.
func (m *Model) PadUpper(log bool) {
	if log && m.Scale.Max > 0 {
		m.Scale.Max = math.Exp(math.Log(m.Scale.Max) * 1.1)
		return
	}
	m.Scale.Max += m.Scale.Span() * 0.1
}

// Set keeps one Model per axis.
type Set struct {
	models [Count]Model
}

// Get returns the model of n. n must be valid.
func (s *Set) Get(n Name) *Model { return &s.models[n] }

// ResetZoom clears zoom and memo of every axis.
func (s *Set) ResetZoom() {
	for i := range s.models {
		s.models[i].ResetZoom()
	}
}

// Reset drops all ranges of every axis.
func (s *Set) Reset() {
	for i := range s.models {
		s.models[i].Reset()
	}
}
