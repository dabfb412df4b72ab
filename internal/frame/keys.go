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
	"strings"

	"plotframe/internal/axis"
)

// KeyEvent is a key press delivered to the frame.
type KeyEvent struct {
	Key   string
	Shift bool
}

// KeySource delivers key presses. Subscribe returns the function that removes the handler.
type KeySource interface {
	Subscribe(handler func(KeyEvent)) (unsubscribe func())
}

// panFraction is the part of the visible range one arrow key press moves.
const panFraction = 0.1

// EnableKeys subscribes the frame to src until DisableKeys or Cleanup. A second call while
// subscribed is a no-op.
func (f *Frame) EnableKeys(ctx context.Context, src KeySource) {
	if f.keysOff != nil || src == nil {
		return
	}
	f.keysOff = src.Subscribe(func(ev KeyEvent) { f.ProcessKey(ctx, ev) })
}

// DisableKeys removes the key handler.
func (f *Frame) DisableKeys() {
	if f.keysOff != nil {
		f.keysOff()
		f.keysOff = nil
	}
}

// ProcessKey handles one key press and reports whether it changed the frame. U unzooms all
// axes, the arrow keys pan a zoomed axis, L toggles the log scale of x. Shift+Left and
// Shift+Right step through the zoom history.
func (f *Frame) ProcessKey(ctx context.Context, ev KeyEvent) bool {
	key := strings.ToLower(ev.Key)
	f.log.Debug("key", slog.String("key", key))
	switch {
	case key == "u":
		return f.Unzoom(ctx, "all")
	case key == "l":
		f.ToggleAxisLog(ctx, axis.X)
		return true
	case ev.Shift && key == "arrowleft":
		return f.ZoomBack(ctx)
	case ev.Shift && key == "arrowright":
		return f.ZoomForward(ctx)
	case key == "arrowleft":
		return f.pan(ctx, axis.X, -1)
	case key == "arrowright":
		return f.pan(ctx, axis.X, 1)
	case key == "arrowdown":
		return f.pan(ctx, axis.Y, -1)
	case key == "arrowup":
		return f.pan(ctx, axis.Y, 1)
	}
	return false
}

// pan shifts the zoom window of an axis by a fraction of its width, stopping at the full
// range bounds.
func (f *Frame) pan(ctx context.Context, n axis.Name, dir float64) bool {
	if f.swapXY {
		n = axis.Y - n
	}
	m := f.axes.Get(n)
	if !m.Zoomed() || m.Full.Empty() {
		return false
	}
	span := m.Zoom.Span()
	shift := dir * span * panFraction
	lo, hi := m.Zoom.Min+shift, m.Zoom.Max+shift
	if lo < m.Full.Min {
		lo, hi = m.Full.Min, m.Full.Min+span
	}
	if hi > m.Full.Max {
		lo, hi = m.Full.Max-span, m.Full.Max
	}
	if lo == m.Zoom.Min && hi == m.Zoom.Max {
		return false
	}
	return f.ZoomAxis(ctx, n, lo, hi, axis.Interactive)
}
