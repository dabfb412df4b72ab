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
	"io"
	"log/slog"
	"sync"

	"plotframe/internal/axis"
	"plotframe/internal/session"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// recordingSurface records every call; hooks run inside DrawAxis.
type recordingSurface struct {
	mu     sync.Mutex
	begins int
	axes   []AxisRequest
	grids  []GridRequest
	clears int
	onAxis func(AxisRequest)
	err    error
}

func (s *recordingSurface) BeginFrame(context.Context, Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return nil
}

func (s *recordingSurface) DrawAxis(_ context.Context, req AxisRequest) (AxisResult, error) {
	s.mu.Lock()
	s.axes = append(s.axes, req)
	hook, err := s.onAxis, s.err
	s.mu.Unlock()
	if hook != nil {
		hook(req)
	}
	return AxisResult{LabelExtent: 12}, err
}

func (s *recordingSurface) DrawGrid(_ context.Context, req GridRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids = append(s.grids, req)
	return nil
}

func (s *recordingSurface) ClearAxes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *recordingSurface) axisCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.axes)
}

type recordingSink struct {
	reqs []session.ZoomRequest
}

func (s *recordingSink) Submit(_ context.Context, _ string, req session.ZoomRequest) error {
	s.reqs = append(s.reqs, req)
	return nil
}

func (s *recordingSink) Close() error { return nil }

type redrawLog struct {
	reasons []string
}

func (r *redrawLog) InteractiveRedraw(_ context.Context, _ string, reason string) error {
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *redrawLog) last() string {
	if len(r.reasons) == 0 {
		return ""
	}
	return r.reasons[len(r.reasons)-1]
}

type plainLayer struct{ name string }

func (l *plainLayer) LayerName() string { return l.name }

// validatingLayer accepts zooms for which accept returns true and records the questions.
type validatingLayer struct {
	name   string
	accept func(n axis.Name, min, max float64) bool
	asked  []axis.Name
}

func (l *validatingLayer) LayerName() string { return l.name }

func (l *validatingLayer) CanZoomInside(n axis.Name, min, max float64) bool {
	l.asked = append(l.asked, n)
	return l.accept(n, min, max)
}

func always(v bool) func(axis.Name, float64, float64) bool {
	return func(axis.Name, float64, float64) bool { return v }
}

type fakeKeys struct {
	handler func(KeyEvent)
	subs    int
}

func (k *fakeKeys) Subscribe(h func(KeyEvent)) func() {
	k.handler = h
	k.subs++
	return func() { k.handler = nil }
}

func (k *fakeKeys) press(key string) {
	if k.handler != nil {
		k.handler(KeyEvent{Key: key})
	}
}
