/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps back/forward stacks of zoom states per frame.
package history

import (
	"sync"
	"time"

	"plotframe/internal/axis"
)

// Snapshot is the zoom state of all axes of one frame.
type Snapshot struct {
	Frame string
	Zoom  [axis.Count]axis.Range
	TS    time.Time
}

// size estimates the memory held by s.
func (s Snapshot) size() int { return len(s.Frame) + axis.Count*16 + 24 }

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerFrame limits the back stack of a frame (0 means unlimited).
	MaxPerFrame int
	// MinInterval coalesces pushes within the interval: the older snapshot is kept so a burst
	// of wheel zooms steps back to the view before the burst.
	MinInterval time.Duration
}

// Manager provides in-memory back/forward stacks per frame.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	back map[string][]Snapshot
	fwd  map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, back: make(map[string][]Snapshot), fwd: make(map[string][]Snapshot)}
}

// Push records the state a frame had before a change. It clears the forward stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropForwardLocked(s.Frame)
	stack := m.back[s.Frame]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return
	}
	m.back[s.Frame] = append(stack, s)
	m.totalBytes += s.size()
	m.enforceCapsLocked(s.Frame)
}

// Back pops the previous state of a frame and remembers current for Forward.
func (m *Manager) Back(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.popLocked(m.back, current.Frame)
	if !ok {
		return Snapshot{}, false
	}
	m.fwd[current.Frame] = append(m.fwd[current.Frame], current)
	m.totalBytes += current.size()
	return s, true
}

// Forward undoes a Back and remembers current for the next Back.
func (m *Manager) Forward(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.popLocked(m.fwd, current.Frame)
	if !ok {
		return Snapshot{}, false
	}
	m.back[current.Frame] = append(m.back[current.Frame], current)
	m.totalBytes += current.size()
	m.enforceCapsLocked(current.Frame)
	return s, true
}

// Clear drops both stacks of a frame.
func (m *Manager) Clear(frame string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.back[frame] {
		m.totalBytes -= s.size()
	}
	m.dropForwardLocked(frame)
	delete(m.back, frame)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes, frames, backDepth, forwardDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	frames = len(m.back)
	for _, v := range m.back {
		backDepth += len(v)
	}
	for _, v := range m.fwd {
		forwardDepth += len(v)
	}
	return m.totalBytes, frames, backDepth, forwardDepth
}

func (m *Manager) popLocked(stacks map[string][]Snapshot, frame string) (Snapshot, bool) {
	stack := stacks[frame]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	stacks[frame] = stack[:len(stack)-1]
	m.totalBytes -= s.size()
	return s, true
}

func (m *Manager) dropForwardLocked(frame string) {
	for _, s := range m.fwd[frame] {
		m.totalBytes -= s.size()
	}
	delete(m.fwd, frame)
}

func (m *Manager) enforceCapsLocked(frame string) {
	if m.cfg.MaxPerFrame > 0 {
		stack := m.back[frame]
		if len(stack) > m.cfg.MaxPerFrame {
			toDrop := len(stack) - m.cfg.MaxPerFrame
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= stack[i].size()
			}
			m.back[frame] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// prune the oldest back entries across all frames
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldest := ""
		found := false
		var oldestTS time.Time
		for f, stack := range m.back {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = f, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.back[oldest]
		m.totalBytes -= stack[0].size()
		m.back[oldest] = stack[1:]
		if len(m.back[oldest]) == 0 {
			delete(m.back, oldest)
		}
	}
}
