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

	lru "github.com/hashicorp/golang-lru"
	"gonum.org/v1/plot"
)

// Tick is a tick mark resolved to pixels.
type Tick struct {
	Value float64
	Pos   float64
	Label string
	Major bool
}

type tickKey struct {
	kind     Kind
	min, max float64
}

// tickCache holds tick layouts by scale so that reconfiguring a transform on
// zoom does not recompute layouts already seen.
var tickCache = mustCache(512)

func mustCache(size int) *lru.Cache {
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return c
}

func (t *Transform) ticker() plot.Ticker {
	if t.kind == Log {
		return plot.LogTicks{Prec: -1}
	}
	return plot.DefaultTicks{}
}

// Ticks returns the tick marks inside the scale range. An unconfigured or
// degenerate transform has no ticks.
func (t *Transform) Ticks() []Tick {
	lo, hi := math.Min(t.scale.Min, t.scale.Max), math.Max(t.scale.Min, t.scale.Max)
	if !t.Configured() || lo == hi || math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if t.kind == Log && lo <= 0 {
		return nil
	}
	key := tickKey{kind: t.kind, min: lo, max: hi}
	var raw []plot.Tick
	if v, ok := tickCache.Get(key); ok {
		raw = v.([]plot.Tick)
	} else {
		raw = t.ticker().Ticks(lo, hi)
		tickCache.Add(key, raw)
	}
	out := make([]Tick, 0, len(raw))
	for _, rt := range raw {
		if rt.Value < lo || rt.Value > hi {
			continue
		}
		out = append(out, Tick{Value: rt.Value, Pos: t.Forward(rt.Value), Label: rt.Label, Major: !rt.IsMinor()})
	}
	return out
}

// MajorPositions returns pixel positions of the labelled ticks, as used for grid lines.
func (t *Transform) MajorPositions() []float64 {
	ticks := t.Ticks()
	out := make([]float64, 0, len(ticks))
	for _, tk := range ticks {
		if tk.Major {
			out = append(out, tk.Pos)
		}
	}
	return out
}
