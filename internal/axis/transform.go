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

// Kind is the scaling function of a transform.
type Kind uint8

const (
	Linear Kind = iota
	Log
	Symlog
)

// DefaultLogFloorFactor is applied when a log axis has no positive minimum.
const DefaultLogFloorFactor = 1e-4

// Options configure a Transform.
type Options struct {
	Reverse bool
	Log     bool
	Symlog  bool
	// SymlogConstant is the width of the linear region; 0 derives it from the scale.
	SymlogConstant float64
	// LogFloorFactor scales the maximum to obtain the minimum of a log axis
	// whose minimum is not positive.
	LogFloorFactor float64
	// LogMinNonZero, when positive and below the maximum, is preferred over the floor factor.
	LogMinNonZero float64
	// Vertical marks axes drawn along the frame height.
	Vertical bool
	// Swapped marks transforms built on a frame with exchanged x/y pixel intervals.
	Swapped bool
}

// Transform maps data values of one axis to pixels and back.
// Configure may be called repeatedly; the instance identity stays the same.
type Transform struct {
	name   Name
	model  *Model
	domain Range
	scale  Range
	pixels [2]float64
	opts   Options
	kind   Kind
	symC   float64
	u0, u1 float64
	gen    uint64
}

// NewTransform creates an unconfigured transform bound to a model it does not own.
func NewTransform(name Name, m *Model) *Transform {
	return &Transform{name: name, model: m}
}

// Configure builds the mapping of scale onto the pixel interval.
func (t *Transform) Configure(domain, scale Range, pixels [2]float64, opts Options) {
	smin, smax := scale.Min, scale.Max
	kind := Linear
	switch {
	case opts.Log:
		kind = Log
		factor := opts.LogFloorFactor
		if factor <= 0 {
			factor = DefaultLogFloorFactor
		}
		if smax <= 0 {
			smax = 1
		}
		if smin <= 0 || smin >= smax {
			if opts.LogMinNonZero > 0 && opts.LogMinNonZero < smax {
				smin = opts.LogMinNonZero
			} else {
				smin = smax * factor
			}
		}
	case opts.Symlog:
		kind = Symlog
		c := opts.SymlogConstant
		if c <= 0 {
			c = math.Max(math.Abs(smin), math.Abs(smax)) * 1e-3
		}
		if c <= 0 {
			c = 1
		}
		t.symC = c
	}
	p0, p1 := pixels[0], pixels[1]
	if opts.Reverse {
		p0, p1 = p1, p0
	}
	t.domain = domain
	t.opts = opts
	t.kind = kind
	t.scale = Range{Min: smin, Max: smax}
	t.pixels = [2]float64{p0, p1}
	t.u0, t.u1 = t.project(smin), t.project(smax)
	t.gen++
}

func (t *Transform) project(v float64) float64 {
	switch t.kind {
	case Log:
		if v <= 0 {
			v = t.scale.Min
		}
		return math.Log10(v)
	case Symlog:
		s := 1.0
		if v < 0 {
			s = -1
		}
		return s * math.Log1p(math.Abs(v)/t.symC)
	}
	return v
}

func (t *Transform) unproject(u float64) float64 {
	switch t.kind {
	case Log:
		return math.Pow(10, u)
	case Symlog:
		s := 1.0
		if u < 0 {
			s = -1
		}
		return s * math.Expm1(math.Abs(u)) * t.symC
	}
	return u
}

// Forward maps a data value to a pixel coordinate.
func (t *Transform) Forward(v float64) float64 {
	if t.u1 == t.u0 {
		return t.pixels[0]
	}
	return t.pixels[0] + (t.project(v)-t.u0)/(t.u1-t.u0)*(t.pixels[1]-t.pixels[0])
}

// Inverse maps a pixel coordinate back to a data value.
func (t *Transform) Inverse(p float64) float64 {
	if t.pixels[1] == t.pixels[0] {
		return t.scale.Min
	}
	u := t.u0 + (p-t.pixels[0])/(t.pixels[1]-t.pixels[0])*(t.u1-t.u0)
	return t.unproject(u)
}

// AsText formats an axis value for status display.
func (t *Transform) AsText(v float64) string {
	if t.kind == Log && v > 0 {
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func (t *Transform) Name() Name           { return t.name }
func (t *Transform) Model() *Model        { return t.model }
func (t *Transform) Kind() Kind           { return t.kind }
func (t *Transform) IsLog() bool          { return t.kind == Log }
func (t *Transform) Domain() Range        { return t.domain }
func (t *Transform) Scale() Range         { return t.scale }
func (t *Transform) Pixels() [2]float64   { return t.pixels }
func (t *Transform) Options() Options     { return t.opts }
func (t *Transform) Vertical() bool       { return t.opts.Vertical }
func (t *Transform) Generation() uint64   { return t.gen }
func (t *Transform) Configured() bool     { return t.gen > 0 }
func (t *Transform) SymlogConst() float64 { return t.symC }

// Length is the pixel extent of the axis.
func (t *Transform) Length() float64 { return math.Abs(t.pixels[1] - t.pixels[0]) }
