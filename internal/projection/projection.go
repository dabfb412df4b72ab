/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package projection implements the geographic remaps a frame can apply to its x/y scale
// rectangle before axes are configured.
package projection

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"plotframe/internal/axis"
	plog "plotframe/internal/log"
	"plotframe/internal/vector"
)

// ID selects a projection. None disables projection.
type ID int

const (
	None ID = iota
	Aitoff
	Mercator
	Sinusoidal
	Parabolic
	Mollweide
)

func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case Aitoff:
		return "aitoff"
	case Mercator:
		return "mercator"
	case Sinusoidal:
		return "sinusoidal"
	case Parabolic:
		return "parabolic"
	case Mollweide:
		return "mollweide"
	}
	return fmt.Sprintf("projection(%d)", int(id))
}

// ParseID accepts a projection name or its numeric id.
func ParseID(s string) (ID, bool) {
	for id := None; id <= Mollweide; id++ {
		if s == id.String() || s == fmt.Sprint(int(id)) {
			return id, true
		}
	}
	return None, false
}

// ErrLatitudeRange reports a y range that the selected projection cannot map.
var ErrLatitudeRange = errors.New("latitude out of range")

const degToRad = math.Pi / 180

// Func returns the mapping of (longitude, latitude) in degrees for id, or nil for None and
// unknown ids.
func Func(id ID) func(l, b float64) vector.Pt {
	switch id {
	case Aitoff:
		return aitoff
	case Mercator:
		return mercator
	case Sinusoidal:
		return sinusoidal
	case Parabolic:
		return parabolic
	case Mollweide:
		return mollweide
	}
	return nil
}

func aitoff(l, b float64) vector.Pt {
	alpha2 := l / 2 * degToRad
	delta := b * degToRad
	r2 := math.Sqrt2
	f := 2 * r2 / math.Pi
	cdec := math.Cos(delta)
	denom := math.Sqrt(1 + cdec*math.Cos(alpha2))
	return vector.Pt{
		X: cdec * math.Sin(alpha2) * 2 * r2 / denom / f / degToRad,
		Y: math.Sin(delta) * r2 / denom / f / degToRad,
	}
}

func mercator(l, b float64) vector.Pt {
	return vector.Pt{X: l, Y: math.Log(math.Tan((math.Pi/2 + b*degToRad) / 2))}
}

func sinusoidal(l, b float64) vector.Pt {
	return vector.Pt{X: l * math.Cos(b*degToRad), Y: b}
}

func parabolic(l, b float64) vector.Pt {
	return vector.Pt{
		X: l * (2*math.Cos(2*b*degToRad/3) - 1),
		Y: 180 * math.Sin(b*degToRad/3),
	}
}

func mollweide(l, b float64) vector.Pt {
	theta0 := b * degToRad
	theta := theta0
	for i := 0; i < 100; i++ {
		num := 2*theta + math.Sin(2*theta) - math.Pi*math.Sin(theta0)
		den := 4 * math.Cos(theta) * math.Cos(theta)
		if den < 1e-20 {
			theta = theta0
			break
		}
		theta -= num / den
		if math.Abs(num/den) < 1e-4 {
			break
		}
	}
	return vector.Pt{X: l * math.Cos(theta), Y: 90 * math.Sin(theta)}
}

// Validate checks the preconditions of id against the y scale range.
func Validate(id ID, y axis.Range) error {
	if id == Mercator && (y.Min <= -90 || y.Max >= 90) {
		return fmt.Errorf("mercator [%g, %g]: %w", y.Min, y.Max, ErrLatitudeRange)
	}
	return nil
}

// Engine tracks the active projection of one frame.
type Engine struct {
	logger *slog.Logger
	active ID
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = plog.WithComponent("projection")
	}
	return &Engine{logger: logger}
}

// Active returns the projection applied by the last Recalculate.
func (e *Engine) Active() ID { return e.active }

// Recalculate replaces the x/y scale ranges with the bounding box of the projected scale
// rectangle. Scale ranges from before the projection are kept in Original; calling it again
// restores them first, so id None undoes a previous projection. Precondition violations are
// logged and fall back to None. It returns the projection actually applied.
func (e *Engine) Recalculate(id ID, x, y *axis.Model) ID {
	if e.active != None {
		x.Scale, y.Scale = x.Original, y.Original
	}
	if err := Validate(id, y.Scale); err != nil {
		e.logger.Warn("projection disabled", slog.String("projection", id.String()), slog.Any("err", err))
		id = None
	}
	e.active = None
	f := Func(id)
	if f == nil {
		return None
	}

	xs, ys := x.Scale, y.Scale
	pts := []vector.Pt{f(xs.Min, ys.Min), f(xs.Min, ys.Max), f(xs.Max, ys.Max), f(xs.Max, ys.Min)}
	if xs.Straddles0() {
		pts = append(pts, f(0, ys.Min), f(0, ys.Max))
	}
	if ys.Straddles0() {
		pts = append(pts, f(xs.Min, 0), f(xs.Max, 0))
	}
	x.Original, y.Original = xs, ys

	bb := vector.BBox(pts...)
	x.Scale = axis.Range{Min: bb.Min().X, Max: bb.Max().X}
	y.Scale = axis.Range{Min: bb.Min().Y, Max: bb.Max().Y}
	e.active = id
	e.logger.Debug("projection applied", slog.String("projection", id.String()),
		slog.Float64("xmin", x.Scale.Min), slog.Float64("xmax", x.Scale.Max),
		slog.Float64("ymin", y.Scale.Min), slog.Float64("ymax", y.Scale.Max))
	return id
}
