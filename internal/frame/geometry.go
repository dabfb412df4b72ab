/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import (
	"math"
	"strings"

	"plotframe/internal/vector"
)

// Margins are the frame margins inside the pad in normalized (0..1) units.
type Margins struct {
	Left, Right, Bottom, Top float64
}

// DefaultMargins leave room for labels on the left and bottom.
var DefaultMargins = Margins{Left: 0.1, Right: 0.05, Bottom: 0.1, Top: 0.05}

// normalized falls back to DefaultMargins when the margins leave no area.
func (m Margins) normalized() Margins {
	if m.Left < 0 || m.Right < 0 || m.Bottom < 0 || m.Top < 0 || m.Left+m.Right >= 1 || m.Bottom+m.Top >= 1 {
		return DefaultMargins
	}
	return m
}

// Geometry is the pixel rectangle of the frame inside its pad.
type Geometry struct {
	X, Y          float64
	Width, Height float64
	Rotated       bool
	// Transform places frame coordinates into the pad, as an SVG transform attribute.
	Transform string
	// Affine is Transform as a matrix.
	Affine vector.Affine2D
}

// Rect is the frame rectangle in frame coordinates.
func (g Geometry) Rect() vector.Rect { return vector.R(0, 0, g.Width, g.Height) }

// ToPad maps a frame point into pad coordinates.
func (g Geometry) ToPad(p vector.Pt) vector.Pt { return g.Affine.Apply(p) }

// ToFrame maps a pad point into frame coordinates.
func (g Geometry) ToFrame(p vector.Pt) vector.Pt { return g.Affine.Invert().Apply(p) }

// Layout computes the frame geometry for a pad of the given size. A rotated frame exchanges
// width and height and is turned by -90 degrees around its top-left corner.
func Layout(pad vector.Size, m Margins, rotate bool) Geometry {
	if pad.W <= 0 || pad.H <= 0 {
		pad = vector.Size{W: 10, H: 10}
	}
	m = m.normalized()
	lm := math.Round(pad.W * m.Left)
	tm := math.Round(pad.H * m.Top)
	w := math.Round(pad.W * (1 - m.Left - m.Right))
	h := math.Round(pad.H * (1 - m.Bottom - m.Top))

	g := Geometry{X: lm, Y: tm, Width: w, Height: h}
	if !rotate {
		g.Transform = vector.MakeTranslate(lm, tm)
		g.Affine = vector.Translate(lm, tm)
		return g
	}
	g.Rotated = true
	g.Width, g.Height = h, w
	g.Transform = strings.TrimSpace(vector.MakeRotate(-90, lm, tm) + " " + vector.MakeTranslate(lm-h, tm))
	g.Affine = vector.RotateAbout(-90, lm, tm).Mul(vector.Translate(lm-h, tm))
	return g
}
