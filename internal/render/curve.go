/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package render

import (
	"math"
	"sort"

	"plotframe/internal/axis"
	"plotframe/internal/frame"
	"plotframe/internal/vector"
)

// Curve is a data layer: a polyline in axis values drawn through the frame transforms.
type Curve struct {
	Name   string
	Points []vector.Pt // sorted by X
	// MinPoints is how many points a zoomed x window must keep; zero means 2.
	MinPoints int
	SecondX   bool
	SecondY   bool
}

// NewCurve samples fn at n points across [min, max].
func NewCurve(name string, min, max float64, n int, fn func(float64) float64) *Curve {
	if n < 2 {
		n = 2
	}
	pts := make([]vector.Pt, n)
	for i := range pts {
		x := min + (max-min)*float64(i)/float64(n-1)
		pts[i] = vector.Pt{X: x, Y: fn(x)}
	}
	return &Curve{Name: name, Points: pts}
}

func (c *Curve) LayerName() string { return c.Name }

// Bounds returns the x and y ranges covered by finite points.
func (c *Curve) Bounds() (x, y axis.Range) {
	first := true
	for _, p := range c.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		if first {
			x, y = axis.Range{Min: p.X, Max: p.X}, axis.Range{Min: p.Y, Max: p.Y}
			first = false
			continue
		}
		x.Min, x.Max = math.Min(x.Min, p.X), math.Max(x.Max, p.X)
		y.Min, y.Max = math.Min(y.Min, p.Y), math.Max(y.Max, p.Y)
	}
	return x, y
}

// CanZoomInside accepts an x window only when it keeps MinPoints samples, so a zoom never
// leaves the curve undrawable. Other axes are always accepted.
func (c *Curve) CanZoomInside(n axis.Name, min, max float64) bool {
	if n != axis.X {
		return true
	}
	need := c.MinPoints
	if need <= 0 {
		need = 2
	}
	lo := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].X >= min })
	hi := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].X > max })
	return hi-lo >= need
}

// Draw maps the points through the transforms of g onto the canvas.
func (c *Curve) Draw(cv *Canvas, g frame.GrFuncs) {
	if g.X == nil || g.Y == nil {
		return
	}
	pts := make([]vector.Pt, 0, len(c.Points))
	for _, p := range c.Points {
		q := vector.Pt{X: g.X.Forward(p.X), Y: g.Y.Forward(p.Y)}
		if g.SwapXY() {
			q = vector.Pt{X: g.Y.Forward(p.Y), Y: g.X.Forward(p.X)}
		}
		pts = append(pts, q)
	}
	cv.DrawPolyline(c.Name, pts)
}
