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

	"plotframe/internal/axis"
)

// AxisRequest asks a surface to render one axis. Positions along the axis come from
// Transform.Forward in frame coordinates.
type AxisRequest struct {
	Name      axis.Name
	Transform *axis.Transform
	Ticks     []axis.Tick
	// Offset is the position of the axis line across the axis: the y coordinate of a
	// horizontal axis or the x coordinate of a vertical one.
	Offset float64
	// Side is 1 when ticks and labels point away from the frame on the default side
	// (below, left) and -1 on the opposite side.
	Side int
	// OtherSide marks the copy drawn by the both-sides tick modes.
	OtherSide  bool
	HideLabels bool
	// Avoid is the label extent of the horizontal axis, which a vertical axis keeps clear of.
	Avoid float64
}

// AxisResult reports the measured extent of the labels of a drawn axis, in pixels.
type AxisResult struct {
	LabelExtent float64
}

// GridRequest asks a surface to draw grid lines across the frame at the given positions.
type GridRequest struct {
	Name      axis.Name
	Transform *axis.Transform
	Positions []float64
}

// Surface renders axes and grids of a frame. DrawAxis and DrawGrid may be called
// concurrently for independent axes.
type Surface interface {
	BeginFrame(ctx context.Context, g Geometry) error
	DrawAxis(ctx context.Context, req AxisRequest) (AxisResult, error)
	DrawGrid(ctx context.Context, req GridRequest) error
	ClearAxes()
}

type nopSurface struct{}

func (nopSurface) BeginFrame(context.Context, Geometry) error { return nil }
func (nopSurface) DrawAxis(context.Context, AxisRequest) (AxisResult, error) {
	return AxisResult{}, nil
}
func (nopSurface) DrawGrid(context.Context, GridRequest) error { return nil }
func (nopSurface) ClearAxes()                                  {}
