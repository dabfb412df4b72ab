/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import (
	"plotframe/internal/axis"
	"plotframe/internal/projection"
)

// TicksMode selects how an axis is drawn.
type TicksMode int

const (
	TicksOff TicksMode = iota
	TicksNormal
	// TicksBothSides repeats the ticks on the opposite side of the frame.
	TicksBothSides
	// LabelsBothSides repeats ticks and labels on the opposite side of the frame.
	LabelsBothSides
)

// AxisAttributes are the configured properties of one axis.
type AxisAttributes struct {
	// Min and Max replace the computed data bounds when set.
	Min, Max *float64
	// ZoomMin and ZoomMax seed the zoom of an axis that was not changed interactively.
	ZoomMin, ZoomMax *float64

	Log        bool
	Symlog     bool
	Grid       bool
	Ticks      TicksMode
	SwapSide   bool
	Reverse    bool
	LabelsHide bool
}

func (a AxisAttributes) Hints() axis.Hints {
	return axis.Hints{Min: a.Min, Max: a.Max, ZoomMin: a.ZoomMin, ZoomMax: a.ZoomMax}
}

// Side is 1 for the default side of an axis and -1 when swapped.
func (a AxisAttributes) Side() int {
	if a.SwapSide {
		return -1
	}
	return 1
}

// Attributes configure a frame.
type Attributes struct {
	Margins Margins
	Axes    [axis.Count]AxisAttributes
	// DrawAxes marks a frame that draws its own axes. Such a frame accepts zooms without
	// validation when no layer can validate them.
	DrawAxes   bool
	Rotate     bool
	Projection projection.ID
}

// DefaultAttributes returns attributes with normal ticks on every axis.
func DefaultAttributes() Attributes {
	a := Attributes{Margins: DefaultMargins, DrawAxes: true}
	for i := range a.Axes {
		a.Axes[i].Ticks = TicksNormal
	}
	return a
}
