/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session carries zoom changes of a frame to a remote session.
package session

import "fmt"

// Type identifiers carried in outgoing messages.
const (
	KindZoom        = "zoom"
	TypeZoomRequest = "plotframe.ZoomRequest"
	TypeUserRanges  = "plotframe.UserRanges"
)

// Slot counts of the ranges vector: combined zoom covers x, y, z; single-axis zoom
// also covers x2 and y2.
const (
	CombinedSlots = 6
	SingleSlots   = 10
)

// Unzoomed is the value both slots of an axis carry when the axis was unzoomed.
const Unzoomed = -1

// Ranges holds two slots (min, max) per axis. Flags mark the slots that carry a zoom.
type Ranges struct {
	Type   string    `json:"_typename"`
	Values []float64 `json:"values"`
	Flags  []bool    `json:"flags"`
}

// NewRanges returns an empty vector with the given number of slots.
func NewRanges(slots int) Ranges {
	return Ranges{Type: TypeUserRanges, Values: make([]float64, slots), Flags: make([]bool, slots)}
}

// Set records a zoom of the axis at index.
func (r *Ranges) Set(index int, min, max float64) {
	i := index * 2
	r.Values[i], r.Values[i+1] = min, max
	r.Flags[i], r.Flags[i+1] = true, true
}

// Unzoom records an unzoom of the axis at index. Flags stay false.
func (r *Ranges) Unzoom(index int) {
	i := index * 2
	r.Values[i], r.Values[i+1] = Unzoomed, Unzoomed
}

// Axis returns the slots of the axis at index.
func (r Ranges) Axis(index int) (min, max float64, set bool) {
	i := index * 2
	return r.Values[i], r.Values[i+1], r.Flags[i] && r.Flags[i+1]
}

func (r Ranges) validate() error {
	if len(r.Values) != len(r.Flags) {
		return fmt.Errorf("ranges: %d values vs %d flags", len(r.Values), len(r.Flags))
	}
	if n := len(r.Values); n != CombinedSlots && n != SingleSlots {
		return fmt.Errorf("ranges: unexpected slot count %d", n)
	}
	return nil
}

// ZoomRequest is the message emitted when a zoom changed at least one axis.
type ZoomRequest struct {
	Type   string `json:"_typename"`
	Ranges Ranges `json:"ranges"`
}

func NewZoomRequest(r Ranges) ZoomRequest {
	return ZoomRequest{Type: TypeZoomRequest, Ranges: r}
}
