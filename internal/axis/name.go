/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package axis holds the per-axis range model and the data↔pixel transform of a plot frame.
package axis

import (
	"strconv"
	"strings"
)

// Name identifies one logical axis of a frame.
type Name int

const (
	X Name = iota
	Y
	Z
	X2
	Y2
)

// Count is the number of logical axes.
const Count = 5

// Names lists all axes in slot order.
var Names = [Count]Name{X, Y, Z, X2, Y2}

var names = [Count]string{"x", "y", "z", "x2", "y2"}

func (n Name) String() string {
	if !n.Valid() {
		return "axis(" + strconv.Itoa(int(n)) + ")"
	}
	return names[n]
}

func (n Name) Valid() bool { return n >= X && n <= Y2 }

// Secondary reports whether n is x2 or y2.
func (n Name) Secondary() bool { return n == X2 || n == Y2 }

// Base maps a secondary axis onto its primary counterpart.
func (n Name) Base() Name {
	switch n {
	case X2:
		return X
	case Y2:
		return Y
	}
	return n
}

// Parse resolves "x", "y", "z", "x2" or "y2" (case-insensitive).
func Parse(s string) (Name, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, v := range names {
		if v == s {
			return Name(i), true
		}
	}
	return 0, false
}
