/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the advance width and line height of label text at a size in points.
type Measurer interface {
	Width(s string, sizePt float64) float64
	LineHeight(sizePt float64) float64
}

// BasicMeasurer measures with the fixed 7x13 bitmap face scaled to the requested size.
// It is deterministic and needs no font files.
type BasicMeasurer struct{}

func (BasicMeasurer) Width(s string, sizePt float64) float64 {
	d := &font.Drawer{Face: basicfont.Face7x13}
	adv := float64(d.MeasureString(s)) / 64
	return adv * sizePt / 13
}

func (BasicMeasurer) LineHeight(sizePt float64) float64 { return sizePt }

// FontMeasurer measures with an OpenType font. Faces are built lazily per size.
type FontMeasurer struct {
	font *opentype.Font
	dpi  float64

	mu    sync.Mutex
	faces map[float64]font.Face
}

// LoadFont parses a TTF/OTF file for measurement at 72 dpi, so one point is one pixel.
func LoadFont(path string) (*FontMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return ParseFont(data)
}

// ParseFont is LoadFont for font bytes.
func ParseFont(data []byte) (*FontMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontMeasurer{font: f, dpi: 72, faces: make(map[float64]font.Face)}, nil
}

func (m *FontMeasurer) face(sizePt float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[sizePt]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{Size: sizePt, DPI: m.dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	m.faces[sizePt] = f
	return f, nil
}

func (m *FontMeasurer) Width(s string, sizePt float64) float64 {
	f, err := m.face(sizePt)
	if err != nil {
		return BasicMeasurer{}.Width(s, sizePt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &font.Drawer{Face: f}
	return float64(d.MeasureString(s)) / 64
}

func (m *FontMeasurer) LineHeight(sizePt float64) float64 {
	f, err := m.face(sizePt)
	if err != nil {
		return sizePt
	}
	met := f.Metrics()
	return float64(met.Ascent+met.Descent) / 64
}
