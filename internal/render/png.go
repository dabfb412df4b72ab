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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WritePNG writes the rasterized canvas as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	img, err := c.Rasterize()
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize draws the canvas at one pixel per unit. Labels use the 7x13 bitmap face and are
// not rotated.
func (c *Canvas) Rasterize() (*image.RGBA, error) {
	d := c.snapshot()
	pw, ph := int(math.Ceil(d.pad.W)), int(math.Ceil(d.pad.H))
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("empty canvas %gx%g", d.pad.W, d.pad.H)
	}
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: d.bg}, image.Point{}, draw.Src)

	for _, l := range d.grid {
		strokeLine(img, l, img.Bounds())
	}
	clip := img.Bounds()
	if !d.clip.Empty() {
		clip = image.Rect(int(math.Floor(d.clip.X)), int(math.Floor(d.clip.Y)),
			int(math.Ceil(d.clip.X+d.clip.W))+1, int(math.Ceil(d.clip.Y+d.clip.H))+1).Intersect(img.Bounds())
	}
	for _, l := range d.data {
		strokeLine(img, l, clip)
	}
	for _, l := range d.lines {
		strokeLine(img, l, img.Bounds())
	}

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	for _, lb := range d.labels {
		adv := dr.MeasureString(lb.Text)
		x := fixed.I(int(math.Round(lb.At.X)))
		switch lb.Anchor {
		case AnchorMiddle:
			x -= adv / 2
		case AnchorEnd:
			x -= adv
		}
		dr.Dot = fixed.Point26_6{X: x, Y: fixed.I(int(math.Round(lb.At.Y)))}
		dr.DrawString(lb.Text)
	}
	return img, nil
}

// strokeLine draws l with a DDA walk, dashed lines skipping every other 3px run.
func strokeLine(img *image.RGBA, l line, clip image.Rectangle) {
	dx, dy := l.B.X-l.A.X, l.B.Y-l.A.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	thick := int(math.Max(1, math.Round(l.Width)))
	for i := 0; i <= steps; i++ {
		if l.Dash && (i/3)%2 == 1 {
			continue
		}
		t := float64(i) / float64(steps)
		x := int(math.Round(l.A.X + t*dx))
		y := int(math.Round(l.A.Y + t*dy))
		for k := 0; k < thick; k++ {
			px, py := x, y
			if math.Abs(dx) >= math.Abs(dy) {
				py += k
			} else {
				px += k
			}
			if image.Pt(px, py).In(clip) {
				img.SetRGBA(px, py, l.Color)
			}
		}
	}
}
