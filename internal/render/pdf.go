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
	"io"

	"github.com/jung-kurt/gofpdf"

	"plotframe/internal/version"
)

// WritePDF writes the canvas as a single-page PDF with one point per pixel. Labels use the
// built-in Helvetica so text stays vector without embedding.
func (c *Canvas) WritePDF(w io.Writer) error {
	d := c.snapshot()
	if d.pad.W <= 0 || d.pad.H <= 0 {
		return fmt.Errorf("write pdf: empty canvas %gx%g", d.pad.W, d.pad.H)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: d.pad.W, Ht: d.pad.H},
	})
	pdf.SetCreator("plotframe "+version.String(), false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: d.pad.W, Ht: d.pad.H})

	pdf.SetFillColor(int(d.bg.R), int(d.bg.G), int(d.bg.B))
	pdf.Rect(0, 0, d.pad.W, d.pad.H, "F")

	stroke := func(ls []line) {
		for _, l := range ls {
			pdf.SetDrawColor(int(l.Color.R), int(l.Color.G), int(l.Color.B))
			pdf.SetLineWidth(l.Width)
			if l.Dash {
				pdf.SetDashPattern([]float64{3, 3}, 0)
			} else {
				pdf.SetDashPattern(nil, 0)
			}
			pdf.Line(l.A.X, l.A.Y, l.B.X, l.B.Y)
		}
		pdf.SetDashPattern(nil, 0)
	}
	stroke(d.grid)
	if len(d.data) > 0 {
		if !d.clip.Empty() {
			pdf.ClipRect(d.clip.X, d.clip.Y, d.clip.W, d.clip.H, false)
			stroke(d.data)
			pdf.ClipEnd()
		} else {
			stroke(d.data)
		}
	}
	stroke(d.lines)

	pdf.SetTextColor(0, 0, 0)
	for _, lb := range d.labels {
		pdf.SetFont("Helvetica", "", lb.Size)
		x := lb.At.X
		switch lb.Anchor {
		case AnchorMiddle:
			x -= pdf.GetStringWidth(lb.Text) / 2
		case AnchorEnd:
			x -= pdf.GetStringWidth(lb.Text)
		}
		if lb.Rotate != 0 {
			pdf.TransformBegin()
			pdf.TransformRotate(lb.Rotate, lb.At.X, lb.At.Y)
			pdf.Text(x, lb.At.Y, lb.Text)
			pdf.TransformEnd()
			continue
		}
		pdf.Text(x, lb.At.Y, lb.Text)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
