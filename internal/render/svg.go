/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"
)

// WriteSVG writes the canvas as a standalone SVG document.
func (c *Canvas) WriteSVG(w io.Writer) error {
	d := c.snapshot()

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", d.pad.W, d.pad.H, d.pad.W, d.pad.H)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", d.pad.W, d.pad.H, svgColor(d.bg))
	if !d.clip.Empty() {
		wf("  <defs><clipPath id=\"frame\"><rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/></clipPath></defs>\n", d.clip.X, d.clip.Y, d.clip.W, d.clip.H)
	}

	writeLines := func(class string, ls []line, clip bool) {
		if len(ls) == 0 {
			return
		}
		if clip {
			wf("  <g class=\"%s\" clip-path=\"url(#frame)\">\n", class)
		} else {
			wf("  <g class=\"%s\">\n", class)
		}
		for _, l := range ls {
			dash := ""
			if l.Dash {
				dash = " stroke-dasharray=\"3,3\""
			}
			wf("    <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"%g\"%s/>\n", l.A.X, l.A.Y, l.B.X, l.B.Y, svgColor(l.Color), l.Width, dash)
		}
		wf("  </g>\n")
	}
	writeLines("grid", d.grid, false)
	writeLines("data", d.data, true)
	writeLines("axes", d.lines, false)

	if len(d.labels) > 0 {
		wf("  <g class=\"labels\" font-family=\"Helvetica, Arial, sans-serif\" fill=\"#000\">\n")
		for _, lb := range d.labels {
			rot := ""
			if lb.Rotate != 0 {
				rot = fmt.Sprintf(" transform=\"rotate(%g,%g,%g)\"", -lb.Rotate, lb.At.X, lb.At.Y)
			}
			wf("    <text x=\"%g\" y=\"%g\" font-size=\"%g\" text-anchor=\"%s\"%s>%s</text>\n", lb.At.X, lb.At.Y, lb.Size, svgAnchor(lb.Anchor), rot, escText(lb.Text))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func svgAnchor(a Anchor) string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	}
	return "start"
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")

func escText(s string) string { return textEscaper.Replace(s) }
