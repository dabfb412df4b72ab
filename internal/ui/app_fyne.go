//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	plog "plotframe/internal/log"
	"plotframe/internal/vector"
)

// Run opens a window showing the viewer and blocks until it is closed.
func Run(v *Viewer, title string) error {
	l := plog.WithComponent("ui")
	l.Info("starting UI")
	ctx := plog.ContextWithFrame(context.Background(), frameID(v))

	fyneApp := app.NewWithID("plotframe")
	w := fyneApp.NewWindow(title)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 900)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 400 {
		winW = 400
	}
	if winH < 300 {
		winH = 300
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	view := NewFrameView(ctx, v)
	view.OnHover = func(s string) { status.SetText(s) }

	shift := false
	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(e *fyne.KeyEvent) {
			if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
				shift = true
			}
		})
		dc.SetOnKeyUp(func(e *fyne.KeyEvent) {
			if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
				shift = false
			}
		})
	}
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) { v.Key(string(e.Name), shift) })

	exportItem := fyne.NewMenuItem("Export...", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := v.Export(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported to " + path)
		}, w)
		save.SetFileName("frame.png")
		save.Show()
	})
	unzoomItem := fyne.NewMenuItem("Unzoom", func() { v.Unzoom(ctx) })
	backItem := fyne.NewMenuItem("Zoom back", func() { v.Key("arrowleft", true) })
	forwardItem := fyne.NewMenuItem("Zoom forward", func() { v.Key("arrowright", true) })
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", exportItem),
		fyne.NewMenu("View", unzoomItem, backItem, forwardItem),
	))

	w.SetContent(container.NewBorder(nil, status, nil, nil, view))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("UI closed")
	})
	w.ShowAndRun()
	return nil
}

func frameID(v *Viewer) string {
	if v.Frame() == nil {
		return ""
	}
	return v.Frame().ID()
}

// FrameView shows the rasterized canvas of a viewer. The wheel zooms around the cursor, a
// drag zooms to the rubber band and a double tap unzooms.
type FrameView struct {
	widget.BaseWidget
	ctx context.Context
	v   *Viewer
	log *slog.Logger

	img  *canvas.Image
	band *canvas.Rectangle

	dragging   bool
	start, cur fyne.Position

	OnHover func(status string)
}

func NewFrameView(ctx context.Context, v *Viewer) *FrameView {
	fv := &FrameView{ctx: ctx, v: v, log: plog.WithComponent("ui")}
	fv.img = canvas.NewImageFromImage(nil)
	fv.img.FillMode = canvas.ImageFillStretch
	fv.band = canvas.NewRectangle(color.NRGBA{R: 60, G: 120, B: 220, A: 50})
	fv.band.StrokeColor = color.NRGBA{R: 60, G: 120, B: 220, A: 200}
	fv.band.StrokeWidth = 1
	fv.band.Hide()
	v.OnChange(func() { fyne.Do(fv.refreshImage) })
	fv.ExtendBaseWidget(fv)
	return fv
}

func (f *FrameView) refreshImage() {
	img, err := f.v.Image()
	if err != nil {
		f.log.Warn("rasterize failed", slog.Any("err", err))
		return
	}
	f.img.Image = img
	f.img.Refresh()
}

func pt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func (f *FrameView) CreateRenderer() fyne.WidgetRenderer {
	return &frameViewRenderer{fv: f, objects: []fyne.CanvasObject{f.img, f.band}}
}

func (f *FrameView) Scrolled(e *fyne.ScrollEvent) {
	notches := float64(e.Scrolled.DY) / 10
	if notches == 0 {
		return
	}
	f.v.Scroll(f.ctx, pt(e.Position), notches)
}

func (f *FrameView) Dragged(e *fyne.DragEvent) {
	if !f.dragging {
		f.dragging = true
		f.start = e.Position.Subtract(e.Dragged)
	}
	f.cur = e.Position
	x0, y0 := min(f.start.X, f.cur.X), min(f.start.Y, f.cur.Y)
	f.band.Move(fyne.NewPos(x0, y0))
	f.band.Resize(fyne.NewSize(max(f.start.X, f.cur.X)-x0, max(f.start.Y, f.cur.Y)-y0))
	f.band.Show()
	f.band.Refresh()
}

func (f *FrameView) DragEnd() {
	f.band.Hide()
	if !f.dragging {
		return
	}
	f.dragging = false
	f.v.ZoomRect(f.ctx, pt(f.start), pt(f.cur))
}

func (f *FrameView) DoubleTapped(*fyne.PointEvent) { f.v.Unzoom(f.ctx) }

func (f *FrameView) MouseIn(*desktop.MouseEvent) {}

func (f *FrameView) MouseMoved(e *desktop.MouseEvent) {
	if f.OnHover != nil {
		f.OnHover(f.v.Status(pt(e.Position)))
	}
}

func (f *FrameView) MouseOut() {
	if f.OnHover != nil {
		f.OnHover("")
	}
}

type frameViewRenderer struct {
	fv      *FrameView
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *frameViewRenderer) Destroy()                     {}
func (r *frameViewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *frameViewRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }
func (r *frameViewRenderer) Refresh()                     { r.fv.refreshImage(); canvas.Refresh(r.fv) }

func (r *frameViewRenderer) Layout(size fyne.Size) {
	r.fv.img.Resize(size)
	r.fv.img.Move(fyne.NewPos(0, 0))
	if size == r.size {
		return
	}
	r.size = size
	if err := r.fv.v.Resize(r.fv.ctx, vector.Size{W: float64(size.Width), H: float64(size.Height)}); err != nil {
		r.fv.log.Warn("resize failed", slog.Any("err", err))
	}
}
