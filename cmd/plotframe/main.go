/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"plotframe/internal/axis"
	"plotframe/internal/config"
	"plotframe/internal/crash"
	"plotframe/internal/frame"
	"plotframe/internal/history"
	plog "plotframe/internal/log"
	"plotframe/internal/render"
	"plotframe/internal/session"
	"plotframe/internal/storage"
	"plotframe/internal/ui"
	"plotframe/internal/vector"
	"plotframe/internal/version"
)

func usage() {
	fmt.Println("plotframe: frame geometry and interactive zoom")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  plotframe version|-v|--version                 Show version")
	fmt.Println("  plotframe render <out.svg|png|pdf> [options]   Draw the sample frame and export it")
	fmt.Println("  plotframe ui [options]                         Launch desktop UI (build with -tags fyne)")
	fmt.Println("  plotframe unzoom <out.svg|png|pdf> [options]   Unzoom all axes, export and save")
	fmt.Println("  plotframe forget [frame=<id>]                  Delete the saved zoom of a frame")
	fmt.Println("  plotframe list                                 List frames with a saved zoom")
	fmt.Println("  plotframe config                               Print the config path and effective settings")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  x=<min>:<max> y=<min>:<max>   zoom before drawing (\"x=\" unzooms)")
	fmt.Println("  frame=<id>                    frame whose zoom is restored and saved (default: default)")
	fmt.Println("  font=<file.ttf>               measure labels with this font")
	fmt.Println("  size=<w>x<h>                  pad size (default 800x600)")
}

// options are the key=value arguments of render and ui.
type options struct {
	frameID string
	font    string
	pad     vector.Size
	zooms   map[axis.Name]*axis.Range
}

func parseOptions(args []string) (options, error) {
	o := options{frameID: "default", pad: vector.Size{W: 800, H: 600}, zooms: map[axis.Name]*axis.Range{}}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return o, fmt.Errorf("unexpected argument %q", a)
		}
		switch k {
		case "frame":
			if v == "" {
				return o, errors.New("frame= needs an id")
			}
			o.frameID = v
		case "font":
			o.font = v
		case "size":
			ws, hs, ok := strings.Cut(v, "x")
			w, errW := strconv.Atoi(ws)
			h, errH := strconv.Atoi(hs)
			if !ok || errW != nil || errH != nil || w <= 0 || h <= 0 {
				return o, fmt.Errorf("bad size %q, want <w>x<h>", v)
			}
			o.pad = vector.Size{W: float64(w), H: float64(h)}
		default:
			n, ok := axis.Parse(k)
			if !ok {
				return o, fmt.Errorf("unknown option %q", k)
			}
			r, err := parseRange(v)
			if err != nil {
				return o, fmt.Errorf("%s: %w", k, err)
			}
			o.zooms[n] = r
		}
	}
	return o, nil
}

// parseRange reads "min:max"; an empty value is the zero range, which unzooms.
func parseRange(s string) (*axis.Range, error) {
	if s == "" {
		return &axis.Range{}, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("bad range %q, want <min>:<max>", s)
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	return frame.Span(min, max), nil
}

// sampleCurve is the data shown by render and ui: a damped oscillation.
func sampleCurve() *render.Curve {
	return render.NewCurve("sample", 0, 20, 401, func(x float64) float64 {
		return 50 * math.Exp(-x/8) * math.Sin(x)
	})
}

// referenceCurve is drawn on x2/y2: the envelope of the oscillation over time in seconds.
func referenceCurve() *render.Curve {
	c := render.NewCurve("envelope", 0, 2, 101, func(t float64) float64 {
		return 100 * math.Exp(-t*10/8)
	})
	c.SecondX, c.SecondY = true, true
	return c
}

// app holds what every command that touches a frame needs.
type app struct {
	cfg   config.AppConfig
	store *storage.Store
	sink  session.Sink
	log   *slog.Logger
}

func openApp(ctx context.Context) (*app, error) {
	cfg, tok, err := config.Load()
	if err != nil {
		return nil, err
	}
	plog.Init(plog.Options{
		Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source,
		File: cfg.Logging.File, MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups,
	})
	a := &app{cfg: cfg, log: plog.WithComponent("cli")}
	a.store, err = storage.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	a.sink, err = session.Open(ctx, cfg.Session.SinkConfig(tok))
	if err != nil {
		_ = a.store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Warn("session close failed", slog.Any("err", err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close failed", slog.Any("err", err))
	}
}

// newViewer builds the frame for o.frameID, attaches the sample curve and restores the
// saved zoom.
func (a *app) newViewer(ctx context.Context, o options) (*ui.Viewer, *frame.Frame, error) {
	attrs, err := a.cfg.Frame.Attributes()
	if err != nil {
		return nil, nil, err
	}
	var copts []render.Option
	if o.font != "" {
		m, err := render.LoadFont(o.font)
		if err != nil {
			return nil, nil, err
		}
		copts = append(copts, render.WithMeasurer(m))
	}
	cv := render.NewCanvas(o.pad, copts...)
	v := ui.NewViewer(cv)
	f := frame.New(attrs,
		frame.WithID(o.frameID),
		frame.WithSurface(cv),
		frame.WithRedrawer(v),
		frame.WithSession(a.sink, session.ParseMode(a.cfg.Session.Mode)),
		frame.WithHistory(history.NewManager(history.Config{MaxPerFrame: 50, MinInterval: 250 * time.Millisecond})),
	)
	v.Attach(ctx, f, sampleCurve(), referenceCurve())

	st, err := a.store.LoadState(ctx, o.frameID)
	switch {
	case err == nil:
		f.RestoreState(st)
		a.log.Debug("zoom restored", slog.String("frame", o.frameID))
	case !errors.Is(err, storage.ErrNotFound):
		return nil, nil, err
	}
	// x2 and y2 only accept zooms once their transforms exist
	if err := v.Render(ctx); err != nil {
		return nil, nil, err
	}
	for _, n := range []axis.Name{axis.X, axis.Y, axis.Z, axis.X2, axis.Y2} {
		if r, ok := o.zooms[n]; ok {
			f.ZoomAxis(ctx, n, r.Min, r.Max, axis.Interactive)
		}
	}
	return v, f, nil
}

func main() {
	var f *frame.Frame
	defer crash.Recover("", func() string {
		if f == nil {
			return ""
		}
		return f.Describe()
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("plotframe")
		fmt.Println(version.String())
		return
	case "config":
		path, err := config.ConfigPath()
		if err != nil {
			fail(err)
		}
		cfg, _, err := config.LoadFile(path)
		if err != nil {
			fail(err)
		}
		fmt.Println("Config:", path)
		fmt.Println("Storage:", cfg.Storage.DSN)
		fmt.Printf("Session: %s %s %s\n", cfg.Session.Mode, cfg.Session.Transport, cfg.Session.URL)
		fmt.Printf("Logging: %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
		return
	case "render", "unzoom":
		if len(args) < 3 {
			fmt.Printf("%s requires <out>\n", args[1])
			usage()
			os.Exit(2)
		}
		fr, err := exportFrame(ctx, args[2], args[3:], args[1] == "unzoom", &f)
		if err != nil {
			fail(err)
		}
		fmt.Println(fr.Describe())
		return
	case "ui":
		o, err := parseOptions(args[2:])
		if err != nil {
			fail(err)
		}
		a, err := openApp(ctx)
		if err != nil {
			fail(err)
		}
		defer a.Close()
		v, fr, err := a.newViewer(plog.ContextWithFrame(ctx, o.frameID), o)
		if err != nil {
			fail(err)
		}
		f = fr
		if err := ui.Run(v, "plotframe: "+o.frameID); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if err := a.store.SaveState(ctx, o.frameID, f.State()); err != nil {
			fail(err)
		}
		return
	case "forget":
		o, err := parseOptions(args[2:])
		if err != nil {
			fail(err)
		}
		a, err := openApp(ctx)
		if err != nil {
			fail(err)
		}
		defer a.Close()
		if err := a.store.DeleteState(ctx, o.frameID); err != nil {
			fail(err)
		}
		fmt.Println("Forgot the saved zoom of", o.frameID)
		return
	case "list":
		a, err := openApp(ctx)
		if err != nil {
			fail(err)
		}
		defer a.Close()
		entries, err := a.store.List(ctx)
		if err != nil {
			fail(err)
		}
		for _, e := range entries {
			fmt.Printf("%-20s %s\n", e.FrameID, e.UpdatedAt.Format(time.RFC3339))
		}
		return
	}
	usage()
}

// exportFrame draws the frame into out, unzooming all axes first when asked, and saves the
// resulting zoom. The frame is published through fp as soon as it exists.
func exportFrame(ctx context.Context, out string, args []string, unzoom bool, fp **frame.Frame) (*frame.Frame, error) {
	if _, err := render.FormatFromPath(out); err != nil {
		return nil, err
	}
	o, err := parseOptions(args)
	if err != nil {
		return nil, err
	}
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	ctx = plog.ContextWithFrame(ctx, o.frameID)
	v, f, err := a.newViewer(ctx, o)
	if err != nil {
		return nil, err
	}
	*fp = f
	if unzoom {
		v.Unzoom(ctx)
	}
	if err := v.Render(ctx); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return nil, err
	}
	if err := v.Export(abs); err != nil {
		return nil, err
	}
	if err := a.store.SaveState(ctx, o.frameID, f.State()); err != nil {
		return nil, err
	}
	fmt.Println("Wrote", abs)
	return f, nil
}

func fail(err error) {
	plog.WithComponent("cli").Error("command failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
