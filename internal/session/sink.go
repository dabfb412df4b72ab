/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrClosed is returned by Submit after the sink was closed.
var ErrClosed = errors.New("session sink closed")

// ErrQueueFull is returned when a message was dropped because the send queue is full.
var ErrQueueFull = errors.New("session send queue full")

// Mode tells whether a frame talks to a remote session.
type Mode int

const (
	Offline Mode = iota
	Live
)

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "offline"
}

// ParseMode maps "live" to Live and everything else to Offline.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "live") {
		return Live
	}
	return Offline
}

// Sink transmits zoom requests of a frame.
type Sink interface {
	Submit(ctx context.Context, frameID string, req ZoomRequest) error
	Close() error
}

// Config selects and parameterizes a sink.
type Config struct {
	Mode      Mode
	Transport string // "ws" or "http"
	URL       string
	Token     string
	Timeout   time.Duration
}

// Open returns the sink described by cfg, or nil for offline mode.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	if cfg.Mode != Live {
		return nil, nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("session: live mode requires a url")
	}
	switch strings.ToLower(cfg.Transport) {
	case "", "ws", "websocket":
		ws, err := DialWS(ctx, WSConfig{URL: cfg.URL, Token: cfg.Token, HandshakeTimeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return ws, nil
	case "http", "https":
		return NewHTTPSink(HTTPConfig{URL: cfg.URL, Token: cfg.Token, Timeout: cfg.Timeout}), nil
	}
	return nil, fmt.Errorf("session: unknown transport %q", cfg.Transport)
}
