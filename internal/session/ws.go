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
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"

	plog "plotframe/internal/log"
)

// WSConfig configures a WebSocket sink.
type WSConfig struct {
	URL              string
	Token            string
	Attempts         uint
	Delay            time.Duration
	HandshakeTimeout time.Duration
	QueueSize        int
}

// WSSink writes zoom messages to a WebSocket connection from a single write pump.
type WSSink struct {
	conn *websocket.Conn
	log  *slog.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
	done   chan struct{}
}

// DialWS connects to cfg.URL, retrying failed handshakes.
func DialWS(ctx context.Context, cfg WSConfig) (*WSSink, error) {
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 200 * time.Millisecond
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout, Proxy: http.ProxyFromEnvironment}
	l := plog.WithComponent("session")

	var conn *websocket.Conn
	err := retry.Do(
		func() error {
			c, resp, err := dialer.DialContext(ctx, cfg.URL, header)
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.Delay),
		retry.MaxDelay(5*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.Debug("websocket dial retry", slog.Uint64("attempt", uint64(n+1)), slog.Any("err", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial session %s: %w", cfg.URL, err)
	}
	s := &WSSink{
		conn: conn,
		log:  l,
		send: make(chan []byte, cfg.QueueSize),
		done: make(chan struct{}),
	}
	go s.writePump()
	go s.readPump()
	l.Info("session connected", slog.String("url", cfg.URL))
	return s, nil
}

// Submit queues req for the write pump. It never blocks.
func (s *WSSink) Submit(_ context.Context, frameID string, req ZoomRequest) error {
	buf, err := Encode(NewEnvelope(frameID, req))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.send <- buf:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close drains the queue, sends a close frame and waits for the write pump to exit.
func (s *WSSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *WSSink) writePump() {
	defer func() {
		_ = s.conn.Close()
		close(s.done)
	}()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.log.Warn("session write failed", slog.Any("err", err))
			s.discard()
			return
		}
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// discard marks the sink closed after a write failure and empties the queue.
func (s *WSSink) discard() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
	s.mu.Unlock()
	for range s.send {
	}
}

// readPump consumes inbound frames so control messages are processed.
func (s *WSSink) readPump() {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("session read ended", slog.Any("err", err))
			}
			return
		}
	}
}
