/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	plog "plotframe/internal/log"
)

// HTTPConfig configures an HTTP sink.
type HTTPConfig struct {
	URL       string
	Token     string
	Timeout   time.Duration
	QueueSize int
}

// HTTPSink POSTs zoom messages from a background loop. The queue is bounded and Submit
// never blocks the caller.
type HTTPSink struct {
	cfg HTTPConfig
	log *slog.Logger
	cli *http.Client

	mu     sync.Mutex
	closed bool
	q      chan []byte
	done   chan struct{}
}

func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1500 * time.Millisecond
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	s := &HTTPSink{
		cfg:  cfg,
		log:  plog.WithComponent("session"),
		cli:  &http.Client{Timeout: cfg.Timeout},
		q:    make(chan []byte, cfg.QueueSize),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *HTTPSink) Submit(_ context.Context, frameID string, req ZoomRequest) error {
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
	case s.q <- buf:
		return nil
	default:
		return ErrQueueFull
	}
}

// Flush waits until the queue drained or ctx is done.
func (s *HTTPSink) Flush(ctx context.Context) {
	for len(s.q) > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (s *HTTPSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.q)
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *HTTPSink) loop() {
	defer close(s.done)
	for buf := range s.q {
		if err := s.post(buf); err != nil {
			s.log.Warn("session post failed", slog.Any("err", err))
		}
	}
}

func (s *HTTPSink) post(buf []byte) error {
	req, err := http.NewRequest(http.MethodPost, s.cfg.URL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("session post: status %d", resp.StatusCode)
	}
	return nil
}
