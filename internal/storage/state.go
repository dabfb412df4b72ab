/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plotframe/internal/axis"
	"plotframe/internal/frame"
)

// recordVersion is the layout of the stored JSON document.
const recordVersion = 1

// tsLayout has a fixed width so updated_at sorts as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

type axisRecord struct {
	Axis string  `json:"axis"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Memo uint8   `json:"memo"`
}

type stateRecord struct {
	Version int          `json:"version"`
	Axes    []axisRecord `json:"axes"`
}

func encodeState(st frame.State) ([]byte, error) {
	rec := stateRecord{Version: recordVersion}
	for _, n := range axis.Names {
		rec.Axes = append(rec.Axes, axisRecord{Axis: n.String(), Min: st.Zoom[n].Min, Max: st.Zoom[n].Max, Memo: uint8(st.Memo[n])})
	}
	return json.Marshal(rec)
}

func decodeState(b []byte) (frame.State, error) {
	var rec stateRecord
	var st frame.State
	if err := json.Unmarshal(b, &rec); err != nil {
		return st, fmt.Errorf("decode zoom state: %w", err)
	}
	if rec.Version != recordVersion {
		return st, fmt.Errorf("decode zoom state: unsupported version %d", rec.Version)
	}
	for _, a := range rec.Axes {
		n, ok := axis.Parse(a.Axis)
		if !ok {
			return st, fmt.Errorf("decode zoom state: unknown axis %q", a.Axis)
		}
		st.Zoom[n] = axis.Range{Min: a.Min, Max: a.Max}
		st.Memo[n] = axis.Memo(a.Memo)
	}
	return st, nil
}

// Entry describes one stored frame.
type Entry struct {
	FrameID   string
	UpdatedAt time.Time
}

// SaveState stores the zoom state of a frame, replacing an earlier one.
func (s *Store) SaveState(ctx context.Context, frameID string, st frame.State) error {
	if frameID == "" {
		return errors.New("save zoom state: frame id is required")
	}
	body, err := encodeState(st)
	if err != nil {
		return fmt.Errorf("encode zoom state: %w", err)
	}
	q := s.rebind(`INSERT INTO zoom_state(frame_id, state, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(frame_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, frameID, string(body), s.now().UTC().Format(tsLayout)); err != nil {
		return fmt.Errorf("save zoom state: %w", err)
	}
	s.log.Debug("zoom state saved", slog.String("frame", frameID))
	return nil
}

// LoadState returns the stored zoom state of a frame or ErrNotFound.
func (s *Store) LoadState(ctx context.Context, frameID string) (frame.State, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT state FROM zoom_state WHERE frame_id = ?`), frameID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return frame.State{}, ErrNotFound
	}
	if err != nil {
		return frame.State{}, fmt.Errorf("load zoom state: %w", err)
	}
	return decodeState([]byte(body))
}

// DeleteState removes the stored state of a frame. Deleting a missing frame is not an error.
func (s *Store) DeleteState(ctx context.Context, frameID string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM zoom_state WHERE frame_id = ?`), frameID); err != nil {
		return fmt.Errorf("delete zoom state: %w", err)
	}
	return nil
}

// List returns the stored frames, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT frame_id, updated_at FROM zoom_state ORDER BY updated_at DESC, frame_id`)
	if err != nil {
		return nil, fmt.Errorf("list zoom states: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var id, ts string
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, err
		}
		t, err := time.Parse(tsLayout, ts)
		if err != nil {
			s.log.Warn("bad timestamp in zoom_state", slog.String("frame", id), slog.String("ts", ts))
		}
		out = append(out, Entry{FrameID: id, UpdatedAt: t})
	}
	return out, rows.Err()
}
