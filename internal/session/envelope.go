/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/envelope.schema.json
var envelopeSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(envelopeSchema))
	})
	return schema, schemaErr
}

// ErrInvalidMessage reports an outgoing message that does not satisfy the envelope schema.
var ErrInvalidMessage = errors.New("invalid session message")

// Envelope wraps a zoom request with routing data.
type Envelope struct {
	ID    string      `json:"id"`
	Kind  string      `json:"kind"`
	Frame string      `json:"frame"`
	TS    string      `json:"ts"`
	Body  ZoomRequest `json:"body"`
}

func NewEnvelope(frameID string, req ZoomRequest) Envelope {
	return Envelope{
		ID:    uuid.NewString(),
		Kind:  KindZoom,
		Frame: frameID,
		TS:    time.Now().UTC().Format(time.RFC3339Nano),
		Body:  req,
	}
}

// Encode marshals env and validates it against the embedded schema.
func Encode(env Envelope) ([]byte, error) {
	if err := env.Body.Ranges.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	buf, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(buf))
	if err != nil {
		return nil, fmt.Errorf("validate envelope: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(msgs, "; "))
	}
	return buf, nil
}

// Decode parses a message produced by Encode.
func Decode(buf []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
