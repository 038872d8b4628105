// Copyright 2026 CouleeApps.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package outcome

import (
	"encoding/json"
	"errors"
	"io"
)

// Envelope is the wire form of a computation outcome as it travels from a
// child process to its parent: either a success carrying a value, or a
// failure carrying an error description. The encoding is self-describing,
// so the parent can tell the two apart without any side channel.
type Envelope struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Encode serializes a computation outcome. A non-nil err wins over the
// value: the envelope then carries only the error's text, as concrete error
// types cannot cross the process boundary.
func Encode(value interface{}, err error) ([]byte, error) {
	if err != nil {
		return json.Marshal(Envelope{Error: err.Error()})
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{OK: true, Value: raw})
}

// Decode parses a fully buffered outcome payload back into an Envelope.
func Decode(payload []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, err
	}
	return env, nil
}

// DecodeFrom parses an outcome envelope from a byte stream, returning as
// soon as one complete envelope has been read. This allows a parent to pick
// up the outcome without waiting for the stream to be closed, in case the
// child lingers after writing.
func DecodeFrom(r io.Reader) (*Envelope, error) {
	env := &Envelope{}
	if err := json.NewDecoder(r).Decode(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Unmarshal deserializes a success envelope's value into the element into
// points to. Passing nil skips the value, for callers not interested in it.
func (e *Envelope) Unmarshal(into interface{}) error {
	if into == nil {
		return nil
	}
	if len(e.Value) == 0 {
		return errors.New("outcome envelope carries no value")
	}
	return json.Unmarshal(e.Value, into)
}
