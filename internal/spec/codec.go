// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package spec encodes the structured contract that both ends of a
// relation publish, and decides whether two published contracts agree.
package spec

import (
	"encoding/json"

	"github.com/juju/errors"
)

// Null is the wire form of "no value". Absent keys decode as if they
// held Null.
const Null = "null"

// Encode returns the canonical JSON form of v. Mapping keys are emitted
// in sorted order, so equal values always encode to the same string.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Annotate(err, "encoding relation value")
	}
	return string(data), nil
}

// Decode parses a JSON value published on the relation. The result is
// nil for Null.
func Decode(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, errors.Trace(err)
	}
	return v, nil
}

// DecodeInto parses raw into out, which must be a pointer.
func DecodeInto(raw string, out any) error {
	return errors.Trace(json.Unmarshal([]byte(raw), out))
}
