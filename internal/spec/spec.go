// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package spec

import (
	"reflect"

	"github.com/juju/errors"
)

// Key is the fact under which each side publishes its Spec.
const Key = "spec"

// Spec is the set of facts a provider and requirer must agree on.
// A nil Spec means no spec has been set or published; an empty,
// non-nil Spec is a valid spec with no constraints.
type Spec map[string]any

// Encode returns the wire form of s. A nil Spec encodes as Null.
func (s Spec) Encode() (string, error) {
	if s == nil {
		return Null, nil
	}
	return Encode(map[string]any(s))
}

// Parse decodes a published spec. When present is false the value is
// treated as Null, so absence and an explicit null both yield a nil Spec.
// Anything that is not a JSON object or null is rejected.
func Parse(raw string, present bool) (Spec, error) {
	if !present {
		raw = Null
	}
	var s Spec
	if err := DecodeInto(raw, &s); err != nil {
		return nil, errors.Trace(err)
	}
	return s, nil
}

// Match reports whether every key declared in local has an equal value
// in remote. Keys only remote publishes are ignored, and a key remote
// omits is compared as null. Nothing matches until both sides have
// published a spec.
func Match(local, remote Spec) bool {
	if local == nil || remote == nil {
		return false
	}
	for key, want := range local {
		if !equal(want, remote[key]) {
			return false
		}
	}
	return true
}

// equal compares two values by their JSON form, so that 1 and 1.0
// compare equal regardless of the Go type that produced them.
func equal(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(ca, cb)
}

func canonical(v any) (any, error) {
	raw, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}
