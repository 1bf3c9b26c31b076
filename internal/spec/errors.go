// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package spec

import (
	"fmt"

	"github.com/juju/errors"
)

// MalformedError is returned when a fact published by the peer cannot be
// decoded. The event that read it must not change any flags.
type MalformedError struct {
	// Key is the relation fact that failed to decode.
	Key string

	// Err is the underlying decode failure.
	Err error
}

// NewMalformedError returns a MalformedError for key.
func NewMalformedError(key string, err error) error {
	return &MalformedError{Key: key, Err: errors.Cause(err)}
}

// Error implements error.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed peer data in %q: %v", e.Key, e.Err)
}

// Unwrap returns the decode failure.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err, or any error it wraps, is a
// MalformedError.
func IsMalformed(err error) bool {
	var target *MalformedError
	return errors.As(err, &target)
}
