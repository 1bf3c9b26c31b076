// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package flags holds the process-wide boolean flags that role handlers
// derive from relation facts, and that the rest of the charm polls.
package flags

import (
	"context"
	"sync"

	"github.com/juju/collections/set"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("hadoop.relations.flags")

// Store is a set of named boolean flags. Set and Remove are idempotent.
type Store interface {
	// Set raises the named flag.
	Set(ctx context.Context, name string) error

	// Remove clears the named flag.
	Remove(ctx context.Context, name string) error

	// Toggle raises the named flag if value is true and clears it
	// otherwise.
	Toggle(ctx context.Context, name string, value bool) error

	// IsSet reports whether the named flag is raised.
	IsSet(ctx context.Context, name string) (bool, error)

	// List returns the names of all raised flags.
	List(ctx context.Context) (set.Strings, error)
}

// Memory is a Store held in process memory.
type Memory struct {
	mu    sync.Mutex
	flags set.Strings
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{flags: set.NewStrings()}
}

// Set is part of the Store interface.
func (m *Memory) Set(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.flags.Contains(name) {
		logger.Debugf("setting flag %q", name)
	}
	m.flags.Add(name)
	return nil
}

// Remove is part of the Store interface.
func (m *Memory) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags.Contains(name) {
		logger.Debugf("removing flag %q", name)
	}
	m.flags.Remove(name)
	return nil
}

// Toggle is part of the Store interface.
func (m *Memory) Toggle(ctx context.Context, name string, value bool) error {
	return Toggle(ctx, m, name, value)
}

// IsSet is part of the Store interface.
func (m *Memory) IsSet(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags.Contains(name), nil
}

// List is part of the Store interface.
func (m *Memory) List(_ context.Context) (set.Strings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return set.NewStrings(m.flags.Values()...), nil
}

// Setter is the subset of Store needed to implement Toggle.
type Setter interface {
	Set(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
}

// Toggle implements Store.Toggle in terms of Set and Remove.
func Toggle(ctx context.Context, s Setter, name string, value bool) error {
	if value {
		return s.Set(ctx, name)
	}
	return s.Remove(ctx, name)
}
