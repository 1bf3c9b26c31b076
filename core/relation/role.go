// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package relation

import (
	"github.com/juju/errors"
)

// Role describes which end of a relation a charm implements.
type Role string

const (
	Provides Role = "provides"
	Requires Role = "requires"
)

// Validate returns an error if r is not a known role.
func (r Role) Validate() error {
	switch r {
	case Provides, Requires:
		return nil
	}
	return errors.NotValidf("relation role %q", string(r))
}

// Scope describes how remote units map onto conversations.
type Scope string

const (
	// ScopeGlobal places every remote unit in a single conversation.
	ScopeGlobal Scope = "global"

	// ScopeUnit gives each remote unit its own conversation.
	ScopeUnit Scope = "unit"
)

// ConversationScope returns the conversation scope key for remoteUnit.
// Global conversations always use the empty key.
func (s Scope) ConversationScope(remoteUnit string) string {
	if s == ScopeUnit {
		return remoteUnit
	}
	return ""
}
