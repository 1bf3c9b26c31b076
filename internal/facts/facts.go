// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package facts provides access to the key/value facts exchanged in a
// relation conversation. Each conversation has three views:
//
//   - local facts, written and read only by this side;
//   - remote facts, published by the peer and read-only here;
//   - published facts, written by this side for the peer to read.
//
// Role handlers receive a Conversation, which exposes only the local and
// remote views; providers broadcast through a PublishingConversation.
package facts

import (
	"fmt"
)

// PrivateAddress is the remote fact carrying the peer's network address.
// It is supplied by the relation layer rather than set by role handlers.
const PrivateAddress = "private-address"

// Key identifies a conversation. Scope is empty for conversations that
// span every remote unit, and the remote unit name otherwise.
type Key struct {
	Relation string `yaml:"relation"`
	Scope    string `yaml:"scope,omitempty"`
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if k.Scope == "" {
		return k.Relation
	}
	return fmt.Sprintf("%s:%s", k.Relation, k.Scope)
}

// LocalFacts are private to this side of the conversation.
type LocalFacts interface {
	// GetLocal returns the value of key, or defaultValue if it is unset.
	GetLocal(key, defaultValue string) string

	// SetLocal records value under key. An empty value unsets key.
	SetLocal(key, value string)
}

// RemoteFacts are the facts published by the peer.
type RemoteFacts interface {
	// GetRemote returns the value of key, or defaultValue if the peer
	// has not published it.
	GetRemote(key, defaultValue string) string

	// LookupRemote returns the value of key and whether it was published.
	LookupRemote(key string) (string, bool)
}

// Publisher writes facts for the peer to read.
type Publisher interface {
	// SetRemote publishes value under key. An empty value unpublishes key.
	SetRemote(key, value string)

	// UpdateRemote publishes every entry of settings as a single update.
	UpdateRemote(settings map[string]string)
}

// Conversation is the view of one relation conversation given to role
// handlers.
type Conversation interface {
	Key() Key
	LocalFacts() LocalFacts
	RemoteFacts() RemoteFacts
}

// PublishingConversation is a Conversation that may also publish facts.
type PublishingConversation interface {
	Conversation
	Publisher() Publisher
}
