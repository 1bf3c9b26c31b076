// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package facts

import (
	"maps"
)

// Settings is a flat map of relation facts.
type Settings map[string]string

// Get returns the value of key, or defaultValue if key is unset.
func (s Settings) Get(key, defaultValue string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return defaultValue
}

// Record is a loaded snapshot of a conversation. Writes are buffered in
// the record and only reach the store when it is saved, so a failed
// event leaves the stored facts untouched.
type Record struct {
	key       Key
	local     Settings
	remote    Settings
	published Settings

	localChanges     Settings
	publishedChanges Settings
}

var _ PublishingConversation = (*Record)(nil)

// NewRecord returns a Record for key holding copies of the supplied
// settings.
func NewRecord(key Key, local, remote, published map[string]string) *Record {
	return &Record{
		key:              key,
		local:            copySettings(local),
		remote:           copySettings(remote),
		published:        copySettings(published),
		localChanges:     Settings{},
		publishedChanges: Settings{},
	}
}

// Key is part of the Conversation interface.
func (r *Record) Key() Key {
	return r.key
}

// LocalFacts is part of the Conversation interface.
func (r *Record) LocalFacts() LocalFacts {
	return r
}

// RemoteFacts is part of the Conversation interface.
func (r *Record) RemoteFacts() RemoteFacts {
	return r
}

// Publisher is part of the PublishingConversation interface.
func (r *Record) Publisher() Publisher {
	return r
}

// GetLocal is part of the LocalFacts interface.
func (r *Record) GetLocal(key, defaultValue string) string {
	return r.local.Get(key, defaultValue)
}

// SetLocal is part of the LocalFacts interface.
func (r *Record) SetLocal(key, value string) {
	apply(r.local, key, value)
	r.localChanges[key] = value
}

// GetRemote is part of the RemoteFacts interface.
func (r *Record) GetRemote(key, defaultValue string) string {
	return r.remote.Get(key, defaultValue)
}

// LookupRemote is part of the RemoteFacts interface.
func (r *Record) LookupRemote(key string) (string, bool) {
	v, ok := r.remote[key]
	return v, ok
}

// SetRemote is part of the Publisher interface.
func (r *Record) SetRemote(key, value string) {
	apply(r.published, key, value)
	r.publishedChanges[key] = value
}

// UpdateRemote is part of the Publisher interface.
func (r *Record) UpdateRemote(settings map[string]string) {
	for key, value := range settings {
		r.SetRemote(key, value)
	}
}

// Local returns a copy of the local facts.
func (r *Record) Local() Settings {
	return copySettings(r.local)
}

// Remote returns a copy of the facts published by the peer.
func (r *Record) Remote() Settings {
	return copySettings(r.remote)
}

// Published returns a copy of the facts this side publishes.
func (r *Record) Published() Settings {
	return copySettings(r.published)
}

// LocalChanges returns the local writes made since the record was
// loaded. An empty value means the key was unset.
func (r *Record) LocalChanges() Settings {
	return copySettings(r.localChanges)
}

// PublishedChanges returns the published writes made since the record
// was loaded. An empty value means the key was unpublished.
func (r *Record) PublishedChanges() Settings {
	return copySettings(r.publishedChanges)
}

// Dirty reports whether the record holds unsaved writes.
func (r *Record) Dirty() bool {
	return len(r.localChanges) > 0 || len(r.publishedChanges) > 0
}

// MarkSaved forgets the buffered writes once a store has persisted them.
func (r *Record) MarkSaved() {
	r.localChanges = Settings{}
	r.publishedChanges = Settings{}
}

func apply(s Settings, key, value string) {
	if value == "" {
		delete(s, key)
		return
	}
	s[key] = value
}

// Merge applies changes to s, removing keys whose value is empty.
func (s Settings) Merge(changes map[string]string) {
	for key, value := range changes {
		apply(s, key, value)
	}
}

func copySettings(in map[string]string) Settings {
	out := make(Settings, len(in))
	maps.Copy(out, in)
	return out
}
