// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package facts

import (
	"context"
	"sort"
	"sync"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Store persists conversations and their membership.
type Store interface {
	// Load returns a snapshot of the conversation identified by key.
	// Conversations that have never been seen load as empty records.
	Load(ctx context.Context, key Key) (*Record, error)

	// Save persists the writes buffered in rec.
	Save(ctx context.Context, rec *Record) error

	// Receive merges facts published by the peer into the remote view of
	// the conversation. Empty values unset the corresponding key.
	Receive(ctx context.Context, key Key, settings map[string]string) error

	// Join records remoteUnit as a member of the conversation.
	Join(ctx context.Context, key Key, remoteUnit string) error

	// Depart removes remoteUnit from the conversation. An empty
	// remoteUnit removes every member. Facts are kept.
	Depart(ctx context.Context, key Key, remoteUnit string) error

	// DepartAll removes every member from every conversation of the
	// named relation. Facts are kept.
	DepartAll(ctx context.Context, relationName string) error

	// Members returns the remote units in the conversation.
	Members(ctx context.Context, key Key) (set.Strings, error)

	// Active returns the keys of the named relation's conversations that
	// have at least one member, ordered by scope.
	Active(ctx context.Context, relationName string) ([]Key, error)
}

type conversation struct {
	local     Settings
	remote    Settings
	published Settings
	members   set.Strings
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[Key]*conversation
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[Key]*conversation)}
}

func (s *MemoryStore) get(key Key) *conversation {
	conv, ok := s.conversations[key]
	if !ok {
		conv = &conversation{
			local:     Settings{},
			remote:    Settings{},
			published: Settings{},
			members:   set.NewStrings(),
		}
		s.conversations[key] = conv
	}
	return conv
}

// Load is part of the Store interface.
func (s *MemoryStore) Load(_ context.Context, key Key) (*Record, error) {
	if err := validateKey(key); err != nil {
		return nil, errors.Trace(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.get(key)
	return NewRecord(key, conv.local, conv.remote, conv.published), nil
}

// Save is part of the Store interface.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if err := validateKey(rec.Key()); err != nil {
		return errors.Trace(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.get(rec.Key())
	conv.local.Merge(rec.LocalChanges())
	conv.published.Merge(rec.PublishedChanges())
	rec.MarkSaved()
	return nil
}

// Receive is part of the Store interface.
func (s *MemoryStore) Receive(_ context.Context, key Key, settings map[string]string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(key).remote.Merge(settings)
	return nil
}

// Join is part of the Store interface.
func (s *MemoryStore) Join(_ context.Context, key Key, remoteUnit string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	if remoteUnit == "" {
		return errors.NotValidf("empty remote unit")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(key).members.Add(remoteUnit)
	return nil
}

// Depart is part of the Store interface.
func (s *MemoryStore) Depart(_ context.Context, key Key, remoteUnit string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.get(key)
	if remoteUnit == "" {
		conv.members = set.NewStrings()
		return nil
	}
	conv.members.Remove(remoteUnit)
	return nil
}

// DepartAll is part of the Store interface.
func (s *MemoryStore) DepartAll(_ context.Context, relationName string) error {
	if relationName == "" {
		return errors.NotValidf("empty relation name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, conv := range s.conversations {
		if key.Relation == relationName {
			conv.members = set.NewStrings()
		}
	}
	return nil
}

// Members is part of the Store interface.
func (s *MemoryStore) Members(_ context.Context, key Key) (set.Strings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[key]
	if !ok {
		return set.NewStrings(), nil
	}
	return set.NewStrings(conv.members.Values()...), nil
}

// Active is part of the Store interface.
func (s *MemoryStore) Active(_ context.Context, relationName string) ([]Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []Key
	for key, conv := range s.conversations {
		if key.Relation == relationName && !conv.members.IsEmpty() {
			keys = append(keys, key)
		}
	}
	SortKeys(keys)
	return keys, nil
}

// SortKeys orders keys by relation, then scope.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Relation != keys[j].Relation {
			return keys[i].Relation < keys[j].Relation
		}
		return keys[i].Scope < keys[j].Scope
	})
}

func validateKey(key Key) error {
	if key.Relation == "" {
		return errors.NotValidf("conversation key with empty relation")
	}
	return nil
}
