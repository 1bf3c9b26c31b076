// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package relation

import (
	"strings"

	"github.com/juju/errors"
)

// Kind identifies a relation event delivered to a role handler.
type Kind string

const (
	// Joined is delivered once per remote unit when it enters the relation.
	Joined Kind = "joined"

	// Changed is delivered whenever the remote side publishes new facts.
	Changed Kind = "changed"

	// Departed is delivered when a remote unit leaves the relation.
	Departed Kind = "departed"

	// Broken is delivered when the relation itself is removed.
	Broken Kind = "broken"
)

var kinds = []Kind{Joined, Changed, Departed, Broken}

// Validate returns an error if k is not a known event kind.
func (k Kind) Validate() error {
	for _, known := range kinds {
		if k == known {
			return nil
		}
	}
	return errors.NotValidf("relation event kind %q", string(k))
}

// IsDeparture reports whether k ends a remote unit's participation.
// Departed and Broken are handled identically by role handlers.
func (k Kind) IsDeparture() bool {
	return k == Departed || k == Broken
}

// HookName returns the charm hook name for k on the named relation,
// e.g. "mapred-relation-changed".
func (k Kind) HookName(relationName string) string {
	return relationName + "-relation-" + string(k)
}

// ParseKind parses either a bare kind ("changed") or a full hook name
// ("mapred-relation-changed").
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if s == string(k) || hasHookSuffix(s, k) {
			return k, nil
		}
	}
	return "", errors.NotValidf("relation event kind %q", s)
}

func hasHookSuffix(s string, k Kind) bool {
	suffix := "-relation-" + string(k)
	return len(s) > len(suffix) && strings.HasSuffix(s, suffix)
}
