// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hook defines the relation events delivered to role handlers.
package hook

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/names/v5"

	"github.com/juju/hadoop-relations/core/relation"
)

// Info holds details of one relation event.
type Info struct {
	Kind relation.Kind `yaml:"kind"`

	// Relation is the name of the relation the event concerns.
	Relation string `yaml:"relation"`

	// RemoteUnit is the name of the unit that triggered the event. It is
	// required for every kind except Broken.
	RemoteUnit string `yaml:"remote-unit,omitempty"`

	// Settings, if set, are facts the remote unit published along with a
	// Changed event. They are merged into the conversation before the
	// event is handled.
	Settings map[string]string `yaml:"settings,omitempty"`
}

// Validate returns an error if the info is not valid.
func (hi Info) Validate() error {
	if err := hi.Kind.Validate(); err != nil {
		return errors.Trace(err)
	}
	if hi.Relation == "" {
		return errors.NotValidf("%q event with no relation", hi.Kind)
	}
	if hi.RemoteUnit == "" {
		if hi.Kind == relation.Broken {
			return nil
		}
		return errors.NotValidf("%q event without remote unit", hi.Kind)
	}
	if !names.IsValidUnit(hi.RemoteUnit) {
		return errors.NotValidf("remote unit name %q", hi.RemoteUnit)
	}
	if len(hi.Settings) > 0 && hi.Kind != relation.Changed {
		return errors.NotValidf("settings on %q event", hi.Kind)
	}
	return nil
}

// RemoteApplication returns the application of the remote unit, or the
// empty string if there is none.
func (hi Info) RemoteApplication() string {
	if hi.RemoteUnit == "" {
		return ""
	}
	app, err := names.UnitApplication(hi.RemoteUnit)
	if err != nil {
		return ""
	}
	return app
}

// String implements fmt.Stringer.
func (hi Info) String() string {
	if hi.RemoteUnit == "" {
		return hi.Kind.HookName(hi.Relation)
	}
	return fmt.Sprintf("%s (%s)", hi.Kind.HookName(hi.Relation), hi.RemoteUnit)
}
