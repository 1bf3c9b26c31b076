// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package reconcile turns the facts gathered from a relation
// conversation into the derived spec.mismatch and ready flags.
//
// Every call recomputes the outcome from scratch: applying the same
// snapshot twice leaves the flags exactly as one application would.
package reconcile

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/kr/pretty"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/flags"
	"github.com/juju/hadoop-relations/internal/spec"
)

var logger = loggo.GetLogger("hadoop.relations.reconcile")

// Requirement is one fact the peer must publish before the relation is
// available.
type Requirement struct {
	Name    string
	Present bool
}

// Snapshot holds everything a requirer has read for one conversation.
type Snapshot struct {
	// LocalSpec is the spec this side set; nil if unset.
	LocalSpec spec.Spec

	// RemoteSpec is the spec the peer published; nil if unpublished.
	RemoteSpec spec.Spec

	// Requirements are the relation specific completeness facts.
	Requirements []Requirement

	// Live is the liveness the peer reports.
	Live bool
}

// Outcome is the decision reached for a Snapshot.
type Outcome struct {
	// Available is true when the peer published a spec and every
	// requirement.
	Available bool

	// SpecMatches is true when the remote spec satisfies the local one.
	SpecMatches bool

	// Mismatch is the value for the spec.mismatch flag.
	Mismatch bool

	// Ready is the value for the ready flag.
	Ready bool

	// Missing names the unmet requirements, in order.
	Missing []string
}

// Evaluate decides the outcome for s. Mismatch and Ready are never both
// true.
func Evaluate(s Snapshot) Outcome {
	var missing []string
	if s.RemoteSpec == nil {
		missing = append(missing, spec.Key)
	}
	for _, req := range s.Requirements {
		if !req.Present {
			missing = append(missing, req.Name)
		}
	}
	available := len(missing) == 0
	matches := spec.Match(s.LocalSpec, s.RemoteSpec)
	return Outcome{
		Available:   available,
		SpecMatches: matches,
		Mismatch:    available && !matches,
		Ready:       available && matches && s.Live,
		Missing:     missing,
	}
}

// Apply toggles the derived flags of the named relation to match o.
func Apply(ctx context.Context, store flags.Store, relationName string, o Outcome) error {
	if err := store.Toggle(ctx, relation.FlagName(relationName, relation.SpecMismatch), o.Mismatch); err != nil {
		return errors.Annotatef(err, "toggling %s spec mismatch", relationName)
	}
	if err := store.Toggle(ctx, relation.FlagName(relationName, relation.Ready), o.Ready); err != nil {
		return errors.Annotatef(err, "toggling %s ready", relationName)
	}
	return nil
}

// Run evaluates s and applies the outcome to the named relation's flags.
func Run(ctx context.Context, store flags.Store, relationName string, s Snapshot) (Outcome, error) {
	if logger.IsTraceEnabled() {
		logger.Tracef("reconciling %s: %# v", relationName, pretty.Formatter(s))
	}
	o := Evaluate(s)
	if len(o.Missing) > 0 {
		logger.Debugf("%s not yet available, waiting for %v", relationName, o.Missing)
	}
	logger.Debugf("%s available=%t spec-matches=%t ready=%t", relationName, o.Available, o.SpecMatches, o.Ready)
	if err := Apply(ctx, store, relationName, o); err != nil {
		return o, errors.Trace(err)
	}
	return o, nil
}

// Clear removes every flag a requirer derives for the named relation.
func Clear(ctx context.Context, store flags.Store, relationName string) error {
	for _, suffix := range []string{relation.Related, relation.SpecMismatch, relation.Ready} {
		if err := store.Remove(ctx, relation.FlagName(relationName, suffix)); err != nil {
			return errors.Annotatef(err, "clearing %s", relation.FlagName(relationName, suffix))
		}
	}
	return nil
}

// Present reports whether a fact value counts as published.
func Present(value string) bool {
	return value != ""
}
