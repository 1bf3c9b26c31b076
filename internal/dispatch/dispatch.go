// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package dispatch routes relation events to the role handler registered
// for each relation.
package dispatch

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/facts"
	"github.com/juju/hadoop-relations/internal/flags"
	"github.com/juju/hadoop-relations/internal/hook"
)

// Handler reacts to the events of one relation. Departed and Broken
// events are both delivered to Departed.
type Handler interface {
	// Scope reports how remote units map onto conversations.
	Scope() relation.Scope

	Joined(ctx context.Context, conv facts.Conversation) error
	Changed(ctx context.Context, conv facts.Conversation) error
	Departed(ctx context.Context, conv facts.Conversation) error
}

// Logger is the subset of loggo.Logger used by the dispatcher.
type Logger interface {
	Debugf(string, ...interface{})
	Warningf(string, ...interface{})
}

// Config holds the dependencies of a Dispatcher. Metrics and Logger are
// optional.
type Config struct {
	Store   facts.Store
	Flags   flags.Store
	Metrics *Collector
	Logger  Logger
}

// Validate returns an error if config cannot drive a Dispatcher.
func (config Config) Validate() error {
	if config.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if config.Flags == nil {
		return errors.NotValidf("nil Flags")
	}
	return nil
}

// Dispatcher delivers events to registered handlers, one at a time.
// It is not safe for concurrent use; callers serialise events, as the
// hookqueue worker does.
type Dispatcher struct {
	config   Config
	logger   Logger
	handlers map[string]Handler
}

// NewDispatcher returns a Dispatcher with no registered relations.
func NewDispatcher(config Config) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	logger := config.Logger
	if logger == nil {
		logger = loggo.GetLogger("hadoop.relations.dispatch")
	}
	return &Dispatcher{
		config:   config,
		logger:   logger,
		handlers: make(map[string]Handler),
	}, nil
}

// Register installs handler for the named relation.
func (d *Dispatcher) Register(relationName string, handler Handler) error {
	if relationName == "" {
		return errors.NotValidf("empty relation name")
	}
	if handler == nil {
		return errors.NotValidf("nil handler for relation %q", relationName)
	}
	if _, ok := d.handlers[relationName]; ok {
		return errors.AlreadyExistsf("handler for relation %q", relationName)
	}
	d.handlers[relationName] = handler
	return nil
}

// Handler returns the handler registered for the named relation.
func (d *Dispatcher) Handler(relationName string) (Handler, error) {
	handler, ok := d.handlers[relationName]
	if !ok {
		return nil, errors.NotFoundf("relation %q", relationName)
	}
	return handler, nil
}

// ConversationKey returns the key of the conversation an event for
// remoteUnit on the named relation belongs to.
func (d *Dispatcher) ConversationKey(relationName, remoteUnit string) (facts.Key, error) {
	handler, err := d.Handler(relationName)
	if err != nil {
		return facts.Key{}, errors.Trace(err)
	}
	return facts.Key{
		Relation: relationName,
		Scope:    handler.Scope().ConversationScope(remoteUnit),
	}, nil
}

// Dispatch delivers info to its relation's handler. Membership is
// updated before the handler runs, and local and published facts are
// saved only if it succeeds, so a failed event can be retried as a whole.
func (d *Dispatcher) Dispatch(ctx context.Context, info hook.Info) (err error) {
	if err := info.Validate(); err != nil {
		return errors.Trace(err)
	}
	handler, err := d.Handler(info.Relation)
	if err != nil {
		return errors.Trace(err)
	}
	if d.config.Metrics != nil {
		d.config.Metrics.observeEvent(info)
		defer func() {
			if err != nil {
				d.config.Metrics.observeFailure(info)
			}
			d.observeFlags(ctx)
		}()
	}
	defer errors.DeferredAnnotatef(&err, "running %s", info)

	key := facts.Key{
		Relation: info.Relation,
		Scope:    handler.Scope().ConversationScope(info.RemoteUnit),
	}
	d.logger.Debugf("running %s in conversation %s", info, key)

	store := d.config.Store
	if len(info.Settings) > 0 {
		if err := store.Receive(ctx, key, info.Settings); err != nil {
			return errors.Trace(err)
		}
	}
	switch info.Kind {
	case relation.Joined:
		err = store.Join(ctx, key, info.RemoteUnit)
	case relation.Departed:
		err = store.Depart(ctx, key, info.RemoteUnit)
	case relation.Broken:
		err = store.DepartAll(ctx, info.Relation)
	}
	if err != nil {
		return errors.Trace(err)
	}

	rec, err := store.Load(ctx, key)
	if err != nil {
		return errors.Trace(err)
	}
	switch {
	case info.Kind == relation.Joined:
		err = handler.Joined(ctx, rec)
	case info.Kind == relation.Changed:
		err = handler.Changed(ctx, rec)
	case info.Kind.IsDeparture():
		err = handler.Departed(ctx, rec)
	}
	if err != nil {
		return errors.Trace(err)
	}
	if rec.Dirty() {
		if err := store.Save(ctx, rec); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (d *Dispatcher) observeFlags(ctx context.Context) {
	names, err := d.config.Flags.List(ctx)
	if err != nil {
		d.logger.Warningf("cannot list flags for metrics: %v", err)
		return
	}
	d.config.Metrics.observeFlags(names)
}
