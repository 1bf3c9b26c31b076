// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/config"
	"github.com/juju/hadoop-relations/internal/dispatch"
	"github.com/juju/hadoop-relations/internal/interfaces/mapred"
	"github.com/juju/hadoop-relations/internal/interfaces/yarn"
	"github.com/juju/hadoop-relations/internal/spec"
	"github.com/juju/hadoop-relations/internal/sqlstore"
)

// requirer is a relation handler on the requiring side.
type requirer interface {
	dispatch.Handler
	SetLocalSpec(ctx context.Context, s spec.Spec) error
	LocalSpec(ctx context.Context) (spec.Spec, error)
	RemoteSpec(ctx context.Context) (spec.Spec, error)
}

// environ holds the engine a subcommand runs against.
type environ struct {
	config     *config.Config
	store      *sqlstore.Store
	registry   *prometheus.Registry
	dispatcher *dispatch.Dispatcher

	requirers map[string]requirer
	providers map[string]dispatch.Handler
}

// openEnviron opens the database at path and registers a handler for
// every configured relation.
func openEnviron(ctx context.Context, cfg *config.Config, path string) (_ *environ, err error) {
	store, err := sqlstore.Open(ctx, path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err != nil {
			_ = store.Close()
		}
	}()

	metrics := dispatch.NewMetricsCollector()
	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics); err != nil {
		return nil, errors.Annotate(err, "registering metrics")
	}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{
		Store:   store,
		Flags:   store,
		Metrics: metrics,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	env := &environ{
		config:     cfg,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		requirers:  make(map[string]requirer),
		providers:  make(map[string]dispatch.Handler),
	}
	for _, rel := range cfg.Relations {
		handler, err := env.newHandler(rel)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err := dispatcher.Register(rel.Name, handler); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return env, nil
}

func (e *environ) newHandler(rel config.Relation) (dispatch.Handler, error) {
	switch {
	case rel.Interface == config.Mapred && rel.Role == relation.Requires:
		h := mapred.NewRequires(rel.Name, e.store, e.store)
		e.requirers[rel.Name] = h
		return h, nil
	case rel.Interface == config.Mapred && rel.Role == relation.Provides:
		h := mapred.NewProvides(rel.Name, e.store, e.store)
		e.providers[rel.Name] = h
		return h, nil
	case rel.Interface == config.YARN && rel.Role == relation.Requires:
		h := yarn.NewRequires(rel.Name, e.store, e.store)
		e.requirers[rel.Name] = h
		return h, nil
	case rel.Interface == config.YARN && rel.Role == relation.Provides:
		h := yarn.NewProvides(rel.Name, e.store, e.store)
		e.providers[rel.Name] = h
		return h, nil
	}
	return nil, errors.NotSupportedf("%s %s relation %q", rel.Interface, rel.Role, rel.Name)
}

func (e *environ) requirer(name string) (requirer, error) {
	if r, ok := e.requirers[name]; ok {
		return r, nil
	}
	if _, ok := e.providers[name]; ok {
		return nil, errors.NotSupportedf("requirer operation on provided relation %q", name)
	}
	return nil, errors.NotFoundf("relation %q", name)
}

func (e *environ) provider(name string) (dispatch.Handler, error) {
	if p, ok := e.providers[name]; ok {
		return p, nil
	}
	if _, ok := e.requirers[name]; ok {
		return nil, errors.NotSupportedf("provider operation on required relation %q", name)
	}
	return nil, errors.NotFoundf("relation %q", name)
}

func (e *environ) writeMetrics(path string) error {
	return errors.Annotatef(prometheus.WriteToTextfile(path, e.registry), "writing metrics to %q", path)
}

// Close releases the database.
func (e *environ) Close() error {
	return e.store.Close()
}
