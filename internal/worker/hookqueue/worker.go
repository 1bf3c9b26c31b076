// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hookqueue provides a worker that feeds relation events to a
// dispatcher strictly one at a time.
package hookqueue

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/worker/v4"
	"gopkg.in/tomb.v2"

	"github.com/juju/hadoop-relations/internal/hook"
)

var logger = loggo.GetLogger("hadoop.relations.worker.hookqueue")

// Dispatcher runs a single relation event to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, info hook.Info) error
}

// Result reports how one event was handled.
type Result struct {
	Info hook.Info
	Err  error
}

// Config defines the operation of a Worker.
type Config struct {
	// Dispatcher handles each event.
	Dispatcher Dispatcher

	// Events delivers the events to run. The worker stops cleanly when
	// it is closed.
	Events <-chan hook.Info

	// Results, if set, receives the outcome of every event.
	Results chan<- Result
}

// Validate returns an error if config cannot drive a Worker.
func (config Config) Validate() error {
	if config.Dispatcher == nil {
		return errors.NotValidf("nil Dispatcher")
	}
	if config.Events == nil {
		return errors.NotValidf("nil Events")
	}
	return nil
}

// Worker runs events from its config until the event channel closes or
// it is killed. A failed event is logged and reported, and does not
// stop the worker; the next event recomputes everything from the
// stored facts.
type Worker struct {
	tomb   tomb.Tomb
	config Config
}

var _ worker.Worker = (*Worker)(nil)

// NewWorker returns a Worker backed by config, or an error.
func NewWorker(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &Worker{config: config}
	w.tomb.Go(w.loop)
	return w, nil
}

// Kill implements worker.Worker.
func (w *Worker) Kill() {
	w.tomb.Kill(nil)
}

// Wait implements worker.Worker.
func (w *Worker) Wait() error {
	return w.tomb.Wait()
}

func (w *Worker) loop() error {
	ctx := w.tomb.Context(context.Background())
	for {
		select {
		case <-w.tomb.Dying():
			return tomb.ErrDying
		case info, ok := <-w.config.Events:
			if !ok {
				logger.Debugf("event channel closed")
				return nil
			}
			err := w.config.Dispatcher.Dispatch(ctx, info)
			if err != nil {
				logger.Errorf("%v", err)
			}
			if err := w.report(Result{Info: info, Err: err}); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) report(result Result) error {
	if w.config.Results == nil {
		return nil
	}
	select {
	case <-w.tomb.Dying():
		return tomb.ErrDying
	case w.config.Results <- result:
		return nil
	}
}
