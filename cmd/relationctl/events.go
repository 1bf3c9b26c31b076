// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"gopkg.in/yaml.v3"

	"github.com/juju/hadoop-relations/cmd"
	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/hook"
	"github.com/juju/hadoop-relations/internal/worker/hookqueue"
)

const fireDoc = `
fire delivers a single relation event. The kind may be given bare
("changed") or as a hook name ("mapred-relation-changed"). A remote unit
is required for every kind except broken.

With no arguments the event is read from the hook environment
(JUJU_HOOK_NAME, JUJU_RELATION, JUJU_REMOTE_UNIT), so a charm's relation
hooks can simply run "relationctl fire".
`

type fireCommand struct {
	envCommand
	info hook.Info
}

func (c *fireCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "fire",
		Args:    "[<relation> <kind> [<remote-unit>]]",
		Purpose: "deliver a relation event",
		Doc:     fireDoc,
	}
}

func (c *fireCommand) Init(args []string) error {
	if len(args) == 0 {
		info, err := hook.FromEnvironment(os.Getenv)
		if err != nil {
			return errors.Annotate(err, "reading hook environment")
		}
		c.info = info
		return nil
	}
	if len(args) < 2 {
		return errors.New("expected a relation and an event kind")
	}
	if len(args) > 3 {
		return cmd.CheckEmpty(args[3:])
	}
	kind, err := relation.ParseKind(args[1])
	if err != nil {
		return errors.Trace(err)
	}
	c.info = hook.Info{Kind: kind, Relation: args[0]}
	if len(args) == 3 {
		c.info.RemoteUnit = args[2]
	}
	return errors.Trace(c.info.Validate())
}

func (c *fireCommand) Run(ctx *cmd.Context) error {
	return errors.Trace(c.environ().dispatcher.Dispatch(ctx, c.info))
}

const receiveDoc = `
receive delivers a changed event carrying the settings the remote unit
published. An empty value unsets the key.
`

type receiveCommand struct {
	envCommand
	info hook.Info
}

func (c *receiveCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "receive",
		Args:    "<relation> <remote-unit> <key>=<value> ...",
		Purpose: "ingest facts published by a remote unit",
		Doc:     receiveDoc,
	}
}

func (c *receiveCommand) Init(args []string) error {
	if len(args) < 2 {
		return errors.New("expected a relation and a remote unit")
	}
	if !names.IsValidUnit(args[1]) {
		return errors.NotValidf("remote unit %q", args[1])
	}
	settings, err := parseKeyValues(args[2:])
	if err != nil {
		return errors.Trace(err)
	}
	c.info = hook.Info{
		Kind:       relation.Changed,
		Relation:   args[0],
		RemoteUnit: args[1],
		Settings:   settings,
	}
	return nil
}

func (c *receiveCommand) Run(ctx *cmd.Context) error {
	return errors.Trace(c.environ().dispatcher.Dispatch(ctx, c.info))
}

// parseKeyValues parses "key=value" arguments. The value may be empty.
func parseKeyValues(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.NotValidf("setting %q, expected key=value", arg)
		}
		result[key] = value
	}
	return result, nil
}

const replayDoc = `
replay reads a YAML list of events and runs them in order through the
hook queue. Each entry has a kind, a relation, and, as needed, a
remote-unit and settings. A failed event is reported and the remaining
events still run.

Example:

    - kind: joined
      relation: mapred
      remote-unit: namenode/0
    - kind: changed
      relation: mapred
      remote-unit: namenode/0
      settings:
        port: "8032"
`

type replayCommand struct {
	envCommand
	file cmd.FileVar
}

func (c *replayCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "replay",
		Args:    "<events.yaml>",
		Purpose: "run a recorded sequence of relation events",
		Doc:     replayDoc,
	}
}

func (c *replayCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("expected an events file")
	}
	if err := c.file.Set(args[0]); err != nil {
		return errors.Trace(err)
	}
	return cmd.CheckEmpty(args[1:])
}

// readEvents loads and normalises the recorded events.
func (c *replayCommand) readEvents(ctx *cmd.Context) ([]hook.Info, error) {
	data, err := c.file.Read(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var events []hook.Info
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, errors.Annotatef(err, "parsing %q", c.file.Path)
	}
	for i, info := range events {
		kind, err := relation.ParseKind(string(info.Kind))
		if err != nil {
			return nil, errors.Annotatef(err, "event %d", i)
		}
		events[i].Kind = kind
		if err := events[i].Validate(); err != nil {
			return nil, errors.Annotatef(err, "event %d", i)
		}
	}
	return events, nil
}

func (c *replayCommand) Run(ctx *cmd.Context) error {
	events, err := c.readEvents(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	queue := make(chan hook.Info)
	results := make(chan hookqueue.Result)
	w, err := hookqueue.NewWorker(hookqueue.Config{
		Dispatcher: c.environ().dispatcher,
		Events:     queue,
		Results:    results,
	})
	if err != nil {
		return errors.Trace(err)
	}
	go func() {
		defer close(queue)
		for _, info := range events {
			select {
			case queue <- info:
			case <-ctx.Done():
				return
			}
		}
	}()

	failed := 0
	for range events {
		var result hookqueue.Result
		select {
		case result = <-results:
		case <-ctx.Done():
			w.Kill()
			_ = w.Wait()
			return errors.Trace(ctx.Err())
		}
		if result.Err != nil {
			failed++
			fmt.Fprintf(ctx.Stdout, "failed %s: %v\n", result.Info, result.Err)
			continue
		}
		fmt.Fprintf(ctx.Stdout, "ok %s\n", result.Info)
	}
	if err := w.Wait(); err != nil {
		return errors.Trace(err)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d events failed", failed, len(events))
	}
	return nil
}
