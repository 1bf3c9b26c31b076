// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"strconv"

	"github.com/juju/errors"

	"github.com/juju/hadoop-relations/cmd"
	"github.com/juju/hadoop-relations/internal/spec"
)

type setSpecCommand struct {
	envCommand
	relation string
	spec     spec.Spec
}

func (c *setSpecCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "set-spec",
		Args:    "<relation> <json>",
		Purpose: "record the spec this unit requires",
		Doc: `
set-spec stores the JSON object the remote side's published spec must
match. The value null clears it. Flags are recomputed on the next
changed event.
`,
	}
}

func (c *setSpecCommand) Init(args []string) error {
	if len(args) < 2 {
		return errors.New("expected a relation and a JSON spec")
	}
	if err := cmd.CheckEmpty(args[2:]); err != nil {
		return errors.Trace(err)
	}
	s, err := spec.Parse(args[1], true)
	if err != nil {
		return errors.Trace(err)
	}
	c.relation, c.spec = args[0], s
	return nil
}

func (c *setSpecCommand) Run(ctx *cmd.Context) error {
	r, err := c.environ().requirer(c.relation)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(r.SetLocalSpec(ctx, c.spec))
}

// The publishing operations a provider may support.
type (
	specSender interface {
		SendSpec(ctx context.Context, s spec.Spec) error
	}
	portsSender interface {
		SendPorts(ctx context.Context, port, historyHTTP, historyIPC int) error
	}
	readySender interface {
		SendReady(ctx context.Context, ready bool) error
	}
	managersSender interface {
		SendResourceManagers(ctx context.Context, hosts []string) error
	}
	hostsSender interface {
		SendHostsMap(ctx context.Context, hosts map[string]string) error
	}
	addressSender interface {
		SendAddress(ctx context.Context, addr string) error
	}
)

const publishDoc = `
publish sends facts to every active conversation of a provided relation.

    spec <json>                   both interfaces
    ports <port> <http> <ipc>     both interfaces
    ready <true|false>            both interfaces
    managers <host>...            mapred
    hosts <address>=<name>...     mapred
    address <address>             yarn
`

type publishCommand struct {
	envCommand
	relation string
	what     string
	send     func(ctx context.Context, provider any) (bool, error)
}

func (c *publishCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "publish",
		Args:    "<relation> <what> [<args>...]",
		Purpose: "publish provider facts to related units",
		Doc:     publishDoc,
	}
}

func (c *publishCommand) Init(args []string) error {
	if len(args) < 2 {
		return errors.New("expected a relation and what to publish")
	}
	c.relation, c.what = args[0], args[1]
	values := args[2:]
	switch c.what {
	case "spec":
		if len(values) != 1 {
			return errors.New("spec expects one JSON argument")
		}
		s, err := spec.Parse(values[0], true)
		if err != nil {
			return errors.Trace(err)
		}
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(specSender)
			if !ok {
				return false, nil
			}
			return true, sender.SendSpec(ctx, s)
		}
	case "ports":
		if len(values) != 3 {
			return errors.New("ports expects <port> <http> <ipc>")
		}
		ports := make([]int, 3)
		for i, v := range values {
			port, err := strconv.Atoi(v)
			if err != nil || port <= 0 || port > 65535 {
				return errors.NotValidf("port %q", v)
			}
			ports[i] = port
		}
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(portsSender)
			if !ok {
				return false, nil
			}
			return true, sender.SendPorts(ctx, ports[0], ports[1], ports[2])
		}
	case "ready":
		if len(values) != 1 {
			return errors.New("ready expects true or false")
		}
		ready, err := strconv.ParseBool(values[0])
		if err != nil {
			return errors.NotValidf("ready value %q", values[0])
		}
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(readySender)
			if !ok {
				return false, nil
			}
			return true, sender.SendReady(ctx, ready)
		}
	case "managers":
		hosts := append([]string(nil), values...)
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(managersSender)
			if !ok {
				return false, nil
			}
			return true, sender.SendResourceManagers(ctx, hosts)
		}
	case "hosts":
		hosts, err := parseKeyValues(values)
		if err != nil {
			return errors.Trace(err)
		}
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(hostsSender)
			if !ok {
				return false, nil
			}
			return true, sender.SendHostsMap(ctx, hosts)
		}
	case "address":
		if len(values) != 1 {
			return errors.New("address expects one argument")
		}
		addr := values[0]
		c.send = func(ctx context.Context, p any) (bool, error) {
			sender, ok := p.(addressSender)
			if !ok {
				return false, nil
			}
			return true, sender.SendAddress(ctx, addr)
		}
	default:
		return errors.NotValidf("publish target %q", c.what)
	}
	return nil
}

func (c *publishCommand) Run(ctx *cmd.Context) error {
	p, err := c.environ().provider(c.relation)
	if err != nil {
		return errors.Trace(err)
	}
	supported, err := c.send(ctx, p)
	if !supported {
		return errors.NotSupportedf("publishing %s on relation %q", c.what, c.relation)
	}
	return errors.Annotatef(err, "publishing %s on relation %q", c.what, c.relation)
}
