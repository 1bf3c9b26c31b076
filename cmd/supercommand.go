// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("hadoop.relations.cmd")

// SuperCommandParams provides a way to construct a SuperCommand with
// its optional fields.
type SuperCommandParams struct {
	Name    string
	Purpose string
	Doc     string

	// SetCommonFlags, if set, registers flags that precede the
	// subcommand name.
	SetCommonFlags func(f *gnuflag.FlagSet)
}

// SuperCommand is a Command that selects a subcommand to run from its
// first positional argument.
type SuperCommand struct {
	params  SuperCommandParams
	subcmds map[string]Command
	subcmd  Command
}

// NewSuperCommand returns a SuperCommand with no subcommands.
func NewSuperCommand(params SuperCommandParams) *SuperCommand {
	return &SuperCommand{
		params:  params,
		subcmds: make(map[string]Command),
	}
}

// Register makes a subcommand available.
func (c *SuperCommand) Register(subcmd Command) {
	name := subcmd.Info().Name
	if _, found := c.subcmds[name]; found {
		panic(fmt.Sprintf("command already registered: %q", name))
	}
	c.subcmds[name] = subcmd
}

// Info is part of the Command interface.
func (c *SuperCommand) Info() *Info {
	names := make([]string, 0, len(c.subcmds))
	for name := range c.subcmds {
		names = append(names, name)
	}
	sort.Strings(names)
	var doc strings.Builder
	doc.WriteString(c.params.Doc)
	doc.WriteString("\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&doc, "    %-10s - %s\n", name, c.subcmds[name].Info().Purpose)
	}
	return &Info{
		Name:    c.params.Name,
		Args:    "<command> ...",
		Purpose: c.params.Purpose,
		Doc:     doc.String(),
	}
}

// SetFlags is part of the Command interface.
func (c *SuperCommand) SetFlags(f *gnuflag.FlagSet) {
	if c.params.SetCommonFlags != nil {
		c.params.SetCommonFlags(f)
	}
}

// Init is part of the Command interface.
func (c *SuperCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no command specified")
	}
	subcmd, found := c.subcmds[args[0]]
	if !found {
		return errors.Errorf("unrecognized command: %s %s", c.params.Name, args[0])
	}
	c.subcmd = subcmd
	return errors.Annotatef(Parse(subcmd, args[1:]), "%s", args[0])
}

// Run is part of the Command interface.
func (c *SuperCommand) Run(ctx *Context) error {
	if c.subcmd == nil {
		return errors.New("no command selected")
	}
	logger.Debugf("running %s %s", c.params.Name, c.subcmd.Info().Name)
	return c.subcmd.Run(ctx)
}
