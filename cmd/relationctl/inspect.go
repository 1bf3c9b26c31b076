// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/hadoop-relations/cmd"
	"github.com/juju/hadoop-relations/internal/facts"
)

type flagsCommand struct {
	envCommand
	out cmd.Output
}

func (c *flagsCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "flags",
		Purpose: "list the flags currently set",
	}
}

func (c *flagsCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

func (c *flagsCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *flagsCommand) Run(ctx *cmd.Context) error {
	names, err := c.environ().store.List(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.out.Write(ctx, names.SortedValues()))
}

// conversationInfo is the printable form of a conversation.
type conversationInfo struct {
	Relation  string            `yaml:"relation" json:"relation"`
	Scope     string            `yaml:"scope,omitempty" json:"scope,omitempty"`
	Members   []string          `yaml:"members" json:"members"`
	Flags     []string          `yaml:"flags" json:"flags"`
	Local     map[string]string `yaml:"local,omitempty" json:"local,omitempty"`
	Remote    map[string]string `yaml:"remote,omitempty" json:"remote,omitempty"`
	Published map[string]string `yaml:"published,omitempty" json:"published,omitempty"`
}

type showCommand struct {
	envCommand
	out        cmd.Output
	relation   string
	remoteUnit string
}

func (c *showCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "show",
		Args:    "<relation> [<remote-unit>]",
		Purpose: "show the facts of a conversation",
		Doc: `
show prints the members, local, remote and published facts of the
conversation a remote unit belongs to, with the relation's flags.
Relations scoped per unit need the remote unit.
`,
	}
}

func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

func (c *showCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("expected a relation")
	}
	c.relation = args[0]
	if len(args) > 1 {
		c.remoteUnit = args[1]
	}
	return cmd.CheckEmpty(args[min(len(args), 2):])
}

func (c *showCommand) Run(ctx *cmd.Context) error {
	env := c.environ()
	key, err := env.dispatcher.ConversationKey(c.relation, c.remoteUnit)
	if err != nil {
		return errors.Trace(err)
	}
	info, err := describe(ctx, env, key)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.out.Write(ctx, info))
}

func describe(ctx *cmd.Context, env *environ, key facts.Key) (conversationInfo, error) {
	rec, err := env.store.Load(ctx, key)
	if err != nil {
		return conversationInfo{}, errors.Trace(err)
	}
	members, err := env.store.Members(ctx, key)
	if err != nil {
		return conversationInfo{}, errors.Trace(err)
	}
	all, err := env.store.List(ctx)
	if err != nil {
		return conversationInfo{}, errors.Trace(err)
	}
	relationFlags := []string{}
	for _, name := range all.SortedValues() {
		if strings.HasPrefix(name, key.Relation+".") {
			relationFlags = append(relationFlags, name)
		}
	}
	return conversationInfo{
		Relation:  key.Relation,
		Scope:     key.Scope,
		Members:   members.SortedValues(),
		Flags:     relationFlags,
		Local:     rec.Local(),
		Remote:    rec.Remote(),
		Published: rec.Published(),
	}, nil
}
