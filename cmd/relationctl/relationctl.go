// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"

	"github.com/juju/hadoop-relations/cmd"
	"github.com/juju/hadoop-relations/internal/config"
)

var logger = loggo.GetLogger("hadoop.relations.relationctl")

const relationctlDoc = `
relationctl delivers relation events to the mapred and yarn interface
handlers configured for this unit, and inspects the facts and flags they
leave behind. State is kept in a SQLite database between invocations.

Global options must precede the command name.
`

// relationctlCommand is the top level command. It loads the
// configuration and opens the engine before running a subcommand.
type relationctlCommand struct {
	*cmd.SuperCommand

	configFile  cmd.FileVar
	logLevel    string
	database    string
	metricsFile string

	env *environ
}

// NewRelationctlCommand returns the relationctl command with every
// subcommand registered.
func NewRelationctlCommand() cmd.Command {
	c := &relationctlCommand{}
	c.SuperCommand = cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:           "relationctl",
		Purpose:        "drive Hadoop relation handlers",
		Doc:            relationctlDoc,
		SetCommonFlags: c.setCommonFlags,
	})
	c.Register(&fireCommand{envCommand: envCommand{root: c}})
	c.Register(&receiveCommand{envCommand: envCommand{root: c}})
	c.Register(&replayCommand{envCommand: envCommand{root: c}})
	c.Register(&setSpecCommand{envCommand: envCommand{root: c}})
	c.Register(&publishCommand{envCommand: envCommand{root: c}})
	c.Register(&flagsCommand{envCommand: envCommand{root: c}})
	c.Register(&showCommand{envCommand: envCommand{root: c}})
	return c
}

func (c *relationctlCommand) setCommonFlags(f *gnuflag.FlagSet) {
	f.Var(&c.configFile, "config", "Path to the relation configuration file")
	f.StringVar(&c.logLevel, "log-level", "", "Override the configured log level")
	f.StringVar(&c.database, "database", "", "Override the configured database path")
	f.StringVar(&c.metricsFile, "metrics-file", "", "Write event metrics to this file in text exposition format")
}

func (c *relationctlCommand) loadConfig(ctx *cmd.Context) (*config.Config, error) {
	if !c.configFile.IsSet() {
		return config.Parse(nil)
	}
	data, err := c.configFile.Read(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "reading config")
	}
	cfg, err := config.Parse(data)
	return cfg, errors.Annotatef(err, "config %q", c.configFile.Path)
}

// Run is part of the cmd.Command interface.
func (c *relationctlCommand) Run(ctx *cmd.Context) (err error) {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := cmd.SetupLogging(ctx.Stderr, level); err != nil {
		return errors.Annotate(err, "setting up logging")
	}
	database := cfg.Database
	if c.database != "" {
		database = c.database
	}

	env, err := openEnviron(ctx, cfg, ctx.AbsPath(database))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := env.Close(); closeErr != nil && err == nil {
			err = errors.Annotate(closeErr, "closing database")
		}
	}()
	c.env = env

	err = c.SuperCommand.Run(ctx)
	if c.metricsFile != "" {
		if metricsErr := env.writeMetrics(ctx.AbsPath(c.metricsFile)); metricsErr != nil {
			if err == nil {
				return errors.Trace(metricsErr)
			}
			logger.Errorf("%v", metricsErr)
		}
	}
	return errors.Trace(err)
}

// envCommand gives subcommands access to the engine opened by the top
// level command.
type envCommand struct {
	root *relationctlCommand
}

func (c *envCommand) environ() *environ {
	return c.root.env
}

// SetFlags is part of the cmd.Command interface.
func (c *envCommand) SetFlags(*gnuflag.FlagSet) {}
