// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/juju/gnuflag"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/cmd"
)

// Context returns a command context rooted in a fresh directory, with
// buffered output streams and no input.
func Context(c *gc.C) *cmd.Context {
	return &cmd.Context{
		Context: context.Background(),
		Dir:     c.MkDir(),
		Stdin:   strings.NewReader(""),
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}
}

// Stdout returns what was written to a Context's stdout.
func Stdout(ctx *cmd.Context) string {
	return bufferString(ctx.Stdout)
}

// Stderr returns what was written to a Context's stderr.
func Stderr(ctx *cmd.Context) string {
	return bufferString(ctx.Stderr)
}

func bufferString(stream io.Writer) string {
	return stream.(*bytes.Buffer).String()
}

// RunCommandInDir parses args on com and runs it in ctx.
func RunCommandInDir(ctx *cmd.Context, com cmd.Command, args ...string) error {
	if err := cmd.Parse(com, args); err != nil {
		return err
	}
	return com.Run(ctx)
}

// RunCommand runs com with args in a fresh context and returns that
// context for inspection.
func RunCommand(c *gc.C, com cmd.Command, args ...string) (*cmd.Context, error) {
	ctx := Context(c)
	return ctx, RunCommandInDir(ctx, com, args...)
}

// HelpText returns a command's formatted help text.
func HelpText(com cmd.Command) string {
	f := gnuflag.NewFlagSet(com.Info().Name, gnuflag.ContinueOnError)
	com.SetFlags(f)
	return string(com.Info().Help(f))
}
