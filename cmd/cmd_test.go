// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd_test

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/gnuflag"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/cmd"
	cmdtesting "github.com/juju/hadoop-relations/cmd/testing"
)

type CmdSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&CmdSuite{})

func (s *CmdSuite) TestMainSuccess(c *gc.C) {
	ctx := cmdtesting.Context(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "hello"})
	c.Check(code, gc.Equals, 0)
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, "hello\n")
}

func (s *CmdSuite) TestMainRunError(c *gc.C) {
	ctx := cmdtesting.Context(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "error"})
	c.Check(code, gc.Equals, 1)
	c.Check(cmdtesting.Stderr(ctx), gc.Equals, "ERROR BAM!\n")
}

func (s *CmdSuite) TestMainSilentError(c *gc.C) {
	ctx := cmdtesting.Context(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "silent-error"})
	c.Check(code, gc.Equals, 1)
	c.Check(cmdtesting.Stderr(ctx), gc.Equals, "")
}

func (s *CmdSuite) TestMainBadArgs(c *gc.C) {
	ctx := cmdtesting.Context(c)
	com := &TestCommand{Name: "verb"}
	code := cmd.Main(com, ctx, []string{"extra"})
	c.Check(code, gc.Equals, 2)
	c.Check(cmdtesting.Stderr(ctx), gc.Equals, "ERROR unrecognized args: [\"extra\"]\n")
	c.Check(com.Ran, jc.IsFalse)
}

func (s *CmdSuite) TestMainHelp(c *gc.C) {
	ctx := cmdtesting.Context(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--help"})
	c.Check(code, gc.Equals, 0)
	c.Check(cmdtesting.Stderr(ctx), gc.Matches, `(?s)usage: verb <something>
purpose: verb the relation

options:
.*option-doc
.*
verb-doc
`)
}

func (s *CmdSuite) TestMinimalHelp(c *gc.C) {
	c.Check(cmdtesting.HelpText(&TestCommand{Name: "verb", Minimal: true}), gc.Equals, "usage: verb\n")
}

func (s *CmdSuite) TestEcho(c *gc.C) {
	ctx := cmdtesting.Context(c)
	ctx.Stdin = strings.NewReader("hello world")
	err := cmdtesting.RunCommandInDir(ctx, &TestCommand{Name: "verb"}, "--option", "echo")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, "hello world")
}

func (s *CmdSuite) TestAbsPath(c *gc.C) {
	ctx := &cmd.Context{Dir: "/tmp/work"}
	c.Check(ctx.AbsPath("x.yaml"), gc.Equals, "/tmp/work/x.yaml")
	c.Check(ctx.AbsPath("/etc/x.yaml"), gc.Equals, "/etc/x.yaml")
}

func (s *CmdSuite) TestFileVar(c *gc.C) {
	ctx := cmdtesting.Context(c)
	err := os.WriteFile(filepath.Join(ctx.Dir, "events.yaml"), []byte("content"), 0644)
	c.Assert(err, jc.ErrorIsNil)

	var fv cmd.FileVar
	c.Check(fv.IsSet(), jc.IsFalse)
	c.Assert(fv.Set("events.yaml"), jc.ErrorIsNil)
	data, err := fv.Read(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Equals, "content")
	c.Check(fv.String(), gc.Equals, "events.yaml")
	c.Check(fv.Set(""), gc.ErrorMatches, "empty path not valid")
}

type outputCommand struct {
	out   cmd.Output
	value interface{}
}

func (c *outputCommand) Info() *cmd.Info { return &cmd.Info{Name: "output"} }

func (c *outputCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
}

func (c *outputCommand) Init(args []string) error { return cmd.CheckEmpty(args) }

func (c *outputCommand) Run(ctx *cmd.Context) error { return c.out.Write(ctx, c.value) }

func (s *CmdSuite) TestOutput(c *gc.C) {
	value := map[string]string{"ready": "true"}

	ctx, err := cmdtesting.RunCommand(c, &outputCommand{value: value})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, "ready: \"true\"\n")

	ctx, err = cmdtesting.RunCommand(c, &outputCommand{value: value}, "--format", "json")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, `{"ready":"true"}`+"\n")

	ctx, err = cmdtesting.RunCommand(c, &outputCommand{value: value}, "-o", "out.yaml")
	c.Assert(err, jc.ErrorIsNil)
	data, err := os.ReadFile(filepath.Join(ctx.Dir, "out.yaml"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Equals, "ready: \"true\"\n")
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, "")

	_, err = cmdtesting.RunCommand(c, &outputCommand{value: value}, "--format", "xml")
	c.Check(err, gc.ErrorMatches, `invalid value "xml" for flag .*format: unknown format "xml"`)
}

func (s *CmdSuite) TestSuperCommand(c *gc.C) {
	var common string
	super := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "relationctl",
		Purpose: "drive relations",
		SetCommonFlags: func(f *gnuflag.FlagSet) {
			f.StringVar(&common, "common", "", "common-doc")
		},
	})
	verb := &TestCommand{Name: "verb"}
	super.Register(verb)

	ctx, err := cmdtesting.RunCommand(c, super, "--common", "x", "verb", "--option", "hi")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(common, gc.Equals, "x")
	c.Check(cmdtesting.Stdout(ctx), gc.Equals, "hi\n")
	c.Check(super.Info().Doc, gc.Matches, `(?s).*commands:\n    verb +- verb the relation\n`)

	_, err = cmdtesting.RunCommand(c, super)
	c.Check(err, gc.ErrorMatches, "no command specified")
	_, err = cmdtesting.RunCommand(c, super, "fly")
	c.Check(err, gc.ErrorMatches, "unrecognized command: relationctl fly")
	_, err = cmdtesting.RunCommand(c, super, "verb", "extra")
	c.Check(err, gc.ErrorMatches, `verb: unrecognized args: \["extra"\]`)
}
