// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package flags_test

import (
	"context"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/internal/flags"
)

type MemorySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&MemorySuite{})

func (s *MemorySuite) TestSetIsIdempotent(c *gc.C) {
	ctx := context.Background()
	store := flags.NewMemory()
	c.Assert(store.Set(ctx, "mapred.related"), jc.ErrorIsNil)
	c.Assert(store.Set(ctx, "mapred.related"), jc.ErrorIsNil)

	names, err := store.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(names.SortedValues(), jc.DeepEquals, []string{"mapred.related"})
}

func (s *MemorySuite) TestRemoveIsIdempotent(c *gc.C) {
	ctx := context.Background()
	store := flags.NewMemory()
	c.Assert(store.Remove(ctx, "mapred.ready"), jc.ErrorIsNil)
	c.Assert(store.Set(ctx, "mapred.ready"), jc.ErrorIsNil)
	c.Assert(store.Remove(ctx, "mapred.ready"), jc.ErrorIsNil)
	c.Assert(store.Remove(ctx, "mapred.ready"), jc.ErrorIsNil)

	set, err := store.IsSet(ctx, "mapred.ready")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set, jc.IsFalse)
}

func (s *MemorySuite) TestToggle(c *gc.C) {
	ctx := context.Background()
	store := flags.NewMemory()

	c.Assert(store.Toggle(ctx, "yarn.ready", true), jc.ErrorIsNil)
	set, err := store.IsSet(ctx, "yarn.ready")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set, jc.IsTrue)

	c.Assert(store.Toggle(ctx, "yarn.ready", false), jc.ErrorIsNil)
	set, err = store.IsSet(ctx, "yarn.ready")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set, jc.IsFalse)
}

func (s *MemorySuite) TestListReturnsCopy(c *gc.C) {
	ctx := context.Background()
	store := flags.NewMemory()
	c.Assert(store.Set(ctx, "a"), jc.ErrorIsNil)

	names, err := store.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	names.Add("b")

	names, err = store.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(names.SortedValues(), jc.DeepEquals, []string{"a"})
}
