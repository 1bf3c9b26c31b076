// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package facts_test

import (
	"context"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/internal/facts"
)

type MemoryStoreSuite struct {
	store *facts.MemoryStore
}

var _ = gc.Suite(&MemoryStoreSuite{})

func (s *MemoryStoreSuite) SetUpTest(c *gc.C) {
	s.store = facts.NewMemoryStore()
}

func (s *MemoryStoreSuite) TestLoadUnknownIsEmpty(c *gc.C) {
	rec, err := s.store.Load(context.Background(), facts.Key{Relation: "yarn"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Local(), gc.HasLen, 0)
	c.Check(rec.Remote(), gc.HasLen, 0)
}

func (s *MemoryStoreSuite) TestLoadRejectsEmptyRelation(c *gc.C) {
	_, err := s.store.Load(context.Background(), facts.Key{})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *MemoryStoreSuite) TestSaveAndReload(c *gc.C) {
	ctx := context.Background()
	key := facts.Key{Relation: "mapred", Scope: "client/0"}

	rec, err := s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	rec.SetLocal("spec", `{"v":"2.7"}`)
	rec.SetRemote("has_slave", "true")
	c.Assert(s.store.Save(ctx, rec), jc.ErrorIsNil)
	c.Check(rec.Dirty(), jc.IsFalse)

	rec, err = s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Local(), jc.DeepEquals, facts.Settings{"spec": `{"v":"2.7"}`})
	c.Check(rec.Published(), jc.DeepEquals, facts.Settings{"has_slave": "true"})
	c.Check(rec.Remote(), gc.HasLen, 0)
}

func (s *MemoryStoreSuite) TestUnsavedWritesAreDropped(c *gc.C) {
	ctx := context.Background()
	key := facts.Key{Relation: "yarn"}

	rec, err := s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	rec.SetLocal("spec", "{}")

	rec, err = s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Local(), gc.HasLen, 0)
}

func (s *MemoryStoreSuite) TestReceiveMerges(c *gc.C) {
	ctx := context.Background()
	key := facts.Key{Relation: "yarn"}

	c.Assert(s.store.Receive(ctx, key, map[string]string{"port": "8032", "hs-http": "19888"}), jc.ErrorIsNil)
	c.Assert(s.store.Receive(ctx, key, map[string]string{"hs-http": "", "hs-ipc": "10020"}), jc.ErrorIsNil)

	rec, err := s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Remote(), jc.DeepEquals, facts.Settings{"port": "8032", "hs-ipc": "10020"})
}

func (s *MemoryStoreSuite) TestMembership(c *gc.C) {
	ctx := context.Background()
	a := facts.Key{Relation: "mapred", Scope: "client/0"}
	b := facts.Key{Relation: "mapred", Scope: "client/1"}
	other := facts.Key{Relation: "yarn"}

	c.Assert(s.store.Join(ctx, b, "client/1"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, a, "client/0"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, other, "resourcemanager/0"), jc.ErrorIsNil)

	active, err := s.store.Active(ctx, "mapred")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(active, jc.DeepEquals, []facts.Key{a, b})

	c.Assert(s.store.Depart(ctx, a, "client/0"), jc.ErrorIsNil)
	active, err = s.store.Active(ctx, "mapred")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(active, jc.DeepEquals, []facts.Key{b})

	members, err := s.store.Members(ctx, a)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(members.IsEmpty(), jc.IsTrue)
}

func (s *MemoryStoreSuite) TestDepartAllKeepsFacts(c *gc.C) {
	ctx := context.Background()
	key := facts.Key{Relation: "yarn"}

	c.Assert(s.store.Join(ctx, key, "resourcemanager/0"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, key, "resourcemanager/1"), jc.ErrorIsNil)
	rec, err := s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	rec.SetLocal("spec", "{}")
	c.Assert(s.store.Save(ctx, rec), jc.ErrorIsNil)

	c.Assert(s.store.Depart(ctx, key, ""), jc.ErrorIsNil)

	active, err := s.store.Active(ctx, "yarn")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(active, gc.HasLen, 0)

	rec, err = s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.GetLocal("spec", "null"), gc.Equals, "{}")
}

func (s *MemoryStoreSuite) TestDepartAllRelation(c *gc.C) {
	ctx := context.Background()
	a := facts.Key{Relation: "mapred", Scope: "client/0"}
	b := facts.Key{Relation: "mapred", Scope: "client/1"}
	other := facts.Key{Relation: "yarn", Scope: "nodemanager/0"}
	c.Assert(s.store.Join(ctx, a, "client/0"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, b, "client/1"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, other, "nodemanager/0"), jc.ErrorIsNil)
	c.Assert(s.store.Receive(ctx, a, map[string]string{"port": "8032"}), jc.ErrorIsNil)

	c.Assert(s.store.DepartAll(ctx, "mapred"), jc.ErrorIsNil)

	active, err := s.store.Active(ctx, "mapred")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(active, gc.HasLen, 0)
	active, err = s.store.Active(ctx, "yarn")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(active, jc.DeepEquals, []facts.Key{other})

	rec, err := s.store.Load(ctx, a)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.GetRemote("port", ""), gc.Equals, "8032")

	err = s.store.DepartAll(ctx, "")
	c.Check(err, gc.ErrorMatches, "empty relation name not valid")
}

func (s *MemoryStoreSuite) TestJoinRequiresUnit(c *gc.C) {
	err := s.store.Join(context.Background(), facts.Key{Relation: "yarn"}, "")
	c.Check(err, gc.ErrorMatches, "empty remote unit not valid")
}

func (s *MemoryStoreSuite) TestBroadcastSkipsInactive(c *gc.C) {
	ctx := context.Background()
	a := facts.Key{Relation: "mapred", Scope: "client/0"}
	b := facts.Key{Relation: "mapred", Scope: "client/1"}
	c.Assert(s.store.Join(ctx, a, "client/0"), jc.ErrorIsNil)
	c.Assert(s.store.Join(ctx, b, "client/1"), jc.ErrorIsNil)
	c.Assert(s.store.Depart(ctx, b, "client/1"), jc.ErrorIsNil)

	var seen int
	err := facts.Broadcast(ctx, s.store, "mapred", func(p facts.Publisher) error {
		seen++
		p.SetRemote("has_slave", "true")
		return nil
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(seen, gc.Equals, 1)

	rec, err := s.store.Load(ctx, a)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Published(), jc.DeepEquals, facts.Settings{"has_slave": "true"})
	rec, err = s.store.Load(ctx, b)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Published(), gc.HasLen, 0)
}

func (s *MemoryStoreSuite) TestBroadcastError(c *gc.C) {
	ctx := context.Background()
	key := facts.Key{Relation: "mapred", Scope: "client/0"}
	c.Assert(s.store.Join(ctx, key, "client/0"), jc.ErrorIsNil)

	err := facts.Broadcast(ctx, s.store, "mapred", func(p facts.Publisher) error {
		p.SetRemote("spec", "{}")
		return errors.New("boom")
	})
	c.Assert(err, gc.ErrorMatches, "publishing to mapred:client/0: boom")

	rec, err := s.store.Load(ctx, key)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rec.Published(), gc.HasLen, 0)
}
