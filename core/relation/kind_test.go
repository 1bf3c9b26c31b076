// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package relation_test

import (
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/core/relation"
)

type KindSuite struct{}

var _ = gc.Suite(&KindSuite{})

func (s *KindSuite) TestParseKind(c *gc.C) {
	for i, test := range []struct {
		input  string
		expect relation.Kind
		err    string
	}{
		{input: "joined", expect: relation.Joined},
		{input: "changed", expect: relation.Changed},
		{input: "mapred-relation-departed", expect: relation.Departed},
		{input: "yarn-relation-broken", expect: relation.Broken},
		{input: "-relation-broken", err: `relation event kind "-relation-broken" not valid`},
		{input: "mapred-relation-broken-now", err: `relation event kind "mapred-relation-broken-now" not valid`},
		{input: "created", err: `relation event kind "created" not valid`},
	} {
		c.Logf("test %d: %q", i, test.input)
		kind, err := relation.ParseKind(test.input)
		if test.err != "" {
			c.Check(err, gc.ErrorMatches, test.err)
			c.Check(err, jc.Satisfies, errors.IsNotValid)
			continue
		}
		c.Check(err, jc.ErrorIsNil)
		c.Check(kind, gc.Equals, test.expect)
	}
}

func (s *KindSuite) TestIsDeparture(c *gc.C) {
	c.Check(relation.Joined.IsDeparture(), jc.IsFalse)
	c.Check(relation.Changed.IsDeparture(), jc.IsFalse)
	c.Check(relation.Departed.IsDeparture(), jc.IsTrue)
	c.Check(relation.Broken.IsDeparture(), jc.IsTrue)
}

func (s *KindSuite) TestHookName(c *gc.C) {
	c.Check(relation.Changed.HookName("mapred"), gc.Equals, "mapred-relation-changed")
}

func (s *KindSuite) TestValidate(c *gc.C) {
	c.Check(relation.Broken.Validate(), jc.ErrorIsNil)
	c.Check(relation.Kind("install").Validate(), gc.ErrorMatches, `relation event kind "install" not valid`)
}

func (s *KindSuite) TestScope(c *gc.C) {
	c.Check(relation.ScopeGlobal.ConversationScope("resourcemanager/0"), gc.Equals, "")
	c.Check(relation.ScopeUnit.ConversationScope("resourcemanager/0"), gc.Equals, "resourcemanager/0")
}

func (s *KindSuite) TestFlagName(c *gc.C) {
	c.Check(relation.FlagName("mapred", relation.SpecMismatch), gc.Equals, "mapred.spec.mismatch")
}

func (s *KindSuite) TestRoleValidate(c *gc.C) {
	c.Check(relation.Provides.Validate(), jc.ErrorIsNil)
	c.Check(relation.Role("peers").Validate(), gc.ErrorMatches, `relation role "peers" not valid`)
}
