// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hookqueue_test

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/hook"
	"github.com/juju/hadoop-relations/internal/worker/hookqueue"
)

const longWait = 10 * time.Second

type mockDispatcher struct {
	testing.Stub
}

func (d *mockDispatcher) Dispatch(_ context.Context, info hook.Info) error {
	d.MethodCall(d, "Dispatch", info)
	return d.NextErr()
}

type WorkerSuite struct {
	testing.IsolationSuite

	dispatcher *mockDispatcher
	events     chan hook.Info
	results    chan hookqueue.Result
}

var _ = gc.Suite(&WorkerSuite{})

func (s *WorkerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.dispatcher = &mockDispatcher{}
	s.events = make(chan hook.Info)
	s.results = make(chan hookqueue.Result)
}

func (s *WorkerSuite) newWorker(c *gc.C) *hookqueue.Worker {
	w, err := hookqueue.NewWorker(hookqueue.Config{
		Dispatcher: s.dispatcher,
		Events:     s.events,
		Results:    s.results,
	})
	c.Assert(err, jc.ErrorIsNil)
	return w
}

func (s *WorkerSuite) send(c *gc.C, info hook.Info) hookqueue.Result {
	select {
	case s.events <- info:
	case <-time.After(longWait):
		c.Fatalf("timed out sending event")
	}
	select {
	case result := <-s.results:
		return result
	case <-time.After(longWait):
		c.Fatalf("timed out waiting for result")
	}
	panic("unreachable")
}

func (s *WorkerSuite) TestValidate(c *gc.C) {
	_, err := hookqueue.NewWorker(hookqueue.Config{Events: s.events})
	c.Check(err, gc.ErrorMatches, "nil Dispatcher not valid")
	_, err = hookqueue.NewWorker(hookqueue.Config{Dispatcher: s.dispatcher})
	c.Check(err, gc.ErrorMatches, "nil Events not valid")
}

func (s *WorkerSuite) TestCleanKill(c *gc.C) {
	w := s.newWorker(c)
	workertest.CleanKill(c, w)
}

func (s *WorkerSuite) TestDispatchesInOrder(c *gc.C) {
	w := s.newWorker(c)
	defer workertest.CleanKill(c, w)

	joined := hook.Info{Kind: relation.Joined, Relation: "yarn", RemoteUnit: "resourcemanager/0"}
	changed := hook.Info{Kind: relation.Changed, Relation: "yarn", RemoteUnit: "resourcemanager/0"}

	c.Check(s.send(c, joined), jc.DeepEquals, hookqueue.Result{Info: joined})
	c.Check(s.send(c, changed), jc.DeepEquals, hookqueue.Result{Info: changed})
	s.dispatcher.CheckCalls(c, []testing.StubCall{
		{FuncName: "Dispatch", Args: []interface{}{joined}},
		{FuncName: "Dispatch", Args: []interface{}{changed}},
	})
}

func (s *WorkerSuite) TestFailureDoesNotStopWorker(c *gc.C) {
	w := s.newWorker(c)
	defer workertest.CleanKill(c, w)
	s.dispatcher.SetErrors(errors.New("malformed"))

	changed := hook.Info{Kind: relation.Changed, Relation: "yarn", RemoteUnit: "resourcemanager/0"}
	result := s.send(c, changed)
	c.Check(result.Err, gc.ErrorMatches, "malformed")

	result = s.send(c, changed)
	c.Check(result.Err, jc.ErrorIsNil)
	workertest.CheckAlive(c, w)
}

func (s *WorkerSuite) TestClosedEventsStopsCleanly(c *gc.C) {
	w := s.newWorker(c)
	close(s.events)
	err := workertest.CheckKilled(c, w)
	c.Check(err, jc.ErrorIsNil)
}

func (s *WorkerSuite) TestNoResults(c *gc.C) {
	w, err := hookqueue.NewWorker(hookqueue.Config{
		Dispatcher: s.dispatcher,
		Events:     s.events,
	})
	c.Assert(err, jc.ErrorIsNil)

	info := hook.Info{Kind: relation.Broken, Relation: "yarn"}
	select {
	case s.events <- info:
	case <-time.After(longWait):
		c.Fatalf("timed out sending event")
	}
	close(s.events)
	c.Check(workertest.CheckKilled(c, w), jc.ErrorIsNil)
	s.dispatcher.CheckCallNames(c, "Dispatch")
}
