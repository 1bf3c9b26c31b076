// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package yarn

import (
	"context"
	"strconv"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/facts"
	"github.com/juju/hadoop-relations/internal/flags"
	"github.com/juju/hadoop-relations/internal/spec"
)

var logger = loggo.GetLogger("hadoop.relations.yarn")

// Provides is the resource manager end of the relation.
type Provides struct {
	name  string
	store facts.Store
	flags flags.Store
}

// NewProvides returns the provider for the named relation.
func NewProvides(name string, store facts.Store, flagStore flags.Store) *Provides {
	return &Provides{name: name, store: store, flags: flagStore}
}

// Scope returns relation.ScopeUnit.
func (p *Provides) Scope() relation.Scope {
	return relation.ScopeUnit
}

// Joined marks the relation as having clients.
func (p *Provides) Joined(ctx context.Context, conv facts.Conversation) error {
	logger.Debugf("client joined %s", conv.Key())
	return errors.Trace(p.flags.Set(ctx, relation.FlagName(p.name, relation.Clients)))
}

// Changed is a no-op.
func (p *Provides) Changed(context.Context, facts.Conversation) error {
	return nil
}

// Departed removes the clients flag once no client remains.
func (p *Provides) Departed(ctx context.Context, conv facts.Conversation) error {
	logger.Debugf("client departed %s", conv.Key())
	active, err := p.store.Active(ctx, p.name)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(p.flags.Toggle(ctx, relation.FlagName(p.name, relation.Clients), len(active) > 0))
}

// SendSpec publishes s to every client.
func (p *Provides) SendSpec(ctx context.Context, s spec.Spec) error {
	raw, err := s.Encode()
	if err != nil {
		return errors.Trace(err)
	}
	return p.publish(ctx, map[string]string{spec.Key: raw})
}

// SendAddress publishes the resource manager's address.
func (p *Provides) SendAddress(ctx context.Context, addr string) error {
	return p.publish(ctx, map[string]string{IPAddrKey: addr})
}

// SendPorts publishes the resource manager and history server endpoints
// as a single update.
func (p *Provides) SendPorts(ctx context.Context, port, hsHTTP, hsIPC int) error {
	return p.publish(ctx, map[string]string{
		PortKey:   strconv.Itoa(port),
		HSHTTPKey: strconv.Itoa(hsHTTP),
		HSIPCKey:  strconv.Itoa(hsIPC),
	})
}

// SendReady publishes the resource manager's liveness.
func (p *Provides) SendReady(ctx context.Context, ready bool) error {
	return p.publish(ctx, map[string]string{ReadyKey: strconv.FormatBool(ready)})
}

func (p *Provides) publish(ctx context.Context, settings map[string]string) error {
	err := facts.Broadcast(ctx, p.store, p.name, func(pub facts.Publisher) error {
		pub.UpdateRemote(settings)
		return nil
	})
	return errors.Trace(err)
}
