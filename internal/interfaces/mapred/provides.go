// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package mapred

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

var logger = loggo.GetLogger("hadoop.relations.mapred")

// Provides is the history server end of the relation. Each client unit
// has its own conversation, and every Send method publishes to all of
// the connected ones.
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

// Changed is a no-op; clients publish nothing the provider reads.
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
	return p.broadcast(ctx, func(pub facts.Publisher) {
		pub.SetRemote(spec.Key, raw)
	})
}

// SendResourceManagers publishes the resource manager host names.
func (p *Provides) SendResourceManagers(ctx context.Context, hosts []string) error {
	if hosts == nil {
		hosts = []string{}
	}
	raw, err := spec.Encode(hosts)
	if err != nil {
		return errors.Trace(err)
	}
	return p.broadcast(ctx, func(pub facts.Publisher) {
		pub.SetRemote(ResourceManagersKey, raw)
	})
}

// SendPorts publishes the history server endpoints as a single update.
func (p *Provides) SendPorts(ctx context.Context, port, historyHTTP, historyIPC int) error {
	return p.broadcast(ctx, func(pub facts.Publisher) {
		pub.UpdateRemote(map[string]string{
			PortKey:        strconv.Itoa(port),
			HistoryHTTPKey: strconv.Itoa(historyHTTP),
			HistoryIPCKey:  strconv.Itoa(historyIPC),
		})
	})
}

// SendReady publishes the provider's liveness.
func (p *Provides) SendReady(ctx context.Context, ready bool) error {
	return p.broadcast(ctx, func(pub facts.Publisher) {
		pub.SetRemote(HasSlaveKey, strconv.FormatBool(ready))
	})
}

// SendHostsMap publishes the IP address to host name map clients need to
// resolve the resource managers.
func (p *Provides) SendHostsMap(ctx context.Context, hosts map[string]string) error {
	if hosts == nil {
		hosts = map[string]string{}
	}
	raw, err := spec.Encode(hosts)
	if err != nil {
		return errors.Trace(err)
	}
	return p.broadcast(ctx, func(pub facts.Publisher) {
		pub.SetRemote(EtcHostsKey, raw)
	})
}

func (p *Provides) broadcast(ctx context.Context, publish func(facts.Publisher)) error {
	err := facts.Broadcast(ctx, p.store, p.name, func(pub facts.Publisher) error {
		publish(pub)
		return nil
	})
	return errors.Trace(err)
}
