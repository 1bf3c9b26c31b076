// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package mapred

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"github.com/juju/hadoop-relations/core/relation"
	"github.com/juju/hadoop-relations/internal/facts"
	"github.com/juju/hadoop-relations/internal/flags"
	"github.com/juju/hadoop-relations/internal/reconcile"
	"github.com/juju/hadoop-relations/internal/spec"
)

// Requires is the client end of the relation. All history server units
// share one conversation.
type Requires struct {
	name  string
	store facts.Store
	flags flags.Store
}

// NewRequires returns the requirer for the named relation.
func NewRequires(name string, store facts.Store, flagStore flags.Store) *Requires {
	return &Requires{name: name, store: store, flags: flagStore}
}

// Scope returns relation.ScopeGlobal.
func (r *Requires) Scope() relation.Scope {
	return relation.ScopeGlobal
}

// Joined sets the related flag.
func (r *Requires) Joined(ctx context.Context, _ facts.Conversation) error {
	return errors.Trace(r.flags.Set(ctx, relation.FlagName(r.name, relation.Related)))
}

// Changed recomputes the spec.mismatch and ready flags from the current
// facts. If the history server published data that cannot be decoded,
// no flag is changed and a malformed peer data error is returned.
func (r *Requires) Changed(ctx context.Context, conv facts.Conversation) error {
	snap, err := r.snapshot(conv)
	if err != nil {
		logger.Warningf("ignoring %s change: %v", r.name, err)
		return errors.Trace(err)
	}
	_, err = reconcile.Run(ctx, r.flags, r.name, snap)
	return errors.Trace(err)
}

// Departed clears every derived flag. Local facts are kept.
func (r *Requires) Departed(ctx context.Context, _ facts.Conversation) error {
	return errors.Trace(reconcile.Clear(ctx, r.flags, r.name))
}

func (r *Requires) snapshot(conv facts.Conversation) (reconcile.Snapshot, error) {
	local, err := localSpec(conv.LocalFacts())
	if err != nil {
		return reconcile.Snapshot{}, errors.Trace(err)
	}
	remote := conv.RemoteFacts()
	remoteSpec, err := remoteSpec(remote)
	if err != nil {
		return reconcile.Snapshot{}, errors.Trace(err)
	}
	hosts, err := hostsMap(remote)
	if err != nil {
		return reconcile.Snapshot{}, errors.Trace(err)
	}
	managers, err := resourceManagers(remote)
	if err != nil {
		return reconcile.Snapshot{}, errors.Trace(err)
	}
	return reconcile.Snapshot{
		LocalSpec:  local,
		RemoteSpec: remoteSpec,
		Requirements: []reconcile.Requirement{
			{Name: EtcHostsKey, Present: len(hosts) > 0},
			{Name: ResourceManagersKey, Present: len(managers) > 0},
			{Name: PortKey, Present: reconcile.Present(remote.GetRemote(PortKey, ""))},
			{Name: HistoryHTTPKey, Present: reconcile.Present(remote.GetRemote(HistoryHTTPKey, ""))},
			{Name: HistoryIPCKey, Present: reconcile.Present(remote.GetRemote(HistoryIPCKey, ""))},
		},
		Live: hasSlave(remote),
	}, nil
}

// SetLocalSpec records the spec this side requires. It should be called
// once the relation is related.
func (r *Requires) SetLocalSpec(ctx context.Context, s spec.Spec) error {
	raw, err := s.Encode()
	if err != nil {
		return errors.Trace(err)
	}
	rec, err := r.load(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	rec.SetLocal(spec.Key, raw)
	return errors.Trace(r.store.Save(ctx, rec))
}

// LocalSpec returns the spec set by SetLocalSpec, or nil.
func (r *Requires) LocalSpec(ctx context.Context) (spec.Spec, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return localSpec(rec.LocalFacts())
}

// RemoteSpec returns the spec published by the history server, or nil.
func (r *Requires) RemoteSpec(ctx context.Context) (spec.Spec, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return remoteSpec(rec.RemoteFacts())
}

// ResourceManagers returns the published resource manager host names.
// If the history server reports itself live but published none, its own
// address is returned as the only entry.
func (r *Requires) ResourceManagers(ctx context.Context) ([]string, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return resourceManagers(rec.RemoteFacts())
}

// HostsMap returns the published IP address to host name map.
func (r *Requires) HostsMap(ctx context.Context) (map[string]string, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return hostsMap(rec.RemoteFacts())
}

// Port returns the published history server port.
func (r *Requires) Port(ctx context.Context) (string, error) {
	return r.remote(ctx, PortKey)
}

// HSHTTP returns the published history server HTTP port.
func (r *Requires) HSHTTP(ctx context.Context) (string, error) {
	return r.remote(ctx, HistoryHTTPKey)
}

// HSIPC returns the published history server IPC port.
func (r *Requires) HSIPC(ctx context.Context) (string, error) {
	return r.remote(ctx, HistoryIPCKey)
}

// HasSlave returns the liveness published by the history server.
func (r *Requires) HasSlave(ctx context.Context) (bool, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	return hasSlave(rec.RemoteFacts()), nil
}

func (r *Requires) remote(ctx context.Context, key string) (string, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return "", errors.Trace(err)
	}
	return rec.GetRemote(key, ""), nil
}

func (r *Requires) load(ctx context.Context) (*facts.Record, error) {
	rec, err := r.store.Load(ctx, facts.Key{Relation: r.name})
	return rec, errors.Trace(err)
}

func localSpec(local facts.LocalFacts) (spec.Spec, error) {
	raw := local.GetLocal(spec.Key, spec.Null)
	s, err := spec.Parse(raw, true)
	if err != nil {
		return nil, errors.Annotate(err, "decoding local spec")
	}
	return s, nil
}

func remoteSpec(remote facts.RemoteFacts) (spec.Spec, error) {
	raw, ok := remote.LookupRemote(spec.Key)
	s, err := spec.Parse(raw, ok)
	if err != nil {
		return nil, spec.NewMalformedError(spec.Key, err)
	}
	return s, nil
}

func resourceManagers(remote facts.RemoteFacts) ([]string, error) {
	managers := []string{}
	if err := spec.DecodeInto(remote.GetRemote(ResourceManagersKey, "[]"), &managers); err != nil {
		return nil, spec.NewMalformedError(ResourceManagersKey, err)
	}
	if managers == nil {
		managers = []string{}
	}
	if len(managers) == 0 && hasSlave(remote) {
		if addr := remote.GetRemote(facts.PrivateAddress, ""); addr != "" {
			managers = []string{addr}
		}
	}
	return managers, nil
}

func hostsMap(remote facts.RemoteFacts) (map[string]string, error) {
	hosts := map[string]string{}
	if err := spec.DecodeInto(remote.GetRemote(EtcHostsKey, "{}"), &hosts); err != nil {
		return nil, spec.NewMalformedError(EtcHostsKey, err)
	}
	if hosts == nil {
		hosts = map[string]string{}
	}
	return hosts, nil
}

func hasSlave(remote facts.RemoteFacts) bool {
	return strings.EqualFold(remote.GetRemote(HasSlaveKey, "false"), "true")
}
