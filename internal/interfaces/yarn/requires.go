// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package yarn

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

// Requires is the consumer end of the relation. All resource manager
// units share one conversation.
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

// Changed recomputes the spec.mismatch and ready flags.
func (r *Requires) Changed(ctx context.Context, conv facts.Conversation) error {
	local, err := localSpec(conv.LocalFacts())
	if err != nil {
		logger.Warningf("ignoring %s change: %v", r.name, err)
		return errors.Trace(err)
	}
	remote := conv.RemoteFacts()
	remoteSpec, err := remoteSpec(remote)
	if err != nil {
		logger.Warningf("ignoring %s change: %v", r.name, err)
		return errors.Trace(err)
	}
	present := func(key string) reconcile.Requirement {
		return reconcile.Requirement{Name: key, Present: reconcile.Present(remote.GetRemote(key, ""))}
	}
	_, err = reconcile.Run(ctx, r.flags, r.name, reconcile.Snapshot{
		LocalSpec:  local,
		RemoteSpec: remoteSpec,
		Requirements: []reconcile.Requirement{
			present(IPAddrKey),
			present(PortKey),
			present(HSHTTPKey),
			present(HSIPCKey),
		},
		Live: yarnReady(remote),
	})
	return errors.Trace(err)
}

// Departed clears every derived flag. Local facts are kept.
func (r *Requires) Departed(ctx context.Context, _ facts.Conversation) error {
	return errors.Trace(reconcile.Clear(ctx, r.flags, r.name))
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

// RemoteSpec returns the spec published by the resource manager, or nil.
func (r *Requires) RemoteSpec(ctx context.Context) (spec.Spec, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return remoteSpec(rec.RemoteFacts())
}

// IPAddr returns the published resource manager address.
func (r *Requires) IPAddr(ctx context.Context) (string, error) {
	return r.remote(ctx, IPAddrKey)
}

// Port returns the published resource manager port.
func (r *Requires) Port(ctx context.Context) (string, error) {
	return r.remote(ctx, PortKey)
}

// HSHTTP returns the published history server HTTP port.
func (r *Requires) HSHTTP(ctx context.Context) (string, error) {
	return r.remote(ctx, HSHTTPKey)
}

// HSIPC returns the published history server IPC port.
func (r *Requires) HSIPC(ctx context.Context) (string, error) {
	return r.remote(ctx, HSIPCKey)
}

// YARNReady returns the liveness published by the resource manager.
func (r *Requires) YARNReady(ctx context.Context) (bool, error) {
	rec, err := r.load(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	return yarnReady(rec.RemoteFacts()), nil
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
	s, err := spec.Parse(local.GetLocal(spec.Key, spec.Null), true)
	return s, errors.Annotate(err, "decoding local spec")
}

func remoteSpec(remote facts.RemoteFacts) (spec.Spec, error) {
	raw, ok := remote.LookupRemote(spec.Key)
	s, err := spec.Parse(raw, ok)
	if err != nil {
		return nil, spec.NewMalformedError(spec.Key, err)
	}
	return s, nil
}

func yarnReady(remote facts.RemoteFacts) bool {
	return strings.EqualFold(remote.GetRemote(ReadyKey, "false"), "true")
}
