// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hook

import (
	"strings"

	"github.com/juju/errors"

	"github.com/juju/hadoop-relations/core/relation"
)

// Environment variables the agent sets when running a relation hook.
const (
	EnvHookName   = "JUJU_HOOK_NAME"
	EnvRelation   = "JUJU_RELATION"
	EnvRemoteUnit = "JUJU_REMOTE_UNIT"
)

// FromEnvironment returns the Info for the relation hook currently
// running, read through getenv. The relation name falls back to the hook
// name's prefix when JUJU_RELATION is unset.
func FromEnvironment(getenv func(string) string) (Info, error) {
	hookName := getenv(EnvHookName)
	if hookName == "" {
		return Info{}, errors.NotFoundf("%s in environment", EnvHookName)
	}
	kind, err := relation.ParseKind(hookName)
	if err != nil {
		return Info{}, errors.Annotatef(err, "hook %q", hookName)
	}
	info := Info{
		Kind:       kind,
		Relation:   getenv(EnvRelation),
		RemoteUnit: getenv(EnvRemoteUnit),
	}
	if info.Relation == "" {
		info.Relation = strings.TrimSuffix(hookName, "-relation-"+string(kind))
		if info.Relation == hookName {
			info.Relation = ""
		}
	}
	if kind == relation.Broken {
		// Some agents still name the last departed unit here.
		info.RemoteUnit = ""
	}
	if err := info.Validate(); err != nil {
		return Info{}, errors.Trace(err)
	}
	return info, nil
}

// Vars returns the os.Environ style variables that describe info to a
// hook process.
func (hi Info) Vars() []string {
	vars := []string{
		EnvHookName + "=" + hi.Kind.HookName(hi.Relation),
		EnvRelation + "=" + hi.Relation,
	}
	if hi.RemoteUnit != "" {
		vars = append(vars, EnvRemoteUnit+"="+hi.RemoteUnit)
	}
	return vars
}
