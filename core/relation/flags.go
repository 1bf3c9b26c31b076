// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package relation

// Flag suffixes toggled by the role handlers. The full flag name is
// "<relation name>.<suffix>".
const (
	// Related is set once the relation has been joined.
	Related = "related"

	// SpecMismatch is set when both sides published a spec and they disagree.
	SpecMismatch = "spec.mismatch"

	// Ready is set when the peer's facts are complete, the specs agree
	// and the peer reports itself live.
	Ready = "ready"

	// Clients is set by providers while any consumer is connected.
	Clients = "clients"
)

// FlagName returns the process-wide flag name for suffix on the named
// relation.
func FlagName(relationName, suffix string) string {
	return relationName + "." + suffix
}
