// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlstore

// side identifies which view of a conversation a fact belongs to.
type side string

const (
	sideLocal     side = "local"
	sideRemote    side = "remote"
	sidePublished side = "published"
)

// dbConversation identifies a conversation row set.
type dbConversation struct {
	Relation string `db:"relation"`
	Scope    string `db:"scope"`
}

// dbRelation selects every conversation of a relation.
type dbRelation struct {
	Relation string `db:"relation"`
}

// dbFact is a single key of one side of a conversation.
type dbFact struct {
	Relation string `db:"relation"`
	Scope    string `db:"scope"`
	Side     string `db:"side"`
	Name     string `db:"name"`
	Value    string `db:"value"`
}

// dbMember is a remote unit taking part in a conversation.
type dbMember struct {
	Relation string `db:"relation"`
	Scope    string `db:"scope"`
	Unit     string `db:"unit"`
}

// dbFlag is a raised flag.
type dbFlag struct {
	Name string `db:"name"`
}
