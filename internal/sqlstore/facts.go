// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlstore

import (
	"context"

	"github.com/canonical/sqlair"
	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/juju/hadoop-relations/internal/facts"
)

func validateKey(key facts.Key) error {
	if key.Relation == "" {
		return errors.NotValidf("conversation key with empty relation")
	}
	return nil
}

func conversationOf(key facts.Key) dbConversation {
	return dbConversation{Relation: key.Relation, Scope: key.Scope}
}

// Load is part of the facts.Store interface.
func (s *Store) Load(ctx context.Context, key facts.Key) (*facts.Record, error) {
	if err := validateKey(key); err != nil {
		return nil, errors.Trace(err)
	}
	conv := conversationOf(key)
	stmt, err := sqlair.Prepare(`
SELECT &dbFact.*
FROM   fact
WHERE  relation = $dbConversation.relation
AND    scope = $dbConversation.scope`, dbFact{}, conv)
	if err != nil {
		return nil, errors.Annotate(err, "preparing select facts statement")
	}

	views := map[side]map[string]string{
		sideLocal:     {},
		sideRemote:    {},
		sidePublished: {},
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var rows []dbFact
		err := tx.Query(ctx, stmt, conv).GetAll(&rows)
		if errors.Is(err, sqlair.ErrNoRows) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		for _, row := range rows {
			view, ok := views[side(row.Side)]
			if !ok {
				logger.Warningf("ignoring fact %q with unknown side %q in %s", row.Name, row.Side, key)
				continue
			}
			view[row.Name] = row.Value
		}
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "loading %s", key)
	}
	return facts.NewRecord(key, views[sideLocal], views[sideRemote], views[sidePublished]), nil
}

// Save is part of the facts.Store interface.
func (s *Store) Save(ctx context.Context, rec *facts.Record) error {
	key := rec.Key()
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	err := s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		if err := s.writeFacts(ctx, tx, key, sideLocal, rec.LocalChanges()); err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(s.writeFacts(ctx, tx, key, sidePublished, rec.PublishedChanges()))
	})
	if err != nil {
		return errors.Annotatef(err, "saving %s", key)
	}
	rec.MarkSaved()
	return nil
}

// Receive is part of the facts.Store interface.
func (s *Store) Receive(ctx context.Context, key facts.Key, settings map[string]string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	err := s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		return errors.Trace(s.writeFacts(ctx, tx, key, sideRemote, settings))
	})
	return errors.Annotatef(err, "receiving settings for %s", key)
}

// writeFacts upserts each change into the given side of a conversation.
// Empty values delete the key.
func (s *Store) writeFacts(ctx context.Context, tx *sqlair.TX, key facts.Key, sd side, changes map[string]string) error {
	if len(changes) == 0 {
		return nil
	}
	upsertStmt, err := sqlair.Prepare(`
INSERT INTO fact (relation, scope, side, name, value)
VALUES ($dbFact.*)
ON CONFLICT (relation, scope, side, name) DO UPDATE SET value = excluded.value`, dbFact{})
	if err != nil {
		return errors.Annotate(err, "preparing upsert fact statement")
	}
	deleteStmt, err := sqlair.Prepare(`
DELETE FROM fact
WHERE  relation = $dbFact.relation
AND    scope = $dbFact.scope
AND    side = $dbFact.side
AND    name = $dbFact.name`, dbFact{})
	if err != nil {
		return errors.Annotate(err, "preparing delete fact statement")
	}

	for name, value := range changes {
		row := dbFact{
			Relation: key.Relation,
			Scope:    key.Scope,
			Side:     string(sd),
			Name:     name,
			Value:    value,
		}
		stmt := upsertStmt
		if value == "" {
			stmt = deleteStmt
		}
		if err := tx.Query(ctx, stmt, row).Run(); err != nil {
			return errors.Annotatef(err, "writing %s fact %q", sd, name)
		}
	}
	return nil
}

// Join is part of the facts.Store interface.
func (s *Store) Join(ctx context.Context, key facts.Key, remoteUnit string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	if remoteUnit == "" {
		return errors.NotValidf("empty remote unit")
	}
	member := dbMember{Relation: key.Relation, Scope: key.Scope, Unit: remoteUnit}
	stmt, err := sqlair.Prepare(`
INSERT INTO member (relation, scope, unit)
VALUES ($dbMember.*)
ON CONFLICT (relation, scope, unit) DO NOTHING`, member)
	if err != nil {
		return errors.Annotate(err, "preparing insert member statement")
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		return errors.Trace(tx.Query(ctx, stmt, member).Run())
	})
	return errors.Annotatef(err, "joining %q to %s", remoteUnit, key)
}

// Depart is part of the facts.Store interface.
func (s *Store) Depart(ctx context.Context, key facts.Key, remoteUnit string) error {
	if err := validateKey(key); err != nil {
		return errors.Trace(err)
	}
	var (
		stmt *sqlair.Statement
		arg  any
		err  error
	)
	if remoteUnit == "" {
		arg = conversationOf(key)
		stmt, err = sqlair.Prepare(`
DELETE FROM member
WHERE  relation = $dbConversation.relation
AND    scope = $dbConversation.scope`, arg)
	} else {
		arg = dbMember{Relation: key.Relation, Scope: key.Scope, Unit: remoteUnit}
		stmt, err = sqlair.Prepare(`
DELETE FROM member
WHERE  relation = $dbMember.relation
AND    scope = $dbMember.scope
AND    unit = $dbMember.unit`, arg)
	}
	if err != nil {
		return errors.Annotate(err, "preparing delete member statement")
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		return errors.Trace(tx.Query(ctx, stmt, arg).Run())
	})
	return errors.Annotatef(err, "departing %s", key)
}

// DepartAll is part of the facts.Store interface.
func (s *Store) DepartAll(ctx context.Context, relationName string) error {
	if relationName == "" {
		return errors.NotValidf("empty relation name")
	}
	rel := dbRelation{Relation: relationName}
	stmt, err := sqlair.Prepare(`
DELETE FROM member
WHERE  relation = $dbRelation.relation`, rel)
	if err != nil {
		return errors.Annotate(err, "preparing delete members statement")
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var outcome sqlair.Outcome
		if err := tx.Query(ctx, stmt, rel).Get(&outcome); err != nil {
			return errors.Trace(err)
		}
		logger.Debugf("removed %d members of %q", affected(outcome), relationName)
		return nil
	})
	return errors.Annotatef(err, "departing all conversations of %q", relationName)
}

// Members is part of the facts.Store interface.
func (s *Store) Members(ctx context.Context, key facts.Key) (set.Strings, error) {
	conv := conversationOf(key)
	stmt, err := sqlair.Prepare(`
SELECT &dbMember.*
FROM   member
WHERE  relation = $dbConversation.relation
AND    scope = $dbConversation.scope`, dbMember{}, conv)
	if err != nil {
		return nil, errors.Annotate(err, "preparing select members statement")
	}
	members := set.NewStrings()
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var rows []dbMember
		err := tx.Query(ctx, stmt, conv).GetAll(&rows)
		if errors.Is(err, sqlair.ErrNoRows) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		for _, row := range rows {
			members.Add(row.Unit)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "reading members of %s", key)
	}
	return members, nil
}

// Active is part of the facts.Store interface.
func (s *Store) Active(ctx context.Context, relationName string) ([]facts.Key, error) {
	rel := dbRelation{Relation: relationName}
	stmt, err := sqlair.Prepare(`
SELECT DISTINCT &dbConversation.*
FROM   member
WHERE  relation = $dbRelation.relation
ORDER BY scope`, dbConversation{}, rel)
	if err != nil {
		return nil, errors.Annotate(err, "preparing select active conversations statement")
	}
	var keys []facts.Key
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var rows []dbConversation
		err := tx.Query(ctx, stmt, rel).GetAll(&rows)
		if errors.Is(err, sqlair.ErrNoRows) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		for _, row := range rows {
			keys = append(keys, facts.Key{Relation: row.Relation, Scope: row.Scope})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "listing active conversations of %q", relationName)
	}
	facts.SortKeys(keys)
	return keys, nil
}
