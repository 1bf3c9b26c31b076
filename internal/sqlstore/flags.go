// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlstore

import (
	"context"

	"github.com/canonical/sqlair"
	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/juju/hadoop-relations/internal/flags"
)

// Set is part of the flags.Store interface.
func (s *Store) Set(ctx context.Context, name string) error {
	flag := dbFlag{Name: name}
	stmt, err := sqlair.Prepare(`
INSERT INTO flag (name) VALUES ($dbFlag.name)
ON CONFLICT (name) DO NOTHING`, flag)
	if err != nil {
		return errors.Annotate(err, "preparing insert flag statement")
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var outcome sqlair.Outcome
		if err := tx.Query(ctx, stmt, flag).Get(&outcome); err != nil {
			return errors.Trace(err)
		}
		if affected(outcome) > 0 {
			logger.Debugf("setting flag %q", name)
		}
		return nil
	})
	return errors.Annotatef(err, "setting flag %q", name)
}

// Remove is part of the flags.Store interface.
func (s *Store) Remove(ctx context.Context, name string) error {
	flag := dbFlag{Name: name}
	stmt, err := sqlair.Prepare(`DELETE FROM flag WHERE name = $dbFlag.name`, flag)
	if err != nil {
		return errors.Annotate(err, "preparing delete flag statement")
	}
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var outcome sqlair.Outcome
		if err := tx.Query(ctx, stmt, flag).Get(&outcome); err != nil {
			return errors.Trace(err)
		}
		if affected(outcome) > 0 {
			logger.Debugf("removing flag %q", name)
		}
		return nil
	})
	return errors.Annotatef(err, "removing flag %q", name)
}

// Toggle is part of the flags.Store interface.
func (s *Store) Toggle(ctx context.Context, name string, value bool) error {
	return flags.Toggle(ctx, s, name, value)
}

// IsSet is part of the flags.Store interface.
func (s *Store) IsSet(ctx context.Context, name string) (bool, error) {
	flag := dbFlag{Name: name}
	stmt, err := sqlair.Prepare(`SELECT &dbFlag.* FROM flag WHERE name = $dbFlag.name`, flag)
	if err != nil {
		return false, errors.Annotate(err, "preparing select flag statement")
	}
	var found bool
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var result dbFlag
		err := tx.Query(ctx, stmt, flag).Get(&result)
		if errors.Is(err, sqlair.ErrNoRows) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		found = true
		return nil
	})
	return found, errors.Annotatef(err, "reading flag %q", name)
}

// List is part of the flags.Store interface.
func (s *Store) List(ctx context.Context) (set.Strings, error) {
	stmt, err := sqlair.Prepare(`SELECT &dbFlag.* FROM flag`, dbFlag{})
	if err != nil {
		return nil, errors.Annotate(err, "preparing select flags statement")
	}
	names := set.NewStrings()
	err = s.txn(ctx, func(ctx context.Context, tx *sqlair.TX) error {
		var rows []dbFlag
		err := tx.Query(ctx, stmt).GetAll(&rows)
		if errors.Is(err, sqlair.ErrNoRows) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		for _, row := range rows {
			names.Add(row.Name)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Annotate(err, "listing flags")
	}
	return names, nil
}
