// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package sqlstore persists relation facts, conversation membership and
// flags in a SQLite database, so that state survives between hook
// invocations.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/canonical/sqlair"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"
	"github.com/mattn/go-sqlite3"

	"github.com/juju/hadoop-relations/internal/facts"
	"github.com/juju/hadoop-relations/internal/flags"
)

var logger = loggo.GetLogger("hadoop.relations.sqlstore")

var schemaDDL = []string{`
CREATE TABLE IF NOT EXISTS fact (
    relation TEXT NOT NULL,
    scope    TEXT NOT NULL,
    side     TEXT NOT NULL,
    name     TEXT NOT NULL,
    value    TEXT NOT NULL,
    PRIMARY KEY (relation, scope, side, name)
)`, `
CREATE TABLE IF NOT EXISTS member (
    relation TEXT NOT NULL,
    scope    TEXT NOT NULL,
    unit     TEXT NOT NULL,
    PRIMARY KEY (relation, scope, unit)
)`, `
CREATE TABLE IF NOT EXISTS flag (
    name TEXT NOT NULL PRIMARY KEY
)`}

// Store implements both facts.Store and flags.Store on SQLite.
type Store struct {
	plain *sql.DB
	db    *sqlair.DB
	clock clock.Clock
}

const (
	txnAttempts = 5
	txnDelay    = 50 * time.Millisecond
)

var (
	_ facts.Store = (*Store)(nil)
	_ flags.Store = (*Store)(nil)
)

// Open opens, creating if necessary, the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.NotValidf("empty database path")
	}
	plain, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening database %q", path)
	}
	store, err := NewStore(ctx, plain)
	if err != nil {
		_ = plain.Close()
		return nil, errors.Annotatef(err, "database %q", path)
	}
	return store, nil
}

// NewStore returns a Store backed by db, creating its tables if they do
// not yet exist.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	// SQLite serialises writers anyway; a single connection avoids busy
	// errors between our own transactions.
	db.SetMaxOpenConns(1)
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Annotate(err, "creating schema")
		}
	}
	return &Store{
		plain: db,
		db:    sqlair.NewDB(db),
		clock: clock.WallClock,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return errors.Trace(s.plain.Close())
}

// txn runs fn inside a transaction, committing if it succeeds. The whole
// transaction is retried while the database reports it is busy.
func (s *Store) txn(ctx context.Context, fn func(context.Context, *sqlair.TX) error) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return s.runTxn(ctx, fn)
		},
		IsFatalError: func(err error) bool {
			return !isRetryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("attempt %d: %v", attempt, err)
		},
		Attempts:    txnAttempts,
		Delay:       txnDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       s.clock,
		Stop:        ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsDurationExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	return errors.Trace(err)
}

func (s *Store) runTxn(ctx context.Context, fn func(context.Context, *sqlair.TX) error) error {
	tx, err := s.db.Begin(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "starting transaction")
	}
	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			logger.Errorf("rolling back transaction: %v", rollbackErr)
		}
		return errors.Trace(err)
	}
	return errors.Annotate(tx.Commit(), "committing transaction")
}

// isRetryable reports whether err means another writer holds the
// database.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var errNo sqlite3.ErrNo
	if errors.As(err, &errNo) {
		return errNo == sqlite3.ErrBusy || errNo == sqlite3.ErrLocked
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}

// affected reports the number of rows changed by a statement.
func affected(outcome sqlair.Outcome) int64 {
	if outcome.Result() == nil {
		return 0
	}
	n, err := outcome.Result().RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
