// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package facts

import (
	"context"

	"github.com/juju/errors"
)

// Broadcast calls publish for every active conversation of the named
// relation and saves what it wrote. Inactive conversations are skipped.
func Broadcast(ctx context.Context, store Store, relationName string, publish func(Publisher) error) error {
	keys, err := store.Active(ctx, relationName)
	if err != nil {
		return errors.Annotatef(err, "listing %s conversations", relationName)
	}
	for _, key := range keys {
		rec, err := store.Load(ctx, key)
		if err != nil {
			return errors.Annotatef(err, "loading conversation %s", key)
		}
		if err := publish(rec.Publisher()); err != nil {
			return errors.Annotatef(err, "publishing to %s", key)
		}
		if err := store.Save(ctx, rec); err != nil {
			return errors.Annotatef(err, "saving conversation %s", key)
		}
	}
	return nil
}
