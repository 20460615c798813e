package app

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/storage"
)

// StoreNamespace separates this client's keys inside a shared database.
const StoreNamespace = "storefront"

// OpenStore picks the durable session store from a location string:
// "memory", a postgres:// DSN, or a file path (optionally prefixed "file:").
// The returned close func is never nil.
func OpenStore(ctx context.Context, location string) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch {
	case location == "" || location == "memory":
		return storage.NewMemoryStore(), noop, nil

	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		db, err := storage.OpenPostgres(location)
		if err != nil {
			return nil, noop, err
		}
		store := storage.NewPostgresStore(db, StoreNamespace)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("prepare session table: %w", err)
		}
		return store, db.Close, nil

	default:
		return storage.NewFileStore(strings.TrimPrefix(location, "file:")), noop, nil
	}
}
