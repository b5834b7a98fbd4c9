// Package all wires all built-in storage backends into the storage factory.
//
// It exists purely for side effects: importing it (even as a blank import)
// runs the init functions of each backend, which register their factories
// with the storage package. After that, storage.New accepts:
//
//   - "postgres" (wrangle/internal/storage/postgres)
//   - "sqlite"   (wrangle/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "wrangle/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN})
package all

import (
	_ "wrangle/internal/storage/postgres"
	_ "wrangle/internal/storage/sqlite"
)
