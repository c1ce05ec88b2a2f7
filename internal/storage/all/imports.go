// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (rewardsetl/internal/storage/postgres)
//   - "mssql"    (rewardsetl/internal/storage/mssql)
//   - "mysql"    (rewardsetl/internal/storage/mysql)
//   - "sqlite"   (rewardsetl/internal/storage/sqlite)
//
// Typical usage (in cmd/rewardsetl/main.go):
//
//	import _ "rewardsetl/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{Kind: cfg.DB.Kind, DSN: dsn})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
package all

import (
	_ "rewardsetl/internal/storage/mssql"
	_ "rewardsetl/internal/storage/mysql"
	_ "rewardsetl/internal/storage/postgres"
	_ "rewardsetl/internal/storage/sqlite"
)
