// Package all enables every built-in storage backend for its side effects.
//
// Importing it (as a blank import) runs each backend's init, which registers
// its factory and DDL bootstrapper with the storage package:
//
//   - "sqlite"   (flightprep/internal/storage/sqlite)
//   - "postgres" (flightprep/internal/storage/postgres)
//   - "mssql"    (flightprep/internal/storage/mssql)
//   - "mysql"    (flightprep/internal/storage/mysql)
//
// A binary that needs only a subset can import those backends directly.
package all

import (
	_ "flightprep/internal/storage/mssql"
	_ "flightprep/internal/storage/mysql"
	_ "flightprep/internal/storage/postgres"
	_ "flightprep/internal/storage/sqlite"
)
