// Package all registers every storage backend with the factory.
// The entry point blank-imports it so the configured kind picks the backend
// at runtime without the core packages importing any driver.
package all

import (
	_ "github.com/infinit3labs/udacity-dend-proj1/internal/storage/mssql"
	_ "github.com/infinit3labs/udacity-dend-proj1/internal/storage/postgres"
	_ "github.com/infinit3labs/udacity-dend-proj1/internal/storage/sqlite"
)
