package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./records.db". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", dsn, err)
	}
	// SQLite serialises writers; a single connection also keeps :memory:
	// databases from splitting across pool connections.
	db.SetMaxOpenConns(1)
	return db, nil
}
