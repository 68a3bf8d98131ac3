// Package dbx opens the analytics database and runs validated read
// queries under a bounded timeout. PostgreSQL (pgx) and SQLite
// (modernc, pure Go) are supported; the connection is opened read-only
// as a second layer of defense beyond text-level classification.
package dbx

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx as database/sql driver
	_ "modernc.org/sqlite"
)

// Open opens a read-only connection pool for the given driver
// ("postgres" or "sqlite") and DSN.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres":
		db, err := sql.Open("pgx", readOnlyPostgresDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	case "sqlite":
		db, err := sql.Open("sqlite", readOnlySQLiteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// readOnlyPostgresDSN forces read-only transactions at the session level.
func readOnlyPostgresDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "options=" + url.QueryEscape("-c default_transaction_read_only=on")
}

// readOnlySQLiteDSN enables the QUERY_ONLY pragma on every connection.
func readOnlySQLiteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=query_only(1)"
}
