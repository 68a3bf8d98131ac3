// Package analytics implements the fixed inventory reports: the dead
// stock aggregate and the per-product recommendation decision tree. The
// SQL here is fixed at build time and never passes through the query
// gateway classifier.
package analytics

import "database/sql"

// Store provides read access to the inventory database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
