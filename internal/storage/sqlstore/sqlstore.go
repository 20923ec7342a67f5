// Package sqlstore implements storage.Store on top of database/sql.
// Backend packages (sqlite, postgres) open the connection, run their own
// migrations and wrap it with New.
package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Placeholder is the bind parameter style of a SQL dialect.
type Placeholder int

const (
	// Question binds parameters as ?, used by SQLite.
	Question Placeholder = iota
	// Dollar binds parameters as $1, $2, ..., used by PostgreSQL.
	Dollar
)

// Store implements storage.Store using database/sql.
type Store struct {
	db          *sql.DB
	placeholder Placeholder
}

// New wraps an open, migrated database.
func New(db *sql.DB, placeholder Placeholder) *Store {
	return &Store{db: db, placeholder: placeholder}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// q rewrites the ? placeholders of a query for the store's dialect.
func (s *Store) q(query string) string {
	if s.placeholder == Question {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
