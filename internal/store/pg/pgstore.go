// Package pg implements the persistence contracts on PostgreSQL.
package pg

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store owns the connection pool and hands out the per-aggregate stores.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool (tests use this with sqlmock).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() *Users       { return &Users{db: s.db} }
func (s *Store) Teams() *Teams       { return &Teams{db: s.db} }
func (s *Store) SignUps() *SignUps   { return &SignUps{db: s.db} }
func (s *Store) Blogs() *Blogs       { return &Blogs{db: s.db} }
func (s *Store) Projects() *Projects { return &Projects{db: s.db} }
func (s *Store) Featured() *Featured { return &Featured{db: s.db} }

// --- jsonb helpers ---

// Collection columns (roles, tags, links) live in jsonb; empty slices encode
// as [] so reads never produce SQL NULL surprises.
func encodeJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func decodeJSON(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
