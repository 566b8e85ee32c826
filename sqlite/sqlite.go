// Package sqlite provides the embedded SQL store backing the query-heavy
// services (audit log, quotas, insights).
package sqlite

import (
	"context"
	"sync"

	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	// DefaultFilename is the name of the sqlite database file.
	DefaultFilename = "castield.sqlite"

	// InmemPath is the path to use for opening an in-memory database.
	InmemPath = ":memory:"
)

// SqlStore is a wrapper around the database connection shared by the SQL
// backed services. Mu serializes writers; sqlite throws "database is locked"
// errors under concurrent write transactions otherwise.
type SqlStore struct {
	Mu   sync.RWMutex
	DB   *sqlx.DB
	log  *zap.Logger
	path string
}

// NewSqlStore opens the database file at path, creating it if needed.
func NewSqlStore(path string, log *zap.Logger) (*SqlStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	log.Info("Resources opened", zap.String("path", path))

	// An in-memory database is destroyed when its only connection closes.
	// Limit the pool to a single connection so it survives for the life of
	// the store.
	if path == InmemPath {
		db.SetMaxOpenConns(1)
	}

	return &SqlStore{
		DB:   db,
		log:  log,
		path: path,
	}, nil
}

// Close the connection to the sqlite database.
func (s *SqlStore) Close() error {
	return s.DB.Close()
}

// userVersion returns the current value of the user_version pragma.
func (s *SqlStore) userVersion() (int, error) {
	var v int
	if err := s.DB.Get(&v, "PRAGMA user_version"); err != nil {
		return 0, &errors.Error{
			Code: errors.EInternal,
			Msg:  "failed to read user_version",
			Err:  err,
		}
	}
	return v, nil
}

// execTrans executes a script in a single transaction, serialized against
// other writers.
func (s *SqlStore) execTrans(ctx context.Context, stmt string) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// TableNames returns the names of the user tables in the database, mainly
// useful for tests.
func (s *SqlStore) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	return names, nil
}
