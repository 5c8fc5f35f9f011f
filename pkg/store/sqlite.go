package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/pinboard/pkg/errors"
)

// SQLiteStore keeps fragments in a single SQLite database file, one row per
// board.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create store dir")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open sqlite")
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS boards (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "migrate")
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the fragment.
func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateBoardName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s", name)
	}
	return nil
}

// Load returns the stored fragment.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateBoardName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM boards WHERE name = ?`, name).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load %s", name)
	}
	return data, nil
}

// List returns the saved board names in sorted order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM boards ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list boards")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a fragment. Deleting a missing board is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateBoardName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE name = ?`, name)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
