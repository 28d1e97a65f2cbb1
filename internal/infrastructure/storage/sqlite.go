package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const credentialSchema = `
CREATE TABLE IF NOT EXISTS credential (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL
);`

// SQLiteBackend stores the token as the single row of the credential table.
type SQLiteBackend struct {
	db *sqlx.DB
}

var _ ports.TokenBackend = (*SQLiteBackend)(nil)

// OpenSQLite opens (or creates) the database file and ensures the schema.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite : %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(credentialSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating credential table : %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Load(ctx context.Context) (string, bool, error) {
	var token string
	err := s.db.GetContext(ctx, &token, `SELECT token FROM credential WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading token : %w", err)
	}
	return token, token != "", nil
}

func (s *SQLiteBackend) Save(ctx context.Context, token string) error {
	query := `INSERT INTO credential (id, token) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token`
	if _, err := s.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("saving token : %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credential`); err != nil {
		return fmt.Errorf("deleting token : %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteBackend) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite : %w", err)
	}
	return nil
}
