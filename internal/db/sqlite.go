package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sermons (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    scripture TEXT NOT NULL,
    sermon_date TEXT,
    block_count INTEGER NOT NULL DEFAULT 0,
    snapshot BLOB,
    export BLOB,
    export_name TEXT,
    content_hash TEXT,
    submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sermons_submitted_at ON sermons(submitted_at);`

type SQLite struct {
	path string
	conn *sql.DB
}

// NewSQLite returns an unopened database at path. ":memory:" works for tests.
func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
		conn: nil,
	}
}

func (s *SQLite) InitDB() error {
	var err error
	s.conn, err = sql.Open("sqlite3", s.path)
	if err != nil {
		return err
	}

	// One connection keeps ":memory:" databases shared across calls.
	s.conn.SetMaxOpenConns(1)

	res, err := s.conn.Exec(schema)
	if err != nil {
		return err
	}

	dbLogger.Info().Str("path", s.path).Any("db_result", res).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *SQLite) Query(query string, args ...interface{}) (*sql.Rows, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.Query(query, args...)
}

func (s *SQLite) Exec(query string, args ...interface{}) (sql.Result, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.Exec(query, args...)
}

func (s *SQLite) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *SQLite) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.QueryContext(ctx, query, args...)
}
