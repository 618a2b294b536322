package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps ListBookmarks when no limit is given.
const DefaultListLimit = 50

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	fragment   TEXT NOT NULL,
	hits       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_created_at ON bookmarks(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewID returns a short bookmark id: the first block of a random UUID.
func NewID() string {
	id, _, _ := strings.Cut(uuid.New().String(), "-")
	return id
}

func (s *SQLiteStore) CreateBookmark(ctx context.Context, name, fragment string) (*Bookmark, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return nil, eris.New("sqlite: empty fragment")
	}
	now := time.Now().UTC()

	// Short ids can collide; retry with a fresh one.
	for attempt := 0; attempt < 3; attempt++ {
		id := NewID()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO bookmarks (id, name, fragment, hits, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
			id, name, fragment, now, now,
		)
		if err == nil {
			return &Bookmark{ID: id, Name: name, Fragment: fragment, CreatedAt: now, UpdatedAt: now}, nil
		}
		if !strings.Contains(err.Error(), "UNIQUE") {
			return nil, eris.Wrap(err, "sqlite: insert bookmark")
		}
	}
	return nil, eris.New("sqlite: could not allocate bookmark id")
}

func (s *SQLiteStore) GetBookmark(ctx context.Context, id string) (*Bookmark, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET hits = hits + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: touch bookmark %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, fragment, hits, created_at, updated_at FROM bookmarks WHERE id = ?`, id)
	return scanBookmark(row)
}

func (s *SQLiteStore) ListBookmarks(ctx context.Context, limit int) ([]Bookmark, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, fragment, hits, created_at, updated_at FROM bookmarks
		 ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list bookmarks")
	}
	defer rows.Close() //nolint:errcheck

	var out []Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate bookmarks")
}

func (s *SQLiteStore) DeleteBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete bookmark %s", id)
	}
	return checkRowsAffected(res, id)
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBookmark(row scannable) (*Bookmark, error) {
	var b Bookmark
	err := row.Scan(&b.ID, &b.Name, &b.Fragment, &b.Hits, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "scan bookmark")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan bookmark")
	}
	return &b, nil
}
