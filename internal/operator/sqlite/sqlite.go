// Package sqlite implements the storage operator over a key/value table
// in a SQLite database. Paths are flat keys; there is no directory
// hierarchy, so create-directory is not supported.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/laguz/internal/operator"
)

// SQLite implements operator.Operator over one table of one database.
type SQLite struct {
	conn  *sql.DB
	table string
}

// New opens (or creates) the database at cfg.Path and ensures the
// object table exists. cfg.Table is validated as a plain identifier by
// the config translator before it reaches DDL.
func New(cfg *operator.SQLiteConfig) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", mapErr(err))
	}
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	path       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, cfg.Table)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &SQLite{conn: conn, table: cfg.Table}, nil
}

func normalize(path string) string {
	return strings.TrimPrefix(path, "/")
}

// Read returns the blob stored at path.
func (s *SQLite) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	q := fmt.Sprintf(`SELECT data FROM %s WHERE path = ?`, s.table)
	err := s.conn.QueryRowContext(ctx, q, normalize(path)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: read %s: %w", path, operator.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: read %s: %w", path, err)
	}
	return data, nil
}

// Write upserts the blob at path.
func (s *SQLite) Write(ctx context.Context, path string, content []byte) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (path, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at
	`, s.table)
	if _, err := s.conn.ExecContext(ctx, q, normalize(path), content, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: write %s: %w", path, err)
	}
	return nil
}

// Stat returns metadata for the row at path. Rows are always files.
func (s *SQLite) Stat(ctx context.Context, path string) (operator.Metadata, error) {
	var size int64
	var updated time.Time
	q := fmt.Sprintf(`SELECT length(data), updated_at FROM %s WHERE path = ?`, s.table)
	err := s.conn.QueryRowContext(ctx, q, normalize(path)).Scan(&size, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return operator.Metadata{}, fmt.Errorf("sqlite: stat %s: %w", path, operator.ErrNotFound)
	}
	if err != nil {
		return operator.Metadata{}, fmt.Errorf("sqlite: stat %s: %w", path, err)
	}
	return operator.Metadata{Size: size, ModTime: updated}, nil
}

// Delete removes the row at path. A missing row is not an error.
func (s *SQLite) Delete(ctx context.Context, path string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE path = ?`, s.table)
	if _, err := s.conn.ExecContext(ctx, q, normalize(path)); err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", path, err)
	}
	return nil
}

// List returns every row whose path starts with the given prefix. The
// store is flat, so all entries are files.
func (s *SQLite) List(ctx context.Context, path string) ([]operator.Entry, error) {
	prefix := normalize(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	q := fmt.Sprintf(`SELECT path, length(data), updated_at FROM %s WHERE path LIKE ? ESCAPE '\' ORDER BY path`, s.table)
	rows, err := s.conn.QueryContext(ctx, q, likeEscape(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", path, err)
	}
	defer rows.Close()

	var entries []operator.Entry
	for rows.Next() {
		var p string
		var size int64
		var updated time.Time
		if err := rows.Scan(&p, &size, &updated); err != nil {
			return nil, fmt.Errorf("sqlite: list %s: %w", path, err)
		}
		name := p
		if i := strings.LastIndex(p, "/"); i >= 0 {
			name = p[i+1:]
		}
		entries = append(entries, operator.Entry{
			Name: name,
			Path: p,
			Meta: operator.Metadata{Size: size, ModTime: updated},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", path, err)
	}
	return entries, nil
}

// CreateDir is not supported: the table is a flat key/value store.
func (s *SQLite) CreateDir(_ context.Context, path string) error {
	return fmt.Errorf("sqlite: create dir %s: %w", path, operator.ErrUnsupported)
}

// Copy duplicates the row at source to target, replacing target if it
// exists.
func (s *SQLite) Copy(ctx context.Context, source, target string) error {
	q := fmt.Sprintf(`
		INSERT INTO %[1]s (path, data, updated_at)
		SELECT ?, data, ? FROM %[1]s WHERE path = ?
		ON CONFLICT(path) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at
	`, s.table)
	res, err := s.conn.ExecContext(ctx, q, normalize(target), time.Now().UTC(), normalize(source))
	if err != nil {
		return fmt.Errorf("sqlite: copy %s to %s: %w", source, target, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: copy %s: %w", source, operator.ErrNotFound)
	}
	return nil
}

// Rename moves the row at source to target, replacing target if it
// exists.
func (s *SQLite) Rename(ctx context.Context, source, target string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	src, dst := normalize(source), normalize(target)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE path = ?`, s.table), dst); err != nil {
		return fmt.Errorf("sqlite: rename %s: %w", source, err)
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET path = ?, updated_at = ? WHERE path = ?`, s.table),
		dst, time.Now().UTC(), src)
	if err != nil {
		return fmt.Errorf("sqlite: rename %s to %s: %w", source, target, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: rename %s: %w", source, operator.ErrNotFound)
	}
	return tx.Commit()
}

// Capability reports everything but create-directory.
func (s *SQLite) Capability() operator.Capability {
	return operator.Capability{
		Read: true, Write: true, List: true, Stat: true,
		Delete: true, Copy: true, Rename: true, CreateDir: false,
	}
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// likeEscape escapes LIKE metacharacters in a literal prefix.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	// Ping failures on an unreadable or locked database surface as
	// connection faults.
	return fmt.Errorf("%w: %v", operator.ErrConnection, err)
}
