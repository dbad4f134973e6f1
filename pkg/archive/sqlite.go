package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/provgraph/provis/pkg/errors"
)

// SQLiteStore archives runs in a local single-file database, the
// default for CLI use. The driver is pure Go, so the binary stays
// cgo-free.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	graph_hash  TEXT NOT NULL,
	graph_name  TEXT NOT NULL DEFAULT '',
	strategy    TEXT NOT NULL DEFAULT '',
	tool        TEXT NOT NULL DEFAULT '',
	depth       INTEGER NOT NULL DEFAULT 0,
	zoom        INTEGER NOT NULL DEFAULT 0,
	workers     INTEGER NOT NULL DEFAULT 0,
	nodes       INTEGER NOT NULL DEFAULT 0,
	edges       INTEGER NOT NULL DEFAULT 0,
	width       REAL NOT NULL DEFAULT 0,
	height      REAL NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL DEFAULT 0,
	cache_hit   INTEGER NOT NULL DEFAULT 0,
	created_ns  INTEGER NOT NULL,
	layout      BLOB
);
CREATE INDEX IF NOT EXISTS runs_created ON runs (created_ns DESC);
`

const sqliteColumns = `id, graph_hash, graph_name, strategy, tool, depth, zoom, workers,
	nodes, edges, width, height, duration_ns, cache_hit, created_ns, layout`

// NewSQLiteStore opens the database at path, creating the file and its
// parent directory when needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Put stores a run record, replacing any record with the same ID.
func (s *SQLiteStore) Put(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(id, graph_hash, graph_name, strategy, tool, depth, zoom, workers,
		 nodes, edges, width, height, duration_ns, cache_hit, created_ns, layout)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.GraphHash, run.GraphName, run.Strategy, run.Tool,
		run.Depth, run.Zoom, run.Workers, run.Nodes, run.Edges,
		run.Width, run.Height, int64(run.Duration), run.CacheHit,
		run.CreatedAt.UnixNano(), run.Layout)
	return err
}

// scanRun reads one row in sqliteColumns order.
func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var (
		run        Run
		durationNS int64
		createdNS  int64
	)
	err := row.Scan(&run.ID, &run.GraphHash, &run.GraphName, &run.Strategy,
		&run.Tool, &run.Depth, &run.Zoom, &run.Workers, &run.Nodes,
		&run.Edges, &run.Width, &run.Height, &durationNS, &run.CacheHit,
		&createdNS, &run.Layout)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationNS)
	run.CreatedAt = time.Unix(0, createdNS).UTC()
	return &run, nil
}

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM runs ORDER BY created_ns DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Delete removes a run.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
