package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
	"github.com/cognicore/tagassoc/pkg/tagassoc/tags"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDSource
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, internalerr.ErrStoreUnavailable)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, ids: store.NewIDSource()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. bundle_rows holds the row
// pointer array and bundle_entries the column/value arrays, by position.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS bundles (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	formula TEXT NOT NULL DEFAULT '',
	post_count INTEGER NOT NULL,
	n_rows INTEGER NOT NULL,
	n_cols INTEGER NOT NULL,
	nnz INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS bundles_kind ON bundles(kind, id);

CREATE TABLE IF NOT EXISTS bundle_tags (
	bundle_id TEXT NOT NULL,
	tag_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(bundle_id, tag_id),
	FOREIGN KEY(bundle_id) REFERENCES bundles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bundle_rows (
	bundle_id TEXT NOT NULL,
	row_idx INTEGER NOT NULL,
	start INTEGER NOT NULL,
	PRIMARY KEY(bundle_id, row_idx),
	FOREIGN KEY(bundle_id) REFERENCES bundles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bundle_entries (
	bundle_id TEXT NOT NULL,
	pos INTEGER NOT NULL,
	col INTEGER NOT NULL,
	val REAL NOT NULL,
	PRIMARY KEY(bundle_id, pos),
	FOREIGN KEY(bundle_id) REFERENCES bundles(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveBundle writes a bundle in one transaction.
func (s *sqliteStore) SaveBundle(ctx context.Context, b store.Bundle) (string, error) {
	if err := b.Check(); err != nil {
		return "", err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.ID == "" {
		b.ID = s.ids.New(b.CreatedAt)
	}
	raw := b.Matrix.Raw()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO bundles (id, kind, formula, post_count, n_rows, n_cols, nnz, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = tx.ExecContext(ctx, stmt,
		b.ID,
		string(b.Kind),
		b.Formula,
		b.PostCount,
		raw.NRows,
		raw.NCols,
		len(raw.Val),
		b.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert bundle %s: %w", b.ID, err)
	}

	if err := insertTags(ctx, tx, b.ID, b.Tags); err != nil {
		return "", err
	}
	if err := insertRows(ctx, tx, b.ID, raw.RowPtr); err != nil {
		return "", err
	}
	if err := insertEntries(ctx, tx, b.ID, raw.ColIdx, raw.Val); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return b.ID, nil
}

func insertTags(ctx context.Context, tx *sql.Tx, bundleID string, list []tags.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bundle_tags (bundle_id, tag_id, name, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, e := range list {
		if _, err := stmt.ExecContext(ctx, bundleID, id, e.Name, int64(e.Count)); err != nil {
			return fmt.Errorf("insert tag %q: %w", e.Name, err)
		}
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, bundleID string, rowPtr []int) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bundle_rows (bundle_id, row_idx, start) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, start := range rowPtr {
		if _, err := stmt.ExecContext(ctx, bundleID, i, start); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, bundleID string, cols []int, vals []float64) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bundle_entries (bundle_id, pos, col, val) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, col := range cols {
		if _, err := stmt.ExecContext(ctx, bundleID, k, col, vals[k]); err != nil {
			return fmt.Errorf("insert entry %d: %w", k, err)
		}
	}
	return nil
}

// LoadBundle reads a bundle and revalidates its matrix.
func (s *sqliteStore) LoadBundle(ctx context.Context, id string) (store.Bundle, error) {
	var (
		b         store.Bundle
		kind      string
		createdAt string
		raw       sparse.Raw
		nnz       int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, kind, formula, post_count, n_rows, n_cols, nnz, created_at
FROM bundles WHERE id = ?`, id).Scan(
		&b.ID, &kind, &b.Formula, &b.PostCount, &raw.NRows, &raw.NCols, &nnz, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Bundle{}, fmt.Errorf("bundle %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Bundle{}, err
	}
	b.Kind = store.Kind(kind)
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return store.Bundle{}, fmt.Errorf("bundle %s created_at: %w", id, err)
	}

	if b.Tags, err = s.loadTags(ctx, id); err != nil {
		return store.Bundle{}, err
	}
	if raw.RowPtr, err = s.loadRowPtr(ctx, id, raw.NRows+1); err != nil {
		return store.Bundle{}, err
	}
	if raw.ColIdx, raw.Val, err = s.loadEntries(ctx, id, nnz); err != nil {
		return store.Bundle{}, err
	}

	if b.Matrix, err = sparse.FromRaw(raw); err != nil {
		return store.Bundle{}, fmt.Errorf("bundle %s: %w", id, err)
	}
	return b, nil
}

func (s *sqliteStore) loadTags(ctx context.Context, id string) ([]tags.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, count FROM bundle_tags WHERE bundle_id = ? ORDER BY tag_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tags.Entry
	for rows.Next() {
		var e tags.Entry
		if err := rows.Scan(&e.Name, &e.Count); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadRowPtr(ctx context.Context, id string, n int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT start FROM bundle_rows WHERE bundle_id = ? ORDER BY row_idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int, 0, n)
	for rows.Next() {
		var start int
		if err := rows.Scan(&start); err != nil {
			return nil, err
		}
		out = append(out, start)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadEntries(ctx context.Context, id string, nnz int) ([]int, []float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT col, val FROM bundle_entries WHERE bundle_id = ? ORDER BY pos`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols := make([]int, 0, nnz)
	vals := make([]float64, 0, nnz)
	for rows.Next() {
		var (
			col int
			val float64
		)
		if err := rows.Scan(&col, &val); err != nil {
			return nil, nil, err
		}
		cols = append(cols, col)
		vals = append(vals, val)
	}
	return cols, vals, rows.Err()
}

// LatestBundle loads the newest bundle of a kind. IDs are ULIDs, so the
// greatest ID is the most recent save.
func (s *sqliteStore) LatestBundle(ctx context.Context, kind store.Kind) (store.Bundle, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM bundles WHERE kind = ? ORDER BY id DESC LIMIT 1`, string(kind)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Bundle{}, fmt.Errorf("no %s bundle: %w", kind, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Bundle{}, err
	}
	return s.LoadBundle(ctx, id)
}

// ListBundles describes every bundle, oldest first.
func (s *sqliteStore) ListBundles(ctx context.Context) ([]store.Info, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT b.id, b.kind, b.formula, b.post_count, b.n_rows, b.n_cols, b.nnz, b.created_at,
	(SELECT COUNT(*) FROM bundle_tags t WHERE t.bundle_id = b.id)
FROM bundles b
ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Info
	for rows.Next() {
		var (
			info      store.Info
			kind      string
			createdAt string
		)
		if err := rows.Scan(&info.ID, &kind, &info.Formula, &info.PostCount,
			&info.Rows, &info.Cols, &info.NNZ, &createdAt, &info.TagCount); err != nil {
			return nil, err
		}
		info.Kind = store.Kind(kind)
		if info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("bundle %s created_at: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteBundle removes a bundle and its child rows.
func (s *sqliteStore) DeleteBundle(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"bundle_entries", "bundle_rows", "bundle_tags"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE bundle_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("bundle %s: %w", id, internalerr.ErrNotFound)
	}
	return tx.Commit()
}
