package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
)

// Snapshot is one recorded reconciliation pass.
type Snapshot struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Generated   time.Time `json:"generated"`
	Fingerprint string    `json:"fingerprint"`
	TotalRaw    int       `json:"total_raw"`
	TotalKept   int       `json:"total_kept"`
	Version     string    `json:"version"`
}

// SnapshotStore keeps catalog history in SQLite.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshotStore opens (creating if needed) the database at path.
func OpenSnapshotStore(ctx context.Context, path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "snapshot store", path, err)
	}
	s, err := NewSnapshotStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSnapshotStore wraps an open database and migrates its schema.
func NewSnapshotStore(ctx context.Context, db *sql.DB) (*SnapshotStore, error) {
	s := &SnapshotStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, errors.WrapResource("migrate", "snapshot store", "", err)
	}
	return s, nil
}

func (s *SnapshotStore) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		generated TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		total_raw INTEGER NOT NULL DEFAULT 0,
		total_kept INTEGER NOT NULL DEFAULT 0,
		version TEXT NOT NULL DEFAULT '',
		document TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS snapshots_fingerprint ON snapshots (fingerprint);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Record stores doc unless its fingerprint matches the latest snapshot. It
// reports whether a row was written.
func (s *SnapshotStore) Record(ctx context.Context, doc *catalog.Document) (bool, error) {
	fp := doc.Metadata.Fingerprint
	if fp == "" {
		var err error
		if fp, err = doc.ComputeFingerprint(); err != nil {
			return false, errors.WrapResource("fingerprint", "snapshot", doc.Metadata.RunID, err)
		}
	}

	latest, err := s.Latest(ctx)
	if err != nil && !errors.IsNotFound(err) {
		return false, err
	}
	if latest != nil && latest.Fingerprint == fp {
		return false, nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return false, errors.WrapResource("encode", "snapshot", doc.Metadata.RunID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO snapshots (
		run_id, generated, fingerprint, total_raw, total_kept, version, document
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Metadata.RunID,
		doc.Metadata.Generated.UTC().Format(time.RFC3339Nano),
		fp,
		doc.Metadata.Stats.TotalRaw,
		doc.Metadata.Stats.TotalKept,
		doc.Metadata.Version,
		string(body),
	)
	if err != nil {
		return false, errors.WrapResource("insert", "snapshot", doc.Metadata.RunID, err)
	}
	return true, nil
}

const snapshotColumns = `id, run_id, generated, fingerprint, total_raw, total_kept, version`

// List returns up to limit snapshots, newest first.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.WrapResource("list", "snapshot", "", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "snapshot", "", err)
	}
	return out, nil
}

// Latest returns the newest snapshot, or a NotFoundError.
func (s *SnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY id DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("snapshot", "latest")
	}
	return snap, err
}

// Document loads the full document recorded with snapshot id.
func (s *SnapshotStore) Document(ctx context.Context, id int64) (*catalog.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("snapshot", formatID(id))
	}
	if err != nil {
		return nil, errors.WrapResource("get", "snapshot", formatID(id), err)
	}
	var doc catalog.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, errors.NewParseError("json", "snapshot "+formatID(id), "stored document is corrupt", err)
	}
	return &doc, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		generated string
	)
	err := row.Scan(&snap.ID, &snap.RunID, &generated, &snap.Fingerprint,
		&snap.TotalRaw, &snap.TotalKept, &snap.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.WrapResource("scan", "snapshot", "", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, generated); err == nil {
		snap.Generated = t
	}
	return &snap, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
