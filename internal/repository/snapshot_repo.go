package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fireplus_bridge/internal/models"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

var _ SnapshotRepo = (*SnapshotSQLite)(nil)

const (
	snapshotRowID = 1

	upsertSnapshotSQL = `
		INSERT INTO fireplus_snapshot (id, version, serial_number, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version=excluded.version,
			serial_number=excluded.serial_number,
			payload=excluded.payload,
			fetched_at=excluded.fetched_at
	`

	selectSnapshotSQL = `
		SELECT payload, fetched_at
		FROM fireplus_snapshot WHERE id=?
	`
)

// Save replaces the stored snapshot. A zero FetchedAt is stamped with now.
func (r *SnapshotSQLite) Save(ctx context.Context, s models.Snapshot) error {
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now().UTC()
	} else {
		s.FetchedAt = s.FetchedAt.UTC()
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, upsertSnapshotSQL,
		snapshotRowID,
		int(s.Version),
		s.SerialNumber,
		string(payload),
		s.FetchedAt,
	); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot; ok is false when none was saved yet.
func (r *SnapshotSQLite) Load(ctx context.Context) (models.Snapshot, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, selectSnapshotSQL, snapshotRowID).Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, false, nil
		}
		return models.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var s models.Snapshot
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	s.FetchedAt = fetchedAt.UTC()
	return s, true, nil
}
