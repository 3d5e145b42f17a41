package repository

import (
	"context"
	"database/sql"
	"time"

	"fireplus_bridge/internal/models"
)

// SnapshotRepo keeps only the most recent poll result.
type SnapshotRepo interface {
	Save(ctx context.Context, s models.Snapshot) error
	Load(ctx context.Context) (models.Snapshot, bool, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

type Repository struct {
	SnapshotRepo SnapshotRepo
	EventRepo    EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SnapshotRepo: NewSnapshotSQLite(db),
		EventRepo:    NewEventSQLite(db),
	}
}
