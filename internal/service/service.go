package service

import (
	"context"
	"time"

	"fireplus_bridge/internal/fireplus"
	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/repository"
)

// Device is the fire+ controller as seen by the services.
// *fireplus.Client implements it.
type Device interface {
	Read(ctx context.Context) (models.Snapshot, error)
	UpdateSettings(ctx context.Context, s fireplus.Settings) error
}

// Publisher receives every successful poll and availability changes.
type Publisher interface {
	PublishSnapshot(s models.Snapshot) error
	PublishAvailability(available bool) error
}

// Poller runs the background loop that keeps the latest snapshot current.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
	Refresh(ctx context.Context) (models.Snapshot, error)
	Latest() (models.Snapshot, bool)
}

// Monitoring exposes read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (models.Snapshot, error)
	Sensors(ctx context.Context) (models.Sensors, error)
}

// Controls writes settings to the controller.
type Controls interface {
	Apply(ctx context.Context, p SettingsParams) error
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Poller
	Monitoring
	Controls
	EventLog
}

// Deps are the collaborators NewService wires together.
type Deps struct {
	Device      Device
	Repos       *repository.Repository
	Publishers  []Publisher
	SettleDelay time.Duration
	Log         *logger.Logger
}

func NewService(d Deps) *Service {
	poller := NewPollerService(d.Device, d.Repos.SnapshotRepo, d.Repos.EventRepo, d.Log, d.Publishers...)
	return &Service{
		Poller:     poller,
		Monitoring: NewMonitoringService(poller, d.Repos.SnapshotRepo),
		Controls:   NewControlsService(d.Device, poller, d.Repos.EventRepo, d.SettleDelay, d.Log),
		EventLog:   NewEventLogService(d.Repos.EventRepo),
	}
}
