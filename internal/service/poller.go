package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/repository"
)

type availability int

const (
	availabilityUnknown availability = iota
	availabilityUp
	availabilityDown
)

// PollerService reads the controller on a fixed interval, keeps the latest
// snapshot in memory and in the store, and fans it out to publishers.
type PollerService struct {
	device     Device
	snapshots  repository.SnapshotRepo
	events     repository.EventRepo
	publishers []Publisher
	log        *logger.Logger

	latest atomic.Pointer[models.Snapshot]

	// mu serializes polls; state is only touched while holding it.
	mu    sync.Mutex
	state availability
}

func NewPollerService(device Device, snapshots repository.SnapshotRepo, events repository.EventRepo, log *logger.Logger, publishers ...Publisher) *PollerService {
	return &PollerService{
		device:     device,
		snapshots:  snapshots,
		events:     events,
		publishers: publishers,
		log:        log.Named("poller"),
	}
}

// Run polls immediately and then on every tick until ctx is canceled.
// Failures are logged and retried on the next tick only.
func (s *PollerService) Run(ctx context.Context, interval time.Duration) {
	_, _ = s.Refresh(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Refresh(ctx)
		}
	}
}

// Latest returns the most recent successful poll held in memory.
func (s *PollerService) Latest() (models.Snapshot, bool) {
	p := s.latest.Load()
	if p == nil {
		return models.Snapshot{}, false
	}
	return *p, true
}

// Refresh polls the controller once. On failure the previous snapshot is kept.
func (s *PollerService) Refresh(ctx context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.device.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return models.Snapshot{}, err
		}
		s.log.Warnw("poll_failed", "err", err)
		s.markUnavailable(ctx, err)
		return models.Snapshot{}, err
	}

	prev := s.latest.Swap(&snap)

	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.log.Errorw("snapshot_save_failed", "err", err)
	}
	s.markAvailable(ctx)
	s.recordTransitions(ctx, prev, snap)

	for _, p := range s.publishers {
		if err := p.PublishSnapshot(snap); err != nil {
			s.log.Warnw("publish_snapshot_failed", "err", err)
		}
	}
	s.log.Debugw("poll_ok",
		"status", snap.OperationStatus,
		"temperature", snap.Temperature,
		"burn_rate", snap.BurnRate,
	)
	return snap, nil
}

func (s *PollerService) markUnavailable(ctx context.Context, cause error) {
	if s.state == availabilityDown {
		return
	}
	s.state = availabilityDown
	s.append(ctx, models.DeviceEvent{
		Type:        models.EventUnavailable,
		Description: "Controller unreachable",
		Metadata:    map[string]any{"err": cause.Error()},
	})
	s.publishAvailability(false)
}

func (s *PollerService) markAvailable(ctx context.Context) {
	if s.state == availabilityUp {
		return
	}
	if s.state == availabilityDown {
		s.append(ctx, models.DeviceEvent{
			Type:        models.EventAvailable,
			Description: "Controller reachable again",
		})
	}
	s.state = availabilityUp
	s.publishAvailability(true)
}

func (s *PollerService) publishAvailability(up bool) {
	for _, p := range s.publishers {
		if err := p.PublishAvailability(up); err != nil {
			s.log.Warnw("publish_availability_failed", "available", up, "err", err)
		}
	}
}

// recordTransitions logs status and error changes against the previous
// snapshot. With no previous snapshot only an active error is logged.
func (s *PollerService) recordTransitions(ctx context.Context, prev *models.Snapshot, cur models.Snapshot) {
	prevErr := models.ErrorNone
	if prev != nil {
		prevErr = prev.Error
		if prev.OperationStatus != cur.OperationStatus {
			s.append(ctx, models.DeviceEvent{
				OccurredAt:  cur.FetchedAt,
				Type:        models.EventStatusChange,
				Description: fmt.Sprintf("%s -> %s", prev.OperationStatus, cur.OperationStatus),
				Metadata: map[string]any{
					"from": prev.OperationStatus.String(),
					"to":   cur.OperationStatus.String(),
				},
			})
		}
	}

	if prevErr == cur.Error && (prev == nil || prev.ErrorCode == cur.ErrorCode) {
		return
	}
	if cur.Error == models.ErrorNone {
		s.append(ctx, models.DeviceEvent{
			OccurredAt:  cur.FetchedAt,
			Type:        models.EventErrorCleared,
			Description: fmt.Sprintf("%s cleared", prevErr),
		})
		return
	}
	s.append(ctx, models.DeviceEvent{
		OccurredAt:  cur.FetchedAt,
		Type:        models.EventError,
		Description: cur.Error.String(),
		Metadata: map[string]any{
			"error_code": cur.ErrorCode,
			"status":     cur.OperationStatus.String(),
		},
	})
}

func (s *PollerService) append(ctx context.Context, e models.DeviceEvent) {
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("event_append_failed", "type", e.Type, "err", err)
	}
}
