package service

import (
	"context"
	"time"

	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/repository"
)

type latestSource interface {
	Latest() (models.Snapshot, bool)
}

type MonitoringService struct {
	latest    latestSource
	snapshots repository.SnapshotRepo
}

func NewMonitoringService(latest latestSource, snapshots repository.SnapshotRepo) *MonitoringService {
	return &MonitoringService{latest: latest, snapshots: snapshots}
}

// GetState returns the in-memory snapshot, falling back to the persisted one
// (e.g. right after a restart while the controller is unreachable).
func (s *MonitoringService) GetState(ctx context.Context) (models.Snapshot, error) {
	if snap, ok := s.latest.Latest(); ok {
		return snap, nil
	}
	snap, ok, err := s.snapshots.Load(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	if !ok {
		return models.Snapshot{}, ErrNoSnapshot
	}
	snap.FetchedAt = toUTC(snap.FetchedAt)
	return snap, nil
}

// Sensors returns the derived readings for the current snapshot.
func (s *MonitoringService) Sensors(ctx context.Context) (models.Sensors, error) {
	snap, err := s.GetState(ctx)
	if err != nil {
		return models.Sensors{}, err
	}
	return deriveSensors(snap), nil
}

func deriveSensors(snap models.Snapshot) models.Sensors {
	out := models.Sensors{
		SerialNumber:    snap.SerialNumber,
		Temperature:     snap.Temperature,
		AirSlider:       snap.AirSlider,
		OperatingTime:   snap.OperatingTime,
		OperationStatus: snap.OperationStatus,
		Error:           snap.Error,
		Problem:         snap.Error != models.ErrorNone,
		BurnRate:        snap.BurnRate,
		FetchedAt:       snap.FetchedAt,
	}
	if snap.ChimneyDraughtAvailable {
		d := snap.ChimneyDraught
		out.ChimneyDraught = &d
	}
	if snap.Heating() {
		p := snap.HeatingProgress
		out.HeatingProgress = &p
	}
	if snap.Volume != nil {
		out.VolumeIcon = models.VolumeIconFor(*snap.Volume)
	}
	return out
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
