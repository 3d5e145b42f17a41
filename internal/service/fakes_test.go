package service

import (
	"context"
	"errors"
	"sync"

	"fireplus_bridge/internal/fireplus"
	"fireplus_bridge/internal/models"
)

var errDeviceDown = errors.New("device down")

// fakeDevice returns queued read results in order; the last one repeats.
type fakeDevice struct {
	mu        sync.Mutex
	reads     []readResult
	readCalls int

	updateErr error
	updates   []fireplus.Settings
}

type readResult struct {
	snap models.Snapshot
	err  error
}

func (d *fakeDevice) Read(ctx context.Context) (models.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readCalls++
	if len(d.reads) == 0 {
		return models.Snapshot{}, errDeviceDown
	}
	r := d.reads[0]
	if len(d.reads) > 1 {
		d.reads = d.reads[1:]
	}
	return r.snap, r.err
}

func (d *fakeDevice) UpdateSettings(ctx context.Context, s fireplus.Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, s)
	return d.updateErr
}

func (d *fakeDevice) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readCalls
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	saved   []models.Snapshot
	saveErr error

	stored  models.Snapshot
	found   bool
	loadErr error
}

func (r *fakeSnapshotRepo) Save(ctx context.Context, s models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return r.saveErr
}

func (r *fakeSnapshotRepo) Load(ctx context.Context) (models.Snapshot, bool, error) {
	return r.stored, r.found, r.loadErr
}

type fakePublisher struct {
	mu           sync.Mutex
	snapshots    []models.Snapshot
	availability []bool
	err          error
}

func (p *fakePublisher) PublishSnapshot(s models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, s)
	return p.err
}

func (p *fakePublisher) PublishAvailability(available bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.availability = append(p.availability, available)
	return p.err
}

func readOK(s models.Snapshot) readResult { return readResult{snap: s} }

func readFail(err error) readResult { return readResult{err: err} }

func snapshotV2(status models.OperationStatus, code int) models.Snapshot {
	vol, cnt, op := 60, 5, 3600
	return models.Snapshot{
		Version:                 models.ProtocolV2,
		SerialNumber:            "SN-42",
		Brightness:              80,
		Volume:                  &vol,
		Temperature:             412,
		MaxTemperature:          450,
		AirSlider:               55.5,
		ChimneyDraught:          12.3,
		ChimneyDraughtAvailable: true,
		OperationStatus:         status,
		Error:                   fireplus.DeviceErrorFor(code),
		ErrorCode:               code,
		Count:                   &cnt,
		OperatingTime:           &op,
		HeatingProgress:         50,
		BurnRate:                5,
	}
}

func snapshotV1() models.Snapshot {
	led := true
	return models.Snapshot{
		Version:         models.ProtocolV1,
		SerialNumber:    "SN-1",
		Brightness:      80,
		Temperature:     50,
		OperationStatus: models.StatusRegular,
		BurnRate:        2,
		LED:             &led,
	}
}

func ptr[T any](v T) *T { return &v }
