package service

import (
	"context"
	"fmt"
	"time"

	"fireplus_bridge/internal/fireplus"
	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/repository"
)

// DefaultSettleDelay is how long the controller needs before a read reflects a write.
const DefaultSettleDelay = time.Second

type refresher interface {
	Latest() (models.Snapshot, bool)
	Refresh(ctx context.Context) (models.Snapshot, error)
}

type ControlsService struct {
	device      Device
	poller      refresher
	eventRepo   repository.EventRepo
	settleDelay time.Duration
	log         *logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewControlsService(device Device, poller refresher, eventRepo repository.EventRepo, settleDelay time.Duration, log *logger.Logger) *ControlsService {
	return &ControlsService{
		device:      device,
		poller:      poller,
		eventRepo:   eventRepo,
		settleDelay: settleDelay,
		log:         log.Named("controls"),
		sleep:       sleepCtx,
	}
}

// Apply validates p against the controller's protocol version, writes it and
// refreshes the poller once the controller has settled.
func (s *ControlsService) Apply(ctx context.Context, p SettingsParams) error {
	current, ok := s.poller.Latest()
	if !ok {
		var err error
		if current, err = s.poller.Refresh(ctx); err != nil {
			return err
		}
	}
	if err := validateSettings(current.Version, p); err != nil {
		return err
	}

	if err := s.device.UpdateSettings(ctx, p.settings()); err != nil {
		return err
	}

	if err := s.eventRepo.Append(ctx, models.DeviceEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventSettingsChanged,
		Description: "Settings written to controller",
		Metadata:    p,
	}); err != nil {
		s.log.Errorw("event_append_failed", "type", models.EventSettingsChanged, "err", err)
	}

	if err := s.sleep(ctx, s.settleDelay); err != nil {
		return err
	}
	if _, err := s.poller.Refresh(ctx); err != nil {
		// the write itself went through
		s.log.Warnw("refresh_after_write_failed", "err", err)
	}
	return nil
}

func validateSettings(v models.ProtocolVersion, p SettingsParams) error {
	if p.settings().Empty() {
		return errNoSettings
	}
	if p.Brightness != nil && !inPercent(*p.Brightness) {
		return errBrightnessRange
	}
	if p.Volume != nil {
		if !fireplus.SupportsVolume(v) {
			return errVolumeUnsupported
		}
		if !inPercent(*p.Volume) {
			return errVolumeRange
		}
	}
	if p.LED != nil && !fireplus.SupportsLED(v) {
		return errLEDUnsupported
	}
	if p.BurnRate != nil {
		lo, hi, err := fireplus.BurnRateRange(v)
		if err != nil {
			return err
		}
		if *p.BurnRate < lo || *p.BurnRate > hi {
			return fmt.Errorf("%w: burn_rate must be between %d and %d", ErrInvalidSettings, lo, hi)
		}
	}
	return nil
}

func inPercent(n int) bool { return n >= 0 && n <= 100 }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
