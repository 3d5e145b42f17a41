package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from is after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

// EventLogService reads the operational log written by the poller and controls.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns matching events oldest first. A positive Limit keeps the
// newest Limit of them.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, f.From, f.To, f.Type)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}

// normalize moves the bounds to UTC and canonicalizes the type.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{
		From:  toUTC(f.From),
		To:    toUTC(f.To),
		Type:  strings.ToUpper(strings.TrimSpace(f.Type)),
		Limit: f.Limit,
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	if out.Type != "" && !models.IsEventType(out.Type) {
		return LogFilter{}, fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
	}
	return out, nil
}
