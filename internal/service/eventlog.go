package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thermal_regulator/internal/models"
	"thermal_regulator/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidLimit     = errors.New("invalid limit: must be >= 0")
	errUnknownEventType = errors.New("unknown event type")
)

var knownEventTypes = map[string]struct{}{
	models.EventModeChange:        {},
	models.EventSetpointAccepted:  {},
	models.EventSetpointRejected:  {},
	models.EventCancel:            {},
	models.EventOverheat:          {},
	models.EventOverheatCleared:   {},
	models.EventSensorFault:       {},
	models.EventSensorRestored:    {},
	models.EventControllerStarted: {},
	models.EventControllerStopped: {},
}

// IsInvalidFilter reports whether err was caused by a bad LogFilter.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidLimit) || errors.Is(err, errUnknownEventType)
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the filter.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	if f.Limit < 0 {
		return time.Time{}, time.Time{}, "", errInvalidLimit
	}

	eventType := normalizeEventType(f.Type)
	if eventType != "" {
		if _, ok := knownEventTypes[eventType]; !ok {
			return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %q", errUnknownEventType, eventType)
		}
	}
	return from, to, eventType, nil
}

// List returns matching events oldest first. A positive Limit keeps only the most recent ones.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ControllerEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, from, to, typ)
	if err != nil {
		return nil, err
	}
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}
