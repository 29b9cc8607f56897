package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
	"vacuum_bridge/internal/repository"

	"github.com/google/uuid"
)

// EventLogService is the fleet journal: append-only writes from the
// watcher, fleet and monitors, filtered reads for the API.
type EventLogService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewEventLogService(eventRepo repository.EventRepo, log *logger.Logger) *EventLogService {
	return &EventLogService{eventRepo: eventRepo, log: log}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{
		From:     normalizeToUTC(f.From),
		To:       normalizeToUTC(f.To),
		Type:     normalizeEventType(f.Type),
		DeviceID: strings.TrimSpace(f.DeviceID),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	return out, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.FleetEvent, error) {
	nf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, repository.EventQuery{
		From:     nf.From,
		To:       nf.To,
		Type:     nf.Type,
		DeviceID: nf.DeviceID,
	})
}

// Record appends e to the journal. Failures are logged and swallowed:
// the journal must never block fleet control.
func (s *EventLogService) Record(ctx context.Context, e models.FleetEvent) {
	if s == nil || s.eventRepo == nil {
		return
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := s.eventRepo.Append(ctx, e); err != nil && s.log != nil {
		s.log.Warnw("journal_append_failed", "err", err, "type", e.Type, "device_id", e.DeviceID)
	}
}
