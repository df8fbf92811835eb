package service

import (
	"context"
	"strings"
	"time"

	"thermostat_automation/internal/models"
	"thermostat_automation/internal/repository"
)

// ScheduleQuery filters the schedule listing; zero values mean no bound.
type ScheduleQuery struct {
	From time.Time // inclusive
	To   time.Time // inclusive
	Type string    // "", "heat", "stop"
}

type ScheduleLogService struct {
	repo repository.ScheduleRepo
}

func NewScheduleLogService(repo repository.ScheduleRepo) *ScheduleLogService {
	return &ScheduleLogService{repo: repo}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and lowercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// normalizeAndValidateQuery prepares query parameters and validates the time range and type.
func normalizeAndValidateQuery(ownerID string, q ScheduleQuery) (repository.ScheduleFilter, error) {
	f := repository.ScheduleFilter{
		OwnerID: ownerID,
		From:    normalizeToUTC(q.From),
		To:      normalizeToUTC(q.To),
		Type:    normalizeEventType(q.Type),
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return repository.ScheduleFilter{}, ErrInvalidTimeRange
	}
	switch f.Type {
	case "", models.EventHeat, models.EventStop:
	default:
		return repository.ScheduleFilter{}, ErrInvalidEventType
	}
	return f, nil
}

// List returns schedule events; an empty ownerID lists every owner.
func (s *ScheduleLogService) List(ctx context.Context, ownerID string, q ScheduleQuery) ([]models.ScheduleEvent, error) {
	f, err := normalizeAndValidateQuery(ownerID, q)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f)
}
