package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService answers "is this slot free" and "which slots are free"
// against a provider's booked day. It is read-only; the booking path pairs it
// with a provider/day lock and a unique index because a read-then-decide
// check alone cannot exclude concurrent writers.
type AvailabilityService struct {
	repo appointment.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo appointment.Repository, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, log: log}
}

// FindConflict returns the occupied window the candidate slot collides with,
// or nil when the slot is free. excludeID skips one appointment so an
// update-in-place does not conflict with itself. Only occupying statuses
// (scheduled, confirmed, in_progress) block; an empty day means free.
func (s *AvailabilityService) FindConflict(ctx context.Context, providerID uuid.UUID, candidate appointment.Slot, excludeID *uuid.UUID) (*appointment.Slot, error) {
	if providerID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"provider id is required"}}
	}
	if candidate.DurationMins <= 0 {
		return nil, appointment.ErrInvalidDuration
	}

	existing, err := s.repo.ListOccupyingForDay(ctx, providerID, candidate.Day())
	if err != nil {
		return nil, fmt.Errorf("listing provider day: %w", err)
	}

	for _, a := range existing {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if booked := a.Slot(); candidate.Overlaps(booked) {
			return &booked, nil
		}
	}
	return nil, nil
}

// IsFree reports whether the candidate slot can be booked.
func (s *AvailabilityService) IsFree(ctx context.Context, providerID uuid.UUID, start time.Time, durationMins int, excludeID *uuid.UUID) (bool, error) {
	conflict, err := s.FindConflict(ctx, providerID, appointment.Slot{Start: start, DurationMins: durationMins}, excludeID)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// FreeSlots walks [windowStart, windowEnd) in slotSizeMins increments and
// returns the slots that fit entirely in the window and overlap no occupying
// appointment. O(slots × appointments) is fine at clinic scale, where a
// provider's day holds tens of appointments.
func (s *AvailabilityService) FreeSlots(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time, slotSizeMins int) ([]appointment.Slot, error) {
	if providerID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"provider id is required"}}
	}
	if slotSizeMins <= 0 {
		return nil, appointment.ErrInvalidDuration
	}
	if !windowStart.Before(windowEnd) {
		return nil, &ValidationError{Fields: []string{"window start must be before window end"}}
	}

	day := appointment.Slot{Start: windowStart}.Day()
	existing, err := s.repo.ListOccupyingForDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("listing provider day: %w", err)
	}

	step := time.Duration(slotSizeMins) * time.Minute
	var free []appointment.Slot
	for cur := windowStart; !cur.Add(step).After(windowEnd); cur = cur.Add(step) {
		slot := appointment.Slot{Start: cur, DurationMins: slotSizeMins}
		occupied := false
		for _, a := range existing {
			if slot.Overlaps(a.Slot()) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, slot)
		}
	}
	return free, nil
}
