package appointment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrTypeNotFound            = errors.New("appointment type not found")
	ErrAppointmentConflict     = errors.New("appointment time slot is already booked")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrScheduledInPast         = errors.New("cannot schedule appointment in the past")
	ErrInvalidDuration         = errors.New("appointment duration must be positive")
	ErrOutsideBusinessHours    = errors.New("appointment is outside bookable hours")
	ErrInvalidPriority         = errors.New("invalid appointment priority")
	ErrNotPartOfSeries         = errors.New("appointment is not the anchor of a recurring series")
)

// ConflictError reports the occupied window so callers can offer
// alternatives. It unwraps to ErrAppointmentConflict.
type ConflictError struct {
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflicts with an existing appointment from %s to %s",
		e.Start.Format("15:04"), e.End.Format("15:04"))
}

func (e *ConflictError) Unwrap() error { return ErrAppointmentConflict }

// TransitionError reports the current and attempted status. It unwraps to
// ErrInvalidStatusTransition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatusTransition }
