package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists the status, lifecycle timestamps and cancellation
	// metadata of the appointment.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// UpdateFollowUp persists the follow-up marker fields of the appointment.
	UpdateFollowUp(ctx context.Context, a *Appointment) error

	// UpdateRecurrence persists the recurrence marker fields of the anchor.
	UpdateRecurrence(ctx context.Context, a *Appointment) error

	// ListOccupyingForDay returns a provider's appointments on the calendar
	// day starting at day (midnight) whose status blocks a slot.
	ListOccupyingForDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*Appointment, error)

	// ListChildren returns series instances whose ParentID is anchorID,
	// scheduled after the given time and in one of the given statuses.
	ListChildren(ctx context.Context, anchorID uuid.UUID, after time.Time, statuses []Status) ([]*Appointment, error)

	// AppendHistory writes one immutable history row.
	AppendHistory(ctx context.Context, h *History) error
	ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*History, error)

	GetType(ctx context.Context, id uuid.UUID) (*Type, error)
}
