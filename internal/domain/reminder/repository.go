package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateBatch(ctx context.Context, rs []*Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)

	// ListDue returns pending reminders whose scheduled time is at or before
	// now.
	ListDue(ctx context.Context, now time.Time) ([]*Reminder, error)

	// Claim atomically moves the reminder from pending to sending. It must be
	// a single conditional update at the storage layer; when the reminder is
	// no longer pending it returns ErrNotClaimed.
	Claim(ctx context.Context, id uuid.UUID) error

	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// CancelPending cancels every pending reminder of the appointment and
	// returns how many were cancelled. Sent and failed reminders are left
	// untouched.
	CancelPending(ctx context.Context, appointmentID uuid.UUID) (int64, error)

	ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Reminder, error)
}
