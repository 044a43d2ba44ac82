package appointment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status is the appointment lifecycle state. All writes go through the
// transition table below; handlers never flip the status field directly.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Occupying reports whether an appointment in this status blocks its time
// slot. Cancelled, completed and no-show appointments free the slot.
func (s Status) Occupying() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// allowedTransitions is the single source of truth for the lifecycle:
//
//	scheduled → confirmed → in_progress → completed (terminal)
//
// with cancelled/no_show as side exits that can be rescheduled back into
// scheduled, and rescheduled as a transient marker.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:   {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed:   {StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusInProgress:  {StatusCompleted, StatusCancelled},
	StatusCompleted:   {},
	StatusCancelled:   {StatusScheduled},
	StatusNoShow:      {StatusScheduled},
	StatusRescheduled: {StatusScheduled, StatusConfirmed},
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Number string `gorm:"column:number;type:varchar(20);uniqueIndex;not null"`

	PatientID  uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	ProviderID uuid.UUID  `gorm:"column:provider_id;type:uuid;not null;index"`
	TypeID     *uuid.UUID `gorm:"column:type_id;type:uuid"`

	ScheduledAt  time.Time `gorm:"column:scheduled_at;not null;index"`
	DurationMins int       `gorm:"column:duration_mins;not null;default:30"`

	Status   Status   `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index"`
	Priority Priority `gorm:"column:priority;type:varchar(10);not null;default:'normal'"`

	Reason   string `gorm:"column:reason;type:text"`
	Symptoms string `gorm:"column:symptoms;type:text"`
	Notes    string `gorm:"column:notes;type:text"`

	// Lifecycle timestamps, each set exactly once by its transition.
	CheckedInAt *time.Time `gorm:"column:checked_in_at"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	NoShowAt    *time.Time `gorm:"column:no_show_at"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text"`
	CancelledBy        string     `gorm:"column:cancelled_by;type:varchar(20)"` // 'patient', 'doctor', 'staff', 'system'

	FollowUpRequired bool       `gorm:"column:follow_up_required;default:false"`
	FollowUpDate     *time.Time `gorm:"column:follow_up_date"`
	FollowUpNotes    string     `gorm:"column:follow_up_notes;type:text"`

	// Recurrence: children reference the anchor through ParentID, a shallow
	// one-level tree. The anchor itself has a nil ParentID.
	IsRecurring        bool       `gorm:"column:is_recurring;default:false"`
	RecurringPatternID *uuid.UUID `gorm:"column:recurring_pattern_id;type:uuid;index"`
	ParentID           *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`

	// Contact used for reminders and lifecycle notifications; profile data
	// itself lives outside this service.
	ContactEmail string `gorm:"column:contact_email;type:varchar(255)"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

func (a *Appointment) Slot() Slot {
	return Slot{Start: a.ScheduledAt, DurationMins: a.DurationMins}
}

func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMins) * time.Minute)
}

// Day returns the appointment's calendar date at midnight.
func (a *Appointment) Day() time.Time {
	y, m, d := a.ScheduledAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.ScheduledAt.Location())
}

func (a *Appointment) CanTransitionTo(target Status) bool {
	for _, s := range allowedTransitions[a.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition applies a lifecycle move, setting the timestamp owned by the
// target state. now is injected so callers can use a test clock. Returns a
// *TransitionError (which unwraps to ErrInvalidStatusTransition) without
// mutating the appointment when the move is not in the allowed table.
func (a *Appointment) Transition(target Status, actor, reason string, now time.Time) error {
	if !a.CanTransitionTo(target) {
		return &TransitionError{From: a.Status, To: target}
	}

	a.Status = target
	switch target {
	case StatusInProgress:
		a.StartedAt = &now
	case StatusCompleted:
		a.CompletedAt = &now
	case StatusCancelled:
		a.CancelledAt = &now
		a.CancellationReason = reason
		a.CancelledBy = actor
	case StatusNoShow:
		a.NoShowAt = &now
	}
	return nil
}

// CheckIn is the confirmed transition entered at the front desk; unlike a
// plain confirm it also stamps CheckedInAt.
func (a *Appointment) CheckIn(now time.Time) error {
	if err := a.Transition(StatusConfirmed, "", "", now); err != nil {
		return err
	}
	a.CheckedInAt = &now
	return nil
}

// NewNumber generates a human-facing appointment number.
func NewNumber() string {
	return fmt.Sprintf("APT%06d", rand.Intn(900000)+100000)
}

type BookCommand struct {
	PatientID    uuid.UUID
	ProviderID   uuid.UUID
	TypeID       *uuid.UUID
	ScheduledAt  time.Time
	DurationMins int // 0 means "use the appointment type's default"
	Priority     Priority
	Reason       string
	Symptoms     string
	Notes        string
	ContactEmail string
	CreatedBy    uuid.UUID

	// Set by the series coordinator when materializing recurring instances.
	RecurringPatternID *uuid.UUID
	ParentID           *uuid.UUID
}

type TransitionCommand struct {
	Target Status
	Actor  string
	Reason string
	// PerformedBy is the user recorded on the history row.
	PerformedBy uuid.UUID
}

type FollowUpCommand struct {
	Date      time.Time
	Notes     string
	CreatedBy uuid.UUID
}
