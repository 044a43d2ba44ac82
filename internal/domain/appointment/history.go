package appointment

import (
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionUpdated     HistoryAction = "updated"
	ActionCancelled   HistoryAction = "cancelled"
	ActionRescheduled HistoryAction = "rescheduled"
	ActionCompleted   HistoryAction = "completed"
	ActionNoShow      HistoryAction = "no_show"
)

// History is an append-only audit row for one appointment mutation. Rows are
// written inside the same unit of work as the mutation and never updated or
// deleted afterwards.
type History struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Timestamp time.Time `gorm:"autoCreateTime;index"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`

	Action    HistoryAction  `gorm:"column:action;type:varchar(20);not null"`
	OldValues map[string]any `gorm:"column:old_values;serializer:json"`
	NewValues map[string]any `gorm:"column:new_values;serializer:json"`
	Reason    string         `gorm:"column:reason;type:text"`

	PerformedBy uuid.UUID `gorm:"column:performed_by;type:uuid"`
}

func (History) TableName() string {
	return "clinical.appointment_history"
}

// historyActionFor maps a lifecycle target status onto its history action.
func historyActionFor(target Status) HistoryAction {
	switch target {
	case StatusCancelled:
		return ActionCancelled
	case StatusCompleted:
		return ActionCompleted
	case StatusNoShow:
		return ActionNoShow
	case StatusRescheduled:
		return ActionRescheduled
	default:
		return ActionUpdated
	}
}

// NewTransitionHistory builds the history row for a status change.
func NewTransitionHistory(a *Appointment, from Status, reason string, performedBy uuid.UUID) *History {
	return &History{
		AppointmentID: a.ID,
		Action:        historyActionFor(a.Status),
		OldValues:     map[string]any{"status": string(from)},
		NewValues:     map[string]any{"status": string(a.Status)},
		Reason:        reason,
		PerformedBy:   performedBy,
	}
}
