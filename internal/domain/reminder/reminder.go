package reminder

import (
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPhone Channel = "phone"
	ChannelPush  Channel = "push"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPhone, ChannelPush:
		return true
	}
	return false
}

// Status is the reminder delivery state.
//
//	pending → sending → sent
//	pending → sending → failed
//	pending → cancelled
//
// sending is the claim state: a sweep worker moves pending → sending with a
// conditional update before dispatching, so concurrent workers can never
// double-send the same reminder. failed is terminal; retry means a manual
// reset to pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Reminder is owned by exactly one appointment and is cancelled, never
// deleted, when that appointment is cancelled or marked no-show.
type Reminder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`

	Channel   Channel `gorm:"column:channel;type:varchar(20);not null"`
	Recipient string  `gorm:"column:recipient;type:varchar(255);not null"`

	ScheduledTime time.Time `gorm:"column:scheduled_time;not null;index"`
	Status        Status    `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`

	SentAt       *time.Time `gorm:"column:sent_at"`
	ErrorMessage string     `gorm:"column:error_message;type:text"`
}

func (Reminder) TableName() string {
	return "clinical.appointment_reminders"
}

// Due reports whether a pending reminder should fire at now.
func (r *Reminder) Due(now time.Time) bool {
	return r.Status == StatusPending && !r.ScheduledTime.After(now)
}
