package notify

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
)

// Message is a rendered subject/body pair ready for a Transport.
type Message struct {
	Subject string
	Body    string
}

func ConfirmationMessage(a *appointment.Appointment) Message {
	return Message{
		Subject: fmt.Sprintf("Appointment Confirmation - %s", a.Number),
		Body: fmt.Sprintf(
			"Your appointment %s is booked for %s (%d minutes).\nReason: %s\nPlease arrive 15 minutes early for check-in.",
			a.Number, a.ScheduledAt.Format("January 2, 2006 at 3:04 PM"), a.DurationMins, a.Reason,
		),
	}
}

func ReminderMessage(a *appointment.Appointment) Message {
	return Message{
		Subject: fmt.Sprintf("Appointment Reminder - %s", a.Number),
		Body: fmt.Sprintf(
			"This is a reminder for your upcoming appointment %s on %s.\nPlease arrive 15 minutes early for check-in.",
			a.Number, a.ScheduledAt.Format("January 2, 2006 at 3:04 PM"),
		),
	}
}

func RescheduleMessage(a *appointment.Appointment) Message {
	return Message{
		Subject: fmt.Sprintf("Appointment Rescheduled - %s", a.Number),
		Body: fmt.Sprintf(
			"Your appointment %s is being rescheduled. Our staff will contact you with the new time.",
			a.Number,
		),
	}
}

func CancellationMessage(a *appointment.Appointment, reason string) Message {
	body := fmt.Sprintf(
		"Your appointment %s on %s has been cancelled.",
		a.Number, a.ScheduledAt.Format("January 2, 2006 at 3:04 PM"),
	)
	if reason != "" {
		body += "\nReason: " + reason
	}
	return Message{
		Subject: fmt.Sprintf("Appointment Cancelled - %s", a.Number),
		Body:    body,
	}
}
