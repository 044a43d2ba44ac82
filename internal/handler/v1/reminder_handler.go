package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReminderHandler struct {
	reminders *service.ReminderService
}

func NewReminderHandler(reminders *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

func (h *ReminderHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/appointments/:id/reminders", h.listForAppointment)
	// The worker binary owns the periodic sweep; this endpoint exists for
	// operators to force one between ticks.
	rg.POST("/reminders/sweep", h.sweep)
}

type reminderResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	Channel       string     `json:"channel"`
	Recipient     string     `json:"recipient"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        string     `json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}

func (h *ReminderHandler) listForAppointment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rs, err := h.reminders.ListForAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]reminderResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, reminderResponse{
			ID:            r.ID,
			AppointmentID: r.AppointmentID,
			Channel:       string(r.Channel),
			Recipient:     r.Recipient,
			ScheduledTime: r.ScheduledTime,
			Status:        string(r.Status),
			SentAt:        r.SentAt,
			ErrorMessage:  r.ErrorMessage,
		})
	}
	respondOK(c, out)
}

func (h *ReminderHandler) sweep(c *gin.Context) {
	claims := mustClaims(c)
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleSystem {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	result, err := h.reminders.RunSweep(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"due":     result.Due,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	})
}
