package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appts *service.AppointmentService
}

func NewAppointmentHandler(appts *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appts: appts}
}

type bookAppointmentRequest struct {
	PatientID    uuid.UUID  `json:"patient_id" binding:"required"`
	ProviderID   uuid.UUID  `json:"provider_id" binding:"required"`
	TypeID       *uuid.UUID `json:"type_id"`
	ScheduledAt  time.Time  `json:"scheduled_at" binding:"required"`
	DurationMins int        `json:"duration_mins"`
	Priority     string     `json:"priority"`
	Reason       string     `json:"reason"`
	Symptoms     string     `json:"symptoms"`
	Notes        string     `json:"notes"`
	ContactEmail string     `json:"contact_email"`
}

type cancelAppointmentRequest struct {
	Reason      string `json:"reason" binding:"required"`
	CancelledBy string `json:"cancelled_by"` // 'patient', 'doctor', 'staff', 'system'
}

type appointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	Number       string     `json:"number"`
	PatientID    uuid.UUID  `json:"patient_id"`
	ProviderID   uuid.UUID  `json:"provider_id"`
	TypeID       *uuid.UUID `json:"type_id,omitempty"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	EndsAt       time.Time  `json:"ends_at"`
	DurationMins int        `json:"duration_mins"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Reason       string     `json:"reason,omitempty"`
	Notes        string     `json:"notes,omitempty"`

	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NoShowAt    *time.Time `json:"no_show_at,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`

	FollowUpRequired bool       `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`

	IsRecurring        bool       `json:"is_recurring"`
	RecurringPatternID *uuid.UUID `json:"recurring_pattern_id,omitempty"`
	ParentID           *uuid.UUID `json:"parent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:                 a.ID,
		Number:             a.Number,
		PatientID:          a.PatientID,
		ProviderID:         a.ProviderID,
		TypeID:             a.TypeID,
		ScheduledAt:        a.ScheduledAt,
		EndsAt:             a.EndsAt(),
		DurationMins:       a.DurationMins,
		Status:             string(a.Status),
		Priority:           string(a.Priority),
		Reason:             a.Reason,
		Notes:              a.Notes,
		CheckedInAt:        a.CheckedInAt,
		StartedAt:          a.StartedAt,
		CompletedAt:        a.CompletedAt,
		NoShowAt:           a.NoShowAt,
		CancelledAt:        a.CancelledAt,
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		FollowUpRequired:   a.FollowUpRequired,
		FollowUpDate:       a.FollowUpDate,
		IsRecurring:        a.IsRecurring,
		RecurringPatternID: a.RecurringPatternID,
		ParentID:           a.ParentID,
		CreatedAt:          a.CreatedAt,
	}
}

func (h *AppointmentHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.book)
	rg.GET("/appointments/:id", h.get)
	rg.GET("/appointments/:id/history", h.history)

	rg.POST("/appointments/:id/confirm", h.transitionTo(appointment.StatusConfirmed))
	rg.POST("/appointments/:id/check-in", h.checkIn)
	rg.POST("/appointments/:id/start", h.transitionTo(appointment.StatusInProgress))
	rg.POST("/appointments/:id/complete", h.transitionTo(appointment.StatusCompleted))
	rg.POST("/appointments/:id/no-show", h.transitionTo(appointment.StatusNoShow))
	rg.POST("/appointments/:id/cancel", h.cancel)
	rg.POST("/appointments/:id/reschedule", h.transitionTo(appointment.StatusRescheduled))
	// Re-entry from cancelled, no_show or rescheduled back into the calendar.
	rg.POST("/appointments/:id/restore", h.transitionTo(appointment.StatusScheduled))
}

func (h *AppointmentHandler) book(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := mustClaims(c)
	a, err := h.appts.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID:    req.PatientID,
		ProviderID:   req.ProviderID,
		TypeID:       req.TypeID,
		ScheduledAt:  req.ScheduledAt,
		DurationMins: req.DurationMins,
		Priority:     appointment.Priority(req.Priority),
		Reason:       req.Reason,
		Symptoms:     req.Symptoms,
		Notes:        req.Notes,
		ContactEmail: req.ContactEmail,
		CreatedBy:    claims.UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.appts.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

type historyEntryResponse struct {
	ID          uuid.UUID      `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Action      string         `json:"action"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	PerformedBy uuid.UUID      `json:"performed_by"`
}

func (h *AppointmentHandler) history(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rows, err := h.appts.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]historyEntryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, historyEntryResponse{
			ID:          r.ID,
			Timestamp:   r.Timestamp,
			Action:      string(r.Action),
			OldValues:   r.OldValues,
			NewValues:   r.NewValues,
			Reason:      r.Reason,
			PerformedBy: r.PerformedBy,
		})
	}
	respondOK(c, out)
}

// transitionTo builds a handler applying one named lifecycle action.
func (h *AppointmentHandler) transitionTo(target appointment.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUID(c, "id")
		if !ok {
			return
		}

		claims := mustClaims(c)
		a, err := h.appts.Transition(c.Request.Context(), id, &appointment.TransitionCommand{
			Target:      target,
			Actor:       string(claims.Role),
			PerformedBy: claims.UserID,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, toAppointmentResponse(a))
	}
}

func (h *AppointmentHandler) checkIn(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := mustClaims(c)
	a, err := h.appts.CheckIn(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := mustClaims(c)
	actor := req.CancelledBy
	if actor == "" {
		actor = string(claims.Role)
	}

	a, err := h.appts.Transition(c.Request.Context(), id, &appointment.TransitionCommand{
		Target:      appointment.StatusCancelled,
		Actor:       actor,
		Reason:      req.Reason,
		PerformedBy: claims.UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

// mustClaims returns the verified claims; the auth middleware guarantees they
// exist on every route this package registers.
func mustClaims(c *gin.Context) *domain.Claims {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return &domain.Claims{}
	}
	return claims
}
