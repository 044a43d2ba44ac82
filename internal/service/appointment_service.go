package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/clock"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/slotlock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentService owns booking and the lifecycle state machine. Every
// status write in the system funnels through Transition (or CheckIn, which
// wraps it), so the allowed-transition table is enforced in exactly one place.
type AppointmentService struct {
	repo         appointment.Repository
	availability *AvailabilityService
	reminders    *ReminderService
	locker       slotlock.Locker
	transport    notify.Transport
	auditSvc     *AuditService
	clk          clock.Clock
	cfg          config.SchedulingConfig
	log          *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	availability *AvailabilityService,
	reminders *ReminderService,
	locker slotlock.Locker,
	transport notify.Transport,
	auditSvc *AuditService,
	clk clock.Clock,
	cfg config.SchedulingConfig,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:         repo,
		availability: availability,
		reminders:    reminders,
		locker:       locker,
		transport:    transport,
		auditSvc:     auditSvc,
		clk:          clk,
		cfg:          cfg,
		log:          log,
	}
}

// Book validates the request, checks the slot under the provider/day lock,
// creates the appointment in scheduled state, writes the created history row
// and schedules its reminders. The conflict check runs inside the lock; the
// partial unique index on (provider_id, scheduled_at) backstops it against
// writers on other instances.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error) {
	if err := s.validateBooking(ctx, cmd); err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		Number:             appointment.NewNumber(),
		PatientID:          cmd.PatientID,
		ProviderID:         cmd.ProviderID,
		TypeID:             cmd.TypeID,
		ScheduledAt:        cmd.ScheduledAt,
		DurationMins:       cmd.DurationMins,
		Status:             appointment.StatusScheduled,
		Priority:           cmd.Priority,
		Reason:             cmd.Reason,
		Symptoms:           cmd.Symptoms,
		Notes:              cmd.Notes,
		ContactEmail:       cmd.ContactEmail,
		CreatedBy:          cmd.CreatedBy,
		RecurringPatternID: cmd.RecurringPatternID,
		ParentID:           cmd.ParentID,
		IsRecurring:        cmd.RecurringPatternID != nil,
	}

	err := s.locker.WithProviderDayLock(ctx, cmd.ProviderID, a.Day(), func(lockCtx context.Context) error {
		conflict, err := s.availability.FindConflict(lockCtx, cmd.ProviderID, a.Slot(), nil)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &appointment.ConflictError{Start: conflict.Start, End: conflict.End()}
		}

		if err := s.repo.Create(lockCtx, a); err != nil {
			return fmt.Errorf("creating appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.AppendHistory(ctx, &appointment.History{
		AppointmentID: a.ID,
		Action:        appointment.ActionCreated,
		NewValues:     map[string]any{"status": string(a.Status), "scheduled_at": a.ScheduledAt.Format(time.RFC3339)},
		PerformedBy:   cmd.CreatedBy,
	}); err != nil {
		s.log.Error("failed to append creation history", zap.Error(err))
	}

	if _, err := s.reminders.ScheduleFor(ctx, a); err != nil {
		// Reminders are best-effort at booking time; the appointment stands.
		s.log.Error("failed to schedule reminders",
			zap.String("appointment", a.Number), zap.Error(err))
	}

	s.notify(ctx, a, notify.ConfirmationMessage(a))

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.CreatedBy,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})

	return a, nil
}

func (s *AppointmentService) validateBooking(ctx context.Context, cmd *appointment.BookCommand) error {
	if cmd.PatientID == uuid.Nil || cmd.ProviderID == uuid.Nil {
		return &ValidationError{Fields: []string{"patient id and provider id are required"}}
	}

	if cmd.Priority == "" {
		cmd.Priority = appointment.PriorityNormal
	}
	if !cmd.Priority.IsValid() {
		return appointment.ErrInvalidPriority
	}

	// A zero duration falls back to the appointment type's default.
	if cmd.DurationMins == 0 && cmd.TypeID != nil {
		t, err := s.repo.GetType(ctx, *cmd.TypeID)
		if err != nil {
			return err
		}
		cmd.DurationMins = t.DurationMins
	}
	if cmd.DurationMins < s.cfg.MinDurationMins || cmd.DurationMins > s.cfg.MaxDurationMins {
		return appointment.ErrInvalidDuration
	}

	if cmd.ScheduledAt.Before(s.clk.Now()) {
		return appointment.ErrScheduledInPast
	}

	// Business-hours policy, layered on top of overlap detection.
	startMin := cmd.ScheduledAt.Hour()*60 + cmd.ScheduledAt.Minute()
	endMin := startMin + cmd.DurationMins
	if startMin < s.cfg.BusinessHoursStartMin || endMin > s.cfg.BusinessHoursEndMin {
		return appointment.ErrOutsideBusinessHours
	}

	return nil
}

// Get loads one appointment.
func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// History lists the appointment's immutable audit rows, oldest first.
func (s *AppointmentService) History(ctx context.Context, id uuid.UUID) ([]*appointment.History, error) {
	return s.repo.ListHistory(ctx, id)
}

// Transition applies one lifecycle move through the state machine, persists
// it, appends the history row, and for cancelled/no_show cancels the
// appointment's pending reminders. An illegal move leaves the appointment and
// its history untouched.
func (s *AppointmentService) Transition(ctx context.Context, id uuid.UUID, cmd *appointment.TransitionCommand) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := a.Status
	if err := a.Transition(cmd.Target, cmd.Actor, cmd.Reason, s.clk.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, appointment.NewTransitionHistory(a, from, cmd.Reason, cmd.PerformedBy)); err != nil {
		s.log.Error("failed to append transition history",
			zap.String("appointment", a.Number), zap.Error(err))
	}

	s.afterTransition(ctx, a, cmd)
	return a, nil
}

// CheckIn moves the appointment into confirmed and stamps CheckedInAt.
func (s *AppointmentService) CheckIn(ctx context.Context, id uuid.UUID, performedBy uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := a.Status
	now := s.clk.Now()
	if err := a.CheckIn(now); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	h := appointment.NewTransitionHistory(a, from, "Patient checked in", performedBy)
	h.NewValues["checked_in_at"] = now.Format(time.RFC3339)
	if err := s.repo.AppendHistory(ctx, h); err != nil {
		s.log.Error("failed to append check-in history",
			zap.String("appointment", a.Number), zap.Error(err))
	}

	return a, nil
}

// afterTransition handles the side effects scoped to specific targets:
// cancelling pending reminders and notifying the patient. Failures here are
// logged, never unwound; the transition itself has already committed.
func (s *AppointmentService) afterTransition(ctx context.Context, a *appointment.Appointment, cmd *appointment.TransitionCommand) {
	switch cmd.Target {
	case appointment.StatusCancelled:
		if _, err := s.reminders.Cancel(ctx, a.ID); err != nil {
			s.log.Error("failed to cancel reminders",
				zap.String("appointment", a.Number), zap.Error(err))
		}
		s.notify(ctx, a, notify.CancellationMessage(a, cmd.Reason))
	case appointment.StatusNoShow:
		if _, err := s.reminders.Cancel(ctx, a.ID); err != nil {
			s.log.Error("failed to cancel reminders",
				zap.String("appointment", a.Number), zap.Error(err))
		}
	case appointment.StatusRescheduled:
		s.notify(ctx, a, notify.RescheduleMessage(a))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.PerformedBy,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		Changes:      fmt.Sprintf(`{"status":%q}`, cmd.Target),
	})
}

func (s *AppointmentService) notify(ctx context.Context, a *appointment.Appointment, msg notify.Message) {
	if a.ContactEmail == "" {
		return
	}
	if err := s.transport.Send(ctx, reminder.ChannelEmail, a.ContactEmail, msg.Subject, msg.Body); err != nil {
		s.log.Warn("lifecycle notification failed",
			zap.String("appointment", a.Number), zap.Error(err))
	}
}
