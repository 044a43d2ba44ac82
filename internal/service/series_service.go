package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeriesService materializes recurring series from an anchor appointment and
// coordinates series-wide operations. Each instance is booked through the
// regular booking path, so every child gets the same conflict check, history
// row and reminders as a manually booked appointment.
type SeriesService struct {
	repo     appointment.Repository
	patterns recurrence.Repository
	appts    *AppointmentService
	clk      clock.Clock
	log      *zap.Logger
}

func NewSeriesService(
	repo appointment.Repository,
	patterns recurrence.Repository,
	appts *AppointmentService,
	clk clock.Clock,
	log *zap.Logger,
) *SeriesService {
	return &SeriesService{
		repo:     repo,
		patterns: patterns,
		appts:    appts,
		clk:      clk,
		log:      log,
	}
}

// SeriesError records one generated date that could not be booked, usually
// because the slot was taken. It never aborts the rest of the series.
type SeriesError struct {
	Date time.Time
	Err  error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("series instance at %s: %v", e.Date.Format(time.RFC3339), e.Err)
}

func (e *SeriesError) Unwrap() error { return e.Err }

// SeriesResult reports the outcome of materializing one series.
type SeriesResult struct {
	Pattern *recurrence.Pattern
	Created []*appointment.Appointment
	Skipped []*SeriesError
}

// CreateSeries expands pattern from the anchor appointment and books one
// clone per generated date. A date whose slot conflicts is recorded in
// Skipped and the remaining dates still get booked; partial series are the
// expected outcome on a busy calendar, not a failure.
func (s *SeriesService) CreateSeries(ctx context.Context, anchorID uuid.UUID, pattern *recurrence.Pattern, bound recurrence.Bound) (*SeriesResult, error) {
	anchor, err := s.repo.GetByID(ctx, anchorID)
	if err != nil {
		return nil, err
	}
	if anchor.ParentID != nil {
		// A child cannot anchor its own series; one level only.
		return nil, appointment.ErrNotPartOfSeries
	}

	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if pattern.ID == uuid.Nil {
		if err := s.patterns.Create(ctx, pattern); err != nil {
			return nil, fmt.Errorf("persisting recurring pattern: %w", err)
		}
	}

	dates, genErr := recurrence.Generate(anchor.ScheduledAt, pattern, bound)
	if genErr != nil {
		if !errors.Is(genErr, recurrence.ErrGenerationCapped) {
			return nil, genErr
		}
		s.log.Warn("recurrence generation hit safety cap",
			zap.String("anchor", anchor.Number),
			zap.Int("generated", len(dates)),
		)
	}

	result := &SeriesResult{Pattern: pattern}
	for _, date := range dates {
		cmd := &appointment.BookCommand{
			PatientID:          anchor.PatientID,
			ProviderID:         anchor.ProviderID,
			TypeID:             anchor.TypeID,
			ScheduledAt:        date,
			DurationMins:       anchor.DurationMins,
			Priority:           anchor.Priority,
			Reason:             anchor.Reason,
			Symptoms:           anchor.Symptoms,
			ContactEmail:       anchor.ContactEmail,
			CreatedBy:          anchor.CreatedBy,
			RecurringPatternID: &pattern.ID,
			ParentID:           &anchor.ID,
		}

		child, err := s.appts.Book(ctx, cmd)
		if err != nil {
			result.Skipped = append(result.Skipped, &SeriesError{Date: date, Err: err})
			s.log.Info("skipping series instance",
				zap.String("anchor", anchor.Number),
				zap.Time("date", date),
				zap.Error(err),
			)
			continue
		}
		result.Created = append(result.Created, child)
	}

	anchor.IsRecurring = true
	anchor.RecurringPatternID = &pattern.ID
	if err := s.repo.UpdateRecurrence(ctx, anchor); err != nil {
		return nil, fmt.Errorf("marking anchor recurring: %w", err)
	}

	return result, nil
}

// CancelSeries cancels every future scheduled or confirmed instance of the
// anchor's series. Past and in-progress instances are left alone; each
// cancellation goes through the state machine, so pending reminders of the
// cancelled instances are cancelled with them.
func (s *SeriesService) CancelSeries(ctx context.Context, anchorID uuid.UUID, reason, actor string, performedBy uuid.UUID) (int, error) {
	anchor, err := s.repo.GetByID(ctx, anchorID)
	if err != nil {
		return 0, err
	}
	if !anchor.IsRecurring {
		return 0, appointment.ErrNotPartOfSeries
	}

	// Only instances on a later calendar day are cancelled; today's still
	// stand, whatever the current time of day.
	now := s.clk.Now()
	y, m, d := now.Date()
	endOfToday := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)

	children, err := s.repo.ListChildren(ctx, anchor.ID, endOfToday,
		[]appointment.Status{appointment.StatusScheduled, appointment.StatusConfirmed})
	if err != nil {
		return 0, fmt.Errorf("listing series instances: %w", err)
	}

	cancelled := 0
	for _, child := range children {
		_, err := s.appts.Transition(ctx, child.ID, &appointment.TransitionCommand{
			Target:      appointment.StatusCancelled,
			Actor:       actor,
			Reason:      reason,
			PerformedBy: performedBy,
		})
		if err != nil {
			s.log.Error("failed to cancel series instance",
				zap.String("appointment", child.Number), zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// ScheduleFollowUp books a follow-up appointment off a completed one, keeping
// the original's time of day on the requested date, and marks the original
// with the follow-up fields.
func (s *SeriesService) ScheduleFollowUp(ctx context.Context, completedID uuid.UUID, cmd *appointment.FollowUpCommand) (*appointment.Appointment, error) {
	orig, err := s.repo.GetByID(ctx, completedID)
	if err != nil {
		return nil, err
	}
	if orig.Status != appointment.StatusCompleted {
		return nil, &appointment.TransitionError{From: orig.Status, To: appointment.StatusCompleted}
	}

	y, m, d := cmd.Date.Date()
	h, min, _ := orig.ScheduledAt.Clock()
	scheduledAt := time.Date(y, m, d, h, min, 0, 0, orig.ScheduledAt.Location())

	followUp, err := s.appts.Book(ctx, &appointment.BookCommand{
		PatientID:    orig.PatientID,
		ProviderID:   orig.ProviderID,
		TypeID:       orig.TypeID,
		ScheduledAt:  scheduledAt,
		DurationMins: orig.DurationMins,
		Priority:     orig.Priority,
		Reason:       "Follow-up for " + orig.Number,
		Notes:        cmd.Notes,
		ContactEmail: orig.ContactEmail,
		CreatedBy:    cmd.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	orig.FollowUpRequired = true
	orig.FollowUpDate = &scheduledAt
	orig.FollowUpNotes = cmd.Notes
	if err := s.repo.UpdateFollowUp(ctx, orig); err != nil {
		s.log.Error("failed to mark follow-up on original",
			zap.String("appointment", orig.Number), zap.Error(err))
	}

	return followUp, nil
}
