package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/google/uuid"
)

func weeklyPattern() *recurrence.Pattern {
	return &recurrence.Pattern{
		Name:      "weekly physio",
		Frequency: recurrence.FrequencyWeekly,
		Interval:  1,
		IsActive:  true,
	}
}

func TestCreateSeries(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	result, err := env.series.CreateSeries(context.Background(), anchor.ID, weeklyPattern(), recurrence.Bound{MaxCount: 4})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Created) != 4 {
		t.Fatalf("created %d instances, want 4", len(result.Created))
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("skipped %v, want none", result.Skipped)
	}
	if result.Pattern.ID == uuid.Nil {
		t.Error("pattern was not persisted")
	}

	for i, child := range result.Created {
		want := anchor.ScheduledAt.AddDate(0, 0, 7*(i+1))
		if !child.ScheduledAt.Equal(want) {
			t.Errorf("instance %d at %v, want %v", i, child.ScheduledAt, want)
		}
		if child.ParentID == nil || *child.ParentID != anchor.ID {
			t.Errorf("instance %d not linked to anchor", i)
		}
		if child.RecurringPatternID == nil || *child.RecurringPatternID != result.Pattern.ID {
			t.Errorf("instance %d not linked to pattern", i)
		}
		if child.PatientID != anchor.PatientID || child.ProviderID != anchor.ProviderID {
			t.Errorf("instance %d lost patient/provider", i)
		}
	}

	stored, err := env.appts.Get(context.Background(), anchor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsRecurring {
		t.Error("anchor not marked recurring")
	}
}

// A taken slot skips that instance only; siblings still book.
func TestCreateSeriesSkipsConflicts(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	// Occupy the slot one week out.
	blocker := validBookCommand(env)
	blocker.ProviderID = anchor.ProviderID
	blocker.ScheduledAt = anchor.ScheduledAt.AddDate(0, 0, 7)
	if _, err := env.appts.Book(context.Background(), blocker); err != nil {
		t.Fatal(err)
	}

	result, err := env.series.CreateSeries(context.Background(), anchor.ID, weeklyPattern(), recurrence.Bound{MaxCount: 5})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Created) != 4 {
		t.Errorf("created %d instances, want 4", len(result.Created))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("skipped %d, want 1", len(result.Skipped))
	}
	if !errors.Is(result.Skipped[0].Err, appointment.ErrAppointmentConflict) {
		t.Errorf("skip reason = %v, want conflict", result.Skipped[0].Err)
	}
	if !result.Skipped[0].Date.Equal(blocker.ScheduledAt) {
		t.Errorf("skipped date = %v, want %v", result.Skipped[0].Date, blocker.ScheduledAt)
	}
}

func TestCreateSeriesRejectsChildAnchor(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	result, err := env.series.CreateSeries(context.Background(), anchor.ID, weeklyPattern(), recurrence.Bound{MaxCount: 1})
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.series.CreateSeries(context.Background(), result.Created[0].ID, weeklyPattern(), recurrence.Bound{MaxCount: 1})
	if !errors.Is(err, appointment.ErrNotPartOfSeries) {
		t.Errorf("err = %v, want ErrNotPartOfSeries", err)
	}
}

func TestCreateSeriesRejectsBadPattern(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	p := weeklyPattern()
	p.Frequency = "hourly"
	if _, err := env.series.CreateSeries(context.Background(), anchor.ID, p, recurrence.Bound{MaxCount: 1}); !errors.Is(err, recurrence.ErrUnknownFrequency) {
		t.Errorf("err = %v, want ErrUnknownFrequency", err)
	}
}

func TestCancelSeries(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	result, err := env.series.CreateSeries(context.Background(), anchor.ID, weeklyPattern(), recurrence.Bound{MaxCount: 3})
	if err != nil {
		t.Fatal(err)
	}

	// Complete the first instance; it must survive the cancellation.
	first := result.Created[0]
	ctx := context.Background()
	staff := uuid.New()
	for _, target := range []appointment.Status{appointment.StatusConfirmed, appointment.StatusInProgress, appointment.StatusCompleted} {
		if _, err := env.appts.Transition(ctx, first.ID, &appointment.TransitionCommand{
			Target: target, Actor: "doctor", PerformedBy: staff,
		}); err != nil {
			t.Fatal(err)
		}
	}

	cancelled, err := env.series.CancelSeries(ctx, anchor.ID, "provider on leave", "staff", staff)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled != 2 {
		t.Fatalf("cancelled %d instances, want 2", cancelled)
	}

	for i, child := range result.Created {
		stored, err := env.appts.Get(ctx, child.ID)
		if err != nil {
			t.Fatal(err)
		}
		wantStatus := appointment.StatusCancelled
		if i == 0 {
			wantStatus = appointment.StatusCompleted
		}
		if stored.Status != wantStatus {
			t.Errorf("instance %d status = %s, want %s", i, stored.Status, wantStatus)
		}
	}

	// The anchor itself is untouched.
	storedAnchor, err := env.appts.Get(ctx, anchor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if storedAnchor.Status != appointment.StatusScheduled {
		t.Errorf("anchor status = %s, want scheduled", storedAnchor.Status)
	}
}

// Cancellation only reaches instances on a later calendar day; an instance
// later the same day still stands.
func TestCancelSeriesLeavesSameDayInstance(t *testing.T) {
	env := newTestEnv(t)
	anchor, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	result, err := env.series.CreateSeries(context.Background(), anchor.ID, weeklyPattern(), recurrence.Bound{MaxCount: 3})
	if err != nil {
		t.Fatal(err)
	}

	// Move the clock to the morning of the first instance's day.
	first := result.Created[0]
	morning := time.Date(first.ScheduledAt.Year(), first.ScheduledAt.Month(), first.ScheduledAt.Day(),
		9, 0, 0, 0, first.ScheduledAt.Location())
	env.clk.Advance(morning.Sub(env.clk.Now()))

	cancelled, err := env.series.CancelSeries(context.Background(), anchor.ID, "provider on leave", "staff", uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if cancelled != 2 {
		t.Fatalf("cancelled %d instances, want 2 (later days only)", cancelled)
	}

	stored, err := env.appts.Get(context.Background(), first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != appointment.StatusScheduled {
		t.Errorf("same-day instance status = %s, want scheduled", stored.Status)
	}
}

func TestCancelSeriesRequiresRecurringAnchor(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.series.CancelSeries(context.Background(), a.ID, "reason", "staff", uuid.New())
	if !errors.Is(err, appointment.ErrNotPartOfSeries) {
		t.Errorf("err = %v, want ErrNotPartOfSeries", err)
	}
}

func TestScheduleFollowUp(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.appts.Book(context.Background(), validBookCommand(env))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	staff := uuid.New()

	t.Run("requires completed appointment", func(t *testing.T) {
		_, err := env.series.ScheduleFollowUp(ctx, a.ID, &appointment.FollowUpCommand{
			Date:      a.ScheduledAt.AddDate(0, 0, 14),
			CreatedBy: staff,
		})
		if !errors.Is(err, appointment.ErrInvalidStatusTransition) {
			t.Errorf("err = %v, want invalid transition", err)
		}
	})

	for _, target := range []appointment.Status{appointment.StatusConfirmed, appointment.StatusInProgress, appointment.StatusCompleted} {
		if _, err := env.appts.Transition(ctx, a.ID, &appointment.TransitionCommand{
			Target: target, Actor: "doctor", PerformedBy: staff,
		}); err != nil {
			t.Fatal(err)
		}
	}

	followUpDate := a.ScheduledAt.AddDate(0, 0, 14)
	fu, err := env.series.ScheduleFollowUp(ctx, a.ID, &appointment.FollowUpCommand{
		Date:      followUpDate,
		Notes:     "review bloodwork",
		CreatedBy: staff,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Keeps the original's time of day on the requested date.
	if !fu.ScheduledAt.Equal(followUpDate) {
		t.Errorf("follow-up at %v, want %v", fu.ScheduledAt, followUpDate)
	}
	if !strings.Contains(fu.Reason, a.Number) {
		t.Errorf("reason = %q, want reference to %s", fu.Reason, a.Number)
	}
	if fu.Status != appointment.StatusScheduled {
		t.Errorf("follow-up status = %s", fu.Status)
	}

	orig, err := env.appts.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !orig.FollowUpRequired || orig.FollowUpDate == nil || !orig.FollowUpDate.Equal(followUpDate) {
		t.Errorf("original follow-up fields = (%v, %v)", orig.FollowUpRequired, orig.FollowUpDate)
	}
	if orig.FollowUpNotes != "review bloodwork" {
		t.Errorf("notes = %q", orig.FollowUpNotes)
	}
}
