package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderService computes reminder fire times, persists them, and later
// claims and dispatches the due ones. Claiming is a conditional update at the
// storage layer, so the sweep is safe to run from any number of workers.
type ReminderService struct {
	repo      reminder.Repository
	apptRepo  appointment.Repository
	transport notify.Transport
	clk       clock.Clock
	cfg       config.ReminderConfig
	log       *zap.Logger
}

func NewReminderService(
	repo reminder.Repository,
	apptRepo appointment.Repository,
	transport notify.Transport,
	clk clock.Clock,
	cfg config.ReminderConfig,
	log *zap.Logger,
) *ReminderService {
	return &ReminderService{
		repo:      repo,
		apptRepo:  apptRepo,
		transport: transport,
		clk:       clk,
		cfg:       cfg,
		log:       log,
	}
}

// ScheduleFor creates a pending reminder per configured offset, skipping any
// fire time that is already in the past: a booking one hour out with 24h/2h
// offsets gets no reminders at all. Appointments without a contact get none
// either.
func (s *ReminderService) ScheduleFor(ctx context.Context, a *appointment.Appointment) ([]*reminder.Reminder, error) {
	if a.ContactEmail == "" {
		return nil, nil
	}

	now := s.clk.Now()
	var rs []*reminder.Reminder
	for _, offset := range s.cfg.Offsets {
		fireAt := a.ScheduledAt.Add(-offset)
		if !fireAt.After(now) {
			continue
		}
		rs = append(rs, &reminder.Reminder{
			AppointmentID: a.ID,
			Channel:       reminder.ChannelEmail,
			Recipient:     a.ContactEmail,
			ScheduledTime: fireAt,
			Status:        reminder.StatusPending,
		})
	}

	if len(rs) == 0 {
		return nil, nil
	}
	if err := s.repo.CreateBatch(ctx, rs); err != nil {
		return nil, fmt.Errorf("persisting reminders: %w", err)
	}
	return rs, nil
}

// Cancel marks every pending reminder of the appointment cancelled. Sent and
// failed reminders keep their state.
func (s *ReminderService) Cancel(ctx context.Context, appointmentID uuid.UUID) (int64, error) {
	return s.repo.CancelPending(ctx, appointmentID)
}

// ListForAppointment returns every reminder of the appointment, oldest first.
func (s *ReminderService) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*reminder.Reminder, error) {
	return s.repo.ListForAppointment(ctx, appointmentID)
}

// DueReminders returns the pending reminders whose fire time has passed.
func (s *ReminderService) DueReminders(ctx context.Context) ([]*reminder.Reminder, error) {
	return s.repo.ListDue(ctx, s.clk.Now())
}

// Dispatch claims the reminder and sends it. A lost claim race returns
// reminder.ErrNotClaimed and sends nothing. A transport failure marks the
// reminder failed (terminal unless manually reset) and is returned so the
// sweep can count it, but it never aborts the batch.
func (s *ReminderService) Dispatch(ctx context.Context, r *reminder.Reminder) error {
	if err := s.repo.Claim(ctx, r.ID); err != nil {
		return err
	}

	a, err := s.apptRepo.GetByID(ctx, r.AppointmentID)
	if err != nil {
		// Without its appointment the message cannot be rendered; record the
		// dispatch failure. Like any failed reminder, it stays terminal until
		// an operator resets it to pending.
		if markErr := s.repo.MarkFailed(ctx, r.ID, "appointment lookup failed: "+err.Error()); markErr != nil {
			s.log.Error("failed to mark reminder failed", zap.Error(markErr))
		}
		return fmt.Errorf("loading appointment for reminder: %w", err)
	}

	msg := notify.ReminderMessage(a)

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()

	if err := s.transport.Send(sendCtx, r.Channel, r.Recipient, msg.Subject, msg.Body); err != nil {
		if markErr := s.repo.MarkFailed(ctx, r.ID, err.Error()); markErr != nil {
			s.log.Error("failed to mark reminder failed", zap.Error(markErr))
		}
		return fmt.Errorf("dispatching reminder: %w", err)
	}

	if err := s.repo.MarkSent(ctx, r.ID, s.clk.Now()); err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	return nil
}

// SweepResult summarizes one due-reminder sweep.
type SweepResult struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
}

// RunSweep dispatches all currently due reminders with bounded concurrency.
// After ctx is cancelled no new reminder is claimed; in-flight dispatches run
// to completion, so shutdown never strands a claimed reminder.
func (s *ReminderService) RunSweep(ctx context.Context) (SweepResult, error) {
	due, err := s.DueReminders(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("listing due reminders: %w", err)
	}

	result := SweepResult{Due: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.DispatchConcurrency)
	)

	for _, r := range due {
		if ctx.Err() != nil {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(r *reminder.Reminder) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.Dispatch(ctx, r)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Sent++
			case errors.Is(err, reminder.ErrNotClaimed):
				result.Skipped++
			default:
				result.Failed++
				s.log.Warn("reminder dispatch failed",
					zap.String("reminder_id", r.ID.String()),
					zap.Time("scheduled_time", r.ScheduledTime),
					zap.Error(err),
				)
			}
		}(r)
	}

	wg.Wait()
	return result, nil
}

// SweepLoop runs RunSweep every interval until ctx is cancelled, for the
// worker binary. Each run gets its own timeout slightly under the interval.
func (s *ReminderService) SweepLoop(ctx context.Context, interval time.Duration, onResult func(SweepResult, time.Duration)) {
	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		start := time.Now()
		res, err := s.RunSweep(runCtx)
		if err != nil {
			s.log.Error("reminder sweep failed", zap.Error(err))
			return
		}
		if onResult != nil {
			onResult(res, time.Since(start))
		}
		if res.Due > 0 {
			s.log.Info("reminder sweep complete",
				zap.Int("due", res.Due),
				zap.Int("sent", res.Sent),
				zap.Int("failed", res.Failed),
				zap.Int("skipped", res.Skipped),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
