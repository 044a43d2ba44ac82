package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"github.com/google/uuid"
)

// In-memory doubles for the storage and infrastructure ports. The reminder
// fake reproduces the conditional-update semantics of Claim so concurrency
// tests are meaningful.

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAppointmentRepo struct {
	mu      sync.Mutex
	appts   map[uuid.UUID]*appointment.Appointment
	history []*appointment.History
	types   map[uuid.UUID]*appointment.Type
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appts: make(map[uuid.UUID]*appointment.Appointment),
		types: make(map[uuid.UUID]*appointment.Type),
	}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	stored.CheckedInAt = a.CheckedInAt
	stored.StartedAt = a.StartedAt
	stored.CompletedAt = a.CompletedAt
	stored.NoShowAt = a.NoShowAt
	stored.CancelledAt = a.CancelledAt
	stored.CancellationReason = a.CancellationReason
	stored.CancelledBy = a.CancelledBy
	return nil
}

func (r *fakeAppointmentRepo) UpdateFollowUp(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.FollowUpRequired = a.FollowUpRequired
	stored.FollowUpDate = a.FollowUpDate
	stored.FollowUpNotes = a.FollowUpNotes
	return nil
}

func (r *fakeAppointmentRepo) UpdateRecurrence(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.IsRecurring = a.IsRecurring
	stored.RecurringPatternID = a.RecurringPatternID
	return nil
}

func (r *fakeAppointmentRepo) ListOccupyingForDay(_ context.Context, providerID uuid.UUID, day time.Time) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	next := day.Add(24 * time.Hour)
	for _, a := range r.appts {
		if a.ProviderID != providerID || !a.Status.Occupying() {
			continue
		}
		if a.ScheduledAt.Before(day) || !a.ScheduledAt.Before(next) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListChildren(_ context.Context, anchorID uuid.UUID, after time.Time, statuses []appointment.Status) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if a.ParentID == nil || *a.ParentID != anchorID || !a.ScheduledAt.After(after) {
			continue
		}
		match := len(statuses) == 0
		for _, s := range statuses {
			if a.Status == s {
				match = true
				break
			}
		}
		if match {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) AppendHistory(_ context.Context, h *appointment.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.Timestamp = time.Now()
	r.history = append(r.history, h)
	return nil
}

func (r *fakeAppointmentRepo) ListHistory(_ context.Context, appointmentID uuid.UUID) ([]*appointment.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.History
	for _, h := range r.history {
		if h.AppointmentID == appointmentID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) GetType(_ context.Context, id uuid.UUID) (*appointment.Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[id]
	if !ok {
		return nil, appointment.ErrTypeNotFound
	}
	return t, nil
}

type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*reminder.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[uuid.UUID]*reminder.Reminder)}
}

func (r *fakeReminderRepo) CreateBatch(_ context.Context, rs []*reminder.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rem := range rs {
		if rem.ID == uuid.Nil {
			rem.ID = uuid.New()
		}
		cp := *rem
		r.reminders[rem.ID] = &cp
	}
	return nil
}

func (r *fakeReminderRepo) GetByID(_ context.Context, id uuid.UUID) (*reminder.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return nil, reminder.ErrReminderNotFound
	}
	cp := *rem
	return &cp, nil
}

func (r *fakeReminderRepo) ListDue(_ context.Context, now time.Time) ([]*reminder.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*reminder.Reminder
	for _, rem := range r.reminders {
		if rem.Due(now) {
			cp := *rem
			due = append(due, &cp)
		}
	}
	return due, nil
}

// Claim mirrors the conditional UPDATE of the real repository: only one
// caller can move a reminder from pending to sending.
func (r *fakeReminderRepo) Claim(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok || rem.Status != reminder.StatusPending {
		return reminder.ErrNotClaimed
	}
	rem.Status = reminder.StatusSending
	return nil
}

func (r *fakeReminderRepo) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	rem.Status = reminder.StatusSent
	rem.SentAt = &at
	return nil
}

func (r *fakeReminderRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	rem.Status = reminder.StatusFailed
	rem.ErrorMessage = errMsg
	return nil
}

func (r *fakeReminderRepo) CancelPending(_ context.Context, appointmentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rem := range r.reminders {
		if rem.AppointmentID == appointmentID && rem.Status == reminder.StatusPending {
			rem.Status = reminder.StatusCancelled
			n++
		}
	}
	return n, nil
}

func (r *fakeReminderRepo) ListForAppointment(_ context.Context, appointmentID uuid.UUID) ([]*reminder.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reminder.Reminder
	for _, rem := range r.reminders {
		if rem.AppointmentID == appointmentID {
			cp := *rem
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) byStatus(status reminder.Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rem := range r.reminders {
		if rem.Status == status {
			n++
		}
	}
	return n
}

type fakePatternRepo struct {
	mu       sync.Mutex
	patterns map[uuid.UUID]*recurrence.Pattern
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{patterns: make(map[uuid.UUID]*recurrence.Pattern)}
}

func (r *fakePatternRepo) Create(_ context.Context, p *recurrence.Pattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.patterns[p.ID] = &cp
	return nil
}

func (r *fakePatternRepo) GetByID(_ context.Context, id uuid.UUID) (*recurrence.Pattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patterns[id]
	if !ok {
		return nil, recurrence.ErrPatternNotFound
	}
	cp := *p
	return &cp, nil
}

// passthroughLocker runs the critical section without distributed locking.
type passthroughLocker struct{}

func (passthroughLocker) WithProviderDayLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sentMessage struct {
	Channel   reminder.Channel
	Recipient string
	Subject   string
}

// recordingTransport captures outbound messages; Fail makes every Send error.
type recordingTransport struct {
	mu   sync.Mutex
	Fail bool
	sent []sentMessage
}

func (t *recordingTransport) Send(_ context.Context, channel reminder.Channel, recipient, subject, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Fail {
		return fmt.Errorf("transport unavailable")
	}
	t.sent = append(t.sent, sentMessage{Channel: channel, Recipient: recipient, Subject: subject})
	return nil
}

func (t *recordingTransport) Sent() []sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]sentMessage, len(t.sent))
	copy(out, t.sent)
	return out
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}
