package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) appointment.Repository {
	return &appointmentRepository{db: db}
}

// occupyingStatuses mirrors appointment.Status.Occupying for SQL predicates.
var occupyingStatuses = []appointment.Status{
	appointment.StatusScheduled,
	appointment.StatusConfirmed,
	appointment.StatusInProgress,
}

func (r *appointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Select("status",
			"checked_in_at", "started_at", "completed_at", "no_show_at",
			"cancelled_at", "cancellation_reason", "cancelled_by").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepository) UpdateFollowUp(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Select("follow_up_required", "follow_up_date", "follow_up_notes").
		Updates(a).Error
}

func (r *appointmentRepository) UpdateRecurrence(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Select("is_recurring", "recurring_pattern_id").
		Updates(a).Error
}

func (r *appointmentRepository) ListOccupyingForDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("scheduled_at >= ? AND scheduled_at < ?", day, day.Add(24*time.Hour)).
		Where("status IN ?", occupyingStatuses).
		Order("scheduled_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) ListChildren(ctx context.Context, anchorID uuid.UUID, after time.Time, statuses []appointment.Status) ([]*appointment.Appointment, error) {
	q := r.db.WithContext(ctx).
		Where("parent_id = ?", anchorID).
		Where("scheduled_at > ?", after)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var appts []*appointment.Appointment
	if err := q.Order("scheduled_at ASC").Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) AppendHistory(ctx context.Context, h *appointment.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *appointmentRepository) ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*appointment.History, error) {
	var rows []*appointment.History
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *appointmentRepository) GetType(ctx context.Context, id uuid.UUID) (*appointment.Type, error) {
	var t appointment.Type
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND is_active = true", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}
