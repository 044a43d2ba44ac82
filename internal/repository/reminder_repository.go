package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) CreateBatch(ctx context.Context, rs []*reminder.Reminder) error {
	if len(rs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rs).Error
}

func (r *reminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*reminder.Reminder, error) {
	var rem reminder.Reminder
	if err := r.db.WithContext(ctx).First(&rem, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reminder.ErrReminderNotFound
		}
		return nil, err
	}
	return &rem, nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time) ([]*reminder.Reminder, error) {
	var due []*reminder.Reminder
	err := r.db.WithContext(ctx).
		Where("status = ?", reminder.StatusPending).
		Where("scheduled_time <= ?", now).
		Order("scheduled_time ASC").
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}

// Claim is the single conditional update that serializes concurrent sweep
// workers: only the worker whose UPDATE matches a still-pending row wins.
func (r *reminderRepository) Claim(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&reminder.Reminder{}).
		Where("id = ? AND status = ?", id, reminder.StatusPending).
		Update("status", reminder.StatusSending)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return reminder.ErrNotClaimed
	}
	return nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&reminder.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  reminder.StatusSent,
			"sent_at": at,
		}).Error
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&reminder.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        reminder.StatusFailed,
			"error_message": errMsg,
		}).Error
}

func (r *reminderRepository) CancelPending(ctx context.Context, appointmentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&reminder.Reminder{}).
		Where("appointment_id = ? AND status = ?", appointmentID, reminder.StatusPending).
		Update("status", reminder.StatusCancelled)
	return res.RowsAffected, res.Error
}

func (r *reminderRepository) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*reminder.Reminder, error) {
	var rs []*reminder.Reminder
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("scheduled_time ASC").
		Find(&rs).Error
	if err != nil {
		return nil, err
	}
	return rs, nil
}
