package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/reminder"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinical", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.AuditLog{},
		&appointment.Type{},
		&appointment.Appointment{},
		&appointment.History{},
		&recurrence.Pattern{},
		&reminder.Reminder{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// The serialization point for concurrent bookings: two occupying
		// appointments for the same provider can never share a start time,
		// even if both requests pass the in-memory overlap check.
		{
			name:  "uidx_appointments_provider_slot",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uidx_appointments_provider_slot ON clinical.appointments (provider_id, scheduled_at) WHERE deleted_at IS NULL AND status IN ('scheduled', 'confirmed', 'in_progress')`,
		},
		{
			name:  "idx_appointments_provider_day",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_provider_day ON clinical.appointments (provider_id, scheduled_at, duration_mins) WHERE deleted_at IS NULL AND status IN ('scheduled', 'confirmed', 'in_progress')`,
		},
		{
			name:  "idx_appointments_parent",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_parent ON clinical.appointments (parent_id, scheduled_at) WHERE deleted_at IS NULL AND parent_id IS NOT NULL`,
		},
		// The sweep query: pending reminders ordered by fire time.
		{
			name:  "idx_reminders_due",
			query: `CREATE INDEX IF NOT EXISTS idx_reminders_due ON clinical.appointment_reminders (scheduled_time) WHERE status = 'pending'`,
		},
		{
			name:  "idx_history_appointment",
			query: `CREATE INDEX IF NOT EXISTS idx_history_appointment ON clinical.appointment_history (appointment_id, timestamp)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
