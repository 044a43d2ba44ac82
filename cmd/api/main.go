package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/medsched/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/clock"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/slotlock"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/tracer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	redisClient, err := slotlock.NewClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	collector := metrics.NewCollector("medsched")
	go pollDBStats(ctx, db, collector)

	clk := clock.System()
	transport := notify.NewLogTransport(log)

	apptRepo := repository.NewAppointmentRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	patternRepo := repository.NewPatternRepository(db)

	auditSvc := service.NewAuditService(repository.NewAuditRepository(db), log)
	defer auditSvc.Shutdown()

	availability := service.NewAvailabilityService(apptRepo, log)
	reminders := service.NewReminderService(reminderRepo, apptRepo, transport, clk, cfg.Reminders, log)
	appts := service.NewAppointmentService(
		apptRepo, availability, reminders,
		slotlock.New(redisClient, cfg.Redis.LockTTL),
		transport, auditSvc, clk, cfg.Scheduling, log,
	)
	series := service.NewSeriesService(apptRepo, patternRepo, appts, clk, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Logger:       log,
		Metrics:      collector,
		Verifier:     auth.NewVerifier(cfg.JWT),
		Appointments: appts,
		Availability: availability,
		Series:       series,
		Reminders:    reminders,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pollDBStats(ctx context.Context, db *gorm.DB, collector *metrics.Collector) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}
}
