package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/notify"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/clock"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/metrics"
	"go.uber.org/zap"
)

// The worker shares the API's storage but runs no HTTP surface beyond
// /metrics and /healthz. It can be scaled horizontally: the claim update in
// the reminder repository keeps concurrent workers from double-sending.
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
		log.Fatal("reminder worker exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector("medsched_worker")

	reminders := service.NewReminderService(
		repository.NewReminderRepository(db),
		repository.NewAppointmentRepository(db),
		notify.NewLogTransport(log),
		clock.System(),
		cfg.Reminders,
		log,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	obsSrv := &http.Server{Addr: cfg.Server.Address(), Handler: mux, ReadTimeout: 10 * time.Second}
	go func() {
		if err := obsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("observability server failed", zap.Error(err))
		}
	}()

	log.Info("reminder worker started",
		zap.Duration("sweep_interval", cfg.Reminders.SweepInterval),
		zap.Int("dispatch_concurrency", cfg.Reminders.DispatchConcurrency),
	)

	reminders.SweepLoop(ctx, cfg.Reminders.SweepInterval, func(res service.SweepResult, took time.Duration) {
		collector.RemindersSent.Add(float64(res.Sent))
		collector.RemindersFailed.Add(float64(res.Failed))
		collector.SweepDuration.Observe(took.Seconds())
	})

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return obsSrv.Shutdown(shutdownCtx)
}
