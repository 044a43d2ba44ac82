package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medsched/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	Verifier     *auth.Verifier
	Appointments *service.AppointmentService
	Availability *service.AvailabilityService
	Series       *service.SeriesService
	Reminders    *service.ReminderService
}

// NewRouter assembles the gin engine: health and metrics stay open, every
// /api/v1 route requires a verified bearer token.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(deps.Logger))
	r.Use(metricsMiddleware(deps.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	api.Use(deps.Verifier.Middleware())

	NewAppointmentHandler(deps.Appointments).Register(api)
	NewAvailabilityHandler(deps.Availability, deps.Config.Scheduling.SlotSizeMinutes).Register(api)
	NewSeriesHandler(deps.Series).Register(api)
	NewReminderHandler(deps.Reminders).Register(api)

	return r
}

const requestIDHeader = "X-Request-ID"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request handled", fields...)
	}
}

func metricsMiddleware(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.InFlightGauge.Inc()
		start := time.Now()
		c.Next()
		m.InFlightGauge.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
