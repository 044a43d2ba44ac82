package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/gin-gonic/gin"
)

type SeriesHandler struct {
	series *service.SeriesService
}

func NewSeriesHandler(series *service.SeriesService) *SeriesHandler {
	return &SeriesHandler{series: series}
}

func (h *SeriesHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/appointments/:id/series", h.create)
	rg.POST("/appointments/:id/series/cancel", h.cancel)
	rg.POST("/appointments/:id/follow-up", h.followUp)
}

type createSeriesRequest struct {
	Name           string     `json:"name"`
	Frequency      string     `json:"frequency" binding:"required"`
	Interval       int        `json:"interval"`
	EndDate        *time.Time `json:"end_date"`
	MaxOccurrences *int       `json:"max_occurrences"`

	// Caller-side bound on top of the pattern's own limits.
	Until    *time.Time `json:"until"`
	MaxCount int        `json:"max_count"`
}

type seriesErrorResponse struct {
	Date  time.Time `json:"date"`
	Error string    `json:"error"`
}

type seriesResponse struct {
	PatternID string                `json:"pattern_id"`
	Created   []appointmentResponse `json:"created"`
	Skipped   []seriesErrorResponse `json:"skipped"`
}

func (h *SeriesHandler) create(c *gin.Context) {
	anchorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req createSeriesRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Interval == 0 {
		req.Interval = 1
	}

	pattern := &recurrence.Pattern{
		Name:           req.Name,
		Frequency:      recurrence.Frequency(req.Frequency),
		Interval:       req.Interval,
		EndDate:        req.EndDate,
		MaxOccurrences: req.MaxOccurrences,
		IsActive:       true,
	}

	result, err := h.series.CreateSeries(c.Request.Context(), anchorID, pattern, recurrence.Bound{
		Until:    req.Until,
		MaxCount: req.MaxCount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := seriesResponse{
		PatternID: result.Pattern.ID.String(),
		Created:   make([]appointmentResponse, 0, len(result.Created)),
		Skipped:   make([]seriesErrorResponse, 0, len(result.Skipped)),
	}
	for _, a := range result.Created {
		resp.Created = append(resp.Created, toAppointmentResponse(a))
	}
	for _, se := range result.Skipped {
		resp.Skipped = append(resp.Skipped, seriesErrorResponse{Date: se.Date, Error: se.Err.Error()})
	}
	respondCreated(c, resp)
}

type cancelSeriesRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *SeriesHandler) cancel(c *gin.Context) {
	anchorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelSeriesRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := mustClaims(c)
	cancelled, err := h.series.CancelSeries(c.Request.Context(), anchorID, req.Reason, string(claims.Role), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"cancelled": cancelled})
}

type followUpRequest struct {
	Date  time.Time `json:"date" binding:"required"`
	Notes string    `json:"notes"`
}

func (h *SeriesHandler) followUp(c *gin.Context) {
	completedID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req followUpRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := mustClaims(c)
	a, err := h.series.ScheduleFollowUp(c.Request.Context(), completedID, &appointment.FollowUpCommand{
		Date:      req.Date,
		Notes:     req.Notes,
		CreatedBy: claims.UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toAppointmentResponse(a))
}
