package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/service"
	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availability *service.AvailabilityService
	slotSizeMins int
}

func NewAvailabilityHandler(availability *service.AvailabilityService, slotSizeMins int) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, slotSizeMins: slotSizeMins}
}

func (h *AvailabilityHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/providers/:id/free-slots", h.freeSlots)
}

type freeSlotResponse struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DurationMins int       `json:"duration_mins"`
}

// freeSlots returns a provider's open slots between `from` and `to`
// (RFC 3339). `slot_size` overrides the configured granularity.
func (h *AvailabilityHandler) freeSlots(c *gin.Context) {
	providerID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from: must be RFC 3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to: must be RFC 3339"})
		return
	}
	slotSize := parseQueryInt(c, "slot_size", h.slotSizeMins)

	slots, err := h.availability.FreeSlots(c.Request.Context(), providerID, from, to, slotSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]freeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, freeSlotResponse{
			Start:        s.Start,
			End:          s.End(),
			DurationMins: s.DurationMins,
		})
	}
	respondOK(c, out)
}
