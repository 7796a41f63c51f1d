package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"visit-route-service/internal/api/dto"
	"visit-route-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxNextSlots = 100

type SlotService interface {
	SlotsOnDate(ctx context.Context, providerID string, date time.Time) ([]domain.Slot, error)
	NextSlots(ctx context.Context, providerID string, from time.Time, n int) ([]domain.Slot, error)
	NextSlotsFromDate(ctx context.Context, providerID string, date time.Time, n int) ([]domain.Slot, error)
	UpdateSchedule(ctx context.Context, providerID string, spec map[string][]domain.WindowSpec) (domain.WeeklySchedule, error)
}

type SlotHandler struct {
	Service SlotService
}

// GET /providers/:id/slots?date=YYYY-MM-DD
func (h *SlotHandler) OnDate(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}

	id := c.Param("id")
	slots, err := h.Service.SlotsOnDate(c.Request.Context(), id, date)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListSlotResponse(id, slots))
}

// GET /providers/:id/slots/next?from=RFC3339|YYYY-MM-DD&n=5
//
// An RFC3339 from is an instant; a bare date is midnight of that day in the
// provider's time zone. Without from the search starts now.
func (h *SlotHandler) Next(c *gin.Context) {
	n := 5
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxNextSlots {
			writeError(c, http.StatusBadRequest, "n must be between 1 and "+strconv.Itoa(maxNextSlots))
			return
		}
		n = v
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	var (
		slots []domain.Slot
		err   error
	)
	raw := c.Query("from")
	if raw == "" {
		slots, err = h.Service.NextSlots(ctx, id, time.Time{}, n)
	} else if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
		slots, err = h.Service.NextSlots(ctx, id, t, n)
	} else if d, perr := time.Parse(time.DateOnly, raw); perr == nil {
		slots, err = h.Service.NextSlotsFromDate(ctx, id, d, n)
	} else {
		writeError(c, http.StatusBadRequest, "from must be RFC3339 or YYYY-MM-DD")
		return
	}

	if err != nil {
		// Partial results are still useful to the caller.
		if errors.Is(err, domain.ErrNoAvailability) && len(slots) > 0 {
			res := dto.NewListSlotResponse(id, slots)
			res.Partial = true
			c.JSON(http.StatusOK, res)
			return
		}
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListSlotResponse(id, slots))
}

// PUT /providers/:id/schedule
func (h *SlotHandler) UpdateSchedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	id := c.Param("id")
	schedule, err := h.Service.UpdateSchedule(c.Request.Context(), id, req.Days)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ScheduleResponse{ProviderID: id, Days: schedule.Spec()})
}
