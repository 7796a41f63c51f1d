package handlers

import (
	"context"
	"net/http"
	"time"

	"visit-route-service/internal/api/dto"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/services"

	"github.com/gin-gonic/gin"
)

type RoutePlanner interface {
	PlanVisits(ctx context.Context, providerID string, date time.Time) (*domain.VisitPlan, error)
	OptimizeAdHoc(
		ctx context.Context,
		depot domain.NamedLocation,
		stops []domain.BookingLocation,
		mode services.Mode,
	) (*domain.VisitPlan, error)
}

type RouteHandler struct {
	Planner RoutePlanner
}

// GET /providers/:id/route?date=YYYY-MM-DD
func (h *RouteHandler) ProviderRoute(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}

	plan, err := h.Planner.PlanVisits(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRouteResponse(plan))
}

// POST /routes/optimize
func (h *RouteHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	mode, err := services.ParseMode(req.Mode)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	stops := make([]domain.BookingLocation, 0, len(req.Stops))
	for _, s := range req.Stops {
		stops = append(stops, domain.BookingLocation{BookingID: s.BookingID, NamedLocation: s.Location.Domain()})
	}

	plan, err := h.Planner.OptimizeAdHoc(c.Request.Context(), req.Depot.Domain(), stops, mode)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRouteResponse(plan))
}
