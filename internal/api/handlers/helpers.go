package handlers

import (
	"errors"
	"net/http"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// writeDomainError maps domain failures to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func writeDomainError(c *gin.Context, err error) {
	var (
		oversized *domain.OversizedBookingSetError
		tooMany   *domain.TooManyStopsError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidScheduleWindow),
		errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrInvalidMatrix):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &oversized):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     oversized.Error(),
			"stops":     oversized.Stops,
			"max_stops": oversized.Max,
		})
	case errors.As(err, &tooMany):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     tooMany.Error(),
			"stops":     tooMany.Stops,
			"max_stops": tooMany.Max,
		})
	case errors.Is(err, domain.ErrNoAvailability):
		writeError(c, http.StatusConflict, err.Error())
	default:
		obs.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

// parseDate reads a YYYY-MM-DD query parameter. Empty yields the zero time,
// which services read as today in the provider's time zone.
func parseDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, name+" must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}
