package services

import (
	"strconv"
	"time"

	"visit-route-service/internal/domain"

	"github.com/cespare/xxhash/v2"
)

// RouteKey fingerprints a provider day, the distance source, the optimize
// mode and the stops routed on it. Any change to the booking set or a
// location yields a new key.
func RouteKey(
	providerID string,
	date time.Time,
	source string,
	mode Mode,
	depot domain.Coordinates,
	stops []domain.BookingLocation,
) string {
	h := xxhash.New()
	_, _ = h.WriteString(depot.Key())
	for _, s := range stops {
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(s.BookingID)
		_, _ = h.WriteString("@")
		_, _ = h.WriteString(s.Key())
	}
	return providerID + ":" + date.Format(time.DateOnly) + ":" + source + ":" + mode.String() + ":" + strconv.FormatUint(h.Sum64(), 16)
}
