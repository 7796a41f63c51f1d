package dto

import "visit-route-service/internal/domain"

// ScheduleRequest maps lower-case day names to their windows, e.g.
// {"days": {"monday": [{"start": "08:00", "end": "12:00"}]}}.
type ScheduleRequest struct {
	Days map[string][]domain.WindowSpec `json:"days" binding:"required"`
}

type ScheduleResponse struct {
	ProviderID string                         `json:"provider_id"`
	Days       map[string][]domain.WindowSpec `json:"days"`
}
