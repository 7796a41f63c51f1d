package dto

import "visit-route-service/internal/domain"

type SlotResponse struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type ListSlotResponse struct {
	ProviderID string         `json:"provider_id"`
	Slots      []SlotResponse `json:"slots"`
	// Set when fewer slots than requested exist within the look-ahead.
	Partial bool `json:"partial,omitempty"`
}

func NewSlotResponse(s domain.Slot) SlotResponse {
	return SlotResponse{
		Date:  s.Date.Format("2006-01-02"),
		Start: s.StartOfDay().String(),
		End:   s.EndOfDay().String(),
	}
}

func NewListSlotResponse(providerID string, slots []domain.Slot) ListSlotResponse {
	res := ListSlotResponse{ProviderID: providerID, Slots: make([]SlotResponse, 0, len(slots))}
	for _, s := range slots {
		res.Slots = append(res.Slots, NewSlotResponse(s))
	}
	return res
}
