package dto

import "visit-route-service/internal/domain"

type LocationDTO struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (l LocationDTO) Domain() domain.NamedLocation {
	return domain.NamedLocation{Name: l.Name, Coordinates: domain.Coordinates{Lat: l.Lat, Lon: l.Lon}}
}

type StopRequest struct {
	BookingID string      `json:"booking_id"`
	Location  LocationDTO `json:"location"`
}

type OptimizeRequest struct {
	Depot LocationDTO   `json:"depot"`
	Stops []StopRequest `json:"stops"`
	// exact (default), heuristic or auto.
	Mode string `json:"mode"`
}

type RouteStopResponse struct {
	BookingID    string      `json:"booking_id"`
	Location     LocationDTO `json:"location"`
	LegKm        float64     `json:"leg_km"`
	CumulativeKm float64     `json:"cumulative_km"`
}

type RouteResponse struct {
	ProviderID string              `json:"provider_id,omitempty"`
	Date       string              `json:"date,omitempty"`
	Depot      LocationDTO         `json:"depot"`
	Stops      []RouteStopResponse `json:"stops"`
	ReturnKm   float64             `json:"return_km"`
	TotalKm    float64             `json:"total_km"`
	Exact      bool                `json:"exact"`
}

func newLocationDTO(l domain.NamedLocation) LocationDTO {
	return LocationDTO{Name: l.Name, Lat: l.Lat, Lon: l.Lon}
}

func NewRouteResponse(p *domain.VisitPlan) RouteResponse {
	res := RouteResponse{
		ProviderID: p.ProviderID,
		Depot:      newLocationDTO(p.Depot),
		Stops:      make([]RouteStopResponse, 0, len(p.Stops)),
		ReturnKm:   p.ReturnKm,
		TotalKm:    p.TotalKm,
		Exact:      p.Exact,
	}
	if !p.Date.IsZero() {
		res.Date = p.Date.Format("2006-01-02")
	}
	for _, s := range p.Stops {
		res.Stops = append(res.Stops, RouteStopResponse{
			BookingID:    s.BookingID,
			Location:     newLocationDTO(s.Location),
			LegKm:        s.LegKm,
			CumulativeKm: s.CumulativeKm,
		})
	}
	return res
}
