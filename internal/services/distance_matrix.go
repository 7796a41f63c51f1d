package services

import "visit-route-service/internal/domain"

// BuildDistanceMatrix returns the (N+1)x(N+1) great-circle distance matrix
// for the depot (index 0) and the bookings (indices 1..N), in kilometres.
func BuildDistanceMatrix(depot domain.Coordinates, bookings []domain.Coordinates) domain.DistanceMatrix {
	points := make([]domain.Coordinates, 0, 1+len(bookings))
	points = append(points, depot)
	points = append(points, bookings...)
	return domain.HaversineMatrix(points)
}
