package domain

import "math"

// Mean Earth radius (IUGG) in kilometres.
const EarthRadiusKm = 6371.0088

// Distance returns the great-circle distance between a and b in kilometres
// using the Haversine formula.
func Distance(a, b Coordinates) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h slightly past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// HaversineMatrix returns the symmetric great-circle distance matrix over points.
func HaversineMatrix(points []Coordinates) DistanceMatrix {
	n := len(points)
	m := make(DistanceMatrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	// Fill the upper triangle and mirror it so the result is exactly symmetric.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(points[i], points[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}
