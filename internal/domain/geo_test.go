package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinates
		want float64
	}{
		{"same point", Coordinates{Lat: 39.74, Lon: -104.99}, Coordinates{Lat: 39.74, Lon: -104.99}, 0},
		{"one degree of longitude at the equator", Coordinates{}, Coordinates{Lon: 1}, 111.19508},
		{"one degree of latitude", Coordinates{}, Coordinates{Lat: 1}, 111.19508},
		{"antipodal", Coordinates{}, Coordinates{Lon: 180}, 20015.1144},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 1e-3)
			assert.InDelta(t, tt.want, Distance(tt.b, tt.a), 1e-3)
		})
	}
}

func TestHaversineMatrix(t *testing.T) {
	points := []Coordinates{
		{Lat: 39.7392, Lon: -104.9903},
		{Lat: 39.7312, Lon: -104.9826},
		{Lat: 39.7626, Lon: -105.0112},
		{Lat: 39.7392, Lon: -104.9903},
	}

	m := HaversineMatrix(points)
	require.Len(t, m, 4)

	for i := range m {
		require.Len(t, m[i], 4)
		assert.Zero(t, m[i][i])
		for j := range m {
			assert.Equal(t, m[i][j], m[j][i])
		}
	}
	assert.Zero(t, m[0][3], "coincident points")
	assert.Greater(t, m[1][2], 0.0)

	_, err := NewDistanceMatrix(m)
	assert.NoError(t, err)
}

func TestCoordinatesValidate(t *testing.T) {
	assert.NoError(t, Coordinates{Lat: 90, Lon: -180}.Validate())
	assert.ErrorIs(t, Coordinates{Lat: 90.5}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Coordinates{Lon: 181}.Validate(), ErrInvalidCoordinate)
}
