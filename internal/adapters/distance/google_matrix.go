package distance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"

	maps "googlemaps.github.io/maps"
)

// Google limits a single Distance Matrix request to 25 origins, 25
// destinations and 100 elements.
const (
	googleMaxElements     = 100
	googleMaxOrigins      = 25
	googleMaxDestinations = 25
)

// googleMatrixClient is the subset of *maps.Client used here.
type googleMatrixClient interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// GoogleMatrixProvider builds driving-distance matrices with the Google
// Distance Matrix API.
type GoogleMatrixProvider struct {
	client googleMatrixClient
	mode   maps.Mode
}

func NewGoogleMatrixProvider(apiKey string, opts ...maps.ClientOption) (*GoogleMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google api key is empty")
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}

	return &GoogleMatrixProvider{client: client, mode: maps.TravelModeDriving}, nil
}

func latLng(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 6, 64)
}

// Matrix tiles the full matrix into origin by destination blocks that stay
// within the per-request limits.
func (g *GoogleMatrixProvider) Matrix(ctx context.Context, points []domain.Coordinates) (_ domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "google.Matrix")(&err)

	n := len(points)
	if n < 2 {
		return domain.HaversineMatrix(points), nil
	}

	all := make([]string, n)
	for i, p := range points {
		all[i] = latLng(p)
	}

	m := make(domain.DistanceMatrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	destBatch := min(n, googleMaxDestinations)
	originBatch := min(googleMaxOrigins, googleMaxElements/destBatch)

	for oFrom := 0; oFrom < n; oFrom += originBatch {
		oTo := min(oFrom+originBatch, n)
		for dFrom := 0; dFrom < n; dFrom += destBatch {
			dTo := min(dFrom+destBatch, n)
			if err := g.fillBlock(ctx, m, all, oFrom, oTo, dFrom, dTo); err != nil {
				return nil, err
			}
		}
	}

	return domain.NewDistanceMatrix(m)
}

// fillBlock requests origins [oFrom, oTo) against destinations [dFrom, dTo).
func (g *GoogleMatrixProvider) fillBlock(ctx context.Context, m domain.DistanceMatrix, all []string, oFrom, oTo, dFrom, dTo int) error {
	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      all[oFrom:oTo],
		Destinations: all[dFrom:dTo],
		Mode:         g.mode,
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return fmt.Errorf("google matrix rows %d-%d cols %d-%d: %w", oFrom, oTo-1, dFrom, dTo-1, err)
	}
	if len(resp.Rows) != oTo-oFrom {
		return fmt.Errorf("google matrix: expected %d rows; got %d", oTo-oFrom, len(resp.Rows))
	}

	for r, row := range resp.Rows {
		i := oFrom + r
		if len(row.Elements) != dTo-dFrom {
			return fmt.Errorf("google matrix row %d has %d elements; want %d", i, len(row.Elements), dTo-dFrom)
		}
		for c, el := range row.Elements {
			j := dFrom + c
			if i == j {
				continue
			}
			if el == nil || el.Status != "OK" {
				status := "missing"
				if el != nil {
					status = el.Status
				}
				return fmt.Errorf("google matrix: no route from point %d to %d: %s", i, j, status)
			}
			m[i][j] = float64(el.Distance.Meters) / 1000
		}
	}
	return nil
}
