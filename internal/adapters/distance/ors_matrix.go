package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"
)

// ORSMatrixProvider builds road-distance matrices with the OpenRouteService
// matrix endpoint. It is safe for concurrent use.
type ORSMatrixProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	profile     string
	maxAttempts int
	backoff     time.Duration
}

type ORSOption func(*ORSMatrixProvider)

// WithORSBaseURL points the provider at another ORS deployment.
func WithORSBaseURL(url string) ORSOption {
	return func(o *ORSMatrixProvider) { o.baseURL = url }
}

func WithORSHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSMatrixProvider) { o.session = c }
}

// WithORSRetry sets the attempt count and the initial backoff.
func WithORSRetry(attempts int, backoff time.Duration) ORSOption {
	return func(o *ORSMatrixProvider) {
		if attempts > 0 {
			o.maxAttempts = attempts
		}
		o.backoff = backoff
	}
}

func NewORSMatrixProvider(apiKey string, opts ...ORSOption) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	o := &ORSMatrixProvider{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     defaultORSBaseURL,
		profile:     defaultORSProfile,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// Matrix requests the full all-pairs distance matrix in kilometres.
func (o *ORSMatrixProvider) Matrix(ctx context.Context, points []domain.Coordinates) (_ domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "ors.Matrix")(&err)

	if len(points) < 2 {
		return domain.HaversineMatrix(points), nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(points))
	for _, c := range points {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	n := len(points)
	if len(mr.Distances) != n {
		return nil, fmt.Errorf("expected %d matrix rows; got %d", n, len(mr.Distances))
	}

	m := make(domain.DistanceMatrix, n)
	for i, row := range mr.Distances {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d entries; want %d", i, len(row), n)
		}
		m[i] = make([]float64, n)
		for j, v := range row {
			if i == j {
				continue
			}
			if v == nil {
				return nil, fmt.Errorf("matrix returned no route from point %d to %d", i, j)
			}
			// ORS reports metres by default.
			m[i][j] = *v / 1000
		}
	}

	return domain.NewDistanceMatrix(m)
}
