package distance

import (
	"context"
	"delivery-quote-service/internal/domain"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-geoapify-key"

var nepal = domain.Country{Code: "np", Name: "Nepal"}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GeoapifyProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeoapifyProvider(testAPIKey, server.URL, server.Client())
	require.NoError(t, err)
	return p
}

func TestNewGeoapifyProviderRequiresKey(t *testing.T) {
	_, err := NewGeoapifyProvider("  ", "", nil)
	require.Error(t, err)
}

func TestGeocodeRequestParams(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/geocode/search", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "Thamel, Kathmandu", q.Get("text"))
		assert.Equal(t, testAPIKey, q.Get("apiKey"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "countrycode:np", q.Get("filter"))
		assert.Equal(t, "countrycode:np", q.Get("bias"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		io.WriteString(w, `{"features":[{"geometry":{"coordinates":[85.324,27.7172]},"properties":{"country":"Nepal","country_code":"np"}}]}`)
	})

	got, err := p.Geocode(context.Background(), "  Thamel,   Kathmandu ", nepal)
	require.NoError(t, err)

	// GeoJSON [lon, lat] must come back as Lat/Lon.
	assert.Equal(t, 27.7172, got.Lat)
	assert.Equal(t, 85.324, got.Lon)
}

func TestGeocodeFiltersOutOfCountryCandidates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"features":[
			{"geometry":{"coordinates":[77.209,28.6139]},"properties":{"country":"India","country_code":"in"}},
			{"geometry":{"coordinates":[1]},"properties":{"country":"Nepal","country_code":"np"}},
			{"geometry":{"coordinates":[83.9856,28.2096]},"properties":{"country":"NEPAL"}},
			{"geometry":{"coordinates":[85.324,27.7172]},"properties":{"country":"Nepal","country_code":"np"}}
		]}`)
	})

	got, err := p.Geocode(context.Background(), "Pokhara", nepal)
	require.NoError(t, err)

	// First in-country candidate with usable coordinates, matched by name.
	assert.Equal(t, domain.Coordinates{Lat: 28.2096, Lon: 83.9856}, got)
}

func TestGeocodeAcceptsAltitude(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"features":[{"geometry":{"coordinates":[85.324,27.7172,1400]},"properties":{"country_code":"np"}}]}`)
	})

	got, err := p.Geocode(context.Background(), "Kathmandu", nepal)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 27.7172, Lon: 85.324}, got)
}

func TestGeocodeNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no features",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":[]}`)
			},
		},
		{
			name: "all out of country",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":[{"geometry":{"coordinates":[77.209,28.6139]},"properties":{"country":"India","country_code":"in"}}]}`)
			},
		},
		{
			name: "status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"invalid apiKey `+testAPIKey+`"}`)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler)

			_, err := p.Geocode(context.Background(), "Kathmandu", nepal)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrGeocodeNotFound))
			assert.NotContains(t, err.Error(), testAPIKey)
		})
	}
}

func TestGeocodeTransportErrorIsRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p, err := NewGeoapifyProvider(testAPIKey, server.URL, nil)
	require.NoError(t, err)

	_, err = p.Geocode(context.Background(), "Kathmandu", nepal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeocodeNotFound))
	assert.NotContains(t, err.Error(), testAPIKey)
}

func TestGeocodeTimeout(t *testing.T) {
	release := make(chan struct{})
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	p.geocodeTimeout = 50 * time.Millisecond

	_, err := p.Geocode(context.Background(), "Kathmandu", nepal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeocodeNotFound))
}

func TestDrivingRouteCoordinateOrder(t *testing.T) {
	kathmandu := domain.Coordinates{Lat: 27.7172, Lon: 85.324}
	pokhara := domain.Coordinates{Lat: 28.2096, Lon: 83.9856}

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/routing", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "27.7172,85.324|28.2096,83.9856", q.Get("waypoints"))
		assert.Equal(t, "drive", q.Get("mode"))
		assert.Equal(t, testAPIKey, q.Get("apiKey"))

		io.WriteString(w, `{"features":[{"properties":{"distance":200512.5,"time":21600}}]}`)
	})

	got, err := p.DrivingRoute(context.Background(), kathmandu, pokhara)
	require.NoError(t, err)
	assert.Equal(t, 200512.5, got.DistanceMeters)
	assert.Equal(t, 21600.0, got.DurationSeconds)
}

func TestDrivingRouteUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no features",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":[]}`)
			},
		},
		{
			name: "missing distance",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":[{"properties":{"time":60}}]}`)
			},
		},
		{
			name: "negative distance",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"features":[{"properties":{"distance":-1}}]}`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `not json`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler)

			_, err := p.DrivingRoute(context.Background(), domain.Coordinates{Lat: 1, Lon: 2}, domain.Coordinates{Lat: 3, Lon: 4})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrRoutingUnavailable))
		})
	}
}

func TestStatusErrorIsInspectable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.DrivingRoute(context.Background(), domain.Coordinates{}, domain.Coordinates{})

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
}
