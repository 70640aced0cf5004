package distance

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/ports"
	"fmt"
	"sync"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockProvider serves fixed geocodes and routes. It records every call.
type MockProvider struct {
	mu     sync.Mutex
	points map[string]domain.Coordinates
	routes map[string]ports.RouteResult
	calls  []string
}

func NewMockProvider(points map[string]domain.Coordinates, pairs []MockPair) *MockProvider {
	routes := make(map[string]ports.RouteResult, len(pairs))
	for _, p := range pairs {
		routes[p.From.LatLon()+"|"+p.To.LatLon()] = ports.RouteResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockProvider{points: points, routes: routes}
}

func (p *MockProvider) Geocode(ctx context.Context, address string, country domain.Country) (domain.Coordinates, error) {
	p.record("geocode:" + address)

	c, ok := p.points[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("missing address %q: %w", address, domain.ErrGeocodeNotFound)
	}
	return c, nil
}

func (p *MockProvider) DrivingRoute(ctx context.Context, from, to domain.Coordinates) (ports.RouteResult, error) {
	key := from.LatLon() + "|" + to.LatLon()
	p.record("route:" + key)

	r, ok := p.routes[key]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing pair %q: %w", key, domain.ErrRoutingUnavailable)
	}
	return r, nil
}

// Calls returns the recorded calls in order of arrival.
func (p *MockProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *MockProvider) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}
