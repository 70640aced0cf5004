package distance

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"
	"encoding/json"
	"fmt"
	"net/url"
)

type routingResponse struct {
	Features []struct {
		Properties struct {
			Distance *float64 `json:"distance"`
			Time     *float64 `json:"time"`
		} `json:"properties"`
	} `json:"features"`
}

// DrivingRoute queries /v1/routing for the road distance between from and to.
// Waypoints are sent as "lat,lon|lat,lon".
func (g *GeoapifyProvider) DrivingRoute(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "geoapify.DrivingRoute")(&err)

	ctx, cancel := context.WithTimeout(ctx, g.routingTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("waypoints", from.LatLon()+"|"+to.LatLon())
	params.Set("mode", g.mode)

	req, err := g.newRequest(ctx, g.baseURL+"/v1/routing", params)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("route: %w: %w", err, domain.ErrRoutingUnavailable)
	}

	resp, err := g.do(req)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("route: %w: %w", err, domain.ErrRoutingUnavailable)
	}
	defer resp.Body.Close()

	var decoded routingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("route: decode response: %w: %w", err, domain.ErrRoutingUnavailable)
	}

	if len(decoded.Features) == 0 {
		return ports.RouteResult{}, fmt.Errorf("route: no route found: %w", domain.ErrRoutingUnavailable)
	}

	props := decoded.Features[0].Properties
	if props.Distance == nil || *props.Distance < 0 {
		return ports.RouteResult{}, fmt.Errorf("route: missing distance: %w", domain.ErrRoutingUnavailable)
	}

	out := ports.RouteResult{DistanceMeters: *props.Distance}
	if props.Time != nil {
		out.DurationSeconds = *props.Time
	}

	return out, nil
}
