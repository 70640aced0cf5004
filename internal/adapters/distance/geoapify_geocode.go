package distance

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			// GeoJSON order: [lon, lat].
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Country     string `json:"country"`
			CountryCode string `json:"country_code"`
			Formatted   string `json:"formatted"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves address with /v1/geocode/search, keeping only candidates inside country.
// Provider biasing does not guarantee an in-country top result, so several candidates
// are requested and filtered here.
func (g *GeoapifyProvider) Geocode(
	ctx context.Context,
	address string,
	country domain.Country,
) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "geoapify.Geocode")(&err)

	norm := g.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: empty address: %w", domain.ErrGeocodeNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, g.geocodeTimeout)
	defer cancel()

	code := strings.ToLower(strings.TrimSpace(country.Code))

	params := url.Values{}
	params.Set("text", norm)
	params.Set("limit", strconv.Itoa(geocodeCandidates))
	if code != "" {
		params.Set("filter", "countrycode:"+code)
		params.Set("bias", "countrycode:"+code)
	}

	req, err := g.newRequest(ctx, g.baseURL+"/v1/geocode/search", params)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: %w", norm, err, domain.ErrGeocodeNotFound)
	}

	resp, err := g.do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: %w", norm, err, domain.ErrGeocodeNotFound)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode response: %w: %w", norm, err, domain.ErrGeocodeNotFound)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: no results: %w", norm, domain.ErrGeocodeNotFound)
	}

	for _, f := range decoded.Features {
		if !inCountry(f.Properties.CountryCode, f.Properties.Country, country) {
			continue
		}

		// A third element, when present, is altitude.
		coords := f.Geometry.Coordinates
		if len(coords) < 2 {
			continue
		}

		return domain.Coordinates{Lat: coords[1], Lon: coords[0]}, nil
	}

	return domain.Coordinates{}, fmt.Errorf("geocode %q: no results in %q: %w", norm, code, domain.ErrGeocodeNotFound)
}

// inCountry matches either the ISO code or the country name, case-insensitively.
func inCountry(candidateCode, candidateName string, country domain.Country) bool {
	if country.Code != "" && strings.EqualFold(strings.TrimSpace(candidateCode), strings.TrimSpace(country.Code)) {
		return true
	}
	if country.Name != "" && strings.EqualFold(strings.TrimSpace(candidateName), strings.TrimSpace(country.Name)) {
		return true
	}
	return false
}
