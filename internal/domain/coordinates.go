package domain

import "strconv"

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// LatLon renders the point as "lat,lon", the waypoint order expected by the routing API.
func (c Coordinates) LatLon() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Country scopes geocoding to a single target country.
type Country struct {
	// ISO 3166-1 alpha-2, lower case (e.g. "np").
	Code string
	Name string
}
