package domain

import (
	"errors"
	"strings"
)

var (
	// ErrGeocodeNotFound means an address could not be resolved inside the target country.
	ErrGeocodeNotFound = errors.New("geocode not found")
	// ErrRoutingUnavailable means no driving route could be obtained.
	ErrRoutingUnavailable = errors.New("routing unavailable")
	// ErrCalculationNotFound is returned by record stores for unknown ids.
	ErrCalculationNotFound = errors.New("calculation not found")
)

// ValidationError lists request fields that are absent or hold unusable values.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// Fields returns every offending field name, missing first.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}
