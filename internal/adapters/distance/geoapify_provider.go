package distance

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeoapifyBaseURL = "https://api.geoapify.com"
	geocodeTimeout         = 10 * time.Second
	routingTimeout         = 15 * time.Second
	geocodeCandidates      = 5
)

// GeoapifyProvider implements ports.Geocoder and ports.Router on the Geoapify APIs.
//
// Each call is a single attempt bounded by its own timeout; nothing is cached.
// The provider holds only read-only configuration and is safe for concurrent use.
type GeoapifyProvider struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	mode           string
	geocodeTimeout time.Duration
	routingTimeout time.Duration
}

func NewGeoapifyProvider(apiKey string, baseURL string, session *http.Client) (*GeoapifyProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("geoapify api key is empty")
	}

	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeoapifyBaseURL
	}

	if session == nil {
		// Per-call deadlines come from the request context.
		session = &http.Client{}
	}

	return &GeoapifyProvider{
		session:        session,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		mode:           "drive",
		geocodeTimeout: geocodeTimeout,
		routingTimeout: routingTimeout,
	}, nil
}

// normalize collapses whitespace in free-text queries.
func (g *GeoapifyProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
