package api

import (
	"context"
	"delivery-quote-service/internal/adapters/repositories"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/db"
	"delivery-quote-service/internal/services"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"pickup_location": "Thamel, Kathmandu",
	"delivery_location": "Lakeside, Pokhara",
	"length": 20, "width": 20, "height": 20, "weight": 3,
	"package_type": "standard"
}`

type envelope struct {
	Success       bool             `json:"success"`
	Error         string           `json:"error"`
	Fields        []string         `json:"fields"`
	RequestID     string           `json:"request_id"`
	CalculationID string           `json:"calculation_id"`
	Breakdown     map[string]any   `json:"breakdown"`
	Calculations  []map[string]any `json:"calculations"`
	Calculation   map[string]any   `json:"calculation"`
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (l fakeLimiter) Allow(ctx context.Context, key string) (bool, error) { return l.allow, l.err }

type recordingLimiter struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return true, nil
}

type failingQuoter struct{ err error }

func (q failingQuoter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Calculation, error) {
	return nil, q.err
}

type panickingQuoter struct{}

func (panickingQuoter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Calculation, error) {
	panic("handler bug")
}

// newTestRouter wires the real quote pipeline in fallback mode over a temp SQLite store.
func newTestRouter(t *testing.T, deps RouterDeps) http.Handler {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, repositories.SQLite))

	repo := repositories.NewSqliteCalculationRepository(conn)
	resolver := services.NewDistanceResolver(nil, nil, services.DistanceResolverConfig{})
	engine := services.NewPriceEngine(domain.DefaultRates(), resolver)

	if deps.Quotes == nil {
		deps.Quotes = services.NewQuoteService(engine, repo, nil)
	}
	if deps.Calculations == nil {
		deps.Calculations = repo
	}
	return NewRouter(deps)
}

func serve(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestCalculateReturnsBreakdown(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	for _, path := range []string{"/calculate/", "/calculate"} {
		rec, env := serve(t, h, http.MethodPost, path, validBody)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.True(t, env.Success)
		assert.Equal(t, 15.0, env.Breakdown["distance"])
		assert.Equal(t, 1431.25, env.Breakdown["total"])
		assert.Equal(t, "NPR", env.Breakdown["currency"])
		for _, key := range []string{
			"distance", "base_price", "weight_charge", "volume_charge", "volume", "type_multiplier",
			"road_multiplier", "subtotal", "fuel_charge", "service_charge", "fragility_charge",
			"insurance_charge", "total",
		} {
			assert.Contains(t, env.Breakdown, key)
		}
		_, err := uuid.Parse(env.CalculationID)
		assert.NoError(t, err)
	}
}

func TestCalculateValidation(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	tests := []struct {
		name       string
		body       string
		wantFields []string
		wantError  string
	}{
		{"invalid json", `{"pickup_location":`, nil, "Invalid JSON format in request"},
		{"missing fields", `{"pickup_location":"a","length":1,"width":1,"height":1,"weight":1}`,
			[]string{"delivery_location", "package_type"}, "Missing required fields: delivery_location, package_type"},
		{"non-positive", `{"pickup_location":"a","delivery_location":"b","length":0,"width":1,"height":1,"weight":1,"package_type":"standard"}`,
			[]string{"length"}, "Invalid fields: length"},
		{"wrong type", `{"pickup_location":12,"delivery_location":"b","length":1,"width":1,"height":1,"weight":1,"package_type":"standard"}`,
			[]string{"pickup_location"}, "Invalid fields: pickup_location"},
		{"trailing data", validBody + `{}`, nil, "body must contain only one JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, h, http.MethodPost, "/calculate/", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantFields, env.Fields)
			assert.NotEmpty(t, env.RequestID)
		})
	}
}

func TestCalculateRejectsOtherMethods(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	rec, env := serve(t, h, http.MethodGet, "/calculate/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, env.Success)
}

func TestCalculateServerErrors(t *testing.T) {
	tests := []struct {
		name string
		deps RouterDeps
	}{
		{"quote error", RouterDeps{Quotes: failingQuoter{err: errors.New("apiKey=secret leaked")}}},
		{"panic", RouterDeps{Quotes: panickingQuoter{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.deps)

			rec, env := serve(t, h, http.MethodPost, "/calculate/", validBody)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "Server error", env.Error)
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestCalculateRateLimit(t *testing.T) {
	limited := newTestRouter(t, RouterDeps{Limiter: fakeLimiter{allow: false}})
	rec, env := serve(t, limited, http.MethodPost, "/calculate/", validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)

	failOpen := newTestRouter(t, RouterDeps{Limiter: fakeLimiter{err: errors.New("redis down")}})
	rec, _ = serve(t, failOpen, http.MethodPost, "/calculate/", validBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, limited, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "limit applies to quoting only")
}

func TestCalculateRejectsOversizedNumbers(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	for _, weight := range []string{`"1e400"`, `1e400`, `"1e30000000"`, `"100000000"`} {
		t.Run(weight, func(t *testing.T) {
			body := strings.Replace(validBody, `"weight": 3`, `"weight": `+weight, 1)

			rec, env := serve(t, h, http.MethodPost, "/calculate/", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid fields: weight", env.Error)
			assert.Equal(t, []string{"weight"}, env.Fields)
		})
	}

	rec, env := serve(t, h, http.MethodGet, "/calculations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.Calculations, "rejected requests are not stored")
}

func TestRateLimitKeysOnPeerAddress(t *testing.T) {
	post := func(h http.Handler, forwardedFor string) {
		req := httptest.NewRequest(http.MethodPost, "/calculate/", strings.NewReader(validBody))
		req.RemoteAddr = "203.0.113.7:51234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	direct := &recordingLimiter{}
	h := newTestRouter(t, RouterDeps{Limiter: direct})
	post(h, "10.0.0.1")
	post(h, "10.0.0.2")
	assert.Equal(t, []string{"203.0.113.7", "203.0.113.7"}, direct.keys)

	proxied := &recordingLimiter{}
	h = newTestRouter(t, RouterDeps{Limiter: proxied, TrustProxyHeaders: true})
	post(h, "10.0.0.1")
	post(h, "10.0.0.2")
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, proxied.keys)
}

func TestCalculationsBrowse(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	_, first := serve(t, h, http.MethodPost, "/calculate/", validBody)
	fragile := strings.Replace(validBody, `"package_type": "standard"`, `"package_type": "fragile", "is_fragile": true`, 1)
	_, second := serve(t, h, http.MethodPost, "/calculate/", fragile)

	rec, env := serve(t, h, http.MethodGet, "/calculations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Calculations, 2)

	rec, env = serve(t, h, http.MethodGet, "/calculations?is_fragile=true&search=pokhara", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Calculations, 1)
	assert.Equal(t, second.CalculationID, env.Calculations[0]["id"])

	rec, env = serve(t, h, http.MethodGet, "/calculations/"+first.CalculationID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "standard", env.Calculation["package_type"])
	assert.Equal(t, 1431.25, env.Calculation["total_price"])

	rec, _ = serve(t, h, http.MethodGet, "/calculations/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(t, h, http.MethodGet, "/calculations/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = serve(t, h, http.MethodGet, "/calculations?limit=500&is_fragile=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"is_fragile", "limit"}, env.Fields)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, RouterDeps{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, RouterDeps{AllowedOrigins: []string{"https://quotes.example.np"}})

	req := httptest.NewRequest(http.MethodOptions, "/calculate/", nil)
	req.Header.Set("Origin", "https://quotes.example.np")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://quotes.example.np", rec.Header().Get("Access-Control-Allow-Origin"))
}
