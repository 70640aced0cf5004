package config

import (
	"delivery-quote-service/internal/domain"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Port     string
	LogLevel string

	StoreDriver string
	SQLitePath  string
	DatabaseURL string

	GeoapifyAPIKey  string
	GeoapifyBaseURL string
	Country         domain.Country
	FallbackKm      decimal.Decimal

	Rates domain.Rates

	RedisURL           string
	RateLimitPerMinute int

	KafkaBrokers []string
	KafkaTopic   string

	CORSAllowedOrigins []string
	TrustProxyHeaders  bool
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the process environment. Malformed values are reported together.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:     Get("PORT", "8000"),
		LogLevel: Get("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(Get("STORE_DRIVER", StoreSQLite)),
		SQLitePath:  Get("SQLITE_PATH", "data/calculations.db"),
		DatabaseURL: Get("DATABASE_URL", ""),

		GeoapifyAPIKey:  Get("GEOAPIFY_API_KEY", ""),
		GeoapifyBaseURL: Get("GEOAPIFY_BASE_URL", ""),
		Country: domain.Country{
			Code: strings.ToLower(Get("COUNTRY_CODE", "np")),
			Name: Get("COUNTRY_NAME", "Nepal"),
		},

		RedisURL:   Get("REDIS_URL", ""),
		KafkaTopic: Get("KAFKA_TOPIC", "delivery.quotes"),

		KafkaBrokers:       splitList(Get("KAFKA_BROKERS", "")),
		CORSAllowedOrigins: splitList(Get("CORS_ALLOWED_ORIGINS", "*")),
	}

	switch cfg.StoreDriver {
	case StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}

	cfg.FallbackKm = positiveDecimal("FALLBACK_DISTANCE_KM", "15.0", &errs)

	limit, err := strconv.Atoi(Get("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || limit <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: want a positive integer, got %q", os.Getenv("RATE_LIMIT_PER_MINUTE")))
	}
	cfg.RateLimitPerMinute = limit

	trust, err := strconv.ParseBool(Get("TRUST_PROXY_HEADERS", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TRUST_PROXY_HEADERS: want a boolean, got %q", os.Getenv("TRUST_PROXY_HEADERS")))
	}
	cfg.TrustProxyHeaders = trust

	cfg.Rates = loadRates(&errs)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// loadRates applies PRICING_* overrides on top of the default tariff.
func loadRates(errs *[]error) domain.Rates {
	r := domain.DefaultRates()

	r.Currency = Get("PRICING_CURRENCY", r.Currency)
	r.PerKm = override("PRICING_PER_KM", r.PerKm, errs)
	r.WeightThreshold = override("PRICING_WEIGHT_THRESHOLD_KG", r.WeightThreshold, errs)
	r.WeightPerKg = override("PRICING_WEIGHT_PER_KG", r.WeightPerKg, errs)
	r.VolumeThreshold = override("PRICING_VOLUME_THRESHOLD_M3", r.VolumeThreshold, errs)
	r.VolumePerM3 = override("PRICING_VOLUME_PER_M3", r.VolumePerM3, errs)
	r.RoadMultiplier = override("PRICING_ROAD_MULTIPLIER", r.RoadMultiplier, errs)
	r.FuelPct = override("PRICING_FUEL_PCT", r.FuelPct, errs)
	r.ServiceFlat = override("PRICING_SERVICE_CHARGE", r.ServiceFlat, errs)
	r.FragileFlat = override("PRICING_FRAGILE_CHARGE", r.FragileFlat, errs)
	r.InsuranceFlat = override("PRICING_INSURANCE_CHARGE", r.InsuranceFlat, errs)

	for _, c := range []domain.PackageCategory{
		domain.CategoryDocument, domain.CategoryStandard, domain.CategoryFragile, domain.CategoryHeavy,
	} {
		key := "PRICING_MULTIPLIER_" + strings.ToUpper(string(c))
		r.CategoryMultipliers[c] = override(key, r.CategoryMultipliers[c], errs)
	}
	r.DefaultMultiplier = r.CategoryMultipliers[domain.CategoryStandard]

	return r
}

func override(key string, def decimal.Decimal, errs *[]error) decimal.Decimal {
	raw := Get(key, "")
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		*errs = append(*errs, fmt.Errorf("%s: want a non-negative decimal, got %q", key, raw))
		return def
	}
	return d
}

func positiveDecimal(key, def string, errs *[]error) decimal.Decimal {
	raw := Get(key, def)
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		*errs = append(*errs, fmt.Errorf("%s: want a positive decimal, got %q", key, raw))
		return decimal.RequireFromString(def)
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
