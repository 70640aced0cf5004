package ports

import "context"

// Admission control keyed by client identity.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
