// Package ratelimit throttles anonymous case creation. The wizard's other
// routes are bearer-token scoped; POST /cases is the only unauthenticated
// surface, so it gets a per-IP sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Result reports a limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Store tracks request counts per key over a window.
type Store interface {
	// Allow records one request against key and reports whether it fits the
	// limit for the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
