package port

import (
	"context"
	"time"
)

// OTPStore persists short-lived one-time codes for the guest login flow.
type OTPStore interface {
	Store(ctx context.Context, identifier, code string, ttl time.Duration) error
	// Verify consumes one attempt. It returns true only when the supplied code
	// matches an unexpired entry; a successful verification deletes the entry.
	Verify(ctx context.Context, identifier, code string) (bool, error)
}

// RateLimitStore records attempt timestamps inside a sliding window.
type RateLimitStore interface {
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
}
