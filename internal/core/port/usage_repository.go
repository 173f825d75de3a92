package port

import (
	"context"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// UsageIncrement is one metering report to fold into a (user, day) record.
type UsageIncrement struct {
	DataBytes   int64
	TimeMinutes int64
	Sessions    int
}

// UsageRepository is the durable per-user, per-day ledger. Add must be atomic
// for a given (userID, date): concurrent increments may never lose updates.
type UsageRepository interface {
	Add(ctx context.Context, userID, date string, inc UsageIncrement) error
	Get(ctx context.Context, userID, date string) (*domain.UsageRecord, error)
	ListByUser(ctx context.Context, userID string, days int) ([]domain.UsageRecord, error)
}

// UsageCounterStore holds low-latency live counters in front of the durable
// ledger. Increment must be a single atomic operation on the backing store.
type UsageCounterStore interface {
	Increment(ctx context.Context, userID, date string, inc UsageIncrement, ttl time.Duration) error
	Get(ctx context.Context, userID, date string) (bytes int64, minutes int64, err error)
	Seed(ctx context.Context, userID, date string, bytes, minutes int64, ttl time.Duration) error
}
