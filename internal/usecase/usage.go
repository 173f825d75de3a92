package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// ErrInvalidUsage is returned when a metering report carries negative deltas
// or is missing required identifiers.
var ErrInvalidUsage = errors.New("invalid usage report")

// AddUsageInput is one metering report from the enforcement point.
type AddUsageInput struct {
	UserID      string
	SessionID   *string
	Date        string
	DataBytes   int64
	TimeMinutes int64
}

// UsageService owns the per-user, per-day ledger. The Postgres table is the
// source of truth; the Redis counter in front of it is an accelerator and may
// be absent or cold without affecting correctness.
type UsageService struct {
	usage      port.UsageRepository
	counters   port.UsageCounterStore
	sessions   port.SessionRepository
	counterTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewUsageService constructs a UsageService. counters and sessions may be nil.
func NewUsageService(usage port.UsageRepository, counters port.UsageCounterStore, sessions port.SessionRepository, counterTTL time.Duration, logger *zap.Logger) *UsageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if counterTTL <= 0 {
		counterTTL = 48 * time.Hour
	}
	service := &UsageService{
		usage:      usage,
		counters:   counters,
		sessions:   sessions,
		counterTTL: counterTTL,
		logger:     logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *UsageService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// AddUsage folds a metering report into the daily ledger. The durable write
// is a single atomic upsert, so concurrent reports for the same user and day
// never lose updates. The live counter and the per-session byte total are
// updated best effort after the ledger commits.
func (s *UsageService) AddUsage(ctx context.Context, input AddUsageInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidUsage)
	}
	if input.DataBytes < 0 || input.TimeMinutes < 0 {
		return fmt.Errorf("%w: deltas must be non-negative", ErrInvalidUsage)
	}

	date := input.Date
	if date == "" {
		date = domain.UsageDate(s.now())
	} else if _, err := time.Parse(domain.UsageDateLayout, date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidUsage, input.Date)
	}

	inc := port.UsageIncrement{DataBytes: input.DataBytes, TimeMinutes: input.TimeMinutes}
	if err := s.usage.Add(ctx, input.UserID, date, inc); err != nil {
		return fmt.Errorf("add usage: %w", err)
	}

	if s.counters != nil {
		if err := s.counters.Increment(ctx, input.UserID, date, inc, s.counterTTL); err != nil {
			s.logger.Warn("usage counter increment failed",
				zap.String("user_id", input.UserID),
				zap.String("date", date),
				zap.Error(err))
		}
	}

	if input.SessionID != nil && input.DataBytes > 0 && s.sessions != nil {
		if err := s.sessions.AddDataUsed(ctx, *input.SessionID, input.DataBytes); err != nil {
			s.logger.Warn("session byte total update failed",
				zap.String("session_id", *input.SessionID),
				zap.Error(err))
		}
	}

	return nil
}

// RecordSessionStart bumps the day's session count without touching the data
// or time totals.
func (s *UsageService) RecordSessionStart(ctx context.Context, userID string, at time.Time) error {
	date := domain.UsageDate(at)
	if err := s.usage.Add(ctx, userID, date, port.UsageIncrement{Sessions: 1}); err != nil {
		return fmt.Errorf("record session start: %w", err)
	}
	return nil
}

// GetUsage returns the (user, day) totals. Both the durable ledger and the
// live counter are consulted and the larger value wins per field: the counter
// may run ahead of the ledger mid-report, and a counter rebuilt after an
// eviction or restart may hold less than the ledger already recorded. Reported
// usage therefore never moves backwards. A user with no traffic yet gets a
// zero record, not an error.
func (s *UsageService) GetUsage(ctx context.Context, userID, date string) (*domain.UsageRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidUsage)
	}
	if date == "" {
		date = domain.UsageDate(s.now())
	}

	record := &domain.UsageRecord{UserID: userID, Date: date}
	row, ledgerErr := s.usage.Get(ctx, userID, date)
	switch {
	case ledgerErr == nil:
		record = row
	case errors.Is(ledgerErr, repository.ErrNotFound):
		ledgerErr = nil
	default:
		s.logger.Warn("usage ledger read failed, falling back to live counter",
			zap.String("user_id", userID),
			zap.String("date", date),
			zap.Error(ledgerErr))
	}

	if s.counters != nil {
		bytes, minutes, err := s.counters.Get(ctx, userID, date)
		switch {
		case err == nil:
			if bytes > record.DataUsedBytes {
				record.DataUsedBytes = bytes
			}
			if minutes > record.TimeUsedMinutes {
				record.TimeUsedMinutes = minutes
			}
			return record, nil
		case errors.Is(err, repository.ErrNotFound):
			if ledgerErr == nil {
				if err := s.counters.Seed(ctx, userID, date, record.DataUsedBytes, record.TimeUsedMinutes, s.counterTTL); err != nil {
					s.logger.Warn("usage counter seed failed", zap.String("user_id", userID), zap.Error(err))
				}
			}
		default:
			s.logger.Warn("usage counter read failed, using ledger only",
				zap.String("user_id", userID),
				zap.String("date", date),
				zap.Error(err))
		}
	}

	if ledgerErr != nil {
		return nil, fmt.Errorf("get usage: %w", ledgerErr)
	}
	return record, nil
}

// History returns up to days of ledger rows for a user, newest first.
func (s *UsageService) History(ctx context.Context, userID string, days int) ([]domain.UsageRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidUsage)
	}
	records, err := s.usage.ListByUser(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}
	return records, nil
}
