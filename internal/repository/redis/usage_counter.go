package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

const defaultUsagePrefix = "wifi:usage"

// UsageCounterStore keeps live per-day usage counters in Redis. Increments use
// INCRBY, which Redis executes atomically per key, so concurrent metering
// reports for the same (user, day) never lose updates.
type UsageCounterStore struct {
	client *red.Client
	prefix string
}

// NewUsageCounterStore constructs a usage counter helper.
func NewUsageCounterStore(client *red.Client, keyPrefix string) *UsageCounterStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultUsagePrefix
	}

	return &UsageCounterStore{client: client, prefix: prefix}
}

// Increment folds the increment into the day's counters and refreshes the TTL.
func (s *UsageCounterStore) Increment(ctx context.Context, userID, date string, inc port.UsageIncrement, ttl time.Duration) error {
	bytesKey, minutesKey, err := s.keys(userID, date)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.IncrBy(ctx, bytesKey, inc.DataBytes)
	pipe.IncrBy(ctx, minutesKey, inc.TimeMinutes)
	if ttl > 0 {
		pipe.Expire(ctx, bytesKey, ttl)
		pipe.Expire(ctx, minutesKey, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis increment usage: %w", err)
	}

	return nil
}

// Get returns the live counters, or repository.ErrNotFound on a cold key.
func (s *UsageCounterStore) Get(ctx context.Context, userID, date string) (int64, int64, error) {
	bytesKey, minutesKey, err := s.keys(userID, date)
	if err != nil {
		return 0, 0, err
	}

	bytes, err := s.client.Get(ctx, bytesKey).Int64()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, 0, repository.ErrNotFound
		}
		return 0, 0, fmt.Errorf("redis get usage bytes: %w", err)
	}

	minutes, err := s.client.Get(ctx, minutesKey).Int64()
	if err != nil && !errors.Is(err, red.Nil) {
		return 0, 0, fmt.Errorf("redis get usage minutes: %w", err)
	}

	return bytes, minutes, nil
}

// Seed initializes cold counters from the durable ledger without clobbering a
// counter that concurrent increments already warmed.
func (s *UsageCounterStore) Seed(ctx context.Context, userID, date string, bytes, minutes int64, ttl time.Duration) error {
	bytesKey, minutesKey, err := s.keys(userID, date)
	if err != nil {
		return err
	}

	if err := s.client.SetNX(ctx, bytesKey, bytes, ttl).Err(); err != nil {
		return fmt.Errorf("redis seed usage bytes: %w", err)
	}
	if err := s.client.SetNX(ctx, minutesKey, minutes, ttl).Err(); err != nil {
		return fmt.Errorf("redis seed usage minutes: %w", err)
	}

	return nil
}

func (s *UsageCounterStore) keys(userID, date string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	date = strings.TrimSpace(date)
	if userID == "" || date == "" {
		return "", "", fmt.Errorf("user id and date are required")
	}
	return fmt.Sprintf("%s:bytes:%s:%s", s.prefix, userID, date),
		fmt.Sprintf("%s:minutes:%s:%s", s.prefix, userID, date),
		nil
}

var _ port.UsageCounterStore = (*UsageCounterStore)(nil)
