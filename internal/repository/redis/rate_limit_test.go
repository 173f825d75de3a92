package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitStore_CountWithinWindow(t *testing.T) {
	store := NewRateLimitStore(newTestClient(t), SlidingWindowConfig{
		KeyPrefix: "test:rate-limit",
		TTL:       2 * time.Minute,
	})
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := store.RecordAttempt(ctx, "1.2.3.4", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := store.CountAttempts(ctx, "1.2.3.4", time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}
}

func TestRateLimitStore_OldAttemptsFallOutOfWindow(t *testing.T) {
	store := NewRateLimitStore(newTestClient(t), SlidingWindowConfig{
		KeyPrefix: "test:rate-limit",
		TTL:       2 * time.Minute,
	})
	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, "1.2.3.4", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "1.2.3.4", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "1.2.3.4", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 attempt inside the window, got %d", count)
	}
}

func TestRateLimitStore_TrimWindow(t *testing.T) {
	store := NewRateLimitStore(newTestClient(t), SlidingWindowConfig{
		KeyPrefix: "test:rate-limit",
		TTL:       2 * time.Minute,
	})
	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, "1.2.3.4", now.Add(-10*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "1.2.3.4", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := store.TrimWindow(ctx, "1.2.3.4", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "1.2.3.4", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected trimmed set to hold 1 attempt, got %d", count)
	}
}

func TestRateLimitStore_IdentifiersAreIsolated(t *testing.T) {
	store := NewRateLimitStore(newTestClient(t), SlidingWindowConfig{
		KeyPrefix: "test:rate-limit",
		TTL:       2 * time.Minute,
	})
	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, "1.2.3.4", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "5.6.7.8", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no attempts for other identifier, got %d", count)
	}
}
