package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

func newTestClient(t *testing.T) *red.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestUsageCounterStore_IncrementAndGet(t *testing.T) {
	store := NewUsageCounterStore(newTestClient(t), "test:usage")
	ctx := context.Background()

	inc := port.UsageIncrement{DataBytes: 1024, TimeMinutes: 5}
	if err := store.Increment(ctx, "user-1", "2026-09-01", inc, time.Hour); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if err := store.Increment(ctx, "user-1", "2026-09-01", inc, time.Hour); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	bytes, minutes, err := store.Get(ctx, "user-1", "2026-09-01")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if bytes != 2048 {
		t.Fatalf("expected 2048 bytes, got %d", bytes)
	}
	if minutes != 10 {
		t.Fatalf("expected 10 minutes, got %d", minutes)
	}
}

func TestUsageCounterStore_GetColdKey(t *testing.T) {
	store := NewUsageCounterStore(newTestClient(t), "test:usage")

	_, _, err := store.Get(context.Background(), "user-1", "2026-09-01")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cold key, got %v", err)
	}
}

// Concurrent increments for the same (user, day) must sum exactly: lost
// updates are a quota-correctness bug, not an acceptable race.
func TestUsageCounterStore_ConcurrentIncrements(t *testing.T) {
	store := NewUsageCounterStore(newTestClient(t), "test:usage")
	ctx := context.Background()

	const (
		goroutines   = 32
		perGoroutine = 25
		chunkBytes   = int64(4096)
	)

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				inc := port.UsageIncrement{DataBytes: chunkBytes, TimeMinutes: 1}
				if err := store.Increment(ctx, "user-1", "2026-09-01", inc, time.Hour); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Increment returned error: %v", err)
	}

	bytes, minutes, err := store.Get(ctx, "user-1", "2026-09-01")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	wantBytes := chunkBytes * goroutines * perGoroutine
	if bytes != wantBytes {
		t.Fatalf("lost updates: expected %d bytes, got %d", wantBytes, bytes)
	}
	if minutes != goroutines*perGoroutine {
		t.Fatalf("lost updates: expected %d minutes, got %d", goroutines*perGoroutine, minutes)
	}
}

func TestUsageCounterStore_SeedDoesNotClobber(t *testing.T) {
	store := NewUsageCounterStore(newTestClient(t), "test:usage")
	ctx := context.Background()

	inc := port.UsageIncrement{DataBytes: 100, TimeMinutes: 1}
	if err := store.Increment(ctx, "user-1", "2026-09-01", inc, time.Hour); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	if err := store.Seed(ctx, "user-1", "2026-09-01", 999999, 999, time.Hour); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	bytes, _, err := store.Get(ctx, "user-1", "2026-09-01")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if bytes != 100 {
		t.Fatalf("seed clobbered warm counter: got %d bytes", bytes)
	}
}
