package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

func newUsageService(repo *usageRepoMock, counters *counterStoreMock, sessions *sessionRepoMock) *UsageService {
	var counterStore port.UsageCounterStore
	if counters != nil {
		counterStore = counters
	}
	var sessionRepo port.SessionRepository
	if sessions != nil {
		sessionRepo = sessions
	}
	service := NewUsageService(repo, counterStore, sessionRepo, time.Hour, nil)
	service.WithClock(func() time.Time { return fixedNoon })
	return service
}

func TestAddUsage_WritesLedgerAndCounter(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{}
	service := newUsageService(repo, counters, nil)

	err := service.AddUsage(context.Background(), AddUsageInput{
		UserID:      "user-1",
		DataBytes:   2048,
		TimeMinutes: 5,
	})
	if err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}

	date := domain.UsageDate(fixedNoon)
	record, err := repo.Get(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if record.DataUsedBytes != 2048 || record.TimeUsedMinutes != 5 {
		t.Errorf("unexpected ledger totals: %+v", record)
	}

	bytes, minutes, err := counters.Get(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("counter missing: %v", err)
	}
	if bytes != 2048 || minutes != 5 {
		t.Errorf("unexpected counter totals: bytes=%d minutes=%d", bytes, minutes)
	}
}

func TestAddUsage_ConcurrentReportsNeverLoseUpdates(t *testing.T) {
	repo := &usageRepoMock{}
	service := newUsageService(repo, nil, nil)

	const workers = 16
	const reports = 50
	const delta = int64(1024)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < reports; j++ {
				if err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: delta, TimeMinutes: 1}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddUsage failed: %v", err)
	}

	record, err := repo.Get(context.Background(), "user-1", domain.UsageDate(fixedNoon))
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if want := int64(workers * reports * int(delta)); record.DataUsedBytes != want {
		t.Errorf("lost updates: expected %d bytes, got %d", want, record.DataUsedBytes)
	}
	if want := int64(workers * reports); record.TimeUsedMinutes != want {
		t.Errorf("lost updates: expected %d minutes, got %d", want, record.TimeUsedMinutes)
	}
}

func TestAddUsage_CounterFailureDoesNotFailTheReport(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{incErr: errors.New("connection refused")}
	service := newUsageService(repo, counters, nil)

	err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: 100})
	if err != nil {
		t.Fatalf("counter failure must not surface: %v", err)
	}

	record, err := repo.Get(context.Background(), "user-1", domain.UsageDate(fixedNoon))
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if record.DataUsedBytes != 100 {
		t.Errorf("ledger must still be written, got %d bytes", record.DataUsedBytes)
	}
}

func TestAddUsage_LedgerFailureSurfaces(t *testing.T) {
	repo := &usageRepoMock{addErr: errors.New("deadlock detected")}
	service := newUsageService(repo, nil, nil)

	err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: 100})
	if err == nil {
		t.Fatal("ledger failure must surface")
	}
}

func TestAddUsage_RejectsNegativeDeltas(t *testing.T) {
	service := newUsageService(&usageRepoMock{}, nil, nil)

	err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: -1})
	if !errors.Is(err, ErrInvalidUsage) {
		t.Fatalf("expected ErrInvalidUsage, got %v", err)
	}
}

func TestAddUsage_FoldsBytesIntoSession(t *testing.T) {
	repo := &usageRepoMock{}
	sessions := &sessionRepoMock{}
	sessions.Create(context.Background(), domain.Session{ID: "sess-1", UserID: "user-1", IsActive: true})
	service := newUsageService(repo, nil, sessions)

	sessionID := "sess-1"
	err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", SessionID: &sessionID, DataBytes: 4096})
	if err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}

	session, err := sessions.GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("session missing: %v", err)
	}
	if session.DataUsedBytes != 4096 {
		t.Errorf("expected 4096 bytes on the session, got %d", session.DataUsedBytes)
	}
}

func TestGetUsage_CounterAheadOfLedgerWins(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{}
	service := newUsageService(repo, counters, nil)

	date := domain.UsageDate(fixedNoon)
	repo.Add(context.Background(), "user-1", date, addBytes(500))
	counters.Increment(context.Background(), "user-1", date, addBytes(999), 0)

	record, err := service.GetUsage(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if record.DataUsedBytes != 999 {
		t.Errorf("expected counter value 999, got %d", record.DataUsedBytes)
	}
}

func TestGetUsage_SeedsColdCounterFromLedger(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{}
	service := newUsageService(repo, counters, nil)

	date := domain.UsageDate(fixedNoon)
	repo.Add(context.Background(), "user-1", date, addBytes(777))

	record, err := service.GetUsage(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if record.DataUsedBytes != 777 {
		t.Errorf("expected ledger value 777, got %d", record.DataUsedBytes)
	}
	if counters.seeds != 1 {
		t.Errorf("expected the counter to be seeded once, got %d", counters.seeds)
	}

	bytes, _, err := counters.Get(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("counter still cold: %v", err)
	}
	if bytes != 777 {
		t.Errorf("expected seeded counter 777, got %d", bytes)
	}
}

func TestGetUsage_CounterRebuiltAfterEvictionStaysMonotonic(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{}
	service := newUsageService(repo, counters, nil)

	if err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: 100}); err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}

	// Redis restarts or evicts the key; the next report rebuilds the counter
	// holding only its own delta.
	counters.flush()
	if err := service.AddUsage(context.Background(), AddUsageInput{UserID: "user-1", DataBytes: 50}); err != nil {
		t.Fatalf("AddUsage failed: %v", err)
	}

	record, err := service.GetUsage(context.Background(), "user-1", domain.UsageDate(fixedNoon))
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if record.DataUsedBytes != 150 {
		t.Errorf("reported usage moved backwards: expected 150 bytes, got %d", record.DataUsedBytes)
	}
}

func TestGetUsage_LedgerFaultFallsBackToWarmCounter(t *testing.T) {
	repo := &usageRepoMock{getErr: errors.New("connection refused")}
	counters := &counterStoreMock{}
	service := newUsageService(repo, counters, nil)

	date := domain.UsageDate(fixedNoon)
	counters.Increment(context.Background(), "user-1", date, addBytes(321), 0)

	record, err := service.GetUsage(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("GetUsage must serve the warm counter on ledger faults: %v", err)
	}
	if record.DataUsedBytes != 321 {
		t.Errorf("expected counter value 321, got %d", record.DataUsedBytes)
	}
}

func TestGetUsage_ZeroRecordForUntrackedUser(t *testing.T) {
	service := newUsageService(&usageRepoMock{}, nil, nil)

	record, err := service.GetUsage(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if record.DataUsedBytes != 0 || record.TimeUsedMinutes != 0 || record.SessionCount != 0 {
		t.Errorf("expected a zero record, got %+v", record)
	}
	if record.Date != domain.UsageDate(fixedNoon) {
		t.Errorf("expected today's date key, got %s", record.Date)
	}
}

func TestGetUsage_CounterFaultFallsBackToLedger(t *testing.T) {
	repo := &usageRepoMock{}
	counters := &counterStoreMock{getErr: errors.New("connection refused")}
	service := newUsageService(repo, counters, nil)

	date := domain.UsageDate(fixedNoon)
	repo.Add(context.Background(), "user-1", date, addBytes(555))

	record, err := service.GetUsage(context.Background(), "user-1", date)
	if err != nil {
		t.Fatalf("GetUsage must fall back on counter faults: %v", err)
	}
	if record.DataUsedBytes != 555 {
		t.Errorf("expected ledger value 555, got %d", record.DataUsedBytes)
	}
}
