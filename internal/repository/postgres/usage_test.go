package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

func TestUsageRepository_Add(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	mock.ExpectExec(`INSERT INTO wifi\.usage_tracking .*ON CONFLICT \(user_id, date\) DO UPDATE SET`).
		WithArgs("user-1", "2025-03-10", int64(4096), int64(5), 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Add(context.Background(), "user-1", "2025-03-10", port.UsageIncrement{
		DataBytes:   4096,
		TimeMinutes: 5,
		Sessions:    1,
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUsageRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	updatedAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"user_id", "date", "data_used_bytes", "time_used_minutes", "session_count", "updated_at",
	}).AddRow("user-1", "2025-03-10", int64(4096), int64(5), 2, updatedAt)

	mock.ExpectQuery(`SELECT .*FROM wifi\.usage_tracking`).
		WithArgs("2025-03-10", "user-1").
		WillReturnRows(rows)

	record, err := repo.Get(context.Background(), "user-1", "2025-03-10")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.DataUsedBytes != 4096 || record.TimeUsedMinutes != 5 || record.SessionCount != 2 {
		t.Fatalf("unexpected record %+v", record)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUsageRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUsageRepository(mock)

	rows := pgxmock.NewRows([]string{
		"user_id", "date", "data_used_bytes", "time_used_minutes", "session_count", "updated_at",
	})
	mock.ExpectQuery(`SELECT .*FROM wifi\.usage_tracking`).
		WithArgs("2025-03-10", "user-1").
		WillReturnRows(rows)

	_, err = repo.Get(context.Background(), "user-1", "2025-03-10")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
