package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

func TestViolationRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewViolationRepository(mock)

	createdAt := time.Now().UTC()
	sessionID := "session-1"
	violation := domain.Violation{
		ID:        "violation-1",
		UserID:    "user-1",
		SessionID: &sessionID,
		Type:      domain.ViolationQuotaExceeded,
		Details:   "Daily quota of 1073741824 bytes exceeded (used 1073741824)",
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO wifi\.policy_violations`).
		WithArgs(
			violation.ID,
			violation.UserID,
			&sessionID,
			"QUOTA_EXCEEDED",
			violation.Details,
			violation.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), violation); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestViolationRepository_List_ByUserAndType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewViolationRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "session_id", "violation_type", "details", "created_at",
	}).AddRow("violation-1", "user-1", nil, "TIME_RESTRICTION", "Access denied. Allowed hours: 08:00:00 - 22:00:00", createdAt)

	mock.ExpectQuery(`SELECT .*FROM wifi\.policy_violations`).
		WithArgs("user-1", "TIME_RESTRICTION").
		WillReturnRows(rows)

	violations, err := repo.List(context.Background(), port.ViolationFilter{
		UserID: "user-1",
		Type:   domain.ViolationTimeRestriction,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %d", len(violations))
	}
	if violations[0].Type != domain.ViolationTimeRestriction {
		t.Fatalf("unexpected type %s", violations[0].Type)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestViolationRepository_CountByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewViolationRepository(mock)

	rows := pgxmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wifi\.policy_violations`).
		WithArgs("user-1", "2025-03-10").
		WillReturnRows(rows)

	count, err := repo.CountByUser(context.Background(), "user-1", "2025-03-10")
	if err != nil {
		t.Fatalf("CountByUser returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
