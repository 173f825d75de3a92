package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	startedAt := time.Now().UTC()
	tokenHash := "deadbeef"
	ip := "10.0.0.5"
	session := domain.Session{
		ID:        "session-1",
		UserID:    "user-1",
		RoleID:    "role-1",
		TokenHash: &tokenHash,
		IPAddress: &ip,
		StartedAt: startedAt,
		ExpiresAt: startedAt.Add(24 * time.Hour),
		IsActive:  true,
	}

	mock.ExpectExec(`INSERT INTO wifi\.sessions`).
		WithArgs(
			session.ID,
			session.UserID,
			session.RoleID,
			&tokenHash,
			&ip,
			(*string)(nil),
			session.StartedAt,
			(*time.Time)(nil),
			session.ExpiresAt,
			true,
			(*string)(nil),
			int64(0),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_End_Transitions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	endedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE wifi\.sessions SET`).
		WithArgs(false, endedAt, "logout", "session-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	transitioned, err := repo.End(context.Background(), "session-1", endedAt, "logout")
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if !transitioned {
		t.Fatal("expected the call to perform the transition")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_End_AlreadyEnded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	endedAt := time.Now().UTC()
	previousEnd := endedAt.Add(-time.Minute)
	reason := "logout"
	tokenHash := "deadbeef"

	mock.ExpectExec(`UPDATE wifi\.sessions SET`).
		WithArgs(false, endedAt, "disconnect", "session-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rows := pgxmock.NewRows(sessionColumns).AddRow(
		"session-1", "user-1", "role-1", &tokenHash, nil, nil,
		endedAt.Add(-time.Hour), &previousEnd, endedAt.Add(23*time.Hour), false, &reason, int64(4096),
	)
	mock.ExpectQuery(`SELECT .*FROM wifi\.sessions`).WithArgs("session-1").WillReturnRows(rows)

	transitioned, err := repo.End(context.Background(), "session-1", endedAt, "disconnect")
	if err != nil {
		t.Fatalf("End on an ended session must not error: %v", err)
	}
	if transitioned {
		t.Fatal("expected no transition for an already-ended session")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_End_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	endedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE wifi\.sessions SET`).
		WithArgs(false, endedAt, "logout", "ghost", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT .*FROM wifi\.sessions`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	_, err = repo.End(context.Background(), "ghost", endedAt, "logout")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_EndExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	cutoff := time.Now().UTC()
	mock.ExpectExec(`UPDATE wifi\.sessions SET`).
		WithArgs(false, cutoff, domain.SessionEndReasonExpired, true, cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	ended, err := repo.EndExpired(context.Background(), cutoff, domain.SessionEndReasonExpired)
	if err != nil {
		t.Fatalf("EndExpired returned error: %v", err)
	}
	if ended != 3 {
		t.Fatalf("expected 3 ended sessions, got %d", ended)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_GetActiveByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	startedAt := time.Now().UTC()
	rows := pgxmock.NewRows(sessionColumns).AddRow(
		"session-1", "user-1", "role-1", nil, nil, nil,
		startedAt, nil, startedAt.Add(24*time.Hour), true, nil, int64(0),
	)
	mock.ExpectQuery(`SELECT .*FROM wifi\.sessions`).WithArgs(true, "user-1").WillReturnRows(rows)

	session, err := repo.GetActiveByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetActiveByUser returned error: %v", err)
	}
	if session.ID != "session-1" || !session.IsActive {
		t.Fatalf("unexpected session %+v", session)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_AddDataUsed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	mock.ExpectExec(`UPDATE wifi\.sessions SET data_used_bytes = data_used_bytes \+ \$1`).
		WithArgs(int64(2048), "session-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.AddDataUsed(context.Background(), "session-1", 2048); err != nil {
		t.Fatalf("AddDataUsed returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
