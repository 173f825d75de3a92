package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

func newPolicyFixture(policy domain.Policy) (*policyRepoMock, *eventPublisherMock, *PolicyService) {
	repo := &policyRepoMock{
		byID:   map[string]domain.Policy{policy.ID: policy},
		byRole: map[string]domain.Policy{policy.RoleID: policy},
		applyFit: func(policy domain.Policy, update domain.PolicyUpdate) domain.Policy {
			if update.BandwidthDownMbps != nil {
				policy.BandwidthDownMbps = *update.BandwidthDownMbps
			}
			if update.BandwidthUpMbps != nil {
				policy.BandwidthUpMbps = *update.BandwidthUpMbps
			}
			if update.DailyQuotaBytes != nil {
				policy.DailyQuotaBytes = *update.DailyQuotaBytes
			}
			if update.SessionTimeLimitMinutes != nil {
				policy.SessionTimeLimitMinutes = *update.SessionTimeLimitMinutes
			}
			if update.AllowedHoursStart != nil {
				policy.AllowedHoursStart = *update.AllowedHoursStart
			}
			if update.AllowedHoursEnd != nil {
				policy.AllowedHoursEnd = *update.AllowedHoursEnd
			}
			if update.Access24x7 != nil {
				policy.Access24x7 = *update.Access24x7
			}
			if update.BlockedCategories != nil {
				policy.BlockedCategories = *update.BlockedCategories
			}
			return policy
		},
	}
	events := &eventPublisherMock{}
	service := NewPolicyService(repo, nil, events, nil)
	service.WithClock(func() time.Time { return fixedNoon })
	return repo, events, service
}

func basePolicy() domain.Policy {
	return domain.Policy{
		ID:                "pol-1",
		RoleID:            "role-student",
		RoleName:          "Student",
		BandwidthDownMbps: 50,
		BandwidthUpMbps:   20,
	}
}

func TestPolicyUpdate_Success(t *testing.T) {
	_, events, service := newPolicyFixture(basePolicy())

	quota := gigabyte
	quotaPtr := &quota
	down := 100.0
	update := domain.PolicyUpdate{
		BandwidthDownMbps: &down,
		DailyQuotaBytes:   &quotaPtr,
	}

	updated, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.BandwidthDownMbps != 100 {
		t.Errorf("expected bandwidth 100, got %f", updated.BandwidthDownMbps)
	}
	if updated.DailyQuotaBytes == nil || *updated.DailyQuotaBytes != gigabyte {
		t.Errorf("expected quota %d, got %v", gigabyte, updated.DailyQuotaBytes)
	}

	if len(events.policies) != 1 {
		t.Fatalf("expected one policy event, got %d", len(events.policies))
	}
	event := events.policies[0]
	if event.PolicyID != "pol-1" || event.UpdatedBy != "admin-1" {
		t.Errorf("unexpected event %+v", event)
	}
	if _, ok := event.Changes["daily_quota_bytes"]; !ok {
		t.Error("expected quota change in the event payload")
	}
}

func TestPolicyUpdate_ClearLimit(t *testing.T) {
	policy := basePolicy()
	quota := gigabyte
	policy.DailyQuotaBytes = &quota
	_, _, service := newPolicyFixture(policy)

	var cleared *int64
	update := domain.PolicyUpdate{DailyQuotaBytes: &cleared}

	updated, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.DailyQuotaBytes != nil {
		t.Errorf("expected quota cleared, got %v", *updated.DailyQuotaBytes)
	}
}

func TestPolicyUpdate_RejectsSingleHourBound(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	start := clockTimePtr("08:00:00")
	update := domain.PolicyUpdate{AllowedHoursStart: &start}

	_, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestPolicyUpdate_RejectsClearingOneBoundOfAWindow(t *testing.T) {
	policy := basePolicy()
	policy.AllowedHoursStart = clockTimePtr("08:00:00")
	policy.AllowedHoursEnd = clockTimePtr("22:00:00")
	_, _, service := newPolicyFixture(policy)

	var cleared *domain.ClockTime
	update := domain.PolicyUpdate{AllowedHoursEnd: &cleared}

	_, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestPolicyUpdate_AcceptsCompleteWindow(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	start := clockTimePtr("08:00:00")
	end := clockTimePtr("22:00:00")
	update := domain.PolicyUpdate{AllowedHoursStart: &start, AllowedHoursEnd: &end}

	updated, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.HasHourWindow() {
		t.Error("expected a complete hour window")
	}
}

func TestPolicyUpdate_RejectsInvertedWindow(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	start := clockTimePtr("22:00:00")
	end := clockTimePtr("08:00:00")
	update := domain.PolicyUpdate{AllowedHoursStart: &start, AllowedHoursEnd: &end}

	_, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestPolicyUpdate_RejectsNegativeLimits(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	down := -1.0
	if _, err := service.Update(context.Background(), "pol-1", domain.PolicyUpdate{BandwidthDownMbps: &down}, "admin-1"); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy for negative bandwidth, got %v", err)
	}

	quota := int64(-5)
	quotaPtr := &quota
	if _, err := service.Update(context.Background(), "pol-1", domain.PolicyUpdate{DailyQuotaBytes: &quotaPtr}, "admin-1"); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy for negative quota, got %v", err)
	}
}

func TestPolicyUpdate_RejectsUnknownCategory(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	categories := []string{"P2P", "CRYPTO_MINING"}
	update := domain.PolicyUpdate{BlockedCategories: &categories}

	_, err := service.Update(context.Background(), "pol-1", update, "admin-1")
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestPolicyUpdate_NotFound(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	_, err := service.Update(context.Background(), "ghost", domain.PolicyUpdate{}, "admin-1")
	if !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}

func TestPolicyGetByRole(t *testing.T) {
	_, _, service := newPolicyFixture(basePolicy())

	policy, err := service.GetByRole(context.Background(), "role-student")
	if err != nil {
		t.Fatalf("GetByRole failed: %v", err)
	}
	if policy.ID != "pol-1" {
		t.Errorf("unexpected policy %s", policy.ID)
	}

	if _, err := service.GetByRole(context.Background(), "role-ghost"); !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}
