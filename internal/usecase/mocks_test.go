package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// Fake repositories shared across the service tests.

type userRepoMock struct {
	users        map[string]domain.User
	byIdentifier map[string]domain.User
	resolveErr   error
	createErr    error
	setActiveErr error
	logins       []string
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	if m.byIdentifier == nil {
		m.byIdentifier = make(map[string]domain.User)
	}
	m.users[user.ID] = user
	m.byIdentifier[user.Email] = user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	if user, ok := m.byIdentifier[identifier]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) List(_ context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		if filter.RoleName != "" && user.RoleName != filter.RoleName {
			continue
		}
		if filter.Active != nil && user.IsActive != *filter.Active {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (m *userRepoMock) SetActive(_ context.Context, userID string, active bool) (bool, error) {
	if m.setActiveErr != nil {
		return false, m.setActiveErr
	}
	user, ok := m.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if user.IsActive == active {
		return false, nil
	}
	user.IsActive = active
	m.users[userID] = user
	return true, nil
}

func (m *userRepoMock) ResolvePrincipal(_ context.Context, userID string) (*domain.Principal, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Principal{
		UserID:   user.ID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
		IsActive: user.IsActive,
	}, nil
}

func (m *userRepoMock) RecordLogin(_ context.Context, userID string, _ time.Time) error {
	m.logins = append(m.logins, userID)
	return nil
}

type roleRepoMock struct {
	byName map[string]domain.Role
}

func (m *roleRepoMock) List(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(m.byName))
	for _, role := range m.byName {
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoMock) GetByName(_ context.Context, name string) (*domain.Role, error) {
	if role, ok := m.byName[name]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

type policyRepoMock struct {
	byID     map[string]domain.Policy
	byRole   map[string]domain.Policy
	getErr   error
	applyFit func(policy domain.Policy, update domain.PolicyUpdate) domain.Policy
}

func (m *policyRepoMock) List(_ context.Context) ([]domain.Policy, error) {
	policies := make([]domain.Policy, 0, len(m.byID))
	for _, policy := range m.byID {
		policies = append(policies, policy)
	}
	return policies, nil
}

func (m *policyRepoMock) GetByID(_ context.Context, policyID string) (*domain.Policy, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if policy, ok := m.byID[policyID]; ok {
		return &policy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *policyRepoMock) GetByRole(_ context.Context, roleID string) (*domain.Policy, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if policy, ok := m.byRole[roleID]; ok {
		return &policy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *policyRepoMock) Update(_ context.Context, policyID string, update domain.PolicyUpdate) (*domain.Policy, error) {
	policy, ok := m.byID[policyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.applyFit != nil {
		policy = m.applyFit(policy, update)
	}
	m.byID[policyID] = policy
	m.byRole[policy.RoleID] = policy
	return &policy, nil
}

type sessionRepoMock struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	getErr   error
	endErr   error
	ends     int
}

func (m *sessionRepoMock) Create(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]domain.Session)
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *sessionRepoMock) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		return &session, nil
	}
	return nil, repository.ErrNotFound
}

func (m *sessionRepoMock) GetActiveByUser(_ context.Context, userID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		if session.UserID == userID && session.IsActive {
			found := session
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *sessionRepoMock) End(_ context.Context, sessionID string, endedAt time.Time, reason string) (bool, error) {
	if m.endErr != nil {
		return false, m.endErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	session.EndedAt = &endedAt
	session.EndReason = &reason
	m.sessions[sessionID] = session
	m.ends++
	return true, nil
}

func (m *sessionRepoMock) EndExpired(_ context.Context, cutoff time.Time, reason string) (int, error) {
	if m.endErr != nil {
		return 0, m.endErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ended := 0
	for id, session := range m.sessions {
		if !session.IsActive || session.ExpiresAt.After(cutoff) {
			continue
		}
		endedAt := cutoff
		endedReason := reason
		session.IsActive = false
		session.EndedAt = &endedAt
		session.EndReason = &endedReason
		m.sessions[id] = session
		ended++
	}
	return ended, nil
}

func (m *sessionRepoMock) ListByUser(_ context.Context, userID string, _ int) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]domain.Session, 0)
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (m *sessionRepoMock) List(_ context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]domain.Session, 0)
	for _, session := range m.sessions {
		if filter.Active != nil && session.IsActive != *filter.Active {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (m *sessionRepoMock) AddDataUsed(_ context.Context, sessionID string, bytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.DataUsedBytes += bytes
	m.sessions[sessionID] = session
	return nil
}

type usageRepoMock struct {
	mu      sync.Mutex
	records map[string]domain.UsageRecord
	addErr  error
	getErr  error
}

func usageKey(userID, date string) string { return userID + "|" + date }

func addBytes(n int64) port.UsageIncrement { return port.UsageIncrement{DataBytes: n} }

func (m *usageRepoMock) Add(_ context.Context, userID, date string, inc port.UsageIncrement) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]domain.UsageRecord)
	}
	record := m.records[usageKey(userID, date)]
	record.UserID = userID
	record.Date = date
	record.DataUsedBytes += inc.DataBytes
	record.TimeUsedMinutes += inc.TimeMinutes
	record.SessionCount += inc.Sessions
	m.records[usageKey(userID, date)] = record
	return nil
}

func (m *usageRepoMock) Get(_ context.Context, userID, date string) (*domain.UsageRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[usageKey(userID, date)]; ok {
		return &record, nil
	}
	return nil, repository.ErrNotFound
}

func (m *usageRepoMock) ListByUser(_ context.Context, userID string, _ int) ([]domain.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]domain.UsageRecord, 0)
	for _, record := range m.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

type counterStoreMock struct {
	mu      sync.Mutex
	bytes   map[string]int64
	minutes map[string]int64
	incErr  error
	getErr  error
	seeds   int
}

func (m *counterStoreMock) Increment(_ context.Context, userID, date string, inc port.UsageIncrement, _ time.Duration) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bytes == nil {
		m.bytes = make(map[string]int64)
		m.minutes = make(map[string]int64)
	}
	m.bytes[usageKey(userID, date)] += inc.DataBytes
	m.minutes[usageKey(userID, date)] += inc.TimeMinutes
	return nil
}

func (m *counterStoreMock) Get(_ context.Context, userID, date string) (int64, int64, error) {
	if m.getErr != nil {
		return 0, 0, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey(userID, date)
	if _, ok := m.bytes[key]; !ok {
		return 0, 0, repository.ErrNotFound
	}
	return m.bytes[key], m.minutes[key], nil
}

func (m *counterStoreMock) flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes = nil
	m.minutes = nil
}

func (m *counterStoreMock) Seed(_ context.Context, userID, date string, bytes, minutes int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bytes == nil {
		m.bytes = make(map[string]int64)
		m.minutes = make(map[string]int64)
	}
	key := usageKey(userID, date)
	if _, ok := m.bytes[key]; !ok {
		m.bytes[key] = bytes
		m.minutes[key] = minutes
	}
	m.seeds++
	return nil
}

type violationRepoMock struct {
	mu         sync.Mutex
	violations []domain.Violation
	createErr  error
}

func (m *violationRepoMock) Create(_ context.Context, violation domain.Violation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, violation)
	return nil
}

func (m *violationRepoMock) List(_ context.Context, filter port.ViolationFilter) ([]domain.Violation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]domain.Violation, 0)
	for _, violation := range m.violations {
		if filter.UserID != "" && violation.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && violation.Type != filter.Type {
			continue
		}
		matched = append(matched, violation)
	}
	return matched, nil
}

func (m *violationRepoMock) CountByUser(_ context.Context, userID string, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, violation := range m.violations {
		if violation.UserID == userID {
			count++
		}
	}
	return count, nil
}

type eventPublisherMock struct {
	mu         sync.Mutex
	started    []domain.SessionStartedEvent
	ended      []domain.SessionEndedEvent
	violations []domain.ViolationRecordedEvent
	policies   []domain.PolicyUpdatedEvent
	publishErr error
}

func (m *eventPublisherMock) PublishSessionStarted(_ context.Context, event domain.SessionStartedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, event)
	return nil
}

func (m *eventPublisherMock) PublishSessionEnded(_ context.Context, event domain.SessionEndedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, event)
	return nil
}

func (m *eventPublisherMock) PublishViolationRecorded(_ context.Context, event domain.ViolationRecordedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, event)
	return nil
}

func (m *eventPublisherMock) PublishPolicyUpdated(_ context.Context, event domain.PolicyUpdatedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = append(m.policies, event)
	return nil
}

type otpStoreMock struct {
	codes     map[string]string
	storeErr  error
	verifyErr error
}

func (m *otpStoreMock) Store(_ context.Context, identifier, code string, _ time.Duration) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[identifier] = code
	return nil
}

func (m *otpStoreMock) Verify(_ context.Context, identifier, code string) (bool, error) {
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	stored, ok := m.codes[identifier]
	if !ok || stored != code {
		return false, nil
	}
	delete(m.codes, identifier)
	return true, nil
}

// Compile-time interface checks for the fakes.
var (
	_ port.UserRepository      = (*userRepoMock)(nil)
	_ port.RoleRepository      = (*roleRepoMock)(nil)
	_ port.PolicyRepository    = (*policyRepoMock)(nil)
	_ port.SessionRepository   = (*sessionRepoMock)(nil)
	_ port.UsageRepository     = (*usageRepoMock)(nil)
	_ port.UsageCounterStore   = (*counterStoreMock)(nil)
	_ port.ViolationRepository = (*violationRepoMock)(nil)
	_ port.EventPublisher      = (*eventPublisherMock)(nil)
	_ port.OTPStore            = (*otpStoreMock)(nil)
)
