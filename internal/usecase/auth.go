package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/infra/logger"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/infra/security"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for unknown identifiers, disabled
	// accounts and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOTP is returned when a guest code does not verify.
	ErrInvalidOTP = errors.New("invalid or expired code")
	// ErrPasswordLogin is returned when an OTP-only account attempts a
	// password login.
	ErrPasswordLogin = errors.New("account does not support password login")
)

// AccessDeniedError carries the policy reason a login was refused.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

// LoginInput carries the credentials and connection attributes of a portal login.
type LoginInput struct {
	Identifier string
	Password   string
	IPAddress  string
	MACAddress *string
}

// GuestVerifyInput carries a guest OTP verification attempt.
type GuestVerifyInput struct {
	Email      string
	Code       string
	IPAddress  string
	MACAddress *string
}

// LoginResult is the established authenticated state.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Session   *domain.Session
	Decision  *domain.Decision
}

// AuthService implements the captive portal login flows. Every successful
// login passes through the decision engine first, so a user outside their
// allowed hours or over quota never receives a session.
type AuthService struct {
	users     port.UserRepository
	roles     port.RoleRepository
	sessions  *SessionService
	decisions *DecisionService
	otps      port.OTPStore
	tokens    *security.JWTManager
	otpTTL    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	roles port.RoleRepository,
	sessions *SessionService,
	decisions *DecisionService,
	otps port.OTPStore,
	tokens *security.JWTManager,
	otpTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	service := &AuthService{
		users:     users,
		roles:     roles,
		sessions:  sessions,
		decisions: decisions,
		otps:      otps,
		tokens:    tokens,
		otpTTL:    otpTTL,
		logger:    log,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Login authenticates a password account and opens its session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, ErrPasswordLogin
	}

	ok, err := security.VerifyPassword(input.Password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.establish(ctx, user, input.IPAddress, input.MACAddress)
}

// RequestGuestOTP provisions (or reuses) a guest account for the email and
// stores a fresh one-time code. The code is returned so the delivery channel
// stays the caller's concern.
func (s *AuthService) RequestGuestOTP(ctx context.Context, email, ipAddress string) (string, time.Duration, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", 0, fmt.Errorf("%w: a valid email is required", ErrInvalidCredentials)
	}

	user, err := s.users.GetByIdentifier(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.provisionGuest(ctx, email)
	}
	if err != nil {
		return "", 0, fmt.Errorf("request otp: %w", err)
	}
	if !user.IsActive {
		return "", 0, ErrInvalidCredentials
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return "", 0, fmt.Errorf("request otp: generate: %w", err)
	}
	if err := s.otps.Store(ctx, email, code, s.otpTTL); err != nil {
		return "", 0, fmt.Errorf("request otp: store: %w", err)
	}

	s.logger.Info("guest otp issued",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("ip", logger.MaskIP(ipAddress)))

	return code, s.otpTTL, nil
}

// VerifyGuestOTP consumes a one-time code and opens the guest's session.
func (s *AuthService) VerifyGuestOTP(ctx context.Context, input GuestVerifyInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Code == "" {
		return nil, ErrInvalidOTP
	}

	ok, err := s.otps.Verify(ctx, email, input.Code)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	user, err := s.users.GetByIdentifier(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("verify otp: lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.establish(ctx, user, input.IPAddress, input.MACAddress)
}

// Logout ends the session bound to the presented token. Repeated logouts
// succeed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.End(ctx, sessionID, domain.SessionEndReasonLogout); err != nil {
		return err
	}
	return nil
}

// establish runs the policy gate, opens the session and issues the token.
func (s *AuthService) establish(ctx context.Context, user *domain.User, ipAddress string, macAddress *string) (*LoginResult, error) {
	decision, err := s.decisions.Evaluate(ctx, EvaluateInput{UserID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("login: evaluate: %w", err)
	}
	if !decision.Allowed {
		return nil, &AccessDeniedError{Reason: decision.Reason}
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.Issue(user.ID, user.RoleID, user.RoleName, sessionID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	session, err := s.sessions.Start(ctx, StartSessionInput{
		ID:         sessionID,
		UserID:     user.ID,
		RoleID:     user.RoleID,
		TokenHash:  hashToken(token),
		IPAddress:  ipAddress,
		MACAddress: macAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("login: start session: %w", err)
	}

	if err := s.users.RecordLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("record login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Session:   session,
		Decision:  decision,
	}, nil
}

func (s *AuthService) provisionGuest(ctx context.Context, email string) (*domain.User, error) {
	role, err := s.roles.GetByName(ctx, domain.RoleGuest)
	if err != nil {
		return nil, fmt.Errorf("guest role: %w", err)
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  email,
		Email:     email,
		RoleID:    role.ID,
		RoleName:  role.Name,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("provision guest: %w", err)
	}
	return &user, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
