package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

const (
	defaultOTPPrefix = "wifi:otp"
	maxOTPAttempts   = 5

	fieldCode     = "code"
	fieldAttempts = "attempts"
)

// OTPStore persists temporary guest login codes in Redis hashes with TTL.
type OTPStore struct {
	client *red.Client
	prefix string
}

// NewOTPStore constructs an OTP store with the provided key prefix.
func NewOTPStore(client *red.Client, keyPrefix string) *OTPStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}

	return &OTPStore{client: client, prefix: prefix}
}

// Store saves the code for the identifier, replacing any pending one.
func (s *OTPStore) Store(ctx context.Context, identifier, code string, ttl time.Duration) error {
	identifier = strings.TrimSpace(identifier)
	code = strings.TrimSpace(code)
	switch {
	case identifier == "":
		return errors.New("identifier is required")
	case code == "":
		return errors.New("code is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	key := s.key(identifier)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldCode, code, fieldAttempts, 0)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store otp: %w", err)
	}

	return nil
}

// Verify consumes one attempt. A match deletes the entry; too many failed
// attempts delete it as well so the code cannot be brute-forced.
func (s *OTPStore) Verify(ctx context.Context, identifier, code string) (bool, error) {
	identifier = strings.TrimSpace(identifier)
	code = strings.TrimSpace(code)
	if identifier == "" || code == "" {
		return false, nil
	}

	key := s.key(identifier)
	stored, err := s.client.HGet(ctx, key, fieldCode).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("redis delete otp: %w", err)
		}
		return true, nil
	}

	attempts, err := s.client.HIncrBy(ctx, key, fieldAttempts, 1).Result()
	if err != nil {
		return false, fmt.Errorf("redis bump otp attempts: %w", err)
	}
	if attempts >= maxOTPAttempts {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("redis delete exhausted otp: %w", err)
		}
	}

	return false, nil
}

func (s *OTPStore) key(identifier string) string {
	return fmt.Sprintf("%s:%s", s.prefix, strings.ToLower(identifier))
}

var _ port.OTPStore = (*OTPStore)(nil)
