package repository

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"wander/internal/models"

	"github.com/redis/go-redis/v9"
)

// TokenPurpose names what a one-time token is good for. Tokens for different
// purposes never collide even for the same user.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify-email"
	PurposePasswordReset TokenPurpose = "password-reset"
)

// OneTimeTokenTTL is how long a verification or reset token stays valid.
const OneTimeTokenTTL = 2 * time.Hour

// ErrTokenStoreUnavailable is returned when no Redis client is configured.
var ErrTokenStoreUnavailable = errors.New("one-time token store unavailable")

// OneTimeTokenStore issues and consumes single-use tokens for email
// verification and password reset. At most one token per (purpose, user) is
// live at a time; Issue returns the live one instead of minting a second.
type OneTimeTokenStore interface {
	Issue(ctx context.Context, purpose TokenPurpose, userID uint) (string, error)
	Consume(ctx context.Context, purpose TokenPurpose, userID uint, raw string) error
}

type redisTokenStore struct {
	client *redis.Client
}

// NewOneTimeTokenStore returns a Redis-backed OneTimeTokenStore. Unlike the
// read cache, the store cannot degrade gracefully: without Redis no mailed
// link could ever be honored.
func NewOneTimeTokenStore(client *redis.Client) (OneTimeTokenStore, error) {
	if client == nil {
		return nil, ErrTokenStoreUnavailable
	}
	return &redisTokenStore{client: client}, nil
}

func tokenKey(purpose TokenPurpose, userID uint) string {
	return fmt.Sprintf("ott:%s:%d", purpose, userID)
}

func newTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *redisTokenStore) Issue(ctx context.Context, purpose TokenPurpose, userID uint) (string, error) {
	key := tokenKey(purpose, userID)

	value, err := newTokenValue()
	if err != nil {
		return "", models.NewInternal(err)
	}

	// SETNX keeps the first token alive when two issues race; the loser
	// reads back the winner's value.
	ok, err := s.client.SetNX(ctx, key, value, OneTimeTokenTTL).Result()
	if err != nil {
		return "", models.NewInternal(err)
	}
	if ok {
		return value, nil
	}

	existing, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; extremely unlikely, retry once.
			return s.Issue(ctx, purpose, userID)
		}
		return "", models.NewInternal(err)
	}
	return existing, nil
}

// Consume validates raw against the live token and deletes it on match, so a
// link works exactly once.
func (s *redisTokenStore) Consume(ctx context.Context, purpose TokenPurpose, userID uint, raw string) error {
	key := tokenKey(purpose, userID)

	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.NewUnauthorized("Invalid or expired token")
		}
		return models.NewInternal(err)
	}

	if len(stored) != len(raw) || subtle.ConstantTimeCompare([]byte(stored), []byte(raw)) != 1 {
		return models.NewUnauthorized("Invalid or expired token")
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return models.NewInternal(err)
	}
	return nil
}
