// Package auth manages session lifecycles: access/refresh token issuance,
// rotation, revocation and the refresh cookie contract.
package auth

import (
	"context"
	"time"

	"wander/internal/config"
	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/token"

	"github.com/gofiber/fiber/v2"
)

// RefreshCookieName is the cookie carrying the refresh token. The client
// never sees the token through script: the cookie is HTTP-only.
const RefreshCookieName = "jid"

// Pair is an access/refresh token pair minted together.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// SessionManager mints and validates session tokens. Refresh tokens carry
// the user's tokenVersion; bumping the stored version revokes every
// outstanding refresh token at once.
type SessionManager struct {
	cfg    *config.Config
	users  repository.UserRepository
	tokens repository.OneTimeTokenStore
}

// NewSessionManager wires a SessionManager.
func NewSessionManager(cfg *config.Config, users repository.UserRepository, tokens repository.OneTimeTokenStore) *SessionManager {
	return &SessionManager{cfg: cfg, users: users, tokens: tokens}
}

// IssueAccess mints a short-lived access token for the user.
func (m *SessionManager) IssueAccess(user *models.User) (string, error) {
	return token.Sign(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
	}, m.cfg.AccessTokenSecret, m.cfg.AccessTokenTTL)
}

// IssueRefresh mints a long-lived refresh token pinned to the user's current
// tokenVersion.
func (m *SessionManager) IssueRefresh(user *models.User) (string, error) {
	return token.Sign(token.Claims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	}, m.cfg.RefreshTokenSecret, m.cfg.RefreshTokenTTL)
}

// IssuePair mints a fresh access/refresh pair.
func (m *SessionManager) IssuePair(user *models.User) (*Pair, error) {
	access, err := m.IssueAccess(user)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	refresh, err := m.IssueRefresh(user)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a raw refresh token for a new pair, rotating the refresh
// token on every use. It soft-fails: a missing, malformed, expired or revoked
// token yields (nil, nil, nil) rather than an error, and the handler answers
// with an empty access token instead of a failure status.
func (m *SessionManager) Refresh(ctx context.Context, raw string) (*Pair, *models.User, error) {
	if raw == "" {
		return nil, nil, nil
	}

	res := token.Verify(raw, m.cfg.RefreshTokenSecret)
	if !res.Valid {
		return nil, nil, nil
	}

	user, err := m.users.GetByID(ctx, res.Claims.UserID)
	if err != nil {
		if appErr := models.AsAppError(err); appErr != nil && appErr.Kind == models.KindNotFound {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	// A version mismatch means the token was revoked after issue.
	if user.TokenVersion != res.Claims.TokenVersion {
		return nil, nil, nil
	}

	pair, err := m.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RevokeAll invalidates every outstanding refresh token for the user.
func (m *SessionManager) RevokeAll(ctx context.Context, userID uint) error {
	return m.users.BumpTokenVersion(ctx, userID)
}

// IssueOneTime hands out the user's live one-time token for the purpose,
// minting one when none exists.
func (m *SessionManager) IssueOneTime(ctx context.Context, purpose repository.TokenPurpose, userID uint) (string, error) {
	return m.tokens.Issue(ctx, purpose, userID)
}

// ConsumeOneTime burns a one-time token; a second consume of the same token
// fails.
func (m *SessionManager) ConsumeOneTime(ctx context.Context, purpose repository.TokenPurpose, userID uint, raw string) error {
	return m.tokens.Consume(ctx, purpose, userID, raw)
}

// RefreshCookie builds the cookie delivering the refresh token.
func (m *SessionManager) RefreshCookie(value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(m.cfg.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   !m.cfg.IsDevelopment(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// ClearRefreshCookie builds an expired cookie that removes the refresh token
// from the client.
func (m *SessionManager) ClearRefreshCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   !m.cfg.IsDevelopment(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
