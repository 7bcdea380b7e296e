// Package token signs and verifies the compact signed tokens used for
// access, refresh and verification credentials.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by every token. TokenVersion is only set on
// refresh tokens; a zero value is omitted from the encoded token.
type Claims struct {
	UserID       uint   `json:"userId"`
	Email        string `json:"email"`
	TokenVersion int    `json:"tokenVersion,omitempty"`
	jwt.RegisteredClaims
}

// Result is the outcome of verifying a token. Verification never fails with
// an error: callers branch on the returned structure instead. Expired is
// true only when the token was well-formed and correctly signed but past
// its expiry.
type Result struct {
	Valid   bool
	Expired bool
	Claims  *Claims
}

// Sign produces a tamper-evident, time-bounded token encoding the payload
// plus issued-at and expiry metadata.
func Sign(payload Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	payload.IssuedAt = jwt.NewNumericDate(now)
	payload.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	payload.ID = uuid.NewString()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &payload)
	return tok.SignedString([]byte(secret))
}

// Verify checks the token's signature and expiry. It is a pure function of
// its inputs plus the current time and never returns an error; a bad
// signature or malformed token yields {Valid:false, Expired:false}.
func Verify(raw, secret string) Result {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return Result{Expired: errors.Is(err, jwt.ErrTokenExpired)}
	}
	if !tok.Valid {
		return Result{}
	}

	return Result{Valid: true, Claims: claims}
}
