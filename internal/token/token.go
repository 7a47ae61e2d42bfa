// Package token issues and verifies the signed bearer credentials shared by
// every service behind the gateway. Tokens are stateless HS256 JWTs; the
// only server-side state is the revocation denylist, which is consulted by
// callers, not by this package.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tags a token with the operation class it may satisfy. An access
// token must never satisfy a refresh request and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrInvalid covers every verification failure: bad signature, expired,
// malformed, or wrong kind. Callers are not told which check failed.
var ErrInvalid = errors.New("invalid token")

// Claims is the payload carried by both token kinds.
type Claims struct {
	Email string `json:"email"`
	Kind  Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair as returned to clients. ExpiresIn is
// the access token lifetime in seconds, provided for client convenience.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Sign builds and signs a single token of the given kind for a subject.
func Sign(secret []byte, userID, email string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// NewPair issues an access/refresh pair for a subject. Both tokens are
// signed independently with the same secret.
func NewPair(secret []byte, userID, email string, accessTTL, refreshTTL time.Duration) (Pair, error) {
	access, err := Sign(secret, userID, email, KindAccess, accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := Sign(secret, userID, email, KindRefresh, refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTTL / time.Second),
	}, nil
}

// Parse verifies the signature and expiry of a token and returns its claims.
// The kind is not checked; use Verify when an operation requires one.
func Parse(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC so a token cannot
		// downgrade to "none" or swap to an asymmetric scheme.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// Verify parses the token and additionally requires its kind to match the
// consuming operation.
func Verify(secret []byte, raw string, kind Kind) (*Claims, error) {
	claims, err := Parse(secret, raw)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ExtractExpiry decodes a token without verifying its signature and returns
// the expiry claim. Logout uses this to size the revocation entry TTL;
// nothing else may trust an unverified decode.
func ExtractExpiry(raw string) (time.Time, bool) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
