// Package token issues and verifies the signed bearer tokens that carry
// user identity between requests. Tokens are stateless: nothing is stored
// server-side and expired tokens require a fresh login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLen is the minimum HS256 signing key length in bytes (256 bits).
const MinKeyLen = 32

// DefaultTTL is the token validity window when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken indicates the token failed signature, structure or
// expiry validation.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated subject extracted from a verified token.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// Claims is the token payload: registered claims plus the username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 tokens with a symmetric key loaded once
// at process start. Issuer/audience validation is off unless configured.
type Issuer struct {
	key      []byte
	ttl      time.Duration
	issuer   string
	audience string
}

// NewIssuer validates the signing key and returns a ready Issuer.
// Keys shorter than MinKeyLen are rejected so the process fails at startup
// instead of running with a weak secret.
func NewIssuer(key []byte, ttl time.Duration, issuer, audience string) (*Issuer, error) {
	if len(key) < MinKeyLen {
		return nil, fmt.Errorf("signing key too short: %d bytes, need at least %d", len(key), MinKeyLen)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, issuer: issuer, audience: audience}, nil
}

// Issue creates a signed token for the user with a unique jti.
// The jti is minted for future revocation hooks; nothing consumes it yet.
func (i *Issuer) Issue(userID uuid.UUID, username string) (string, time.Time, error) {
	if userID == uuid.Nil {
		return "", time.Time{}, errors.New("empty user id")
	}
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if i.issuer != "" {
		claims.Issuer = i.issuer
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify validates signature, structure and expiry and extracts the
// identity. The subject must be a well-formed UUID.
func (i *Issuer) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(30 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.FromString(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Username: claims.Username}, nil
}
