// Package token issues and verifies the bearer credentials returned by login.
package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Default token lifetime.
const defaultTTL = 24 * time.Hour

// Claims carried inside a signed token. The identity is the (UserID, Handle)
// pair; everything else is standard JWT bookkeeping.
type Claims struct {
	UserID string `json:"uid"`
	Handle string `json:"handle"`
	jwt.RegisteredClaims
}

// Option applies a configuration option to the Issuer.
type Option func(*Issuer)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithNow sets the clock, used by tests for deterministic expiry.
func WithNow(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer for the given secret with configuration options.
func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{
		secret: []byte(secret),
		ttl:    defaultTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Sign returns a signed bearer token for the given identity.
func (i *Issuer) Sign(userID, handle string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Handle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", ErrSignFailed
	}
	return signed, nil
}

// Verify parses a bearer token and returns its claims. Expired, malformed,
// or foreign-signed tokens all surface as ErrInvalidToken.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{},
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
