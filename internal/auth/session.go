package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// ErrInvalidSession is returned for missing, expired or forged tokens.
var ErrInvalidSession = errors.New("invalid session")

const issuer = "imperivm"

type sessionClaims struct {
	jwt.RegisteredClaims
	Role schema.Rank `json:"role"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

// NewSessions builds a token issuer. An empty secret is replaced by random
// bytes, which invalidates all tokens on restart.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{secret: key, ttl: ttl, Now: time.Now}, nil
}

// Issue signs a token for the identity.
func (s *Sessions) Issue(id schema.Identity) (string, time.Time, error) {
	now := s.Now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role: id.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expires, nil
}

// Parse verifies a token and returns its identity.
func (s *Sessions) Parse(token string) (schema.Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return schema.Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return schema.Identity{Name: claims.Subject, Role: claims.Role}, nil
}
