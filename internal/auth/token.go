// Package auth issues and verifies the signed session tokens that carry a
// user's identity between requests. Tokens are stateless: there is no
// server-side revocation, a token stays valid until it expires.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todo-calendar/internal/domain"
)

const issuer = "todo-calendar"

// Identity is the verified owner of a request.
type Identity struct {
	UserID      int64
	DisplayName string
}

// Session is a freshly issued token together with the identity it asserts.
type Session struct {
	Identity
	Token     string
	ExpiresAt time.Time
}

// Claims is the JWT payload of a session token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer signs and validates session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the user valid for the issuer's TTL.
func (i *Issuer) Issue(user *domain.User) (*Session, error) {
	if user == nil || user.ID <= 0 {
		return nil, errors.New("issue token: user id is required")
	}
	now := i.now()
	expires := now.Add(i.ttl)

	claims := Claims{
		Name: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Identity:  Identity{UserID: user.ID, DisplayName: user.DisplayName},
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// Validate verifies signature, algorithm, issuer and expiry. Every failure is
// reported as domain.ErrUnauthenticated.
func (i *Issuer) Validate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing session", domain.ErrUnauthenticated)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("%w: invalid subject", domain.ErrUnauthenticated)
	}
	return Identity{UserID: userID, DisplayName: claims.Name}, nil
}
