// Package session carries the caller's identity from the incoming dashboard
// request down to the backend gateway.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when the token cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken is returned when the token is past its expiry.
	ErrExpiredToken = errors.New("session token expired")
)

// Claims are the fields the identity provider puts in the session token.
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller. The zero value is an anonymous session.
type Session struct {
	token  string
	claims Claims
}

// New builds a session from a raw token and its claims.
func New(token string, claims Claims) Session {
	return Session{token: token, claims: claims}
}

// Token returns the bearer token forwarded to the backend.
func (s Session) Token() string { return s.token }

// UserID returns the user id, falling back to the token subject.
func (s Session) UserID() string {
	if s.claims.UserID != "" {
		return s.claims.UserID
	}
	return s.claims.Subject
}

// Role returns the role name granted to the caller.
func (s Session) Role() string { return s.claims.Role }

// Name returns the display name of the caller.
func (s Session) Name() string { return s.claims.Name }

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.token != "" }

// Parser turns raw bearer tokens into sessions. With a secret it verifies
// HS256 signatures; without one it trusts the identity provider and only
// reads the claims.
type Parser struct {
	secret []byte
	now    func() time.Time
}

// NewParser creates a Parser. An empty secret disables signature checks.
func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret), now: time.Now}
}

// FromHeader extracts the token from an Authorization header value.
func FromHeader(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", ErrMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return "", ErrMissingToken
	}
	return raw, nil
}

// Parse validates raw and returns the session it describes.
func (p *Parser) Parse(raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrMissingToken
	}

	var claims Claims
	if len(p.secret) > 0 {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(p.now),
		)
		tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return Session{}, ErrExpiredToken
			}
			return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !tok.Valid {
			return Session{}, ErrInvalidToken
		}
		return New(raw, claims), nil
	}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt != nil && p.now().After(claims.ExpiresAt.Time) {
		return Session{}, ErrExpiredToken
	}
	return New(raw, claims), nil
}
