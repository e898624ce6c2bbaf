// Package auth signs dashboard users in and tracks their sessions.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// Authenticator verifies credentials. Failures wrap domain.ErrAuthentication.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
}

// StaticAuthenticator accepts a single account configured with a bcrypt hash.
// It backs local development when no hosted auth service is configured.
type StaticAuthenticator struct {
	email   string
	hash    []byte
	ttl     time.Duration
	now     func() time.Time
	compare func(hash, password []byte) error
}

func NewStatic(email, passwordHash string, ttl time.Duration) (*StaticAuthenticator, error) {
	if email == "" || passwordHash == "" {
		return nil, fmt.Errorf("static auth needs both an email and a password hash")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return &StaticAuthenticator{
		email:   strings.ToLower(email),
		hash:    []byte(passwordHash),
		ttl:     ttl,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
	}, nil
}

// SignIn always runs the bcrypt comparison so an unknown email costs the
// same as a wrong password.
func (a *StaticAuthenticator) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	passwordErr := a.compare(a.hash, []byte(password))
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(a.email)) == 1
	if !emailOK || passwordErr != nil {
		return nil, fmt.Errorf("%w: invalid login credentials", domain.ErrAuthentication)
	}
	return &domain.Session{
		Token:     uuid.NewString(),
		UserID:    "local:" + a.email,
		Email:     a.email,
		ExpiresAt: a.now().Add(a.ttl),
	}, nil
}
