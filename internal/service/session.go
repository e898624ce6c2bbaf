package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/auth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/metrics"
)

// SessionService signs users in and resolves bearer tokens to sessions.
type SessionService struct {
	auth     auth.Authenticator
	sessions *auth.SessionStore
	metrics  *metrics.Metrics
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := fmt.Errorf("%w: email and password are required", domain.ErrAuthentication)
		s.metrics.ObserveLogin(err)
		return nil, err
	}

	sess, err := s.auth.SignIn(ctx, email, password)
	s.metrics.ObserveLogin(err)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("sign-in rejected")
		return nil, err
	}
	s.sessions.Put(sess)
	log.Info().Str("user_id", sess.UserID).Time("expires_at", sess.ExpiresAt).Msg("signed in")
	return sess, nil
}

// Lookup returns the live session for token or domain.ErrUnauthenticated.
func (s *SessionService) Lookup(token string) (*domain.Session, error) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

func (s *SessionService) Logout(token string) {
	s.sessions.Delete(token)
}
