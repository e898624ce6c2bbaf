package auth

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// SessionStore keeps active sessions keyed by bearer token.
type SessionStore struct {
	cache *cache.Cache
	now   func() time.Time
}

func NewSessionStore(cleanup time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(cache.NoExpiration, cleanup),
		now:   time.Now,
	}
}

// Put stores sess until its ExpiresAt.
func (s *SessionStore) Put(sess *domain.Session) {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.cache.Set(sess.Token, sess, ttl)
}

// Get returns the live session for token.
func (s *SessionStore) Get(token string) (*domain.Session, bool) {
	v, ok := s.cache.Get(token)
	if !ok {
		return nil, false
	}
	sess, _ := v.(*domain.Session)
	if !sess.Valid(s.now()) {
		s.cache.Delete(token)
		return nil, false
	}
	return sess, true
}

// Delete ends the session for token. Unknown tokens are ignored.
func (s *SessionStore) Delete(token string) {
	s.cache.Delete(token)
}

func (s *SessionStore) Count() int { return s.cache.ItemCount() }
