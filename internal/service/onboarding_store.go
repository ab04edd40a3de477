package service

import (
	"context"
	"errors"
	"time"

	"healthsure/internal/onboarding"
)

const onboardingKeyPrefix = "onboarding:session:"

var ErrSessionNotFound = errors.New("onboarding session not found")

// SessionStore keeps wizard sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session *onboarding.Session) error
	Load(ctx context.Context, id string) (*onboarding.Session, error)
	Delete(ctx context.Context, id string) error
}

type cacheSessionStore struct {
	cache Cache
	ttl   time.Duration
}

// NewSessionStore stores sessions as JSON; every save refreshes the TTL.
func NewSessionStore(cache Cache, ttl time.Duration) SessionStore {
	return &cacheSessionStore{cache: cache, ttl: ttl}
}

func (s *cacheSessionStore) Save(ctx context.Context, session *onboarding.Session) error {
	return s.cache.Set(ctx, onboardingKeyPrefix+session.ID, session, s.ttl)
}

func (s *cacheSessionStore) Load(ctx context.Context, id string) (*onboarding.Session, error) {
	var session onboarding.Session
	found, err := s.cache.Get(ctx, onboardingKeyPrefix+id, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Invalidate(ctx, onboardingKeyPrefix+id)
}
