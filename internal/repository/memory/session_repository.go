package memory

import (
	"context"
	"time"

	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions in process memory with the given TTL.
// Expired entries are purged every 10 minutes.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, error) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.Session), nil
	}
	return nil, contract.ErrSessionNotFound
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	r.cache.Delete(sessionId)
	return nil
}
