package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionRepository keeps sessions in Redis so they survive restarts and
// are shared across instances.
func NewSessionRepository(client *goredis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.Id, data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+sessionId).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, err
	}
	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sessionId).Err()
}
