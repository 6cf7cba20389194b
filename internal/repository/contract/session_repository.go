package contract

import (
	"context"
	"errors"

	"subbridge-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores ephemeral sessions keyed by the opaque session id
// carried in the cookie. Backends expire entries on their own TTL.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionId string) (*store.Session, error)
	Delete(ctx context.Context, sessionId string) error
}
