package contract

import (
	"context"

	"subbridge-be/internal/entity"
)

// WebhookEventRepository persists the audit trail of received provider
// notifications. Writes are best-effort: callers log failures and move on.
type WebhookEventRepository interface {
	Record(ctx context.Context, event *entity.WebhookEvent) error
}
