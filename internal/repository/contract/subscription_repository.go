package contract

import (
	"context"

	"subbridge-be/internal/entity"
)

// SubscriptionRepository is the system of record the reconciler works
// against. Every mutation is a single atomic statement keyed by agreement id;
// there is deliberately no read-modify-write surface here (two webhook
// deliveries for the same agreement may run concurrently, last write wins).
type SubscriptionRepository interface {
	// UpsertPending inserts a pending_approval record, doing nothing if a
	// record with the same agreement id already exists. The agreement id is
	// the natural idempotency key for retried begin-subscription calls.
	UpsertPending(ctx context.Context, record *entity.SubscriptionRecord) error

	// ApplyActivation atomically moves the matching record to active with the
	// resolved plan. Returns the number of rows changed: 0 means the record
	// either does not exist or already carries that exact state.
	ApplyActivation(ctx context.Context, agreementId string, plan entity.PlanName) (int64, error)

	// ApplyStatus atomically writes a terminal/semi-terminal status.
	// Same rows-changed semantics as ApplyActivation.
	ApplyStatus(ctx context.Context, agreementId string, status entity.SubscriptionStatus) (int64, error)

	// FindByAgreementId returns (nil, nil) when no record matches.
	FindByAgreementId(ctx context.Context, agreementId string) (*entity.SubscriptionRecord, error)

	// FindLatestActive returns the user's most recent active record,
	// or (nil, nil) when the user has none.
	FindLatestActive(ctx context.Context, userId string) (*entity.SubscriptionRecord, error)

	// ListByUser returns all records for a user, newest first.
	ListByUser(ctx context.Context, userId string) ([]*entity.SubscriptionRecord, error)
}
