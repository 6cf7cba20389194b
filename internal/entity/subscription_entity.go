package entity

import (
	"time"
)

type PlanName string
type SubscriptionStatus string

const (
	PlanFree    PlanName = "free"
	PlanPro     PlanName = "pro"
	PlanPremium PlanName = "premium"
	PlanUnknown PlanName = "unknown"

	StatusPendingApproval SubscriptionStatus = "pending_approval"
	StatusActive          SubscriptionStatus = "active"
	StatusCancelled       SubscriptionStatus = "cancelled"
	StatusSuspended       SubscriptionStatus = "suspended"
	StatusExpired         SubscriptionStatus = "expired"
	StatusInactive        SubscriptionStatus = "inactive"
)

// Paid reports whether the plan grants access to paid features.
func (p PlanName) Paid() bool {
	return p == PlanPro || p == PlanPremium
}

// SubscriptionRecord mirrors one billing agreement held at the payment
// provider. The agreement id is provider-assigned and immutable; the record
// is only ever mutated by the reconciler in response to provider events.
// Terminal statuses are statuses, not row deletions.
type SubscriptionRecord struct {
	AgreementId string
	UserId      string
	PlanName    PlanName
	Status      SubscriptionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
