package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventOutcome string

const (
	// OutcomeApplied means the event changed the subscription record.
	OutcomeApplied EventOutcome = "applied"
	// OutcomeIgnored covers informational, duplicate and unknown event types.
	OutcomeIgnored EventOutcome = "ignored"
	// OutcomeAnomaly is an event referencing an agreement we never created.
	OutcomeAnomaly EventOutcome = "anomaly"
)

// WebhookEvent is the audit trail of every provider notification we received,
// whatever the reconciler decided to do with it.
type WebhookEvent struct {
	Id          uuid.UUID
	EventType   string
	AgreementId string
	Payload     []byte
	Outcome     EventOutcome
	ReceivedAt  time.Time
}
