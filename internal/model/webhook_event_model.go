package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEvent stores every received provider notification for auditing.
type WebhookEvent struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType   string         `gorm:"type:varchar(100);not null;index:idx_webhook_events_type"`
	AgreementId string         `gorm:"type:varchar(64);index:idx_webhook_events_agreement"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Outcome     string         `gorm:"type:varchar(20);not null"`
	ReceivedAt  time.Time      `gorm:"autoCreateTime;index:idx_webhook_events_received"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
