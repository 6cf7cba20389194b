package model

import (
	"time"
)

type SubscriptionRecord struct {
	AgreementId string    `gorm:"type:varchar(64);primaryKey"`
	UserId      string    `gorm:"type:varchar(64);not null;index:idx_subscription_records_user_status,priority:1"`
	PlanName    string    `gorm:"type:varchar(20);not null;default:'free'"`
	Status      string    `gorm:"type:varchar(30);not null;index:idx_subscription_records_user_status,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (SubscriptionRecord) TableName() string {
	return "subscription_records"
}
