package specification

import (
	"subbridge-be/internal/entity"

	"gorm.io/gorm"
)

// ByAgreementID filters by the provider-assigned billing agreement id.
type ByAgreementID struct {
	AgreementID string
}

func (s ByAgreementID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("agreement_id = ?", s.AgreementID)
}

// OwnedBy filters by the externally-owned user identity.
type OwnedBy struct {
	UserID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// StatusIs filters by subscription status.
type StatusIs struct {
	Status entity.SubscriptionStatus
}

func (s StatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}
