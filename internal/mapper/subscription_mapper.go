package mapper

import (
	"subbridge-be/internal/entity"
	"subbridge-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) RecordToEntity(r *model.SubscriptionRecord) *entity.SubscriptionRecord {
	if r == nil {
		return nil
	}
	return &entity.SubscriptionRecord{
		AgreementId: r.AgreementId,
		UserId:      r.UserId,
		PlanName:    entity.PlanName(r.PlanName),
		Status:      entity.SubscriptionStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *SubscriptionMapper) RecordToModel(r *entity.SubscriptionRecord) *model.SubscriptionRecord {
	if r == nil {
		return nil
	}
	return &model.SubscriptionRecord{
		AgreementId: r.AgreementId,
		UserId:      r.UserId,
		PlanName:    string(r.PlanName),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *SubscriptionMapper) WebhookEventToModel(e *entity.WebhookEvent) *model.WebhookEvent {
	if e == nil {
		return nil
	}
	return &model.WebhookEvent{
		Id:          e.Id,
		EventType:   e.EventType,
		AgreementId: e.AgreementId,
		Payload:     datatypes.JSON(e.Payload),
		Outcome:     string(e.Outcome),
		ReceivedAt:  e.ReceivedAt,
	}
}

func (m *SubscriptionMapper) WebhookEventToEntity(e *model.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	return &entity.WebhookEvent{
		Id:          e.Id,
		EventType:   e.EventType,
		AgreementId: e.AgreementId,
		Payload:     []byte(e.Payload),
		Outcome:     entity.EventOutcome(e.Outcome),
		ReceivedAt:  e.ReceivedAt,
	}
}
