package implementation

import (
	"context"

	"subbridge-be/internal/entity"
	"subbridge-be/internal/mapper"
	"subbridge-be/internal/repository/contract"

	"gorm.io/gorm"
)

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &WebhookEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *WebhookEventRepositoryImpl) Record(ctx context.Context, event *entity.WebhookEvent) error {
	m := r.mapper.WebhookEventToModel(event)
	return r.db.WithContext(ctx).Create(m).Error
}
