package implementation

import (
	"context"
	"errors"
	"time"

	"subbridge-be/internal/entity"
	"subbridge-be/internal/mapper"
	"subbridge-be/internal/model"
	"subbridge-be/internal/repository/contract"
	"subbridge-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) UpsertPending(ctx context.Context, record *entity.SubscriptionRecord) error {
	m := r.mapper.RecordToModel(record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agreement_id"}},
		DoNothing: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*record = *r.mapper.RecordToEntity(m)
	return nil
}

// ApplyActivation is a single UPDATE, never read-modify-write. The extra
// status/plan predicate makes replayed events report zero rows changed so the
// caller can tell a duplicate from a real transition.
func (r *SubscriptionRepositoryImpl) ApplyActivation(ctx context.Context, agreementId string, plan entity.PlanName) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.SubscriptionRecord{}).
		Where("agreement_id = ? AND (status <> ? OR plan_name <> ?)",
			agreementId, string(entity.StatusActive), string(plan)).
		Updates(map[string]interface{}{
			"status":     string(entity.StatusActive),
			"plan_name":  string(plan),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepositoryImpl) ApplyStatus(ctx context.Context, agreementId string, status entity.SubscriptionStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.SubscriptionRecord{}).
		Where("agreement_id = ? AND status <> ?", agreementId, string(status)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepositoryImpl) FindByAgreementId(ctx context.Context, agreementId string) (*entity.SubscriptionRecord, error) {
	return r.findOne(ctx, specification.ByAgreementID{AgreementID: agreementId})
}

func (r *SubscriptionRepositoryImpl) FindLatestActive(ctx context.Context, userId string) (*entity.SubscriptionRecord, error) {
	return r.findOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.StatusIs{Status: entity.StatusActive},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) ListByUser(ctx context.Context, userId string) ([]*entity.SubscriptionRecord, error) {
	var models []*model.SubscriptionRecord
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*entity.SubscriptionRecord, len(models))
	for i, m := range models {
		records[i] = r.mapper.RecordToEntity(m)
	}
	return records, nil
}

func (r *SubscriptionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error) {
	var m model.SubscriptionRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RecordToEntity(&m), nil
}
