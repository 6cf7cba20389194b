package implementation

import (
	"context"
	"os"
	"testing"

	"subbridge-be/internal/entity"
	"subbridge-be/internal/model"
	"subbridge-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Integration test against a real Postgres. Set TEST_DB_DSN to run.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SubscriptionRecord{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM subscription_records")
	})
	return db
}

func TestSubscriptionRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewSubscriptionRepository(testDB(t))
	ctx := context.Background()

	first := &entity.SubscriptionRecord{
		AgreementId: "I-INT-1", UserId: "user-1",
		PlanName: entity.PlanPro, Status: entity.StatusPendingApproval,
	}
	require.NoError(t, repo.UpsertPending(ctx, first))

	// Retry with a different user must not clobber the existing record.
	retry := &entity.SubscriptionRecord{
		AgreementId: "I-INT-1", UserId: "someone-else",
		PlanName: entity.PlanPremium, Status: entity.StatusPendingApproval,
	}
	require.NoError(t, repo.UpsertPending(ctx, retry))

	rec, err := repo.FindByAgreementId(ctx, "I-INT-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "user-1", rec.UserId)
	assert.Equal(t, entity.PlanPro, rec.PlanName)
}

func TestSubscriptionRepository_ActivationRowSemantics(t *testing.T) {
	repo := NewSubscriptionRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertPending(ctx, &entity.SubscriptionRecord{
		AgreementId: "I-INT-2", UserId: "user-1",
		PlanName: entity.PlanPro, Status: entity.StatusPendingApproval,
	}))

	rows, err := repo.ApplyActivation(ctx, "I-INT-2", entity.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// Replay: identical state, zero rows.
	rows, err = repo.ApplyActivation(ctx, "I-INT-2", entity.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	// Unknown agreement: zero rows, no error.
	rows, err = repo.ApplyActivation(ctx, "I-NEVER", entity.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	active, err := repo.FindLatestActive(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "I-INT-2", active.AgreementId)
}

func TestSubscriptionRepository_StatusTransitions(t *testing.T) {
	repo := NewSubscriptionRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertPending(ctx, &entity.SubscriptionRecord{
		AgreementId: "I-INT-3", UserId: "user-1",
		PlanName: entity.PlanPremium, Status: entity.StatusPendingApproval,
	}))

	_, err := repo.ApplyActivation(ctx, "I-INT-3", entity.PlanPremium)
	require.NoError(t, err)

	rows, err := repo.ApplyStatus(ctx, "I-INT-3", entity.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	active, err := repo.FindLatestActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	all, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.StatusCancelled, all[0].Status)
}
