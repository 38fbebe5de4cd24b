package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

type ClaimRepo interface {
	Create(ctx context.Context, tx *gorm.DB, claim *types.Claim) (*types.Claim, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Claim, error)
	ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Claim, error)
	// UpdateStatusIfCurrent is the compare-and-swap on the status column that
	// closes the read-validate-write race between concurrent transitions.
	UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error)
}

type claimRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClaimRepo(db *gorm.DB, baseLog *logger.Logger) ClaimRepo {
	return &claimRepo{db: db, log: baseLog.With("repo", "ClaimRepo")}
}

func (cr *claimRepo) Create(ctx context.Context, tx *gorm.DB, claim *types.Claim) (*types.Claim, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}

func (cr *claimRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Claim, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var claim types.Claim
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (cr *claimRepo) ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Claim, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	query := transaction.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var results []*types.Claim
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *claimRepo) UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Claim{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
