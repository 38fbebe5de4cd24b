package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

type PolicyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, policy *types.Policy) (*types.Policy, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Policy, error)
	ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Policy, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	// UpdateStatusIfCurrent is a conditional update on the status column. It
	// affects zero rows when the stored status no longer matches expected,
	// which is how a losing concurrent transition is detected.
	UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type policyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPolicyRepo(db *gorm.DB, baseLog *logger.Logger) PolicyRepo {
	return &policyRepo{db: db, log: baseLog.With("repo", "PolicyRepo")}
}

func (pr *policyRepo) Create(ctx context.Context, tx *gorm.DB, policy *types.Policy) (*types.Policy, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

func (pr *policyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Policy, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var policy types.Policy
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (pr *policyRepo) ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Policy, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	query := transaction.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var results []*types.Policy
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *policyRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Policy{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (pr *policyRepo) UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Policy{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (pr *policyRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Policy{}).Error
}
