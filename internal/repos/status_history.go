package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

// History repos are append-only ledgers. Append must always run inside the
// same transaction as the entity status mutation: callers pass the tx they
// used for the conditional status update.

type ClaimStatusHistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.ClaimStatusHistory) error
	ListByClaimID(ctx context.Context, tx *gorm.DB, claimID uuid.UUID) ([]*types.ClaimStatusHistory, error)
}

type claimStatusHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClaimStatusHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ClaimStatusHistoryRepo {
	return &claimStatusHistoryRepo{db: db, log: baseLog.With("repo", "ClaimStatusHistoryRepo")}
}

func (hr *claimStatusHistoryRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ClaimStatusHistory) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (hr *claimStatusHistoryRepo) ListByClaimID(ctx context.Context, tx *gorm.DB, claimID uuid.UUID) ([]*types.ClaimStatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.ClaimStatusHistory
	if err := transaction.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type PolicyStatusHistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.PolicyStatusHistory) error
	ListByPolicyID(ctx context.Context, tx *gorm.DB, policyID uuid.UUID) ([]*types.PolicyStatusHistory, error)
}

type policyStatusHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPolicyStatusHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PolicyStatusHistoryRepo {
	return &policyStatusHistoryRepo{db: db, log: baseLog.With("repo", "PolicyStatusHistoryRepo")}
}

func (hr *policyStatusHistoryRepo) Append(ctx context.Context, tx *gorm.DB, row *types.PolicyStatusHistory) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (hr *policyStatusHistoryRepo) ListByPolicyID(ctx context.Context, tx *gorm.DB, policyID uuid.UUID) ([]*types.PolicyStatusHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.PolicyStatusHistory
	if err := transaction.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
