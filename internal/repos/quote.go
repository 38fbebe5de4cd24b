package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

type QuoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quote *types.Quote) (*types.Quote, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Quote, error)
	ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Quote, error)
	UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error)
	// MarkExpired flips every ACTIVE quote whose expiry has passed and
	// returns how many rows changed.
	MarkExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type quoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuoteRepo(db *gorm.DB, baseLog *logger.Logger) QuoteRepo {
	return &quoteRepo{db: db, log: baseLog.With("repo", "QuoteRepo")}
}

func (qr *quoteRepo) Create(ctx context.Context, tx *gorm.DB, quote *types.Quote) (*types.Quote, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	if err := transaction.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (qr *quoteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Quote, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	var quote types.Quote
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (qr *quoteRepo) ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Quote, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	query := transaction.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var results []*types.Quote
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *quoteRepo) UpdateStatusIfCurrent(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected string, updates map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Quote{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (qr *quoteRepo) MarkExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Quote{}).
		Where("status = ? AND expires_at < ?", types.QuoteStatusActive, now).
		Updates(map[string]any{"status": types.QuoteStatusExpired, "updated_at": now})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
