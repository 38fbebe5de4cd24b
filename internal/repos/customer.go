package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

type CustomerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, customer *types.Customer) (*types.Customer, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Customer, error)
	ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Customer, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type customerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return &customerRepo{db: db, log: baseLog.With("repo", "CustomerRepo")}
}

func (cr *customerRepo) Create(ctx context.Context, tx *gorm.DB, customer *types.Customer) (*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (cr *customerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var customer types.Customer
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (cr *customerRepo) ListByOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, status string) ([]*types.Customer, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	query := transaction.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var results []*types.Customer
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *customerRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (cr *customerRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Customer{}).Error
}
