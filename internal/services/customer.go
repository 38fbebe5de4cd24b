package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/requestdata"
	"github.com/harborwell/insurance-backend/internal/types"
)

type CreateCustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type UpdateCustomerInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Status    *string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*types.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*types.Customer, error)
	ListCustomers(ctx context.Context, status string) ([]*types.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*types.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	db           *gorm.DB
	log          *logger.Logger
	customerRepo repos.CustomerRepo
}

func NewCustomerService(db *gorm.DB, baseLog *logger.Logger, customerRepo repos.CustomerRepo) CustomerService {
	return &customerService{
		db:           db,
		log:          baseLog.With("service", "CustomerService"),
		customerRepo: customerRepo,
	}
}

func (cs *customerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	now := time.Now()
	customer := &types.Customer{
		ID:             uuid.New(),
		OrganizationID: rd.OrganizationID,
		UserID:         rd.UserID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Status:         types.CustomerStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := cs.customerRepo.Create(ctx, nil, customer); err != nil {
		cs.log.Error("CreateCustomer failed", "error", err)
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (cs *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	customer, err := cs.customerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("customer")
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer.OrganizationID != rd.OrganizationID {
		return nil, apierr.NotFound("customer")
	}
	return customer, nil
}

func (cs *customerService) ListCustomers(ctx context.Context, status string) ([]*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	customers, err := cs.customerRepo.ListByOrg(ctx, nil, rd.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (cs *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*types.Customer, error) {
	customer, err := cs.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"updated_at": time.Now()}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Status != nil {
		if *input.Status != types.CustomerStatusActive && *input.Status != types.CustomerStatusInactive {
			return nil, apierr.InvalidInput(fmt.Errorf("unknown customer status %q", *input.Status))
		}
		updates["status"] = *input.Status
	}
	if err := cs.customerRepo.Update(ctx, nil, customer.ID, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return cs.customerRepo.GetByID(ctx, nil, customer.ID)
}

func (cs *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := cs.GetCustomer(ctx, id); err != nil {
		return err
	}
	if err := cs.customerRepo.Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}
