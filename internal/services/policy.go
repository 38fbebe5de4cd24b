package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/refcheck"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/requestdata"
	"github.com/harborwell/insurance-backend/internal/transitions"
	"github.com/harborwell/insurance-backend/internal/types"
)

type CreatePolicyInput struct {
	CustomerID     *uuid.UUID
	PolicyNumber   string
	Type           string
	Status         string
	Premium        float64
	CoverageAmount float64
	StartDate      time.Time
	EndDate        time.Time
}

type UpdatePolicyInput struct {
	Status         *string
	Premium        *float64
	CoverageAmount *float64
	EndDate        *time.Time
	Reason         *string
}

type PolicyService interface {
	CreatePolicy(ctx context.Context, input CreatePolicyInput) (*types.Policy, error)
	GetPolicy(ctx context.Context, id uuid.UUID) (*types.Policy, error)
	ListPolicies(ctx context.Context, status string) ([]*types.Policy, error)
	UpdatePolicy(ctx context.Context, id uuid.UUID, input UpdatePolicyInput) (*types.Policy, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) (*types.Policy, error)
	DeletePolicy(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) ([]*types.PolicyStatusHistory, error)
}

type policyService struct {
	db                *gorm.DB
	log               *logger.Logger
	policyRepo        repos.PolicyRepo
	historyRepo       repos.PolicyStatusHistoryRepo
	customerValidator refcheck.ReferenceValidator
}

func NewPolicyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	policyRepo repos.PolicyRepo,
	historyRepo repos.PolicyStatusHistoryRepo,
	customerValidator refcheck.ReferenceValidator,
) PolicyService {
	return &policyService{
		db:                db,
		log:               baseLog.With("service", "PolicyService"),
		policyRepo:        policyRepo,
		historyRepo:       historyRepo,
		customerValidator: customerValidator,
	}
}

func (ps *policyService) CreatePolicy(ctx context.Context, input CreatePolicyInput) (*types.Policy, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	if !types.IsValidPolicyType(input.Type) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown policy type %q", input.Type))
	}
	status := input.Status
	if status == "" {
		status = types.PolicyStatusPending
	}
	if !types.IsValidPolicyStatus(status) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown policy status %q", status))
	}

	// Customer is owned by customer-service; validate the reference when one
	// is supplied.
	if input.CustomerID != nil {
		res := ps.customerValidator.Validate(ctx, *input.CustomerID, rd.TokenString)
		if !res.Valid {
			return nil, apierr.ReferentialRejected("customer")
		}
		if res.Entity.OrganizationID != rd.OrganizationID {
			ps.log.Warn("SECURITY: cross-tenant customer reference on policy creation",
				"caller_org", rd.OrganizationID,
				"customer_org", res.Entity.OrganizationID,
				"customer_id", *input.CustomerID,
				"user_id", rd.UserID,
			)
			return nil, apierr.TenantViolation("customer")
		}
	}

	now := time.Now()
	policy := &types.Policy{
		ID:             uuid.New(),
		OrganizationID: rd.OrganizationID,
		UserID:         rd.UserID,
		CustomerID:     input.CustomerID,
		PolicyNumber:   input.PolicyNumber,
		Type:           input.Type,
		Status:         status,
		Premium:        input.Premium,
		CoverageAmount: input.CoverageAmount,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := ps.policyRepo.Create(ctx, nil, policy); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Duplicate("policy", "policy number")
		}
		ps.log.Error("CreatePolicy failed", "error", err, "policy_number", input.PolicyNumber)
		return nil, fmt.Errorf("create policy: %w", err)
	}
	return policy, nil
}

func (ps *policyService) GetPolicy(ctx context.Context, id uuid.UUID) (*types.Policy, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	policy, err := ps.policyRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("policy")
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	if policy.OrganizationID != rd.OrganizationID {
		return nil, apierr.NotFound("policy")
	}
	return policy, nil
}

func (ps *policyService) ListPolicies(ctx context.Context, status string) ([]*types.Policy, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	policies, err := ps.policyRepo.ListByOrg(ctx, nil, rd.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return policies, nil
}

// UpdatePolicy is the generic field-update endpoint. When the body carries a
// status different from the stored one, the change goes through the same
// atomic status+history write as the dedicated status endpoint; a status
// equal to the stored one is a no-op and produces no history row.
func (ps *policyService) UpdatePolicy(ctx context.Context, id uuid.UUID, input UpdatePolicyInput) (*types.Policy, error) {
	policy, err := ps.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now()}
	if input.Premium != nil {
		updates["premium"] = *input.Premium
	}
	if input.CoverageAmount != nil {
		updates["coverage_amount"] = *input.CoverageAmount
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}

	statusChanged := input.Status != nil && *input.Status != policy.Status
	if statusChanged {
		return ps.applyStatusChange(ctx, policy, *input.Status, input.Reason, updates)
	}

	if err := ps.policyRepo.Update(ctx, nil, policy.ID, updates); err != nil {
		return nil, fmt.Errorf("update policy: %w", err)
	}
	return ps.policyRepo.GetByID(ctx, nil, policy.ID)
}

func (ps *policyService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) (*types.Policy, error) {
	policy, err := ps.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == policy.Status {
		// No-op transition: nothing to write, no history row.
		return policy, nil
	}
	return ps.applyStatusChange(ctx, policy, status, reason, map[string]any{"updated_at": time.Now()})
}

func (ps *policyService) applyStatusChange(ctx context.Context, policy *types.Policy, status string, reason *string, updates map[string]any) (*types.Policy, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	// Policy transitions are permissive; CanTransition only rejects unknown
	// status values here.
	if !transitions.CanTransition(transitions.KindPolicy, policy.Status, status) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown policy status %q", status))
	}

	now := time.Now()
	updates["status"] = status
	metaJSON, _ := json.Marshal(map[string]any{"previousStatus": policy.Status})

	txErr := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, uErr := ps.policyRepo.UpdateStatusIfCurrent(ctx, tx, policy.ID, policy.Status, updates)
		if uErr != nil {
			return fmt.Errorf("update policy status: %w", uErr)
		}
		if !ok {
			current, gErr := ps.policyRepo.GetByID(ctx, tx, policy.ID)
			if gErr != nil {
				return fmt.Errorf("reload policy after conflict: %w", gErr)
			}
			return apierr.TransitionRejected(current.Status, status)
		}
		return ps.historyRepo.Append(ctx, tx, &types.PolicyStatusHistory{
			ID:             uuid.New(),
			PolicyID:       policy.ID,
			OrganizationID: policy.OrganizationID,
			OldStatus:      policy.Status,
			NewStatus:      status,
			ChangedBy:      rd.UserID,
			Reason:         reason,
			Metadata:       datatypes.JSON(metaJSON),
			CreatedAt:      now,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return ps.policyRepo.GetByID(ctx, nil, policy.ID)
}

// DeletePolicy is not guarded against existing claim references; claims live
// in another service and only the application layer ties them together.
func (ps *policyService) DeletePolicy(ctx context.Context, id uuid.UUID) error {
	if _, err := ps.GetPolicy(ctx, id); err != nil {
		return err
	}
	if err := ps.policyRepo.Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

func (ps *policyService) History(ctx context.Context, id uuid.UUID) ([]*types.PolicyStatusHistory, error) {
	if _, err := ps.GetPolicy(ctx, id); err != nil {
		return nil, err
	}
	rows, err := ps.historyRepo.ListByPolicyID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list policy history: %w", err)
	}
	return rows, nil
}
