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

type CreateClaimInput struct {
	PolicyID     uuid.UUID
	ClaimNumber  string
	IncidentDate time.Time
	Description  string
	ClaimAmount  float64
}

type UpdateClaimStatusInput struct {
	Status         string
	ApprovedAmount *float64
	DenialReason   *string
	Reason         *string
}

type ClaimService interface {
	CreateClaim(ctx context.Context, input CreateClaimInput) (*types.Claim, error)
	GetClaim(ctx context.Context, id uuid.UUID) (*types.Claim, error)
	ListClaims(ctx context.Context, status string) ([]*types.Claim, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateClaimStatusInput) (*types.Claim, error)
	Approve(ctx context.Context, id uuid.UUID, approvedAmount float64, reason *string) (*types.Claim, error)
	Deny(ctx context.Context, id uuid.UUID, reason string) (*types.Claim, error)
	History(ctx context.Context, id uuid.UUID) ([]*types.ClaimStatusHistory, error)
}

type claimService struct {
	db              *gorm.DB
	log             *logger.Logger
	claimRepo       repos.ClaimRepo
	historyRepo     repos.ClaimStatusHistoryRepo
	policyValidator refcheck.ReferenceValidator
}

func NewClaimService(
	db *gorm.DB,
	baseLog *logger.Logger,
	claimRepo repos.ClaimRepo,
	historyRepo repos.ClaimStatusHistoryRepo,
	policyValidator refcheck.ReferenceValidator,
) ClaimService {
	return &claimService{
		db:              db,
		log:             baseLog.With("service", "ClaimService"),
		claimRepo:       claimRepo,
		historyRepo:     historyRepo,
		policyValidator: policyValidator,
	}
}

func (cs *claimService) CreateClaim(ctx context.Context, input CreateClaimInput) (*types.Claim, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	// The policy lives in policy-service; confirm it exists and is ACTIVE
	// before writing anything.
	res := cs.policyValidator.Validate(ctx, input.PolicyID, rd.TokenString)
	if !res.Valid {
		return nil, apierr.ReferentialRejected("policy")
	}
	if res.Entity.OrganizationID != rd.OrganizationID {
		cs.log.Warn("SECURITY: cross-tenant policy reference on claim creation",
			"caller_org", rd.OrganizationID,
			"policy_org", res.Entity.OrganizationID,
			"policy_id", input.PolicyID,
			"user_id", rd.UserID,
		)
		return nil, apierr.TenantViolation("policy")
	}

	now := time.Now()
	claim := &types.Claim{
		ID:             uuid.New(),
		OrganizationID: rd.OrganizationID,
		UserID:         rd.UserID,
		PolicyID:       input.PolicyID,
		ClaimNumber:    input.ClaimNumber,
		Status:         types.ClaimStatusSubmitted,
		ClaimAmount:    input.ClaimAmount,
		IncidentDate:   input.IncidentDate,
		Description:    input.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := cs.claimRepo.Create(ctx, nil, claim); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Duplicate("claim", "claim number")
		}
		cs.log.Error("CreateClaim failed", "error", err, "claim_number", input.ClaimNumber)
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return claim, nil
}

func (cs *claimService) GetClaim(ctx context.Context, id uuid.UUID) (*types.Claim, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	claim, err := cs.claimRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("claim")
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim.OrganizationID != rd.OrganizationID {
		return nil, apierr.NotFound("claim")
	}
	return claim, nil
}

func (cs *claimService) ListClaims(ctx context.Context, status string) ([]*types.Claim, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	claims, err := cs.claimRepo.ListByOrg(ctx, nil, rd.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

// UpdateStatus runs the transition workflow: table check, required-field
// check, then the conditional status write and history append in one
// transaction. A concurrent transition that commits first makes the
// conditional write affect zero rows, and the request is rejected against
// the post-winner state instead of silently overwriting it.
func (cs *claimService) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateClaimStatusInput) (*types.Claim, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	if !types.IsValidClaimStatus(input.Status) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown claim status %q", input.Status))
	}

	claim, err := cs.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitions.CanTransition(transitions.KindClaim, claim.Status, input.Status) {
		return nil, apierr.TransitionRejected(claim.Status, input.Status)
	}
	for _, field := range transitions.RequiredFields(transitions.KindClaim, input.Status) {
		switch field {
		case transitions.FieldApprovedAmount:
			if input.ApprovedAmount == nil || *input.ApprovedAmount <= 0 {
				return nil, apierr.MissingField(field, input.Status)
			}
		case transitions.FieldDenialReason:
			if input.DenialReason == nil || *input.DenialReason == "" {
				return nil, apierr.MissingField(field, input.Status)
			}
		}
	}

	now := time.Now()
	updates := map[string]any{
		"status":     input.Status,
		"updated_at": now,
	}
	if input.ApprovedAmount != nil {
		updates["approved_amount"] = *input.ApprovedAmount
	}
	if input.DenialReason != nil {
		updates["denial_reason"] = *input.DenialReason
	}

	meta := map[string]any{"previousStatus": claim.Status}
	if input.ApprovedAmount != nil {
		meta["requestedApprovedAmount"] = *input.ApprovedAmount
	}
	metaJSON, _ := json.Marshal(meta)

	txErr := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, uErr := cs.claimRepo.UpdateStatusIfCurrent(ctx, tx, claim.ID, claim.Status, updates)
		if uErr != nil {
			return fmt.Errorf("update claim status: %w", uErr)
		}
		if !ok {
			// Lost the race: recompute the rejection against whatever won.
			current, gErr := cs.claimRepo.GetByID(ctx, tx, claim.ID)
			if gErr != nil {
				return fmt.Errorf("reload claim after conflict: %w", gErr)
			}
			return apierr.TransitionRejected(current.Status, input.Status)
		}
		return cs.historyRepo.Append(ctx, tx, &types.ClaimStatusHistory{
			ID:             uuid.New(),
			ClaimID:        claim.ID,
			OrganizationID: claim.OrganizationID,
			OldStatus:      claim.Status,
			NewStatus:      input.Status,
			ChangedBy:      rd.UserID,
			Reason:         input.Reason,
			Metadata:       datatypes.JSON(metaJSON),
			CreatedAt:      now,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := cs.claimRepo.GetByID(ctx, nil, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("reload claim: %w", err)
	}
	return updated, nil
}

// Approve and Deny are thin wrappers over the same transition machinery. The
// table already narrows them: APPROVED is only reachable from UNDER_REVIEW,
// DENIED from SUBMITTED or UNDER_REVIEW.
func (cs *claimService) Approve(ctx context.Context, id uuid.UUID, approvedAmount float64, reason *string) (*types.Claim, error) {
	return cs.UpdateStatus(ctx, id, UpdateClaimStatusInput{
		Status:         types.ClaimStatusApproved,
		ApprovedAmount: &approvedAmount,
		Reason:         reason,
	})
}

func (cs *claimService) Deny(ctx context.Context, id uuid.UUID, reason string) (*types.Claim, error) {
	return cs.UpdateStatus(ctx, id, UpdateClaimStatusInput{
		Status:       types.ClaimStatusDenied,
		DenialReason: &reason,
		Reason:       &reason,
	})
}

func (cs *claimService) History(ctx context.Context, id uuid.UUID) ([]*types.ClaimStatusHistory, error) {
	if _, err := cs.GetClaim(ctx, id); err != nil {
		return nil, err
	}
	rows, err := cs.historyRepo.ListByClaimID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list claim history: %w", err)
	}
	return rows, nil
}
