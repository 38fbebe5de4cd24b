package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/refcheck"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/types"
)

type policyFixture struct {
	db        *gorm.DB
	service   PolicyService
	validator *stubValidator
	ctx       context.Context
	orgID     uuid.UUID
	userID    uuid.UUID
}

func newPolicyFixture(t *testing.T) *policyFixture {
	t.Helper()
	db := newTestDB(t, &types.Policy{}, &types.PolicyStatusHistory{})
	log := testLogger()
	orgID := uuid.New()
	userID := uuid.New()
	validator := &stubValidator{result: validFor(orgID, types.CustomerStatusActive)}
	return &policyFixture{
		db:        db,
		service:   NewPolicyService(db, log, repos.NewPolicyRepo(db, log), repos.NewPolicyStatusHistoryRepo(db, log), validator),
		validator: validator,
		ctx:       authedContext(orgID, userID),
		orgID:     orgID,
		userID:    userID,
	}
}

func (f *policyFixture) createPolicy(t *testing.T, status string) *types.Policy {
	t.Helper()
	now := time.Now()
	policy, err := f.service.CreatePolicy(f.ctx, CreatePolicyInput{
		PolicyNumber:   "POL-" + uuid.New().String()[:8],
		Type:           types.PolicyTypeAuto,
		Status:         status,
		Premium:        1200,
		CoverageAmount: 50000,
		StartDate:      now,
		EndDate:        now.AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	return policy
}

func (f *policyFixture) historyCount(t *testing.T, policyID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&types.PolicyStatusHistory{}).Where("policy_id = ?", policyID).Count(&n).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

func TestCreatePolicyDefaultsToPending(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, "")
	if policy.Status != types.PolicyStatusPending {
		t.Errorf("status = %q, want PENDING", policy.Status)
	}
	if policy.OrganizationID != f.orgID {
		t.Error("policy not stamped with caller organization")
	}
}

func TestCreatePolicyRejectsUnknownType(t *testing.T) {
	f := newPolicyFixture(t)
	_, err := f.service.CreatePolicy(f.ctx, CreatePolicyInput{
		PolicyNumber:   "POL-BADTYPE",
		Type:           "MARINE",
		Premium:        100,
		CoverageAmount: 1000,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
	})
	assertAPIError(t, err, 400)
}

func TestCreatePolicyValidatesCustomerReference(t *testing.T) {
	f := newPolicyFixture(t)
	customerID := uuid.New()

	policy, err := f.service.CreatePolicy(f.ctx, CreatePolicyInput{
		CustomerID:     &customerID,
		PolicyNumber:   "POL-WITHCUST",
		Type:           types.PolicyTypeHome,
		Premium:        5400,
		CoverageAmount: 300000,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	if policy.CustomerID == nil || *policy.CustomerID != customerID {
		t.Error("customer reference not persisted")
	}
	if f.validator.lastID != customerID {
		t.Error("validator asked about wrong customer")
	}

	// Ineligible customer.
	f.validator.result = refcheck.Result{Valid: false}
	badCustomer := uuid.New()
	_, err = f.service.CreatePolicy(f.ctx, CreatePolicyInput{
		CustomerID:     &badCustomer,
		PolicyNumber:   "POL-BADCUST",
		Type:           types.PolicyTypeHome,
		Premium:        100,
		CoverageAmount: 1000,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
	})
	assertAPIError(t, err, 400)

	// Cross-tenant customer.
	f.validator.result = validFor(uuid.New(), types.CustomerStatusActive)
	_, err = f.service.CreatePolicy(f.ctx, CreatePolicyInput{
		CustomerID:     &badCustomer,
		PolicyNumber:   "POL-XTENANT",
		Type:           types.PolicyTypeHome,
		Premium:        100,
		CoverageAmount: 1000,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
	})
	assertAPIError(t, err, 403)
}

func TestPolicyUpdateStatusWritesHistory(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, "")

	reason := "underwriting complete"
	updated, err := f.service.UpdateStatus(f.ctx, policy.ID, types.PolicyStatusActive, &reason)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != types.PolicyStatusActive {
		t.Errorf("status = %q, want ACTIVE", updated.Status)
	}

	rows, err := f.service.History(f.ctx, policy.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want 1", len(rows))
	}
	if rows[0].OldStatus != types.PolicyStatusPending || rows[0].NewStatus != types.PolicyStatusActive {
		t.Errorf("history row = %s -> %s", rows[0].OldStatus, rows[0].NewStatus)
	}
}

func TestPolicyUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, types.PolicyStatusActive)

	if _, err := f.service.UpdateStatus(f.ctx, policy.ID, types.PolicyStatusActive, nil); err != nil {
		t.Fatalf("UpdateStatus same status: %v", err)
	}
	if n := f.historyCount(t, policy.ID); n != 0 {
		t.Errorf("history rows = %d after no-op, want 0", n)
	}
}

func TestPolicyUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, "")

	_, err := f.service.UpdateStatus(f.ctx, policy.ID, "SUSPENDED", nil)
	assertAPIError(t, err, 400)
	if n := f.historyCount(t, policy.ID); n != 0 {
		t.Errorf("history rows = %d after rejection, want 0", n)
	}
}

func TestUpdatePolicyFieldsWithoutStatusChange(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, types.PolicyStatusActive)

	premium := 999.99
	sameStatus := types.PolicyStatusActive
	updated, err := f.service.UpdatePolicy(f.ctx, policy.ID, UpdatePolicyInput{
		Status:  &sameStatus,
		Premium: &premium,
	})
	if err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}
	if updated.Premium != premium {
		t.Errorf("premium = %v, want %v", updated.Premium, premium)
	}
	if n := f.historyCount(t, policy.ID); n != 0 {
		t.Errorf("history rows = %d for non-status update, want 0", n)
	}
}

func TestUpdatePolicyRoutesStatusChangeThroughHistory(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, types.PolicyStatusActive)

	cancelled := types.PolicyStatusCancelled
	reason := "customer request"
	updated, err := f.service.UpdatePolicy(f.ctx, policy.ID, UpdatePolicyInput{
		Status: &cancelled,
		Reason: &reason,
	})
	if err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}
	if updated.Status != types.PolicyStatusCancelled {
		t.Errorf("status = %q, want CANCELLED", updated.Status)
	}
	if n := f.historyCount(t, policy.ID); n != 1 {
		t.Errorf("history rows = %d, want 1", n)
	}
}

func TestDeletePolicyScopedToOrganization(t *testing.T) {
	f := newPolicyFixture(t)
	policy := f.createPolicy(t, "")

	otherCtx := authedContext(uuid.New(), uuid.New())
	err := f.service.DeletePolicy(otherCtx, policy.ID)
	assertAPIError(t, err, 404)

	if err := f.service.DeletePolicy(f.ctx, policy.ID); err != nil {
		t.Fatalf("DeletePolicy: %v", err)
	}
	_, err = f.service.GetPolicy(f.ctx, policy.ID)
	assertAPIError(t, err, 404)
}
