package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/refcheck"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/types"
)

type claimFixture struct {
	db          *gorm.DB
	service     ClaimService
	claimRepo   repos.ClaimRepo
	historyRepo repos.ClaimStatusHistoryRepo
	validator   *stubValidator
	ctx         context.Context
	orgID       uuid.UUID
	userID      uuid.UUID
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	db := newTestDB(t, &types.Claim{}, &types.ClaimStatusHistory{})
	log := testLogger()
	orgID := uuid.New()
	userID := uuid.New()
	validator := &stubValidator{result: validFor(orgID, types.PolicyStatusActive)}
	claimRepo := repos.NewClaimRepo(db, log)
	historyRepo := repos.NewClaimStatusHistoryRepo(db, log)
	return &claimFixture{
		db:          db,
		service:     NewClaimService(db, log, claimRepo, historyRepo, validator),
		claimRepo:   claimRepo,
		historyRepo: historyRepo,
		validator:   validator,
		ctx:         authedContext(orgID, userID),
		orgID:       orgID,
		userID:      userID,
	}
}

func (f *claimFixture) createClaim(t *testing.T) *types.Claim {
	t.Helper()
	claim, err := f.service.CreateClaim(f.ctx, CreateClaimInput{
		PolicyID:     uuid.New(),
		ClaimNumber:  "CLM-" + uuid.New().String()[:8],
		IncidentDate: time.Now().AddDate(0, 0, -3),
		Description:  "rear-end collision",
		ClaimAmount:  2500,
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	return claim
}

func (f *claimFixture) claimCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&types.Claim{}).Count(&n).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	return n
}

func (f *claimFixture) historyCount(t *testing.T, claimID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&types.ClaimStatusHistory{}).Where("claim_id = ?", claimID).Count(&n).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

func assertAPIError(t *testing.T, err error, wantStatus int) *apierr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if apiErr.Status != wantStatus {
		t.Fatalf("status = %d, want %d (err: %v)", apiErr.Status, wantStatus, err)
	}
	return apiErr
}

func TestCreateClaimStartsSubmitted(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	if claim.Status != types.ClaimStatusSubmitted {
		t.Errorf("status = %q, want %q", claim.Status, types.ClaimStatusSubmitted)
	}
	if claim.OrganizationID != f.orgID || claim.UserID != f.userID {
		t.Error("claim not stamped with caller identity")
	}
	if f.validator.lastToken != "test-bearer-token" {
		t.Errorf("bearer token not forwarded to policy validator, got %q", f.validator.lastToken)
	}
}

func TestCreateClaimIneligiblePolicy(t *testing.T) {
	f := newClaimFixture(t)
	f.validator.result = refcheck.Result{Valid: false}

	_, err := f.service.CreateClaim(f.ctx, CreateClaimInput{
		PolicyID:     uuid.New(),
		ClaimNumber:  "CLM-BADREF",
		IncidentDate: time.Now(),
		Description:  "x",
		ClaimAmount:  100,
	})
	assertAPIError(t, err, 400)
	if n := f.claimCount(t); n != 0 {
		t.Errorf("claim count = %d after rejected reference, want 0", n)
	}
}

func TestCreateClaimCrossTenantPolicy(t *testing.T) {
	f := newClaimFixture(t)
	f.validator.result = validFor(uuid.New(), types.PolicyStatusActive) // other org

	_, err := f.service.CreateClaim(f.ctx, CreateClaimInput{
		PolicyID:     uuid.New(),
		ClaimNumber:  "CLM-XTENANT",
		IncidentDate: time.Now(),
		Description:  "x",
		ClaimAmount:  100,
	})
	assertAPIError(t, err, 403)
	if n := f.claimCount(t); n != 0 {
		t.Errorf("claim count = %d after tenant violation, want 0", n)
	}
}

func TestCreateClaimDuplicateNumber(t *testing.T) {
	f := newClaimFixture(t)
	input := CreateClaimInput{
		PolicyID:     uuid.New(),
		ClaimNumber:  "CLM-SAME",
		IncidentDate: time.Now(),
		Description:  "x",
		ClaimAmount:  100,
	}
	if _, err := f.service.CreateClaim(f.ctx, input); err != nil {
		t.Fatalf("first CreateClaim: %v", err)
	}
	_, err := f.service.CreateClaim(f.ctx, input)
	assertAPIError(t, err, 400)
}

func TestUpdateStatusLegalTransition(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	reason := "assigned to adjuster"
	updated, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{
		Status: types.ClaimStatusUnderReview,
		Reason: &reason,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != types.ClaimStatusUnderReview {
		t.Errorf("status = %q, want UNDER_REVIEW", updated.Status)
	}

	rows, err := f.service.History(f.ctx, claim.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want 1", len(rows))
	}
	if rows[0].OldStatus != types.ClaimStatusSubmitted || rows[0].NewStatus != types.ClaimStatusUnderReview {
		t.Errorf("history row = %s -> %s", rows[0].OldStatus, rows[0].NewStatus)
	}
	if rows[0].ChangedBy != f.userID {
		t.Error("history row not attributed to caller")
	}
	if rows[0].Reason == nil || *rows[0].Reason != reason {
		t.Error("history row missing reason")
	}
}

func TestUpdateStatusIllegalTransitionLeavesNoTrace(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	_, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusPaid})
	assertAPIError(t, err, 400)

	reloaded, gErr := f.service.GetClaim(f.ctx, claim.ID)
	if gErr != nil {
		t.Fatalf("GetClaim: %v", gErr)
	}
	if reloaded.Status != types.ClaimStatusSubmitted {
		t.Errorf("status mutated to %q by rejected transition", reloaded.Status)
	}
	if n := f.historyCount(t, claim.ID); n != 0 {
		t.Errorf("history rows = %d after rejected transition, want 0", n)
	}
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	_, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: "LOST"})
	assertAPIError(t, err, 400)
}

func TestApproveRequiresPositiveAmount(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)
	if _, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusUnderReview}); err != nil {
		t.Fatalf("to UNDER_REVIEW: %v", err)
	}

	_, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusApproved})
	assertAPIError(t, err, 400)

	zero := 0.0
	_, err = f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{
		Status:         types.ClaimStatusApproved,
		ApprovedAmount: &zero,
	})
	assertAPIError(t, err, 400)

	if n := f.historyCount(t, claim.ID); n != 1 {
		t.Errorf("history rows = %d, want only the UNDER_REVIEW row", n)
	}
}

func TestDenyRequiresReason(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	_, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusDenied})
	assertAPIError(t, err, 400)

	denied, err := f.service.Deny(f.ctx, claim.ID, "not covered under policy terms")
	if err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if denied.Status != types.ClaimStatusDenied {
		t.Errorf("status = %q, want DENIED", denied.Status)
	}
	if denied.DenialReason == nil || *denied.DenialReason != "not covered under policy terms" {
		t.Error("denial reason not persisted")
	}
}

func TestClaimLifecycle(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	reason := "manual review"
	if _, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{
		Status: types.ClaimStatusUnderReview,
		Reason: &reason,
	}); err != nil {
		t.Fatalf("to UNDER_REVIEW: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	approved, err := f.service.Approve(f.ctx, claim.ID, 500.00, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.ApprovedAmount == nil || *approved.ApprovedAmount != 500.00 {
		t.Error("approved amount not persisted")
	}
	time.Sleep(5 * time.Millisecond)

	paid, err := f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusPaid})
	if err != nil {
		t.Fatalf("to PAID: %v", err)
	}
	if paid.Status != types.ClaimStatusPaid {
		t.Errorf("status = %q, want PAID", paid.Status)
	}

	rows, err := f.service.History(f.ctx, claim.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("history rows = %d, want 3", len(rows))
	}
	// Newest first.
	wantNew := []string{types.ClaimStatusPaid, types.ClaimStatusApproved, types.ClaimStatusUnderReview}
	for i, want := range wantNew {
		if rows[i].NewStatus != want {
			t.Errorf("rows[%d].NewStatus = %q, want %q", i, rows[i].NewStatus, want)
		}
	}

	// Terminal: nothing leaves PAID.
	_, err = f.service.UpdateStatus(f.ctx, claim.ID, UpdateClaimStatusInput{Status: types.ClaimStatusUnderReview})
	assertAPIError(t, err, 400)
}

func TestGetClaimScopedToOrganization(t *testing.T) {
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	otherCtx := authedContext(uuid.New(), uuid.New())
	_, err := f.service.GetClaim(otherCtx, claim.ID)
	assertAPIError(t, err, 404)
}

func TestUpdateStatusIfCurrentStaleExpected(t *testing.T) {
	// Repo-level check of the conditional write that serializes concurrent
	// transitions: a stale expected status affects zero rows.
	f := newClaimFixture(t)
	claim := f.createClaim(t)

	ok, err := f.claimRepo.UpdateStatusIfCurrent(f.ctx, nil, claim.ID, types.ClaimStatusUnderReview,
		map[string]any{"status": types.ClaimStatusApproved, "updated_at": time.Now()})
	if err != nil {
		t.Fatalf("UpdateStatusIfCurrent: %v", err)
	}
	if ok {
		t.Fatal("conditional update reported success against stale expected status")
	}

	reloaded, err := f.claimRepo.GetByID(f.ctx, nil, claim.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != types.ClaimStatusSubmitted {
		t.Errorf("status = %q, want unchanged SUBMITTED", reloaded.Status)
	}
}
