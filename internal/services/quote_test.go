package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/types"
)

type quoteFixture struct {
	db        *gorm.DB
	service   QuoteService
	quoteRepo repos.QuoteRepo
	creator   *stubPolicyCreator
	ctx       context.Context
	orgID     uuid.UUID
	userID    uuid.UUID
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()
	db := newTestDB(t, &types.Quote{})
	log := testLogger()
	orgID := uuid.New()
	userID := uuid.New()
	creator := &stubPolicyCreator{policy: &types.Policy{
		ID:     uuid.New(),
		Status: types.PolicyStatusActive,
	}}
	quoteRepo := repos.NewQuoteRepo(db, log)
	return &quoteFixture{
		db:        db,
		service:   NewQuoteService(db, log, quoteRepo, creator),
		quoteRepo: quoteRepo,
		creator:   creator,
		ctx:       authedContext(orgID, userID),
		orgID:     orgID,
		userID:    userID,
	}
}

func (f *quoteFixture) createQuote(t *testing.T, expiresAt *time.Time) *types.Quote {
	t.Helper()
	quote, err := f.service.CreateQuote(f.ctx, CreateQuoteInput{
		QuoteNumber:    "QTE-" + uuid.New().String()[:8],
		Type:           types.PolicyTypeHome,
		CoverageAmount: 300000,
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	return quote
}

func TestCreateQuoteComputesPremiumOnce(t *testing.T) {
	f := newQuoteFixture(t)
	quote := f.createQuote(t, nil)

	if quote.Premium != 5400.00 {
		t.Errorf("premium = %v, want 5400.00", quote.Premium)
	}
	if quote.Status != types.QuoteStatusActive {
		t.Errorf("status = %q, want ACTIVE", quote.Status)
	}
	// Default validity is 30 days.
	wantExpiry := time.Now().Add(30 * 24 * time.Hour)
	if d := quote.ExpiresAt.Sub(wantExpiry); d < -time.Minute || d > time.Minute {
		t.Errorf("expiresAt = %v, want ~%v", quote.ExpiresAt, wantExpiry)
	}
}

func TestCreateQuoteRejectsUnknownType(t *testing.T) {
	f := newQuoteFixture(t)
	_, err := f.service.CreateQuote(f.ctx, CreateQuoteInput{
		QuoteNumber:    "QTE-BAD",
		Type:           "MARINE",
		CoverageAmount: 1000,
	})
	assertAPIError(t, err, 400)
}

func TestConvertQuote(t *testing.T) {
	f := newQuoteFixture(t)
	quote := f.createQuote(t, nil)

	result, err := f.service.Convert(f.ctx, quote.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Quote.Status != types.QuoteStatusConverted {
		t.Errorf("quote status = %q, want CONVERTED", result.Quote.Status)
	}
	if result.Policy == nil {
		t.Fatal("conversion returned no policy")
	}
	if f.creator.calls != 1 {
		t.Errorf("policy creator calls = %d, want 1", f.creator.calls)
	}

	// The draft carries the quote's terms, priced at quote time.
	draft := f.creator.lastDraft
	if draft.Premium != quote.Premium || draft.CoverageAmount != quote.CoverageAmount || draft.Type != quote.Type {
		t.Errorf("draft %+v does not match quote terms", draft)
	}
	if draft.Status != types.PolicyStatusActive {
		t.Errorf("draft status = %q, want ACTIVE", draft.Status)
	}
	if !strings.HasPrefix(draft.PolicyNumber, "POL-") {
		t.Errorf("policy number %q missing POL- prefix", draft.PolicyNumber)
	}

	reloaded, err := f.service.GetQuote(f.ctx, quote.ID)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if reloaded.Status != types.QuoteStatusConverted {
		t.Errorf("stored status = %q, want CONVERTED", reloaded.Status)
	}
}

func TestConvertLeavesQuoteActiveOnDownstreamFailure(t *testing.T) {
	f := newQuoteFixture(t)
	quote := f.createQuote(t, nil)
	f.creator.err = errors.New("policy-service unavailable")

	_, err := f.service.Convert(f.ctx, quote.ID)
	if err == nil {
		t.Fatal("expected error when policy creation fails")
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		t.Errorf("downstream failure should not map to a client error, got status %d", apiErr.Status)
	}

	reloaded, gErr := f.service.GetQuote(f.ctx, quote.ID)
	if gErr != nil {
		t.Fatalf("GetQuote: %v", gErr)
	}
	if reloaded.Status != types.QuoteStatusActive {
		t.Errorf("status = %q after failed conversion, want ACTIVE for retry", reloaded.Status)
	}
}

func TestConvertRejectsNonActiveQuote(t *testing.T) {
	f := newQuoteFixture(t)
	quote := f.createQuote(t, nil)
	if _, err := f.service.Convert(f.ctx, quote.ID); err != nil {
		t.Fatalf("first Convert: %v", err)
	}

	_, err := f.service.Convert(f.ctx, quote.ID)
	apiErr := assertAPIError(t, err, 400)
	if apiErr.Code != "quote_not_convertible" {
		t.Errorf("code = %q, want quote_not_convertible", apiErr.Code)
	}
	if f.creator.calls != 1 {
		t.Errorf("policy creator called %d times, want 1", f.creator.calls)
	}
}

func TestConvertRejectsExpiredQuote(t *testing.T) {
	f := newQuoteFixture(t)
	past := time.Now().Add(-time.Hour)
	quote := f.createQuote(t, &past)

	_, err := f.service.Convert(f.ctx, quote.ID)
	assertAPIError(t, err, 400)
	if f.creator.calls != 0 {
		t.Error("policy creator called for an expired quote")
	}
}

func TestSweepExpired(t *testing.T) {
	f := newQuoteFixture(t)
	past := time.Now().Add(-time.Hour)
	stale := f.createQuote(t, &past)
	fresh := f.createQuote(t, nil)

	// A converted quote past its expiry must not be touched.
	converted := f.createQuote(t, &past)
	if _, err := f.quoteRepo.UpdateStatusIfCurrent(f.ctx, nil, converted.ID, types.QuoteStatusActive,
		map[string]any{"status": types.QuoteStatusConverted}); err != nil {
		t.Fatalf("mark converted: %v", err)
	}

	n, err := f.service.SweepExpired(f.ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}

	check := func(id uuid.UUID, want string) {
		t.Helper()
		q, err := f.quoteRepo.GetByID(f.ctx, nil, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if q.Status != want {
			t.Errorf("quote %s status = %q, want %q", id, q.Status, want)
		}
	}
	check(stale.ID, types.QuoteStatusExpired)
	check(fresh.ID, types.QuoteStatusActive)
	check(converted.ID, types.QuoteStatusConverted)
}

func TestGetQuoteScopedToOrganization(t *testing.T) {
	f := newQuoteFixture(t)
	quote := f.createQuote(t, nil)

	otherCtx := authedContext(uuid.New(), uuid.New())
	_, err := f.service.GetQuote(otherCtx, quote.ID)
	assertAPIError(t, err, 404)
}
