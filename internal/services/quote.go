package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/refcheck"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/requestdata"
	"github.com/harborwell/insurance-backend/internal/types"
)

const defaultQuoteValidity = 30 * 24 * time.Hour

type CreateQuoteInput struct {
	QuoteNumber    string
	Type           string
	CoverageAmount float64
	ExpiresAt      *time.Time
}

// ConversionResult is what the convert workflow returns: the mutated quote
// and the policy created by policy-service.
type ConversionResult struct {
	Quote  *types.Quote  `json:"quote"`
	Policy *types.Policy `json:"policy"`
}

type QuoteService interface {
	CreateQuote(ctx context.Context, input CreateQuoteInput) (*types.Quote, error)
	CalculatePremium(ctx context.Context, policyType string, coverageAmount float64) (float64, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*types.Quote, error)
	ListQuotes(ctx context.Context, status string) ([]*types.Quote, error)
	Convert(ctx context.Context, id uuid.UUID) (*ConversionResult, error)
	SweepExpired(ctx context.Context) (int64, error)
	StartSweeper(ctx context.Context, interval time.Duration)
}

type quoteService struct {
	db            *gorm.DB
	log           *logger.Logger
	quoteRepo     repos.QuoteRepo
	policyCreator refcheck.PolicyCreator
}

func NewQuoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	quoteRepo repos.QuoteRepo,
	policyCreator refcheck.PolicyCreator,
) QuoteService {
	return &quoteService{
		db:            db,
		log:           baseLog.With("service", "QuoteService"),
		quoteRepo:     quoteRepo,
		policyCreator: policyCreator,
	}
}

func (qs *quoteService) CreateQuote(ctx context.Context, input CreateQuoteInput) (*types.Quote, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	premium, err := CalculatePremium(input.Type, input.CoverageAmount)
	if err != nil {
		return nil, apierr.InvalidInput(err)
	}

	now := time.Now()
	expiresAt := now.Add(defaultQuoteValidity)
	if input.ExpiresAt != nil {
		expiresAt = *input.ExpiresAt
	}
	quote := &types.Quote{
		ID:             uuid.New(),
		OrganizationID: rd.OrganizationID,
		UserID:         rd.UserID,
		QuoteNumber:    input.QuoteNumber,
		Type:           input.Type,
		Status:         types.QuoteStatusActive,
		CoverageAmount: input.CoverageAmount,
		Premium:        premium,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := qs.quoteRepo.Create(ctx, nil, quote); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Duplicate("quote", "quote number")
		}
		qs.log.Error("CreateQuote failed", "error", err, "quote_number", input.QuoteNumber)
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return quote, nil
}

func (qs *quoteService) CalculatePremium(ctx context.Context, policyType string, coverageAmount float64) (float64, error) {
	premium, err := CalculatePremium(policyType, coverageAmount)
	if err != nil {
		return 0, apierr.InvalidInput(err)
	}
	return premium, nil
}

func (qs *quoteService) GetQuote(ctx context.Context, id uuid.UUID) (*types.Quote, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	quote, err := qs.quoteRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("quote")
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if quote.OrganizationID != rd.OrganizationID {
		return nil, apierr.NotFound("quote")
	}
	return quote, nil
}

func (qs *quoteService) ListQuotes(ctx context.Context, status string) ([]*types.Quote, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	quotes, err := qs.quoteRepo.ListByOrg(ctx, nil, rd.OrganizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

// Convert turns an eligible quote into a policy via policy-service's own
// create workflow. The quote is only marked CONVERTED after the downstream
// call succeeds; a failed call leaves it ACTIVE so conversion can be retried.
// This path writes no quote status history.
func (qs *quoteService) Convert(ctx context.Context, id uuid.UUID) (*ConversionResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	quote, err := qs.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if quote.Status != types.QuoteStatusActive || now.After(quote.ExpiresAt) {
		return nil, apierr.New(400, "quote_not_convertible",
			fmt.Errorf("quote is not active or has expired"))
	}

	policy, err := qs.policyCreator.CreatePolicy(ctx, rd.TokenString, refcheck.PolicyDraft{
		PolicyNumber:   generatePolicyNumber(now),
		Type:           quote.Type,
		Status:         types.PolicyStatusActive,
		Premium:        quote.Premium,
		CoverageAmount: quote.CoverageAmount,
		StartDate:      now,
		EndDate:        now.AddDate(1, 0, 0),
	})
	if err != nil {
		qs.log.Error("Quote conversion: policy creation failed, quote left ACTIVE",
			"error", err, "quote_id", quote.ID)
		return nil, fmt.Errorf("create policy for quote conversion: %w", err)
	}

	ok, err := qs.quoteRepo.UpdateStatusIfCurrent(ctx, nil, quote.ID, types.QuoteStatusActive,
		map[string]any{"status": types.QuoteStatusConverted, "updated_at": now})
	if err != nil {
		return nil, fmt.Errorf("mark quote converted: %w", err)
	}
	if !ok {
		// A concurrent conversion or sweep got there first.
		return nil, apierr.New(400, "quote_not_convertible",
			fmt.Errorf("quote is no longer active"))
	}

	quote.Status = types.QuoteStatusConverted
	quote.UpdatedAt = now
	return &ConversionResult{Quote: quote, Policy: policy}, nil
}

// SweepExpired marks past-due ACTIVE quotes EXPIRED. No history rows: quotes
// carry no status history ledger.
func (qs *quoteService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := qs.quoteRepo.MarkExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark expired quotes: %w", err)
	}
	if n > 0 {
		qs.log.Info("Expired quotes swept", "count", n)
	}
	return n, nil
}

func (qs *quoteService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := qs.SweepExpired(ctx); err != nil {
					qs.log.Warn("Quote expiry sweep failed", "error", err)
				}
			}
		}
	}()
}

func generatePolicyNumber(now time.Time) string {
	return fmt.Sprintf("POL-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
}
