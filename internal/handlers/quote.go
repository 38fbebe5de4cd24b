package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/services"
)

type QuoteHandler struct {
	log          *logger.Logger
	quoteService services.QuoteService
}

func NewQuoteHandler(log *logger.Logger, quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		log:          log.With("handler", "QuoteHandler"),
		quoteService: quoteService,
	}
}

type createQuoteRequest struct {
	QuoteNumber    string     `json:"quoteNumber" binding:"required"`
	Type           string     `json:"type" binding:"required"`
	CoverageAmount float64    `json:"coverageAmount" binding:"required"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// POST /api/v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	quote, err := h.quoteService.CreateQuote(c.Request.Context(), services.CreateQuoteInput{
		QuoteNumber:    req.QuoteNumber,
		Type:           req.Type,
		CoverageAmount: req.CoverageAmount,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusCreated, quote)
}

type calculatePremiumRequest struct {
	Type           string  `json:"type" binding:"required"`
	CoverageAmount float64 `json:"coverageAmount" binding:"required"`
}

// POST /api/v1/quotes/calculate
func (h *QuoteHandler) CalculatePremium(c *gin.Context) {
	var req calculatePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	premium, err := h.quoteService.CalculatePremium(c.Request.Context(), req.Type, req.CoverageAmount)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, gin.H{"type": req.Type, "coverageAmount": req.CoverageAmount, "premium": premium})
}

// GET /api/v1/quotes
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.quoteService.ListQuotes(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, quotes)
}

// GET /api/v1/quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, quote)
}

// POST /api/v1/quotes/:id/convert
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	result, err := h.quoteService.Convert(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusCreated, result)
}
