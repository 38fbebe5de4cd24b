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

type ClaimHandler struct {
	log          *logger.Logger
	claimService services.ClaimService
}

func NewClaimHandler(log *logger.Logger, claimService services.ClaimService) *ClaimHandler {
	return &ClaimHandler{
		log:          log.With("handler", "ClaimHandler"),
		claimService: claimService,
	}
}

type createClaimRequest struct {
	PolicyID     uuid.UUID `json:"policyId" binding:"required"`
	ClaimNumber  string    `json:"claimNumber" binding:"required"`
	IncidentDate time.Time `json:"incidentDate" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	ClaimAmount  float64   `json:"claimAmount" binding:"required"`
}

// POST /api/v1/claims
func (h *ClaimHandler) CreateClaim(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	claim, err := h.claimService.CreateClaim(c.Request.Context(), services.CreateClaimInput{
		PolicyID:     req.PolicyID,
		ClaimNumber:  req.ClaimNumber,
		IncidentDate: req.IncidentDate,
		Description:  req.Description,
		ClaimAmount:  req.ClaimAmount,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusCreated, claim)
}

// GET /api/v1/claims
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	claims, err := h.claimService.ListClaims(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, claims)
}

// GET /api/v1/claims/:id
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	claim, err := h.claimService.GetClaim(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, claim)
}

type updateClaimStatusRequest struct {
	Status         string   `json:"status" binding:"required"`
	ApprovedAmount *float64 `json:"approvedAmount"`
	DenialReason   *string  `json:"denialReason"`
	Reason         *string  `json:"reason"`
}

// PUT /api/v1/claims/:id/status
func (h *ClaimHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req updateClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	claim, err := h.claimService.UpdateStatus(c.Request.Context(), id, services.UpdateClaimStatusInput{
		Status:         req.Status,
		ApprovedAmount: req.ApprovedAmount,
		DenialReason:   req.DenialReason,
		Reason:         req.Reason,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, claim)
}

type approveClaimRequest struct {
	ApprovedAmount float64 `json:"approvedAmount" binding:"required"`
	Reason         *string `json:"reason"`
}

// POST /api/v1/claims/:id/approve
func (h *ClaimHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req approveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	claim, err := h.claimService.Approve(c.Request.Context(), id, req.ApprovedAmount, req.Reason)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, claim)
}

type denyClaimRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /api/v1/claims/:id/deny
func (h *ClaimHandler) Deny(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req denyClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	claim, err := h.claimService.Deny(c.Request.Context(), id, req.Reason)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, claim)
}

// GET /api/v1/claims/:id/history
func (h *ClaimHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	rows, err := h.claimService.History(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, rows)
}
