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

type PolicyHandler struct {
	log           *logger.Logger
	policyService services.PolicyService
}

func NewPolicyHandler(log *logger.Logger, policyService services.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		log:           log.With("handler", "PolicyHandler"),
		policyService: policyService,
	}
}

type createPolicyRequest struct {
	CustomerID     *uuid.UUID `json:"customerId"`
	PolicyNumber   string     `json:"policyNumber" binding:"required"`
	Type           string     `json:"type" binding:"required"`
	Status         string     `json:"status"`
	Premium        float64    `json:"premium" binding:"required"`
	CoverageAmount float64    `json:"coverageAmount" binding:"required"`
	StartDate      time.Time  `json:"startDate" binding:"required"`
	EndDate        time.Time  `json:"endDate" binding:"required"`
}

// POST /api/v1/policies
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	var req createPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	policy, err := h.policyService.CreatePolicy(c.Request.Context(), services.CreatePolicyInput{
		CustomerID:     req.CustomerID,
		PolicyNumber:   req.PolicyNumber,
		Type:           req.Type,
		Status:         req.Status,
		Premium:        req.Premium,
		CoverageAmount: req.CoverageAmount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusCreated, policy)
}

// GET /api/v1/policies
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	policies, err := h.policyService.ListPolicies(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, policies)
}

// GET /api/v1/policies/:id
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	policy, err := h.policyService.GetPolicy(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, policy)
}

type updatePolicyRequest struct {
	Status         *string    `json:"status"`
	Premium        *float64   `json:"premium"`
	CoverageAmount *float64   `json:"coverageAmount"`
	EndDate        *time.Time `json:"endDate"`
	Reason         *string    `json:"reason"`
}

// PUT /api/v1/policies/:id
func (h *PolicyHandler) UpdatePolicy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req updatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	policy, err := h.policyService.UpdatePolicy(c.Request.Context(), id, services.UpdatePolicyInput{
		Status:         req.Status,
		Premium:        req.Premium,
		CoverageAmount: req.CoverageAmount,
		EndDate:        req.EndDate,
		Reason:         req.Reason,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, policy)
}

type updatePolicyStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

// PUT /api/v1/policies/:id/status
func (h *PolicyHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req updatePolicyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	policy, err := h.policyService.UpdateStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, policy)
}

// DELETE /api/v1/policies/:id
func (h *PolicyHandler) DeletePolicy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	if err := h.policyService.DeletePolicy(c.Request.Context(), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondMessage(c, http.StatusOK, "policy deleted")
}

// GET /api/v1/policies/:id/history
func (h *PolicyHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	rows, err := h.policyService.History(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, rows)
}
