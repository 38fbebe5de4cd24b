package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/services"
)

type CustomerHandler struct {
	log             *logger.Logger
	customerService services.CustomerService
}

func NewCustomerHandler(log *logger.Logger, customerService services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		log:             log.With("handler", "CustomerHandler"),
		customerService: customerService,
	}
}

type createCustomerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

// POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), services.CreateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusCreated, customer)
}

// GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, customers)
}

// GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, customer)
}

type updateCustomerRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Status    *string `json:"status"`
}

// PUT /api/v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, services.UpdateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    req.Status,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondData(c, http.StatusOK, customer)
}

// DELETE /api/v1/customers/:id
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, apierr.InvalidInput(err))
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondMessage(c, http.StatusOK, "customer deleted")
}
