package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/dto"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/middleware"
	"github.com/yukikurage/project-progress-api/internal/services"
	"github.com/yukikurage/project-progress-api/internal/utils"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomer registers a client company
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type CreateCustomerRequest struct {
		Name         string `json:"name" binding:"required"`
		ContactEmail string `json:"contact_email" binding:"omitempty,email"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.CreateCustomer(services.CreateCustomerInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
		CreatorID:    userID,
	})
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomerDTO(*customer))
}

// ListCustomers returns customers ordered by name
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	customers, total, err := h.customerService.ListCustomers(params.Page, params.Limit)
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	items := make([]dto.CustomerDTO, len(customers))
	for i, customer := range customers {
		items[i] = dto.ToCustomerDTO(customer)
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetCustomer returns a customer with the caller's projects for it
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetCustomer(id, userID)
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	projects := make([]dto.ProjectDTO, len(customer.Projects))
	for i, p := range customer.Projects {
		projects[i] = dto.ToProjectDTO(p, false)
	}

	c.JSON(http.StatusOK, gin.H{
		"customer": dto.ToCustomerDTO(*customer),
		"projects": projects,
	})
}

// UpdateCustomer changes a customer's contact details
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		apierrors.InvalidFormat(c, "Invalid customer ID")
		return
	}

	type UpdateCustomerRequest struct {
		Name         *string `json:"name"`
		ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, userID, services.UpdateCustomerInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

func respondCustomerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCustomerName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCustomerNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCustomerPermission):
		apierrors.InsufficientPermissions(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
