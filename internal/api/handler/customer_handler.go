package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler/dto"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type CustomerHandler struct {
	service customer.Service
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.Service, l *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// CreateCustomer registers a new customer.
//
// @Summary Create a new customer
// @Description Registers a customer who can then apply for loans.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request payload"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), req.FirstName, req.LastName, req.Email, req.Phone, req.Address)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// GetCustomer retrieves a customer by ID.
//
// @Summary Retrieve customer details
// @Description Retrieves a customer by their ID.
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	c, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(c))
}

// ListCustomers lists all active customers.
//
// @Summary List customers
// @Description Retrieves every customer that has not been deactivated.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Customers successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

// DeactivateCustomer soft-deletes a customer.
//
// @Summary Deactivate a customer
// @Description Marks a customer as deleted. Their loan history is retained.
// @Tags Customers
// @Param customerID path string true "Customer ID"
// @Success 204 "Customer successfully deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeactivateCustomer(r.Context(), customerID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
