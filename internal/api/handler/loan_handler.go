package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler/dto"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var stateError *apperrors.InvalidStateError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &stateError):
		status, message = http.StatusConflict, stateError.Error()
	case errors.Is(err, apperrors.ErrInvalidState):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getUUIDFromURL(r *http.Request, param string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s not found in URL path", param)
	}
	return uuid.Parse(idStr)
}

// CreateLoan handles the creation of a new loan application.
//
// @Summary Create a new loan
// @Description Creates a loan application in PENDING status for an existing customer. The monthly payment is computed from the principal, annual interest rate and term.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	customerID, _ := uuid.Parse(req.CustomerID)
	principal, _ := decimal.NewFromString(req.Principal)
	interestRate, _ := decimal.NewFromString(req.InterestRate)

	createdLoan, err := h.service.CreateLoan(r.Context(), customerID, principal, interestRate, req.TermMonths)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(createdLoan))
}

// GetLoan retrieves the details of a specific loan.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by its ID, including derived figures such as the total repayment amount and total interest.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(domainLoan))
}

// ListLoansByCustomer lists all loans belonging to a customer.
//
// @Summary List loans for a customer
// @Description Retrieves every loan application submitted by the given customer, most recent first.
// @Tags Loans
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {array} dto.LoanResponse "Loans successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoansByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	loans, err := h.service.ListLoansByCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// ApproveLoan approves a pending loan.
//
// @Summary Approve a loan
// @Description Moves a PENDING loan to APPROVED and stamps the approval date.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan successfully approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is not in an approvable status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/approve [post]
// @Security BearerAuth
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	approved, err := h.service.ApproveLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(approved))
}

// RejectLoan rejects a pending loan with a reason.
//
// @Summary Reject a loan
// @Description Moves a PENDING loan to REJECTED and records the rejection reason.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param request body dto.RejectLoanRequest true "Rejection request payload"
// @Success 200 {object} dto.LoanResponse "Loan successfully rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or missing reason"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is not in a rejectable status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/reject [post]
// @Security BearerAuth
func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RejectLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	rejected, err := h.service.RejectLoan(r.Context(), loanID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(rejected))
}

// ActivateLoan disburses an approved loan.
//
// @Summary Activate a loan
// @Description Moves an APPROVED loan to ACTIVE, after which it can receive payments.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan successfully activated"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is not in an activatable status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/activate [post]
// @Security BearerAuth
func (h *LoanHandler) ActivateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	activated, err := h.service.ActivateLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(activated))
}
