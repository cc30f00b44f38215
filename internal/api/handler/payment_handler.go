package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler/dto"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/payment"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type PaymentHandler struct {
	service payment.Service
	logger  *slog.Logger
}

func NewPaymentHandler(s payment.Service, l *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: s,
		logger:  l.With("component", "PaymentHandler"),
	}
}

// CreatePayment records a payment against a loan.
//
// @Summary Record a loan payment
// @Description Records a payment for a loan. The loan must be ACTIVE or APPROVED, the transaction reference must be unique, and the amount must not exceed the remaining balance. An APPROVED loan is activated by its first payment, and a loan whose balance reaches zero is completed.
// @Tags Payments
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param request body dto.CreatePaymentRequest true "Payment request payload"
// @Success 201 {object} dto.PaymentResponse "Payment successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload, or the amount exceeds the remaining balance"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate transaction reference, or the loan cannot receive payments"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [post]
// @Security BearerAuth
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.CreatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)

	created, err := h.service.CreatePayment(r.Context(), loanID, amount, req.TransactionReference, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(created))
}

// ListPayments lists the payments recorded against a loan.
//
// @Summary List loan payments
// @Description Retrieves all payments recorded for a loan, most recent first.
// @Tags Payments
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {array} dto.PaymentResponse "Payments successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	payments, err := h.service.GetPaymentsByLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}

// GetTotalPaid returns the sum of payments recorded against a loan.
//
// @Summary Retrieve total paid
// @Description Returns the total amount paid towards a loan. A loan with no payments reports zero.
// @Tags Payments
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.TotalPaidResponse "Total successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments/total [get]
// @Security BearerAuth
func (h *PaymentHandler) GetTotalPaid(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	total, err := h.service.GetTotalPaid(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.TotalPaidResponse{
		LoanID:    loanID.String(),
		TotalPaid: total.StringFixed(2),
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetBalance returns the remaining balance of a loan.
//
// @Summary Retrieve remaining balance
// @Description Returns the loan's total repayment amount minus the sum of recorded payments.
// @Tags Payments
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.BalanceResponse "Balance successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/balance [get]
// @Security BearerAuth
func (h *PaymentHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	loanID, err := getUUIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	balance, err := h.service.GetRemainingBalance(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.BalanceResponse{
		LoanID:           loanID.String(),
		RemainingBalance: balance.StringFixed(2),
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetPayment retrieves a single payment by ID.
//
// @Summary Retrieve payment details
// @Description Retrieves a recorded payment by its ID.
// @Tags Payments
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse "Payment successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment ID"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{paymentID} [get]
// @Security BearerAuth
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getUUIDFromURL(r, "paymentID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	p, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentResponse(p))
}
