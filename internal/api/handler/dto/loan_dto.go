package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
)

type CreateLoanRequest struct {
	CustomerID   string `json:"customerId"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interestRate"`
	TermMonths   int    `json:"termMonths"`
}

func (r *CreateLoanRequest) Validate() error {
	if _, err := uuid.Parse(r.CustomerID); err != nil {
		return fmt.Errorf("invalid customerId: %w", err)
	}
	principal, err := decimal.NewFromString(r.Principal)
	if err != nil || !principal.IsPositive() {
		return fmt.Errorf("principal must be a positive decimal")
	}
	rate, err := decimal.NewFromString(r.InterestRate)
	if err != nil || rate.IsNegative() {
		return fmt.Errorf("interestRate must be a non-negative decimal")
	}
	if r.TermMonths <= 0 {
		return fmt.Errorf("termMonths must be positive")
	}
	return nil
}

type RejectLoanRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectLoanRequest) Validate() error {
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if len(r.Reason) > 500 {
		return fmt.Errorf("reason cannot exceed 500 characters")
	}
	return nil
}

type LoanResponse struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customerId"`
	Principal       string     `json:"principal"`
	InterestRate    string     `json:"interestRate"`
	TermMonths      int        `json:"termMonths"`
	MonthlyPayment  string     `json:"monthlyPayment"`
	TotalAmount     string     `json:"totalAmount"`
	TotalInterest   string     `json:"totalInterest"`
	Status          string     `json:"status"`
	ApplicationDate time.Time  `json:"applicationDate"`
	ApprovalDate    *time.Time `json:"approvalDate,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
}

type BalanceResponse struct {
	LoanID           string `json:"loanId"`
	RemainingBalance string `json:"remainingBalance"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:              l.ID.String(),
		CustomerID:      l.CustomerID.String(),
		Principal:       l.Principal.StringFixed(2),
		InterestRate:    l.InterestRate.String(),
		TermMonths:      l.TermMonths,
		MonthlyPayment:  l.MonthlyPayment.StringFixed(2),
		TotalAmount:     l.TotalAmount().StringFixed(2),
		TotalInterest:   l.TotalInterest().StringFixed(2),
		Status:          string(l.Status),
		ApplicationDate: l.ApplicationDate,
		ApprovalDate:    l.ApprovalDate,
		RejectionReason: l.RejectionReason,
	}
}

func NewLoanListResponse(loans []loan.Loan) []LoanResponse {
	out := make([]LoanResponse, len(loans))
	for i := range loans {
		out[i] = NewLoanResponse(&loans[i])
	}
	return out
}
