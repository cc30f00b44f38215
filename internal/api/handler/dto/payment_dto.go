package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/payment"
)

type CreatePaymentRequest struct {
	Amount               string  `json:"amount"`
	TransactionReference string  `json:"transactionReference"`
	Notes                *string `json:"notes,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("amount must be a positive decimal")
	}
	if r.TransactionReference == "" {
		return fmt.Errorf("transactionReference is required")
	}
	return nil
}

type PaymentResponse struct {
	ID                   string    `json:"id"`
	LoanID               string    `json:"loanId"`
	Amount               string    `json:"amount"`
	PaymentDate          time.Time `json:"paymentDate"`
	TransactionReference string    `json:"transactionReference"`
	Notes                *string   `json:"notes,omitempty"`
}

type TotalPaidResponse struct {
	LoanID    string `json:"loanId"`
	TotalPaid string `json:"totalPaid"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID.String(),
		LoanID:               p.LoanID.String(),
		Amount:               p.Amount.StringFixed(2),
		PaymentDate:          p.PaymentDate,
		TransactionReference: p.TransactionReference,
		Notes:                p.Notes,
	}
}

func NewPaymentListResponse(payments []payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = NewPaymentResponse(&payments[i])
	}
	return out
}
