package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

// Payment is an immutable ledger record. The payment timestamp is assigned
// at creation; a caller-supplied one is never honored.
type Payment struct {
	ID                   uuid.UUID
	LoanID               uuid.UUID
	Amount               decimal.Decimal
	PaymentDate          time.Time
	TransactionReference string
	Notes                *string
	CreatedAt            time.Time
}

func NewPayment(loanID uuid.UUID, amount decimal.Decimal, transactionReference string, notes *string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "must be greater than zero")
	}
	transactionReference = strings.TrimSpace(transactionReference)
	if transactionReference == "" {
		return nil, apperrors.NewValidationError("transactionReference", "transaction reference is required")
	}

	return &Payment{
		ID:                   uuid.New(),
		LoanID:               loanID,
		Amount:               amount,
		PaymentDate:          time.Now().UTC(),
		TransactionReference: transactionReference,
		Notes:                notes,
	}, nil
}
