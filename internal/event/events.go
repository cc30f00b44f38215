package event

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatusChangedEvent is emitted after a lifecycle transition commits.
type LoanStatusChangedEvent struct {
	LoanID     uuid.UUID `json:"loanId"`
	CustomerID uuid.UUID `json:"customerId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentRecordedEvent is emitted after a payment commits. Money fields are
// fixed-point strings to keep consumers away from float parsing.
type PaymentRecordedEvent struct {
	PaymentID            uuid.UUID `json:"paymentId"`
	LoanID               uuid.UUID `json:"loanId"`
	Amount               string    `json:"amount"`
	TransactionReference string    `json:"transactionReference"`
	RemainingBalance     string    `json:"remainingBalance"`
	Timestamp            time.Time `json:"timestamp"`
}
