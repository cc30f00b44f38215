package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

const (
	MaxPrincipal  = 1_000_000
	MaxTermMonths = 360
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusActive   Status = "ACTIVE"
	StatusComplete Status = "COMPLETED"

	// StatusCancelled is declared for parity with the lifecycle model but no
	// operation transitions a loan into it.
	StatusCancelled Status = "CANCELLED"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)

	// CompletionTolerance is the residual balance under which a loan counts
	// as fully paid. Covers cent-level remainders left by rounding the
	// monthly payment.
	CompletionTolerance = decimal.New(1, -2)
)

type Loan struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Principal       decimal.Decimal
	InterestRate    decimal.Decimal
	TermMonths      int
	MonthlyPayment  decimal.Decimal
	Status          Status
	ApplicationDate time.Time
	ApprovalDate    *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewLoan creates a loan application in PENDING status and derives its
// monthly payment. Identity is generated here; the application timestamp is
// server-assigned.
func NewLoan(customerID uuid.UUID, principal, annualInterestRate decimal.Decimal, termMonths int) (*Loan, error) {
	if !principal.IsPositive() {
		return nil, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if principal.GreaterThan(decimal.NewFromInt(MaxPrincipal)) {
		return nil, apperrors.NewValidationError("principal", "cannot exceed 1,000,000")
	}
	if annualInterestRate.IsNegative() || annualInterestRate.GreaterThan(hundred) {
		return nil, apperrors.NewValidationError("interestRate", "must be between 0 and 100")
	}
	if termMonths < 1 || termMonths > MaxTermMonths {
		return nil, apperrors.NewValidationError("termMonths", "must be between 1 and 360 months")
	}

	l := &Loan{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Principal:       principal,
		InterestRate:    annualInterestRate,
		TermMonths:      termMonths,
		Status:          StatusPending,
		ApplicationDate: time.Now().UTC(),
	}
	l.CalculateMonthlyPayment()

	return l, nil
}

// CalculateMonthlyPayment derives the amortized monthly payment:
// i = rate/100/12; zero-rate loans pay principal/term, otherwise
// P*i*(1+i)^n / ((1+i)^n - 1). The result is rounded to 2 decimal places
// with decimal.Round, which rounds half away from zero.
func (l *Loan) CalculateMonthlyPayment() {
	if l.TermMonths <= 0 || !l.Principal.IsPositive() {
		l.MonthlyPayment = decimal.Zero
		return
	}

	term := decimal.NewFromInt(int64(l.TermMonths))
	monthlyRate := l.InterestRate.Div(hundred).Div(twelve)

	if monthlyRate.IsZero() {
		l.MonthlyPayment = l.Principal.Div(term).Round(2)
		return
	}

	compound := one.Add(monthlyRate).Pow(term)
	l.MonthlyPayment = l.Principal.Mul(monthlyRate).Mul(compound).
		Div(compound.Sub(one)).
		Round(2)
}

// TotalAmount is the total payable over the full term.
func (l *Loan) TotalAmount() decimal.Decimal {
	return l.MonthlyPayment.Mul(decimal.NewFromInt(int64(l.TermMonths)))
}

func (l *Loan) TotalInterest() decimal.Decimal {
	return l.TotalAmount().Sub(l.Principal)
}

// RemainingBalance computes the outstanding amount given the sum of payments
// recorded so far. Derived on demand, never stored.
func (l *Loan) RemainingBalance(totalPaid decimal.Decimal) decimal.Decimal {
	return l.TotalAmount().Sub(totalPaid)
}

// CanReceivePayment reports whether the ledger may record a payment against
// this loan. An APPROVED loan may take its first payment, which activates it.
func (l *Loan) CanReceivePayment() bool {
	return l.Status == StatusActive || l.Status == StatusApproved
}

// Approve moves a PENDING loan to APPROVED and stamps the approval time.
func (l *Loan) Approve() error {
	if l.Status != StatusPending {
		return apperrors.NewInvalidStateError("approve", string(l.Status))
	}
	now := time.Now().UTC()
	l.Status = StatusApproved
	l.ApprovalDate = &now
	return nil
}

// Reject moves a PENDING loan to the terminal REJECTED status and records
// the reason.
func (l *Loan) Reject(reason string) error {
	if l.Status != StatusPending {
		return apperrors.NewInvalidStateError("reject", string(l.Status))
	}
	if reason == "" {
		return apperrors.NewValidationError("reason", "rejection reason is required")
	}
	l.Status = StatusRejected
	l.RejectionReason = &reason
	return nil
}

// Activate moves an APPROVED loan to ACTIVE.
func (l *Loan) Activate() error {
	if l.Status != StatusApproved {
		return apperrors.NewInvalidStateError("activate", string(l.Status))
	}
	l.Status = StatusActive
	return nil
}

// AdvanceAfterPayment applies the compound post-payment transition as a
// single deterministic step: an APPROVED loan activates, and an active loan
// whose updated balance is within CompletionTolerance completes. It returns
// true when the status changed and must be persisted in the same
// transaction as the payment.
func (l *Loan) AdvanceAfterPayment(remainingBalance decimal.Decimal) bool {
	changed := false
	if l.Status == StatusApproved {
		l.Status = StatusActive
		changed = true
	}
	if l.Status == StatusActive && remainingBalance.LessThanOrEqual(CompletionTolerance) {
		l.Status = StatusComplete
		changed = true
	}
	return changed
}
