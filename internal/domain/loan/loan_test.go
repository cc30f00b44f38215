package loan

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return d
}

func newTestLoan(t *testing.T, principal, rate string, termMonths int) *Loan {
	t.Helper()
	l, err := NewLoan(uuid.New(), mustDecimal(t, principal), mustDecimal(t, rate), termMonths)
	if err != nil {
		t.Fatalf("NewLoan failed: %v", err)
	}
	return l
}

func TestNewLoanDefaults(t *testing.T) {
	customerID := uuid.New()
	l, err := NewLoan(customerID, mustDecimal(t, "10000"), mustDecimal(t, "12"), 12)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, customerID, l.CustomerID)
	assert.Equal(t, StatusPending, l.Status)
	assert.False(t, l.ApplicationDate.IsZero())
	assert.Nil(t, l.ApprovalDate)
	assert.Nil(t, l.RejectionReason)
}

func TestNewLoanValidation(t *testing.T) {
	customerID := uuid.New()

	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		wantField string
	}{
		{"zero principal", "0", "5", 12, "principal"},
		{"negative principal", "-100", "5", 12, "principal"},
		{"principal above cap", "1000000.01", "5", 12, "principal"},
		{"negative rate", "1000", "-1", 12, "interestRate"},
		{"rate above 100", "1000", "100.5", 12, "interestRate"},
		{"zero term", "1000", "5", 0, "termMonths"},
		{"term above cap", "1000", "5", 361, "termMonths"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoan(customerID, mustDecimal(t, tc.principal), mustDecimal(t, tc.rate), tc.term)

			var validationErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.wantField, validationErr.Field)
		})
	}
}

func TestCalculateMonthlyPaymentZeroRate(t *testing.T) {
	l := newTestLoan(t, "1200", "0", 12)
	assert.Equal(t, "100.00", l.MonthlyPayment.StringFixed(2))
}

func TestCalculateMonthlyPaymentAmortized(t *testing.T) {
	// 10000 at 12% over 12 months: i = 0.01, payment = P*i*(1+i)^n/((1+i)^n-1).
	l := newTestLoan(t, "10000", "12", 12)

	principal := mustDecimal(t, "10000")
	monthlyRate := mustDecimal(t, "12").Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	compound := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(12))
	want := principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1))).Round(2)

	assert.True(t, l.MonthlyPayment.Equal(want),
		"monthly payment %s does not match amortization formula result %s",
		l.MonthlyPayment.StringFixed(2), want.StringFixed(2))
}

func TestCalculateMonthlyPaymentBoundaryCap(t *testing.T) {
	l := newTestLoan(t, "1000000", "100", 360)
	assert.True(t, l.MonthlyPayment.IsPositive())
}

func TestDerivedFigures(t *testing.T) {
	l := newTestLoan(t, "10000", "12", 12)

	total := l.TotalAmount()
	interest := l.TotalInterest()

	assert.Equal(t, l.MonthlyPayment.Mul(decimal.NewFromInt(12)), total)
	assert.True(t, total.Sub(l.Principal).Equal(interest))

	assert.True(t, l.RemainingBalance(decimal.Zero).Equal(total))
	paid := mustDecimal(t, "888.49")
	assert.True(t, l.RemainingBalance(paid).Equal(total.Sub(paid)))
}

func TestApprove(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)

	err := l.Approve()

	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, l.Status)
	assert.NotNil(t, l.ApprovalDate)
}

func TestApproveOnlyFromPending(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)
	assert.NoError(t, l.Approve())

	err := l.Approve()

	var stateErr *apperrors.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, StatusApproved, l.Status)
}

func TestReject(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)

	err := l.Reject("insufficient credit history")

	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, l.Status)
	assert.Equal(t, "insufficient credit history", *l.RejectionReason)
}

func TestRejectRequiresReason(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)

	err := l.Reject("")

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, StatusPending, l.Status)
}

func TestRejectAfterApproveFails(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)
	assert.NoError(t, l.Approve())

	err := l.Reject("too late")

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, StatusApproved, l.Status)
	assert.Nil(t, l.RejectionReason)
}

func TestActivate(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)
	assert.NoError(t, l.Approve())

	err := l.Activate()

	assert.NoError(t, err)
	assert.Equal(t, StatusActive, l.Status)
}

func TestActivateOnlyFromApproved(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)

	err := l.Activate()

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, StatusPending, l.Status)
}

func TestCanReceivePayment(t *testing.T) {
	l := newTestLoan(t, "1000", "5", 12)
	assert.False(t, l.CanReceivePayment())

	assert.NoError(t, l.Approve())
	assert.True(t, l.CanReceivePayment())

	assert.NoError(t, l.Activate())
	assert.True(t, l.CanReceivePayment())

	l.Status = StatusComplete
	assert.False(t, l.CanReceivePayment())
}

func TestAdvanceAfterPaymentActivates(t *testing.T) {
	l := newTestLoan(t, "1200", "0", 12)
	assert.NoError(t, l.Approve())

	changed := l.AdvanceAfterPayment(mustDecimal(t, "1100.00"))

	assert.True(t, changed)
	assert.Equal(t, StatusActive, l.Status)
}

func TestAdvanceAfterPaymentCompletes(t *testing.T) {
	l := newTestLoan(t, "1200", "0", 12)
	assert.NoError(t, l.Approve())
	assert.NoError(t, l.Activate())

	tests := []struct {
		name      string
		remaining string
		want      Status
	}{
		{"zero balance", "0", StatusComplete},
		{"balance within tolerance", "0.01", StatusComplete},
		{"negative residual", "-0.005", StatusComplete},
		{"balance above tolerance", "0.02", StatusActive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loanCopy := *l
			loanCopy.AdvanceAfterPayment(mustDecimal(t, tc.remaining))
			assert.Equal(t, tc.want, loanCopy.Status)
		})
	}
}

func TestAdvanceAfterPaymentActivatesAndCompletes(t *testing.T) {
	// A single payment can settle an APPROVED loan in full. Both steps of the
	// compound transition apply in one call.
	l := newTestLoan(t, "1200", "0", 12)
	assert.NoError(t, l.Approve())

	changed := l.AdvanceAfterPayment(decimal.Zero)

	assert.True(t, changed)
	assert.Equal(t, StatusComplete, l.Status)
}

func TestAdvanceAfterPaymentNoChange(t *testing.T) {
	l := newTestLoan(t, "1200", "0", 12)
	assert.NoError(t, l.Approve())
	assert.NoError(t, l.Activate())

	changed := l.AdvanceAfterPayment(mustDecimal(t, "600.00"))

	assert.False(t, changed)
	assert.Equal(t, StatusActive, l.Status)
}
