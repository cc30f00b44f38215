package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// InsertPaymentInTx writes the payment inside tx. The storage-level
	// uniqueness constraint on transaction_reference is the authoritative
	// duplicate guard; a violation surfaces as apperrors.ErrConflict.
	InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *Payment) error

	TransactionReferenceExistsInTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error)

	GetTotalPaidInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (decimal.Decimal, error)

	GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)

	GetPaymentByID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)

	GetPaymentsByLoanID(ctx context.Context, loanID uuid.UUID) ([]Payment, error)
}
