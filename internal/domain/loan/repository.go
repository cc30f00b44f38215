package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	// GetLoanForUpdate loads a loan inside tx holding a row-level exclusive
	// lock, serializing concurrent transitions on the same loan.
	GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (*Loan, error)

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error

	ListLoansByCustomer(ctx context.Context, customerID uuid.UUID) ([]Loan, error)

	CountLoansByStatus(ctx context.Context) (map[Status]int64, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
