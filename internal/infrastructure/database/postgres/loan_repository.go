package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
	"github.com/jonnatanMerchan/LoanManagement/internal/infrastructure/monitoring"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

const loanColumns = `id, customer_id, principal, interest_rate, term_months, monthly_payment, status, application_date, approval_date, rejection_reason, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	sql := `
        INSERT INTO loans (id, customer_id, principal, interest_rate, term_months, monthly_payment, status, application_date, approval_date, rejection_reason, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING ` + loanColumns

	row := r.db.QueryRow(ctx, sql,
		newLoan.ID, newLoan.CustomerID, newLoan.Principal, newLoan.InterestRate,
		newLoan.TermMonths, newLoan.MonthlyPayment, newLoan.Status,
		newLoan.ApplicationDate, newLoan.ApprovalDate, newLoan.RejectionReason,
	)

	created, err := scanLoan(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	sql := `
        UPDATE loans
        SET status = $1, approval_date = $2, rejection_reason = $3, updated_at = NOW()
        WHERE id = $4`

	cmdTag, err := tx.Exec(ctx, sql, l.Status, l.ApprovalDate, l.RejectionReason, l.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan update affected zero rows", "loan_id", l.ID)
		return fmt.Errorf("%w: loan update affected zero rows", apperrors.ErrDatabase)
	}

	r.logger.InfoContext(ctx, "Loan updated in DB", "loan_id", l.ID, "status", l.Status)
	return nil
}

func (r *LoanRepository) ListLoansByCustomer(ctx context.Context, customerID uuid.UUID) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY application_date DESC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans by customer", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "customer_id", customerID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, *l)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func (r *LoanRepository) CountLoansByStatus(ctx context.Context) (map[loan.Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM loans GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count loans by status", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	counts := make(map[loan.Status]int64)
	for rows.Next() {
		var status loan.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan status count row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating status count rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return counts, nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	var principal, interestRate, monthlyPayment pgtype.Numeric

	err := row.Scan(
		&l.ID, &l.CustomerID, &principal, &interestRate, &l.TermMonths,
		&monthlyPayment, &l.Status, &l.ApplicationDate, &l.ApprovalDate,
		&l.RejectionReason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Principal = numericToDecimal(principal)
	l.InterestRate = numericToDecimal(interestRate)
	l.MonthlyPayment = numericToDecimal(monthlyPayment)
	return &l, nil
}
