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
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/payment"
	"github.com/jonnatanMerchan/LoanManagement/internal/infrastructure/monitoring"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

const paymentColumns = `id, loan_id, amount, payment_date, transaction_reference, notes, created_at`

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

func (r *PaymentRepository) InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	sql := `
        INSERT INTO payments (id, loan_id, amount, payment_date, transaction_reference, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := tx.Exec(ctx, sql, p.ID, p.LoanID, p.Amount, p.PaymentDate, p.TransactionReference, p.Notes)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "payment_id", p.ID, "loan_id", p.LoanID, "error", err)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Payment inserted in DB", "payment_id", p.ID, "loan_id", p.LoanID)
	return nil
}

func (r *PaymentRepository) TransactionReferenceExistsInTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_reference = $1)`

	var exists bool
	if err := tx.QueryRow(ctx, query, reference).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Failed to check transaction reference", "error", err)
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return exists, nil
}

func (r *PaymentRepository) GetTotalPaidInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (decimal.Decimal, error) {
	return r.sumPayments(ctx, tx, loanID)
}

func (r *PaymentRepository) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	status := "success"
	startTime := time.Now()

	total, err := r.sumPayments(ctx, r.db, loanID)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetTotalPaid", status, time.Since(startTime))

	return total, err
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PaymentRepository) sumPayments(ctx context.Context, q queryRower, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE loan_id = $1`

	var total pgtype.Numeric
	if err := q.QueryRow(ctx, query, loanID).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum payments", "loan_id", loanID, "error", err)
		return decimal.Zero, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return numericToDecimal(total), nil
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Payment not found", "payment_id", paymentID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get payment by ID", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return p, nil
}

func (r *PaymentRepository) GetPaymentsByLoanID(ctx context.Context, loanID uuid.UUID) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 ORDER BY payment_date ASC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		payments = append(payments, *p)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return payments, nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	var amount pgtype.Numeric

	err := row.Scan(
		&p.ID, &p.LoanID, &amount, &p.PaymentDate,
		&p.TransactionReference, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Amount = numericToDecimal(amount)
	return &p, nil
}
