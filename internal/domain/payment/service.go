package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
	"github.com/jonnatanMerchan/LoanManagement/internal/event"
	"github.com/jonnatanMerchan/LoanManagement/internal/infrastructure/monitoring"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

// Service is the payment ledger: it validates and records payments and
// drives the loan's post-payment status transitions.
type Service interface {
	CreatePayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, transactionReference string, notes *string) (*Payment, error)

	GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error)

	GetPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]Payment, error)

	// GetTotalPaid returns zero for a loan with no payments, not an error.
	GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)

	GetRemainingBalance(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

type ledgerService struct {
	repo      Repository
	loanRepo  loan.Repository
	publisher event.Publisher
	logger    *slog.Logger
}

func NewPaymentService(repo Repository, loanRepo loan.Repository, pub event.Publisher, logger *slog.Logger) Service {
	if pub == nil {
		pub = event.NewNoopPublisher()
	}
	return &ledgerService{
		repo:      repo,
		loanRepo:  loanRepo,
		publisher: pub,
		logger:    logger.With("component", "paymentService"),
	}
}

// CreatePayment records a payment against a loan. The whole flow runs in a
// single transaction holding a row-level lock on the loan: duplicate
// reference check, overpayment check, insert, and any status advance commit
// or roll back together.
func (s *ledgerService) CreatePayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, transactionReference string, notes *string) (p *Payment, err error) {
	s.logger.InfoContext(ctx, "Recording payment", "loanID", loanID, "amount", amount.StringFixed(2), "transactionReference", transactionReference)

	p, err = NewPayment(loanID, amount, transactionReference, notes)
	if err != nil {
		s.logger.WarnContext(ctx, "Payment validation failed", slog.Any("error", err))
		return nil, err
	}

	tx, err := s.loanRepo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "Panic during payment processing", "loanID", loanID, "panic", rec)
			_ = s.loanRepo.RollbackTx(ctx, tx)
			panic(rec)
		}
		if err != nil {
			_ = s.loanRepo.RollbackTx(ctx, tx)
		}

		status := "success"
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrConflict):
			status = "failure_duplicate"
		case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
			status = "failure_amount"
		case errors.Is(err, apperrors.ErrInvalidState):
			status = "failure_state"
		case errors.Is(err, apperrors.ErrNotFound):
			status = "failure_not_found"
		default:
			status = "failure_internal"
		}
		monitoring.RecordPayment(status)
	}()

	l, err := s.loanRepo.GetLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to load loan for payment", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not load loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}

	if !l.CanReceivePayment() {
		s.logger.WarnContext(ctx, "Loan cannot receive payments", "loanID", loanID, "status", l.Status)
		return nil, apperrors.NewInvalidStateError("pay", string(l.Status))
	}

	// Fast rejection path; the unique constraint at insert time is the
	// authoritative one under concurrent writers.
	exists, err := s.repo.TransactionReferenceExistsInTx(ctx, tx, p.TransactionReference)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check transaction reference", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not check transaction reference: %v", apperrors.ErrInternalServer, err)
	}
	if exists {
		s.logger.WarnContext(ctx, "Duplicate transaction reference", "transactionReference", p.TransactionReference)
		return nil, fmt.Errorf("%w: transaction reference '%s' already exists", apperrors.ErrConflict, p.TransactionReference)
	}

	totalPaid, err := s.repo.GetTotalPaidInTx(ctx, tx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sum recorded payments", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not compute total paid: %v", apperrors.ErrInternalServer, err)
	}

	remaining := l.RemainingBalance(totalPaid)
	if p.Amount.GreaterThan(remaining) {
		s.logger.WarnContext(ctx, "Payment exceeds remaining balance", "loanID", loanID, "amount", p.Amount.StringFixed(2), "remaining", remaining.StringFixed(2))
		return nil, fmt.Errorf("%w: payment amount %s exceeds remaining balance %s",
			apperrors.ErrInvalidArgument, p.Amount.StringFixed(2), remaining.StringFixed(2))
	}

	if err = s.repo.InsertPaymentInTx(ctx, tx, p); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.WarnContext(ctx, "Duplicate transaction reference rejected by constraint", "transactionReference", p.TransactionReference)
			return nil, fmt.Errorf("%w: transaction reference '%s' already exists", apperrors.ErrConflict, p.TransactionReference)
		}
		s.logger.ErrorContext(ctx, "Failed to insert payment", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not insert payment: %v", apperrors.ErrInternalServer, err)
	}

	oldStatus := l.Status
	remaining = remaining.Sub(p.Amount)
	if l.AdvanceAfterPayment(remaining) {
		if err = s.loanRepo.UpdateLoanInTx(ctx, tx, l); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist loan status after payment", "loanID", loanID, slog.Any("error", err))
			return nil, fmt.Errorf("%w: could not update loan status: %v", apperrors.ErrInternalServer, err)
		}
	}

	if err = s.loanRepo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit payment transaction", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	if l.Status != oldStatus {
		monitoring.RecordLoanTransition(string(oldStatus), string(l.Status))
	}
	s.publishPaymentRecorded(ctx, p, remaining)

	s.logger.InfoContext(ctx, "Payment recorded", "paymentID", p.ID, "loanID", loanID, "loanStatus", l.Status, "remaining", remaining.StringFixed(2))
	return p, nil
}

func (s *ledgerService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Payment not found", "paymentID", paymentID)
			return nil, fmt.Errorf("%w: payment %s not found", apperrors.ErrNotFound, paymentID)
		}
		s.logger.ErrorContext(ctx, "Failed to get payment", "paymentID", paymentID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get payment %s: %v", apperrors.ErrInternalServer, paymentID, err)
	}
	return p, nil
}

func (s *ledgerService) GetPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]Payment, error) {
	payments, err := s.repo.GetPaymentsByLoanID(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list payments for loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list payments for loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return payments, nil
}

func (s *ledgerService) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.repo.GetTotalPaid(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get total paid", "loanID", loanID, slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to get total paid for loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return total, nil
}

func (s *ledgerService) GetRemainingBalance(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	l, err := s.loanRepo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to load loan for balance", "loanID", loanID, slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to load loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}

	totalPaid, err := s.repo.GetTotalPaid(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get total paid", "loanID", loanID, slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to get total paid for loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}

	return l.RemainingBalance(totalPaid), nil
}

func (s *ledgerService) publishPaymentRecorded(ctx context.Context, p *Payment, remaining decimal.Decimal) {
	evt := event.PaymentRecordedEvent{
		PaymentID:            p.ID,
		LoanID:               p.LoanID,
		Amount:               p.Amount.StringFixed(2),
		TransactionReference: p.TransactionReference,
		RemainingBalance:     remaining.StringFixed(2),
		Timestamp:            time.Now().UTC(),
	}
	if err := s.publisher.PublishPaymentRecorded(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish payment recorded event", "paymentID", p.ID, slog.Any("error", err))
	}
}
