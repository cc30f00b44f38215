package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
	"github.com/jonnatanMerchan/LoanManagement/internal/event"
	"github.com/jonnatanMerchan/LoanManagement/internal/infrastructure/monitoring"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type Service interface {
	CreateLoan(ctx context.Context, customerID uuid.UUID, principal, annualInterestRate decimal.Decimal, termMonths int) (*Loan, error)

	GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	ListLoansByCustomer(ctx context.Context, customerID uuid.UUID) ([]Loan, error)

	ApproveLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	RejectLoan(ctx context.Context, loanID uuid.UUID, reason string) (*Loan, error)

	ActivateLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)
}

type loanService struct {
	repo            Repository
	customerService customer.Service
	publisher       event.Publisher
	logger          *slog.Logger
}

func NewLoanService(repo Repository, cs customer.Service, pub event.Publisher, logger *slog.Logger) Service {
	if pub == nil {
		pub = event.NewNoopPublisher()
	}
	return &loanService{
		repo:            repo,
		customerService: cs,
		publisher:       pub,
		logger:          logger.With("component", "loanService"),
	}
}

func (s *loanService) CreateLoan(ctx context.Context, customerID uuid.UUID, principal, annualInterestRate decimal.Decimal, termMonths int) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan application", "customerID", customerID)

	exists, err := s.customerService.Exists(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to verify customer existence", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}
	if !exists {
		s.logger.WarnContext(ctx, "Customer not found", "customerID", customerID)
		return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
	}

	newLoan, err := NewLoan(customerID, principal, annualInterestRate, termMonths)
	if err != nil {
		s.logger.WarnContext(ctx, "Loan validation failed", slog.Any("error", err))
		return nil, err
	}

	created, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save loan: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanCreated()
	s.logger.InfoContext(ctx, "Loan application created", "loanID", created.ID, "monthlyPayment", created.MonthlyPayment.StringFixed(2))
	return created, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *loanService) ListLoansByCustomer(ctx context.Context, customerID uuid.UUID) ([]Loan, error) {
	loans, err := s.repo.ListLoansByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans for customer", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans for customer %s: %v", apperrors.ErrInternalServer, customerID, err)
	}
	return loans, nil
}

func (s *loanService) ApproveLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.transition(ctx, loanID, "approve", func(l *Loan) error {
		return l.Approve()
	})
}

func (s *loanService) RejectLoan(ctx context.Context, loanID uuid.UUID, reason string) (*Loan, error) {
	return s.transition(ctx, loanID, "reject", func(l *Loan) error {
		return l.Reject(reason)
	})
}

func (s *loanService) ActivateLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.transition(ctx, loanID, "activate", func(l *Loan) error {
		return l.Activate()
	})
}

// transition runs a lifecycle operation under a row-level lock so concurrent
// operations on the same loan cannot interleave. The loan is either left in
// its prior state or fully moved to the next one.
func (s *loanService) transition(ctx context.Context, loanID uuid.UUID, operation string, apply func(*Loan) error) (l *Loan, err error) {
	s.logger.InfoContext(ctx, "Applying loan transition", "loanID", loanID, "operation", operation)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.ErrorContext(ctx, "Panic during loan transition", "loanID", loanID, "panic", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	l, err = s.repo.GetLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to load loan for update", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not load loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}

	oldStatus := l.Status
	if err = apply(l); err != nil {
		s.logger.WarnContext(ctx, "Loan transition rejected", "loanID", loanID, "operation", operation, "status", oldStatus, slog.Any("error", err))
		return nil, err
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist loan transition", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not persist %s: %v", apperrors.ErrInternalServer, operation, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit loan transition", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanTransition(string(oldStatus), string(l.Status))
	s.publishStatusChanged(ctx, l, oldStatus)

	s.logger.InfoContext(ctx, "Loan transition applied", "loanID", loanID, "from", oldStatus, "to", l.Status)
	return l, nil
}

// publishStatusChanged emits a best-effort notification after commit.
// Publish failures are logged, never surfaced to the caller.
func (s *loanService) publishStatusChanged(ctx context.Context, l *Loan, oldStatus Status) {
	evt := event.LoanStatusChangedEvent{
		LoanID:     l.ID,
		CustomerID: l.CustomerID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(l.Status),
		Timestamp:  time.Now().UTC(),
	}
	if err := s.publisher.PublishLoanStatusChanged(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan status change event", "loanID", l.ID, slog.Any("error", err))
	}
}
