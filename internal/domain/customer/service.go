package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type Service interface {
	CreateCustomer(ctx context.Context, firstName, lastName, email string, phone, address *string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)
	DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewCustomerService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, firstName, lastName, email string, phone, address *string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	cust, err := NewCustomer(strings.TrimSpace(firstName), strings.TrimSpace(lastName), strings.TrimSpace(email), phone, address)
	if err != nil {
		s.logger.WarnContext(ctx, "Customer validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.String("customerID", cust.ID.String()))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", slog.String("customerID", customerID.String()))
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx, false)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	exists, err := s.repo.Exists(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error checking customer existence", slog.Any("error", err))
		return false, fmt.Errorf("failed to check customer %s: %w", customerID, err)
	}
	return exists, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	s.logger.InfoContext(ctx, "Deactivating customer", slog.String("customerID", customerID.String()))

	if err := s.repo.SetDeleted(ctx, customerID, true); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Repository failed to deactivate customer", slog.Any("error", err))
		return fmt.Errorf("failed to deactivate customer %s: %w", customerID, err)
	}
	return nil
}
