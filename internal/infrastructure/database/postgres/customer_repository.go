package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

const customerColumns = `id, first_name, last_name, email, phone, address, is_deleted, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	sql := `
        INSERT INTO customers (id, first_name, last_name, email, phone, address, is_deleted, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE
        SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email,
            phone = EXCLUDED.phone, address = EXCLUDED.address, is_deleted = EXCLUDED.is_deleted, updated_at = NOW()
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, sql,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.IsDeleted,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save customer", "customer_id", c.ID, "error", err)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer saved in DB", "customer_id", c.ID)
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get customer by ID", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, includeDeleted bool) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	if !includeDeleted {
		query += ` WHERE is_deleted = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		customers = append(customers, c)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return customers, nil
}

func (r *CustomerRepository) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1 AND is_deleted = FALSE)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Failed to check customer existence", "customer_id", customerID, "error", err)
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return exists, nil
}

func (r *CustomerRepository) SetDeleted(ctx context.Context, customerID uuid.UUID, deleted bool) error {
	sql := `UPDATE customers SET is_deleted = $1, updated_at = NOW() WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, deleted, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update customer deleted flag", "customer_id", customerID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Customer not found for delete", "customer_id", customerID)
		return apperrors.ErrNotFound
	}

	return nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
