package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, c *Customer) error

	FindByID(ctx context.Context, customerID uuid.UUID) (*Customer, error)

	FindAll(ctx context.Context, includeDeleted bool) ([]*Customer, error)

	// Exists reports whether a non-deleted customer with the given id is on
	// record.
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)

	SetDeleted(ctx context.Context, customerID uuid.UUID, deleted bool) error
}
