package customer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

// Customer is the aggregate loans reference by id. Deletion is soft: a
// deactivated customer keeps its record but no longer passes existence
// checks, so no new loan can be created against it.
type Customer struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}

func NewCustomer(firstName, lastName, email string, phone, address *string) (*Customer, error) {
	if firstName == "" {
		return nil, apperrors.NewValidationError("firstName", "first name is required")
	}
	if lastName == "" {
		return nil, apperrors.NewValidationError("lastName", "last name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "email is required")
	}

	return &Customer{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		Address:   address,
	}, nil
}
