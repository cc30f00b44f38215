package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
)

type CreateCustomerRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Errorf("firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("lastName is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email must be a valid address")
	}
	return nil
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		IsDeleted: c.IsDeleted,
		CreatedAt: c.CreatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = NewCustomerResponse(c)
	}
	return out
}
