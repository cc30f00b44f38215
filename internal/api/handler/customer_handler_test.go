package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler/dto"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, firstName, lastName, email string, phone, address *string) (*customer.Customer, error) {
	args := m.Called(ctx, firstName, lastName, email, phone, address)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func sampleCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer("Jane", "Doe", "jane.doe@example.com", nil, nil)
	require.NoError(t, err)
	return c
}

func TestCustomerHandlerCreateCustomer(t *testing.T) {
	mockService := new(MockCustomerService)
	handler := NewCustomerHandler(mockService, newTestLogger())

	t.Run("successfully creates customer", func(t *testing.T) {
		mockCustomer := sampleCustomer(t)
		mockService.On("CreateCustomer", mock.Anything, "Jane", "Doe", "jane.doe@example.com", (*string)(nil), (*string)(nil)).
			Return(mockCustomer, nil).Once()

		body := `{"firstName":"Jane","lastName":"Doe","email":"jane.doe@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, mockCustomer.ID.String(), resp.ID)
		assert.Equal(t, "Jane Doe", resp.FullName)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		body := `{"firstName":"Jane","lastName":"Doe","email":""}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Contains(t, resp.Error.Message, "email")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		handler.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCustomerHandlerGetCustomer(t *testing.T) {
	mockService := new(MockCustomerService)
	handler := NewCustomerHandler(mockService, newTestLogger())

	t.Run("successfully retrieves customer", func(t *testing.T) {
		mockCustomer := sampleCustomer(t)
		mockService.On("GetCustomer", mock.Anything, mockCustomer.ID).Return(mockCustomer, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/customers/"+mockCustomer.ID.String(), nil)
		req = withURLParam(req, "customerID", mockCustomer.ID.String())
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, mockCustomer.Email, resp.Email)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error when customer not found", func(t *testing.T) {
		customerID := uuid.New()
		mockService.On("GetCustomer", mock.Anything, customerID).Return(nil, apperrors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/customers/"+customerID.String(), nil)
		req = withURLParam(req, "customerID", customerID.String())
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error for invalid customer ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers/abc", nil)
		req = withURLParam(req, "customerID", "abc")
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCustomerHandlerListCustomers(t *testing.T) {
	mockService := new(MockCustomerService)
	handler := NewCustomerHandler(mockService, newTestLogger())

	t.Run("returns all active customers", func(t *testing.T) {
		first := sampleCustomer(t)
		second, err := customer.NewCustomer("John", "Smith", "john.smith@example.com", nil, nil)
		require.NoError(t, err)
		mockService.On("ListCustomers", mock.Anything).
			Return([]*customer.Customer{first, second}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()

		handler.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		err = json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})
}

func TestCustomerHandlerDeactivateCustomer(t *testing.T) {
	mockService := new(MockCustomerService)
	handler := NewCustomerHandler(mockService, newTestLogger())

	t.Run("successfully deactivates customer", func(t *testing.T) {
		customerID := uuid.New()
		mockService.On("DeactivateCustomer", mock.Anything, customerID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/customers/"+customerID.String(), nil)
		req = withURLParam(req, "customerID", customerID.String())
		rec := httptest.NewRecorder()

		handler.DeactivateCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("returns error when customer not found", func(t *testing.T) {
		customerID := uuid.New()
		mockService.On("DeactivateCustomer", mock.Anything, customerID).Return(apperrors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/customers/"+customerID.String(), nil)
		req = withURLParam(req, "customerID", customerID.String())
		rec := httptest.NewRecorder()

		handler.DeactivateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}
