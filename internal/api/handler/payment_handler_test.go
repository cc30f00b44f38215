package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler/dto"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/payment"
	"github.com/jonnatanMerchan/LoanManagement/internal/pkg/apperrors"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, transactionReference string, notes *string) (*payment.Payment, error) {
	args := m.Called(ctx, loanID, amount, transactionReference, notes)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) GetPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]payment.Payment, error) {
	args := m.Called(ctx, loanID)
	if payments, ok := args.Get(0).([]payment.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	if total, ok := args.Get(0).(decimal.Decimal); ok {
		return total, args.Error(1)
	}
	return decimal.Zero, args.Error(1)
}

func (m *MockPaymentService) GetRemainingBalance(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	if balance, ok := args.Get(0).(decimal.Decimal); ok {
		return balance, args.Error(1)
	}
	return decimal.Zero, args.Error(1)
}

func samplePayment(t *testing.T, loanID uuid.UUID) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(loanID, decimal.NewFromInt(100), "TXN-001", nil)
	require.NoError(t, err)
	return p
}

func TestPaymentHandlerCreatePayment(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, newTestLogger())

	t.Run("successfully records payment", func(t *testing.T) {
		loanID := uuid.New()
		mockPayment := samplePayment(t, loanID)
		mockService.On("CreatePayment", mock.Anything, loanID, decimal.NewFromInt(100), "TXN-001", (*string)(nil)).
			Return(mockPayment, nil).Once()

		body := `{"amount":"100","transactionReference":"TXN-001"}`
		req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID.String()+"/payments", strings.NewReader(body))
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.CreatePayment(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.PaymentResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, mockPayment.ID.String(), resp.ID)
		assert.Equal(t, "100.00", resp.Amount)
		assert.Equal(t, "TXN-001", resp.TransactionReference)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		loanID := uuid.New()
		body := `{"amount":"0","transactionReference":"TXN-002"}`
		req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID.String()+"/payments", strings.NewReader(body))
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.CreatePayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Contains(t, resp.Error.Message, "amount")
	})

	t.Run("returns conflict for duplicate transaction reference", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("CreatePayment", mock.Anything, loanID, decimal.NewFromInt(100), "TXN-001", (*string)(nil)).
			Return(nil, apperrors.ErrConflict).Once()

		body := `{"amount":"100","transactionReference":"TXN-001"}`
		req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID.String()+"/payments", strings.NewReader(body))
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.CreatePayment(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns bad request for overpayment", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("CreatePayment", mock.Anything, loanID, decimal.NewFromInt(5000), "TXN-003", (*string)(nil)).
			Return(nil, apperrors.ErrInvalidArgument).Once()

		body := `{"amount":"5000","transactionReference":"TXN-003"}`
		req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID.String()+"/payments", strings.NewReader(body))
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.CreatePayment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns conflict for non-payable loan", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("CreatePayment", mock.Anything, loanID, decimal.NewFromInt(100), "TXN-004", (*string)(nil)).
			Return(nil, apperrors.NewInvalidStateError("pay", "PENDING")).Once()

		body := `{"amount":"100","transactionReference":"TXN-004"}`
		req := httptest.NewRequest(http.MethodPost, "/loans/"+loanID.String()+"/payments", strings.NewReader(body))
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.CreatePayment(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestPaymentHandlerListPayments(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, newTestLogger())

	t.Run("returns payments for loan", func(t *testing.T) {
		loanID := uuid.New()
		first := samplePayment(t, loanID)
		second, err := payment.NewPayment(loanID, decimal.NewFromInt(250), "TXN-002", nil)
		require.NoError(t, err)
		mockService.On("GetPaymentsByLoan", mock.Anything, loanID).
			Return([]payment.Payment{*first, *second}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/payments", nil)
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.ListPayments(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.PaymentResponse
		err = json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("returns not found for unknown loan", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("GetPaymentsByLoan", mock.Anything, loanID).
			Return(nil, apperrors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/payments", nil)
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.ListPayments(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestPaymentHandlerGetTotalPaid(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, newTestLogger())

	t.Run("returns total paid", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("GetTotalPaid", mock.Anything, loanID).
			Return(decimal.RequireFromString("300.00"), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/payments/total", nil)
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.GetTotalPaid(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.TotalPaidResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, loanID.String(), resp.LoanID)
		assert.Equal(t, "300.00", resp.TotalPaid)
		mockService.AssertExpectations(t)
	})

	t.Run("reports zero for loan with no payments", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("GetTotalPaid", mock.Anything, loanID).
			Return(decimal.Zero, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/payments/total", nil)
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.GetTotalPaid(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.TotalPaidResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, "0.00", resp.TotalPaid)
		mockService.AssertExpectations(t)
	})
}

func TestPaymentHandlerGetBalance(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, newTestLogger())

	t.Run("returns remaining balance", func(t *testing.T) {
		loanID := uuid.New()
		mockService.On("GetRemainingBalance", mock.Anything, loanID).
			Return(decimal.RequireFromString("900.00"), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/balance", nil)
		req = withURLParam(req, "loanID", loanID.String())
		rec := httptest.NewRecorder()

		handler.GetBalance(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.BalanceResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, loanID.String(), resp.LoanID)
		assert.Equal(t, "900.00", resp.RemainingBalance)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error for invalid loan ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/loans/not-a-uuid/balance", nil)
		req = withURLParam(req, "loanID", "not-a-uuid")
		rec := httptest.NewRecorder()

		handler.GetBalance(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentHandlerGetPayment(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, newTestLogger())

	t.Run("successfully retrieves payment", func(t *testing.T) {
		mockPayment := samplePayment(t, uuid.New())
		mockService.On("GetPayment", mock.Anything, mockPayment.ID).Return(mockPayment, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/payments/"+mockPayment.ID.String(), nil)
		req = withURLParam(req, "paymentID", mockPayment.ID.String())
		rec := httptest.NewRecorder()

		handler.GetPayment(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PaymentResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, mockPayment.ID.String(), resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error when payment not found", func(t *testing.T) {
		paymentID := uuid.New()
		mockService.On("GetPayment", mock.Anything, paymentID).Return(nil, apperrors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/payments/"+paymentID.String(), nil)
		req = withURLParam(req, "paymentID", paymentID.String())
		rec := httptest.NewRecorder()

		handler.GetPayment(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}
