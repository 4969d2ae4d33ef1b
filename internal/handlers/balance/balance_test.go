package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/boostmart/boostmart/internal/dto"
	"github.com/boostmart/boostmart/internal/service/balanceservice"
	pkgauth "github.com/boostmart/boostmart/pkg/auth"
	"github.com/boostmart/boostmart/pkg/utils"
)

func NewMock(t *testing.T) (*BalanceHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func authedRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), pkgauth.UserIDKey, userID))
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name            string
		prepareMock     func()
		expectedCode    int
		expectedBalance int64
		expectedError   string
	}{
		{
			name: "Successful balance retrieval",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(1500), nil)
			},
			expectedCode:    http.StatusOK,
			expectedBalance: 1500,
		},
		{
			name: "User not found",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(0), balanceservice.ErrUserNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "user not found",
		},
		{
			name: "Service error",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(0), errors.New("db error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := authedRequest(http.MethodGet, "/api/users/balance", "", 1)
			rec := httptest.NewRecorder()
			handler.GetBalance(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				var response dto.BalanceResponseDTO
				err := json.NewDecoder(rec.Body).Decode(&response)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, response.Balance)
			} else {
				var response utils.Response
				err := json.NewDecoder(rec.Body).Decode(&response)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, response.Message)
			}
		})
	}
}

func TestDepositHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name            string
		body            string
		prepareMock     func()
		expectedCode    int
		expectedBalance int64
		expectedError   string
	}{
		{
			name: "Successful deposit",
			body: `{"amount":500}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, int64(500)).Return(int64(2000), nil)
			},
			expectedCode:    http.StatusOK,
			expectedBalance: 2000,
		},
		{
			name: "Non-positive amount",
			body: `{"amount":-50}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, int64(-50)).Return(int64(0), balanceservice.ErrInvalidAmount)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "amount must be positive",
		},
		{
			name: "User not found",
			body: `{"amount":500}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, int64(500)).Return(int64(0), balanceservice.ErrUserNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "user not found",
		},
		{
			name:          "Invalid request body",
			body:          `{invalid`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := authedRequest(http.MethodPost, "/api/users/balance/deposit", tt.body, 1)
			rec := httptest.NewRecorder()
			handler.Deposit(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				var response dto.BalanceResponseDTO
				err := json.NewDecoder(rec.Body).Decode(&response)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, response.Balance)
			} else {
				var response utils.Response
				err := json.NewDecoder(rec.Body).Decode(&response)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, response.Message)
			}
		})
	}
}
