package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	_ "github.com/boostmart/boostmart/docs"
	"github.com/boostmart/boostmart/internal/config"
	"github.com/boostmart/boostmart/internal/service"
	"github.com/boostmart/boostmart/internal/ws"
	pkgauth "github.com/boostmart/boostmart/pkg/auth"
)

func TestNew(t *testing.T) {
	h := New(&service.Services{}, ws.NewHub())
	assert.NotNil(t, h, "Handlers should not be nil")
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockOrderHandler := NewMockOrderHandler(ctrl)
	mockUserHandler := NewMockUserHandler(ctrl)
	mockBalanceHandler := NewMockBalanceHandler(ctrl)

	mockAuthHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().GetRanks(gomock.Any(), gomock.Any()).AnyTimes()
	mockUserHandler.EXPECT().GetCount(gomock.Any(), gomock.Any()).AnyTimes()

	h := &Handlers{
		AuthHandler:    mockAuthHandler,
		OrderHandler:   mockOrderHandler,
		UserHandler:    mockUserHandler,
		BalanceHandler: mockBalanceHandler,
	}

	jwtService := pkgauth.NewMockJWTServiceInterface(ctrl)
	cfg := &config.Config{AllowedOrigins: "*"}

	router := chi.NewRouter()
	h.InitRoutes(router, jwtService, cfg)

	tests := []struct {
		method string
		url    string
		status int
	}{
		{"POST", "/api/users/register", http.StatusOK},
		{"POST", "/api/users/login", http.StatusOK},
		{"GET", "/api/users/count", http.StatusOK},
		{"GET", "/api/ranks", http.StatusOK},
		{"GET", "/api/users/me", http.StatusUnauthorized},
		{"GET", "/api/users/balance", http.StatusUnauthorized},
		{"POST", "/api/users/balance/deposit", http.StatusUnauthorized},
		{"GET", "/api/users", http.StatusUnauthorized},
		{"PATCH", "/api/users/2/role", http.StatusUnauthorized},
		{"DELETE", "/api/users/2", http.StatusUnauthorized},
		{"GET", "/api/orders", http.StatusUnauthorized},
		{"POST", "/api/orders", http.StatusUnauthorized},
		{"GET", "/api/orders/quote", http.StatusUnauthorized},
		{"GET", "/api/orders/42", http.StatusUnauthorized},
		{"POST", "/api/orders/42/claim", http.StatusUnauthorized},
		{"POST", "/api/orders/42/complete", http.StatusUnauthorized},
		{"POST", "/api/orders/42/cancel", http.StatusUnauthorized},
		{"POST", "/api/orders/42/messages", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
