package balanceservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockBalanceRepo) {
	ctrl := gomock.NewController(t)
	balanceRepo := NewMockBalanceRepo(ctrl)
	service := New(balanceRepo)
	return service, balanceRepo
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name            string
		userID          int
		prepareMock     func(repo *MockBalanceRepo)
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "balance returned",
			userID: 1,
			prepareMock: func(repo *MockBalanceRepo) {
				repo.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(1500), true, nil)
			},
			expectedBalance: 1500,
		},
		{
			name:   "unknown user",
			userID: 99,
			prepareMock: func(repo *MockBalanceRepo) {
				repo.EXPECT().GetBalance(gomock.Any(), 99).Return(int64(0), false, nil)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "repo error",
			userID: 1,
			prepareMock: func(repo *MockBalanceRepo) {
				repo.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(0), false, errors.New("some error"))
			},
			expectedError: errors.New("some error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := NewMock(t)
			tt.prepareMock(repo)

			balance, err := service.GetBalance(context.Background(), tt.userID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestCredit(t *testing.T) {
	t.Run("credit increases the balance", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 1, int64(474)).Return(int64(1974), true, nil)

		balance, err := service.Credit(context.Background(), 1, 474)
		assert.NoError(t, err)
		assert.Equal(t, int64(1974), balance)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Credit(context.Background(), 1, -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 99, int64(100)).Return(int64(0), false, nil)

		_, err := service.Credit(context.Background(), 99, 100)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDebit(t *testing.T) {
	t.Run("debit decreases the balance", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 1, int64(-790)).Return(int64(210), true, nil)

		balance, err := service.Debit(context.Background(), 1, 790)
		assert.NoError(t, err)
		assert.Equal(t, int64(210), balance)
	})

	t.Run("insufficient balance leaves the balance untouched", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 1, int64(-790)).Return(int64(0), false, nil)
		repo.EXPECT().GetBalance(gomock.Any(), 1).Return(int64(100), true, nil)

		_, err := service.Debit(context.Background(), 1, 790)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("unknown user is not an insufficient balance", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 99, int64(-790)).Return(int64(0), false, nil)
		repo.EXPECT().GetBalance(gomock.Any(), 99).Return(int64(0), false, nil)

		_, err := service.Debit(context.Background(), 99, 790)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Debit(context.Background(), 1, -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestDeposit(t *testing.T) {
	t.Run("deposit credits the account", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Adjust(gomock.Any(), 1, int64(500)).Return(int64(2000), true, nil)

		balance, err := service.Deposit(context.Background(), 1, 500)
		assert.NoError(t, err)
		assert.Equal(t, int64(2000), balance)
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Deposit(context.Background(), 1, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Deposit(context.Background(), 1, -500)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
