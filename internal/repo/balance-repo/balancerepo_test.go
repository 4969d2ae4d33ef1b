package balancerepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_GetBalance(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name            string
		userID          int
		mockSetup       func()
		expectedBalance int64
		expectedFound   bool
		expectErr       bool
	}{
		{
			name:   "balance returned",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM users WHERE id = $1")).
					WithArgs(1).
					WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(1500)))
			},
			expectedBalance: 1500,
			expectedFound:   true,
		},
		{
			name:   "unknown user",
			userID: 99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM users WHERE id = $1")).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
			expectedFound: false,
		},
		{
			name:   "database error",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM users WHERE id = $1")).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			balance, found, err := repo.GetBalance(context.Background(), tt.userID)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedFound, found)
			assert.Equal(t, tt.expectedBalance, balance)
		})
	}
}

func TestRepository_Adjust(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("credit applied", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs(int64(474), 2).
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(974)))

		balance, ok, err := repo.Adjust(context.Background(), 2, 474)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(974), balance)
	})

	t.Run("debit applied", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs(int64(-790), 1).
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(210)))

		balance, ok, err := repo.Adjust(context.Background(), 1, -790)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(210), balance)
	})

	t.Run("guard rejects an overdraft", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs(int64(-790), 1).
			WillReturnError(pgx.ErrNoRows)

		_, ok, err := repo.Adjust(context.Background(), 1, -790)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs(int64(100), 1).
			WillReturnError(errors.New("database error"))

		_, ok, err := repo.Adjust(context.Background(), 1, 100)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
