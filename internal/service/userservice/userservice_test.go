package userservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/boostmart/boostmart/internal/domain"
)

func NewMock(t *testing.T) (*Service, *MockRepo) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	service := New(repo)
	return service, repo
}

func TestList(t *testing.T) {
	t.Run("users listed", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().List(gomock.Any()).Return([]domain.User{{ID: 1}, {ID: 2}}, nil)

		users, err := service.List(context.Background())
		assert.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("repo error", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().List(gomock.Any()).Return(nil, errors.New("some error"))

		_, err := service.List(context.Background())
		assert.Error(t, err)
	})
}

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name          string
		role          string
		prepareMock   func(repo *MockRepo)
		expectedError error
	}{
		{
			name: "promotion to booster",
			role: domain.RoleBooster,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().UpdateRole(gomock.Any(), 1, domain.RoleBooster).
					Return(&domain.User{ID: 1, Role: domain.RoleBooster}, nil)
			},
		},
		{
			name:          "unknown role rejected",
			role:          "superuser",
			prepareMock:   func(repo *MockRepo) {},
			expectedError: ErrInvalidRole,
		},
		{
			name: "unknown user",
			role: domain.RoleBooster,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().UpdateRole(gomock.Any(), 1, domain.RoleBooster).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := NewMock(t)
			tt.prepareMock(repo)

			user, err := service.ChangeRole(context.Background(), 1, tt.role)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.role, user.Role)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	t.Run("user removed", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Delete(gomock.Any(), 1).Return(true, nil)

		assert.NoError(t, service.Remove(context.Background(), 1))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, repo := NewMock(t)
		repo.EXPECT().Delete(gomock.Any(), 99).Return(false, nil)

		assert.ErrorIs(t, service.Remove(context.Background(), 99), ErrUserNotFound)
	})
}

func TestCount(t *testing.T) {
	service, repo := NewMock(t)
	repo.EXPECT().Count(gomock.Any()).Return(42, nil)

	count, err := service.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}
