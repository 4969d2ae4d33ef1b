package orderservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/internal/pg"
)

type mocks struct {
	orderRepo   *MockOrderRepo
	messageRepo *MockMessageRepo
	userRepo    *MockUserRepo
	ledger      *MockLedger
	txManager   *pg.MockTXManager
	sink        *MockEventSink
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		orderRepo:   NewMockOrderRepo(ctrl),
		messageRepo: NewMockMessageRepo(ctrl),
		userRepo:    NewMockUserRepo(ctrl),
		ledger:      NewMockLedger(ctrl),
		txManager:   pg.NewMockTXManager(ctrl),
		sink:        NewMockEventSink(ctrl),
	}
	service := New(m.orderRepo, m.messageRepo, m.userRepo, m.ledger, m.txManager, m.sink)
	return service, m
}

func (m *mocks) expectTx() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
}

func customer() *domain.User {
	return &domain.User{ID: 1, Username: "player1", Role: domain.RoleCustomer}
}

func booster() *domain.User {
	return &domain.User{ID: 2, Username: "booster1", Role: domain.RoleBooster}
}

func admin() *domain.User {
	return &domain.User{ID: 3, Username: "admin", Role: domain.RoleAdmin}
}

func TestQuote(t *testing.T) {
	service, _ := NewMock(t)

	price, err := service.Quote(7, 10, false, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(790), price)

	_, err = service.Quote(10, 7, false, false)
	assert.ErrorIs(t, err, ErrInvalidRankRange)

	_, err = service.Quote(7, 7, false, false)
	assert.ErrorIs(t, err, ErrInvalidRankRange)

	_, err = service.Quote(0, 5, false, false)
	assert.ErrorIs(t, err, ErrInvalidRankRange)
}

func TestCreateOrder(t *testing.T) {
	insufficientBalance := errors.New("insufficient balance")

	tests := []struct {
		name          string
		userID        int
		in            CreateOrderInput
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:   "order created and paid for",
			userID: 1,
			in:     CreateOrderInput{CurrentRank: 7, TargetRank: 10},
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
				m.expectTx()
				m.ledger.EXPECT().Debit(gomock.Any(), 1, int64(790)).Return(int64(210), nil)
				m.orderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, order *domain.Order) error {
						assert.Equal(t, int64(790), order.Price)
						assert.Equal(t, domain.OrderStatusPending, order.Status)
						order.ID = 42
						return nil
					})
				m.sink.EXPECT().OrderChanged(gomock.Any())
			},
		},
		{
			name:   "insufficient balance rolls the order back",
			userID: 1,
			in:     CreateOrderInput{CurrentRank: 7, TargetRank: 10},
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
				m.expectTx()
				m.ledger.EXPECT().Debit(gomock.Any(), 1, int64(790)).Return(int64(0), insufficientBalance)
			},
			expectedError: insufficientBalance,
		},
		{
			name:   "boosters cannot order boosts",
			userID: 2,
			in:     CreateOrderInput{CurrentRank: 7, TargetRank: 10},
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:   "target below current",
			userID: 1,
			in:     CreateOrderInput{CurrentRank: 10, TargetRank: 7},
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
			},
			expectedError: ErrInvalidRankRange,
		},
		{
			name:   "unknown user",
			userID: 99,
			in:     CreateOrderInput{CurrentRank: 7, TargetRank: 10},
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.CreateOrder(context.Background(), tt.userID, tt.in)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 42, order.ID)
				assert.Equal(t, int64(790), order.Price)
			}
		})
	}
}

func TestClaim(t *testing.T) {
	pendingOrder := func() *domain.Order {
		return &domain.Order{ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusPending}
	}

	tests := []struct {
		name          string
		actorID       int
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:    "booster claims a pending order",
			actorID: 2,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(pendingOrder(), nil)
				m.orderRepo.EXPECT().Claim(gomock.Any(), 42, 2, "booster1").Return(true, nil)
				m.sink.EXPECT().OrderChanged(gomock.Any())
			},
		},
		{
			name:    "customers cannot claim",
			actorID: 1,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "booster cannot claim their own order",
			actorID: 2,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
				own := pendingOrder()
				own.UserID = 2
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(own, nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "losing a concurrent claim",
			actorID: 2,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(pendingOrder(), nil)
				m.orderRepo.EXPECT().Claim(gomock.Any(), 42, 2, "booster1").Return(false, nil)
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name:    "order not found",
			actorID: 2,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.Claim(context.Background(), tt.actorID, 42)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.OrderStatusInProgress, order.Status)
				assert.Equal(t, 2, *order.BoosterID)
				assert.Equal(t, "booster1", *order.BoosterUsername)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	boosterID := 2
	inProgressOrder := func() *domain.Order {
		return &domain.Order{
			ID: 42, UserID: 1, Price: 790,
			Status: domain.OrderStatusInProgress, BoosterID: &boosterID,
		}
	}

	tests := []struct {
		name          string
		actorID       int
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:    "assigned booster completes and is paid 60 percent",
			actorID: 2,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(inProgressOrder(), nil)
				m.expectTx()
				m.orderRepo.EXPECT().Complete(gomock.Any(), 42).Return(true, nil)
				m.ledger.EXPECT().Credit(gomock.Any(), 2, int64(474)).Return(int64(474), nil)
				m.sink.EXPECT().OrderChanged(gomock.Any())
			},
		},
		{
			name:    "admin completes on the booster's behalf",
			actorID: 3,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(inProgressOrder(), nil)
				m.expectTx()
				m.orderRepo.EXPECT().Complete(gomock.Any(), 42).Return(true, nil)
				m.ledger.EXPECT().Credit(gomock.Any(), 2, int64(474)).Return(int64(474), nil)
				m.sink.EXPECT().OrderChanged(gomock.Any())
			},
		},
		{
			name:    "unassigned booster is rejected",
			actorID: 5,
			prepareMock: func(m *mocks) {
				other := &domain.User{ID: 5, Username: "booster2", Role: domain.RoleBooster}
				m.userRepo.EXPECT().FindByID(gomock.Any(), 5).Return(other, nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(inProgressOrder(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "customer is rejected",
			actorID: 1,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(inProgressOrder(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "already completed",
			actorID: 3,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(inProgressOrder(), nil)
				m.expectTx()
				m.orderRepo.EXPECT().Complete(gomock.Any(), 42).Return(false, nil)
			},
			expectedError: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.Complete(context.Background(), tt.actorID, 42)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.OrderStatusCompleted, order.Status)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name          string
		actorID       int
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:    "admin cancels and the customer is refunded",
			actorID: 3,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(
					&domain.Order{ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusPending}, nil)
				m.expectTx()
				m.orderRepo.EXPECT().Cancel(gomock.Any(), 42).Return(true, nil)
				m.ledger.EXPECT().Credit(gomock.Any(), 1, int64(790)).Return(int64(1000), nil)
				m.sink.EXPECT().OrderChanged(gomock.Any())
			},
		},
		{
			name:    "the customer cannot cancel their own order",
			actorID: 1,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "terminal orders stay terminal",
			actorID: 3,
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(
					&domain.Order{ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusCompleted}, nil)
				m.expectTx()
				m.orderRepo.EXPECT().Cancel(gomock.Any(), 42).Return(false, nil)
			},
			expectedError: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.Cancel(context.Background(), tt.actorID, 42)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.OrderStatusCancelled, order.Status)
			}
		})
	}
}

func TestExpire(t *testing.T) {
	t.Run("stale pending order is expired and refunded", func(t *testing.T) {
		service, m := NewMock(t)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(
			&domain.Order{ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusPending}, nil)
		m.expectTx()
		m.orderRepo.EXPECT().ExpirePending(gomock.Any(), 42).Return(true, nil)
		m.ledger.EXPECT().Credit(gomock.Any(), 1, int64(790)).Return(int64(790), nil)
		m.sink.EXPECT().OrderChanged(gomock.Any())

		err := service.Expire(context.Background(), 42)
		assert.NoError(t, err)
	})

	t.Run("a claim racing the sweeper wins", func(t *testing.T) {
		service, m := NewMock(t)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(
			&domain.Order{ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusPending}, nil)
		m.expectTx()
		m.orderRepo.EXPECT().ExpirePending(gomock.Any(), 42).Return(false, nil)

		err := service.Expire(context.Background(), 42)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestAppendMessage(t *testing.T) {
	boosterID := 2
	openOrder := func() *domain.Order {
		return &domain.Order{
			ID: 42, UserID: 1, Price: 790,
			Status: domain.OrderStatusInProgress, BoosterID: &boosterID,
		}
	}

	tests := []struct {
		name          string
		actorID       int
		content       string
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:    "customer writes to their order",
			actorID: 1,
			content: "when can you start?",
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(openOrder(), nil)
				m.messageRepo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, message *domain.Message) error {
						assert.NotEmpty(t, message.ID)
						assert.Equal(t, 42, message.OrderID)
						assert.Equal(t, "player1", message.SenderName)
						return nil
					})
				m.sink.EXPECT().MessageAppended(gomock.Any(), gomock.Any())
			},
		},
		{
			name:          "blank content",
			actorID:       1,
			content:       "   ",
			prepareMock:   func(m *mocks) {},
			expectedError: ErrEmptyMessage,
		},
		{
			name:    "outsiders cannot write",
			actorID: 5,
			content: "hello",
			prepareMock: func(m *mocks) {
				other := &domain.User{ID: 5, Username: "booster2", Role: domain.RoleBooster}
				m.userRepo.EXPECT().FindByID(gomock.Any(), 5).Return(other, nil)
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(openOrder(), nil)
			},
			expectedError: ErrAccessDenied,
		},
		{
			name:    "closed orders reject messages",
			actorID: 1,
			content: "thanks!",
			prepareMock: func(m *mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
				closed := openOrder()
				closed.Status = domain.OrderStatusCompleted
				m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(closed, nil)
			},
			expectedError: ErrOrderClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			message, err := service.AppendMessage(context.Background(), tt.actorID, 42, tt.content)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.content, message.Content)
			}
		})
	}
}

func TestGet(t *testing.T) {
	username := "summoner42"
	password := "hunter2"
	pendingOrder := func() *domain.Order {
		return &domain.Order{
			ID: 42, UserID: 1, Price: 790, Status: domain.OrderStatusPending,
			GameUsername: &username, GamePassword: &password,
		}
	}

	t.Run("the customer sees everything", func(t *testing.T) {
		service, m := NewMock(t)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(pendingOrder(), nil)
		m.messageRepo.EXPECT().ListByOrderID(gomock.Any(), 42).Return([]domain.Message{{Content: "hi"}}, nil)

		order, messages, err := service.Get(context.Background(), 1, 42)
		assert.NoError(t, err)
		assert.NotNil(t, order.GamePassword)
		assert.Len(t, messages, 1)
	})

	t.Run("a browsing booster gets a redacted view", func(t *testing.T) {
		service, m := NewMock(t)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(pendingOrder(), nil)

		order, messages, err := service.Get(context.Background(), 2, 42)
		assert.NoError(t, err)
		assert.Nil(t, order.GameUsername)
		assert.Nil(t, order.GamePassword)
		assert.Empty(t, messages)
	})

	t.Run("other customers are rejected", func(t *testing.T) {
		service, m := NewMock(t)
		other := &domain.User{ID: 7, Username: "player2", Role: domain.RoleCustomer}
		m.userRepo.EXPECT().FindByID(gomock.Any(), 7).Return(other, nil)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(pendingOrder(), nil)

		_, _, err := service.Get(context.Background(), 7, 42)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("boosters cannot inspect claimed orders they do not own", func(t *testing.T) {
		service, m := NewMock(t)
		otherBoosterID := 5
		claimed := pendingOrder()
		claimed.Status = domain.OrderStatusInProgress
		claimed.BoosterID = &otherBoosterID
		m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
		m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(claimed, nil)

		_, _, err := service.Get(context.Background(), 2, 42)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestList(t *testing.T) {
	username := "summoner42"
	password := "hunter2"

	t.Run("admins see all orders", func(t *testing.T) {
		service, m := NewMock(t)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 3).Return(admin(), nil)
		m.orderRepo.EXPECT().FindAll(gomock.Any()).Return([]domain.Order{{ID: 1}, {ID: 2}}, nil)

		orders, err := service.List(context.Background(), 3)
		assert.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("boosters see the queue with credentials withheld", func(t *testing.T) {
		service, m := NewMock(t)
		boosterID := 2
		m.userRepo.EXPECT().FindByID(gomock.Any(), 2).Return(booster(), nil)
		m.orderRepo.EXPECT().FindVisibleToBooster(gomock.Any(), 2).Return([]domain.Order{
			{ID: 1, UserID: 1, Status: domain.OrderStatusPending, GameUsername: &username, GamePassword: &password},
			{ID: 2, UserID: 1, Status: domain.OrderStatusInProgress, BoosterID: &boosterID, GameUsername: &username, GamePassword: &password},
		}, nil)

		orders, err := service.List(context.Background(), 2)
		assert.NoError(t, err)
		assert.Len(t, orders, 2)
		assert.Nil(t, orders[0].GamePassword)
		assert.NotNil(t, orders[1].GamePassword)
	})

	t.Run("customers see only their own orders", func(t *testing.T) {
		service, m := NewMock(t)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(customer(), nil)
		m.orderRepo.EXPECT().FindByUserID(gomock.Any(), 1).Return([]domain.Order{{ID: 1, UserID: 1}}, nil)

		orders, err := service.List(context.Background(), 1)
		assert.NoError(t, err)
		assert.Len(t, orders, 1)
	})
}

func TestCanAccess(t *testing.T) {
	boosterID := 2

	tests := []struct {
		name          string
		actorID       int
		actor         *domain.User
		expectedError error
	}{
		{name: "customer party", actorID: 1, actor: customer()},
		{name: "assigned booster", actorID: 2, actor: booster()},
		{name: "admin", actorID: 3, actor: admin()},
		{
			name:    "stranger",
			actorID: 7,
			actor:   &domain.User{ID: 7, Username: "player2", Role: domain.RoleCustomer},

			expectedError: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.userRepo.EXPECT().FindByID(gomock.Any(), tt.actorID).Return(tt.actor, nil)
			m.orderRepo.EXPECT().FindByID(gomock.Any(), 42).Return(&domain.Order{
				ID: 42, UserID: 1, Status: domain.OrderStatusInProgress, BoosterID: &boosterID,
			}, nil)

			err := service.CanAccess(context.Background(), tt.actorID, 42)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
