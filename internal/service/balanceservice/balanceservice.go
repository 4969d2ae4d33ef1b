package balanceservice

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type BalanceRepo interface {
	GetBalance(ctx context.Context, userID int) (int64, bool, error)
	Adjust(ctx context.Context, userID int, delta int64) (int64, bool, error)
}

type Service struct {
	balanceRepo BalanceRepo
}

func New(balanceRepo BalanceRepo) *Service {
	return &Service{
		balanceRepo: balanceRepo,
	}
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

func (s *Service) GetBalance(ctx context.Context, userID int) (int64, error) {
	balance, found, err := s.balanceRepo.GetBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return 0, err
	}
	if !found {
		return 0, ErrUserNotFound
	}
	return balance, nil
}

// Credit unconditionally increases the user's balance. Fails only when the
// user does not exist.
func (s *Service) Credit(ctx context.Context, userID int, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	balance, ok, err := s.balanceRepo.Adjust(ctx, userID, amount)
	if err != nil {
		zap.L().Error("failed to credit balance", zap.Error(err))
		return 0, err
	}
	if !ok {
		return 0, ErrUserNotFound
	}
	return balance, nil
}

// Debit decreases the user's balance if and only if it stays non-negative.
// On insufficient balance nothing is mutated.
func (s *Service) Debit(ctx context.Context, userID int, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	balance, ok, err := s.balanceRepo.Adjust(ctx, userID, -amount)
	if err != nil {
		zap.L().Error("failed to debit balance", zap.Error(err))
		return 0, err
	}
	if ok {
		return balance, nil
	}

	// The guarded update rejects both unknown users and would-be negative
	// balances; tell them apart for the caller.
	if _, found, err := s.balanceRepo.GetBalance(ctx, userID); err != nil {
		return 0, err
	} else if !found {
		return 0, ErrUserNotFound
	}
	return 0, ErrInsufficientBalance
}

// Deposit is the customer-facing top-up. Amounts must be strictly positive.
func (s *Service) Deposit(ctx context.Context, userID int, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.Credit(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	zap.L().Info("balance deposited", zap.Int("userID", userID), zap.Int64("amount", amount))
	return balance, nil
}
