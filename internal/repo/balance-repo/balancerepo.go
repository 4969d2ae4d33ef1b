package balancerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/boostmart/boostmart/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetBalance(ctx context.Context, userID int) (int64, bool, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		zap.L().Error("failed to get user balance", zap.Error(err))
		return 0, false, err
	}
	return balance, true, nil
}

// Adjust applies delta to the user's balance in a single guarded statement.
// The WHERE clause enforces the non-negative invariant and the row lock
// serializes concurrent adjustments. Returns ok=false when the guard
// rejects the update or the user does not exist.
func (r *Repository) Adjust(ctx context.Context, userID int, delta int64) (int64, bool, error) {
	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING balance
	`
	var balance int64
	err := r.db.QueryRow(ctx, query, delta, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		zap.L().Error("failed to adjust user balance", zap.Error(err))
		return 0, false, err
	}
	return balance, true, nil
}
