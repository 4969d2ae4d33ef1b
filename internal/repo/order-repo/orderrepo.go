package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const orderColumns = `id, user_id, current_rank, target_rank, price, status,
	booster_id, booster_username, game_username, game_password, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanOrder(row pgx.Row, order *domain.Order) error {
	return row.Scan(&order.ID, &order.UserID, &order.CurrentRank, &order.TargetRank,
		&order.Price, &order.Status, &order.BoosterID, &order.BoosterUsername,
		&order.GameUsername, &order.GamePassword, &order.CreatedAt)
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (user_id, current_rank, target_rank, price, status, game_username, game_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, order.UserID, order.CurrentRank, order.TargetRank,
		order.Price, order.Status, order.GameUsername, order.GamePassword).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var order domain.Order
	err := scanOrder(r.db.QueryRow(ctx, query, id), &order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.findMany(ctx, query)
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.findMany(ctx, query, userID)
}

// FindVisibleToBooster returns the booster's work queue: every unclaimed
// pending order plus the orders already assigned to them.
func (r *Repository) FindVisibleToBooster(ctx context.Context, boosterID int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 'pending' OR booster_id = $1
		ORDER BY created_at DESC`
	return r.findMany(ctx, query, boosterID)
}

// Claim atomically moves a pending order to in_progress and records the
// booster. The status predicate is the compare-and-set: of two concurrent
// claims exactly one sees RowsAffected == 1.
func (r *Repository) Claim(ctx context.Context, orderID, boosterID int, boosterUsername string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, booster_id = $2, booster_username = $3
		WHERE id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, domain.OrderStatusInProgress, boosterID, boosterUsername,
		orderID, domain.OrderStatusPending)
	if err != nil {
		zap.L().Error("can't claim order", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Complete atomically moves an in_progress order to completed.
func (r *Repository) Complete(ctx context.Context, orderID int) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, domain.OrderStatusCompleted, orderID, domain.OrderStatusInProgress)
	if err != nil {
		zap.L().Error("can't complete order", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Cancel atomically moves a pending or in_progress order to cancelled.
func (r *Repository) Cancel(ctx context.Context, orderID int) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status IN ($3, $4)`
	tag, err := r.db.Exec(ctx, query, domain.OrderStatusCancelled, orderID,
		domain.OrderStatusPending, domain.OrderStatusInProgress)
	if err != nil {
		zap.L().Error("can't cancel order", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ExpirePending cancels an order only if it is still pending, so a claim
// racing the expiry sweeper always wins.
func (r *Repository) ExpirePending(ctx context.Context, orderID int) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, domain.OrderStatusCancelled, orderID, domain.OrderStatusPending)
	if err != nil {
		zap.L().Error("can't expire order", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FindStalePending returns pending orders created before the cutoff, oldest
// first, for the expiry sweeper.
func (r *Repository) FindStalePending(ctx context.Context, before time.Time, limit uint32) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`
	return r.findMany(ctx, query, before, int(limit))
}
