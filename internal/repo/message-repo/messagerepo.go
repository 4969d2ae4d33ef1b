package messagerepo

import (
	"context"

	"github.com/boostmart/boostmart/internal/domain"
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

func (r *Repository) Append(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, order_id, sender_id, sender_name, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, message.ID, message.OrderID, message.SenderID,
		message.SenderName, message.Content, message.SentAt)
	if err != nil {
		zap.L().Error("can't append message", zap.Error(err))
		return err
	}
	return nil
}

// ListByOrderID returns messages in send order. The seq column, not the
// timestamp, defines the order so identical-millisecond sends stay stable.
func (r *Repository) ListByOrderID(ctx context.Context, orderID int) ([]domain.Message, error) {
	query := `
		SELECT id, order_id, sender_id, sender_name, content, sent_at
		FROM messages
		WHERE order_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get messages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var message domain.Message
		err := rows.Scan(&message.ID, &message.OrderID, &message.SenderID,
			&message.SenderName, &message.Content, &message.SentAt)
		if err != nil {
			zap.L().Error("can't scan message row", zap.Error(err))
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
