package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleBooster  = "booster"
	RoleAdmin    = "admin"
)

const (
	// OrderStatusPending paid order waiting for a booster;
	OrderStatusPending = "pending"
	// OrderStatusInProgress a booster claimed the order;
	OrderStatusInProgress = "in_progress"
	// OrderStatusCompleted boost finished, commission paid out;
	OrderStatusCompleted = "completed"
	// OrderStatusCancelled order cancelled, payment refunded.
	OrderStatusCancelled = "cancelled"
)

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleBooster || role == RoleAdmin
}

type User struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Balance      int64     `db:"balance"`
	CreatedAt    time.Time `db:"created_at"`
}

type Order struct {
	ID              int       `db:"id"`
	UserID          int       `db:"user_id"`
	CurrentRank     int       `db:"current_rank"`
	TargetRank      int       `db:"target_rank"`
	Price           int64     `db:"price"`
	Status          string    `db:"status"`
	BoosterID       *int      `db:"booster_id"`
	BoosterUsername *string   `db:"booster_username"`
	GameUsername    *string   `db:"game_username"`
	GamePassword    *string   `db:"game_password"`
	CreatedAt       time.Time `db:"created_at"`
}

// Terminal reports whether no further status transition is permitted.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// AssignedTo reports whether the order is claimed by the given booster.
func (o *Order) AssignedTo(userID int) bool {
	return o.BoosterID != nil && *o.BoosterID == userID
}

type Message struct {
	ID         string    `db:"id"`
	OrderID    int       `db:"order_id"`
	SenderID   int       `db:"sender_id"`
	SenderName string    `db:"sender_name"`
	Content    string    `db:"content"`
	SentAt     time.Time `db:"sent_at"`
}
