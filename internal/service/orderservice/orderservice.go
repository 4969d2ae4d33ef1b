package orderservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/boostmart/boostmart/internal/catalog"
	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/internal/pg"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderRepo interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Order, error)
	FindVisibleToBooster(ctx context.Context, boosterID int) ([]domain.Order, error)
	Claim(ctx context.Context, orderID, boosterID int, boosterUsername string) (bool, error)
	Complete(ctx context.Context, orderID int) (bool, error)
	Cancel(ctx context.Context, orderID int) (bool, error)
	ExpirePending(ctx context.Context, orderID int) (bool, error)
}

type MessageRepo interface {
	Append(ctx context.Context, message *domain.Message) error
	ListByOrderID(ctx context.Context, orderID int) ([]domain.Message, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// Ledger is the only collaborator allowed to mutate balances.
type Ledger interface {
	Credit(ctx context.Context, userID int, amount int64) (int64, error)
	Debit(ctx context.Context, userID int, amount int64) (int64, error)
}

// EventSink receives lifecycle events after they are committed. Sinks must
// not block.
type EventSink interface {
	OrderChanged(order *domain.Order)
	MessageAppended(order *domain.Order, message *domain.Message)
}

type Service struct {
	orderRepo   OrderRepo
	messageRepo MessageRepo
	userRepo    UserRepo
	ledger      Ledger
	txManager   pg.TXManager
	sinks       []EventSink
}

func New(orderRepo OrderRepo, messageRepo MessageRepo, userRepo UserRepo, ledger Ledger, txManager pg.TXManager, sinks ...EventSink) *Service {
	return &Service{
		orderRepo:   orderRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		txManager:   txManager,
		sinks:       sinks,
	}
}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidRankRange  = errors.New("target rank must be above current rank")
	ErrAccessDenied      = errors.New("operation not allowed for this user")
	ErrInvalidTransition = errors.New("order status does not allow this transition")
	ErrOrderClosed       = errors.New("order is closed for messages")
	ErrEmptyMessage      = errors.New("message content is empty")
)

type CreateOrderInput struct {
	CurrentRank  int
	TargetRank   int
	Priority     bool
	Streaming    bool
	GameUsername string
	GamePassword string
}

// Quote prices a boost without creating anything.
func (s *Service) Quote(currentRank, targetRank int, priority, streaming bool) (int64, error) {
	if err := validateRankRange(currentRank, targetRank); err != nil {
		return 0, err
	}
	return catalog.Quote(currentRank, targetRank, priority, streaming), nil
}

func validateRankRange(currentRank, targetRank int) error {
	if _, ok := catalog.Get(currentRank); !ok {
		return ErrInvalidRankRange
	}
	if _, ok := catalog.Get(targetRank); !ok {
		return ErrInvalidRankRange
	}
	if targetRank <= currentRank {
		return ErrInvalidRankRange
	}
	return nil
}

// CreateOrder prices the boost, debits the customer and inserts the pending
// order in one transaction. An insufficient balance rolls everything back:
// no order exists that was not paid for.
func (s *Service) CreateOrder(ctx context.Context, userID int, in CreateOrderInput) (*domain.Order, error) {
	actor, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleCustomer {
		return nil, ErrAccessDenied
	}
	if err := validateRankRange(in.CurrentRank, in.TargetRank); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:       userID,
		CurrentRank:  in.CurrentRank,
		TargetRank:   in.TargetRank,
		Price:        catalog.Quote(in.CurrentRank, in.TargetRank, in.Priority, in.Streaming),
		Status:       domain.OrderStatusPending,
		GameUsername: optional(in.GameUsername),
		GamePassword: optional(in.GamePassword),
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Debit(ctx, userID, order.Price); err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		zap.L().Info("can't create order", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("order created", zap.Int("orderID", order.ID), zap.Int64("price", order.Price))
	s.emitOrder(order)
	return order, nil
}

// Claim assigns a pending order to a booster. The repository performs the
// status compare-and-set, so of two concurrent claims exactly one wins and
// the loser gets ErrInvalidTransition.
func (s *Service) Claim(ctx context.Context, actorID, orderID int) (*domain.Order, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleBooster && actor.Role != domain.RoleAdmin {
		return nil, ErrAccessDenied
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == actorID {
		// A customer cannot boost their own order, whatever their role.
		return nil, ErrAccessDenied
	}

	ok, err := s.orderRepo.Claim(ctx, orderID, actor.ID, actor.Username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	order.Status = domain.OrderStatusInProgress
	order.BoosterID = &actor.ID
	order.BoosterUsername = &actor.Username
	zap.L().Info("order claimed", zap.Int("orderID", orderID), zap.Int("boosterID", actor.ID))
	s.emitOrder(order)
	return order, nil
}

// Complete finishes an in_progress order and pays the assigned booster
// round(price × 0.6). The status compare-and-set guarantees the commission
// is paid exactly once no matter which authorized actor triggers it.
func (s *Service) Complete(ctx context.Context, actorID, orderID int) (*domain.Order, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !order.AssignedTo(actorID) {
		return nil, ErrAccessDenied
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		ok, err := s.orderRepo.Complete(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		if order.BoosterID != nil {
			commission := catalog.Commission(order.Price)
			if _, err := s.ledger.Credit(ctx, *order.BoosterID, commission); err != nil {
				return err
			}
			zap.L().Info("commission paid",
				zap.Int("orderID", orderID), zap.Int("boosterID", *order.BoosterID), zap.Int64("commission", commission))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCompleted
	s.emitOrder(order)
	return order, nil
}

// Cancel is admin-only and refunds the customer's payment in the same
// transaction as the status change.
func (s *Service) Cancel(ctx context.Context, actorID, orderID int) (*domain.Order, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, ErrAccessDenied
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		ok, err := s.orderRepo.Cancel(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		_, err = s.ledger.Credit(ctx, order.UserID, order.Price)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	zap.L().Info("order cancelled", zap.Int("orderID", orderID), zap.Int("adminID", actorID))
	s.emitOrder(order)
	return order, nil
}

// Expire cancels a stale pending order on behalf of the system and refunds
// the customer. Unlike Cancel, the compare-and-set only accepts pending, so
// an order claimed between discovery and expiry survives.
func (s *Service) Expire(ctx context.Context, orderID int) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		ok, err := s.orderRepo.ExpirePending(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		_, err = s.ledger.Credit(ctx, order.UserID, order.Price)
		return err
	})
	if err != nil {
		return err
	}

	order.Status = domain.OrderStatusCancelled
	zap.L().Info("stale order expired", zap.Int("orderID", orderID))
	s.emitOrder(order)
	return nil
}

// AppendMessage adds to the order's chat log. Only the order's parties may
// write, and only while the order is open.
func (s *Service) AppendMessage(ctx context.Context, actorID, orderID int, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.isParty(actor, order) {
		return nil, ErrAccessDenied
	}
	if order.Terminal() {
		return nil, ErrOrderClosed
	}

	message := &domain.Message{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		SenderID:   actor.ID,
		SenderName: actor.Username,
		Content:    content,
		SentAt:     time.Now(),
	}
	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}

	s.emitMessage(order, message)
	return message, nil
}

// Get returns the order with its chat log for parties. Boosters may inspect
// unclaimed pending orders, with credentials and chat withheld.
func (s *Service) Get(ctx context.Context, actorID, orderID int) (*domain.Order, []domain.Message, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if s.isParty(actor, order) {
		messages, err := s.messageRepo.ListByOrderID(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
		return order, messages, nil
	}
	if actor.Role == domain.RoleBooster && order.Status == domain.OrderStatusPending {
		return redact(order), nil, nil
	}
	return nil, nil, ErrAccessDenied
}

// List returns the orders visible to the actor: customers their own,
// boosters the claim queue plus their assignments, admins everything.
func (s *Service) List(ctx context.Context, actorID int) ([]domain.Order, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	switch actor.Role {
	case domain.RoleAdmin:
		orders, err = s.orderRepo.FindAll(ctx)
	case domain.RoleBooster:
		orders, err = s.orderRepo.FindVisibleToBooster(ctx, actorID)
	default:
		orders, err = s.orderRepo.FindByUserID(ctx, actorID)
	}
	if err != nil {
		zap.L().Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	for i := range orders {
		if !s.isParty(actor, &orders[i]) {
			orders[i].GameUsername = nil
			orders[i].GamePassword = nil
		}
	}
	return orders, nil
}

// CanAccess reports whether the actor may subscribe to the order's live
// feed. Same gate as the chat log.
func (s *Service) CanAccess(ctx context.Context, actorID, orderID int) error {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !s.isParty(actor, order) {
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) isParty(actor *domain.User, order *domain.Order) bool {
	return actor.Role == domain.RoleAdmin || order.UserID == actor.ID || order.AssignedTo(actor.ID)
}

func (s *Service) loadUser(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) loadOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) emitOrder(order *domain.Order) {
	for _, sink := range s.sinks {
		sink.OrderChanged(order)
	}
}

func (s *Service) emitMessage(order *domain.Order, message *domain.Message) {
	for _, sink := range s.sinks {
		sink.MessageAppended(order, message)
	}
}

func redact(order *domain.Order) *domain.Order {
	clone := *order
	clone.GameUsername = nil
	clone.GamePassword = nil
	return &clone
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
