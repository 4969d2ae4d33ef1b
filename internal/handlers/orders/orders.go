package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/boostmart/boostmart/internal/catalog"
	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/internal/dto"
	"github.com/boostmart/boostmart/internal/service/balanceservice"
	"github.com/boostmart/boostmart/internal/service/orderservice"
	"github.com/boostmart/boostmart/internal/ws"
	"github.com/boostmart/boostmart/pkg/auth"
	"github.com/boostmart/boostmart/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	Quote(currentRank, targetRank int, priority, streaming bool) (int64, error)
	CreateOrder(ctx context.Context, userID int, in orderservice.CreateOrderInput) (*domain.Order, error)
	List(ctx context.Context, actorID int) ([]domain.Order, error)
	Get(ctx context.Context, actorID, orderID int) (*domain.Order, []domain.Message, error)
	Claim(ctx context.Context, actorID, orderID int) (*domain.Order, error)
	Complete(ctx context.Context, actorID, orderID int) (*domain.Order, error)
	Cancel(ctx context.Context, actorID, orderID int) (*domain.Order, error)
	AppendMessage(ctx context.Context, actorID, orderID int, content string) (*domain.Message, error)
	CanAccess(ctx context.Context, actorID, orderID int) error
}

type OrderHandler struct {
	orderService Service
	hub          *ws.Hub
}

func New(orderService Service, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		hub:          hub,
	}
}

// GetRanks godoc
//
//	@Summary		List the rank ladder
//	@Description	Static catalog of tiers and divisions in skill order
//	@Tags			Orders
//	@Produce		json
//	@Success		200	{array}	catalog.Rank
//	@Router			/api/ranks [get]
func (h *OrderHandler) GetRanks(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, catalog.Ranks())
}

// GetQuote godoc
//
//	@Summary		Price a boost
//	@Description	Compute the price between two ranks with optional add-ons
//	@Tags			Orders
//	@Produce		json
//	@Param			current_rank	query	int		true	"Current rank ordinal"
//	@Param			target_rank		query	int		true	"Target rank ordinal"
//	@Param			priority		query	bool	false	"Priority add-on (+20%)"
//	@Param			streaming		query	bool	false	"Streaming add-on (+10%)"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.QuoteResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid rank range"
//	@Router			/api/orders/quote [get]
func (h *OrderHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	currentRank, err1 := strconv.Atoi(r.URL.Query().Get("current_rank"))
	targetRank, err2 := strconv.Atoi(r.URL.Query().Get("target_rank"))
	if err1 != nil || err2 != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "current_rank and target_rank are required")
		return
	}
	priority := r.URL.Query().Get("priority") == "true"
	streaming := r.URL.Query().Get("streaming") == "true"

	price, err := h.orderService.Quote(currentRank, targetRank, priority, streaming)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.QuoteResponseDTO{
		CurrentRank: currentRank,
		TargetRank:  targetRank,
		Priority:    priority,
		Streaming:   streaming,
		Price:       price,
	})
}

// CreateOrder godoc
//
//	@Summary		Buy a boost
//	@Description	Create a pending order and debit the customer's balance
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order request body"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid rank range"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		403	{object}	utils.Response	"Not a customer"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, orderservice.CreateOrderInput{
		CurrentRank:  req.CurrentRank,
		TargetRank:   req.TargetRank,
		Priority:     req.Priority,
		Streaming:    req.Streaming,
		GameUsername: req.GameUsername,
		GamePassword: req.GamePassword,
	})
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toOrderDTO(order, nil))
}

// GetOrders godoc
//
//	@Summary		List visible orders
//	@Description	Customers see their own orders, boosters the claim queue plus assignments, admins everything
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	orders, err := h.orderService.List(r.Context(), userID)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	response := make([]dto.OrderResponseDTO, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderDTO(&orders[i], nil))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetOrder godoc
//
//	@Summary		Get one order
//	@Description	Order details with the chat log for the order's parties
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		403	{object}	utils.Response	"Access denied"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Router			/api/orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, messages, err := h.orderService.Get(r.Context(), userID, orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderDTO(order, messages))
}

// ClaimOrder godoc
//
//	@Summary		Claim a pending order
//	@Description	Assign the order to the calling booster; first claim wins
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		403	{object}	utils.Response	"Not a booster, or own order"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Order is not pending"
//	@Router			/api/orders/{id}/claim [post]
func (h *OrderHandler) ClaimOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Claim(r.Context(), userID, orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderDTO(order, nil))
}

// CompleteOrder godoc
//
//	@Summary		Complete an order
//	@Description	Mark the boost finished and pay the booster's commission
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		403	{object}	utils.Response	"Not the assigned booster or an admin"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Order is not in progress"
//	@Router			/api/orders/{id}/complete [post]
func (h *OrderHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Complete(r.Context(), userID, orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderDTO(order, nil))
}

// CancelOrder godoc
//
//	@Summary		Cancel an order
//	@Description	Admin-only; refunds the customer's payment
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		403	{object}	utils.Response	"Not an admin"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Order already closed"
//	@Router			/api/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(r.Context(), userID, orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderDTO(order, nil))
}

// PostMessage godoc
//
//	@Summary		Send a chat message
//	@Description	Append to the order's chat log while the order is open
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int					true	"Order id"
//	@Param			request	body	dto.MessageRequestDTO	true	"Message body"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.MessageResponseDTO
//	@Failure		400	{object}	utils.Response	"Empty message"
//	@Failure		403	{object}	utils.Response	"Not a party to the order"
//	@Failure		409	{object}	utils.Response	"Order is closed"
//	@Router			/api/orders/{id}/messages [post]
func (h *OrderHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req dto.MessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.orderService.AppendMessage(r.Context(), userID, orderID, req.Content)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toMessageDTO(message))
}

// ServeWS subscribes the caller to the order's live status and chat feed.
func (h *OrderHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if err := h.orderService.CanAccess(r.Context(), userID, orderID); err != nil {
		respondOrderError(w, err)
		return
	}
	ws.ServeWS(w, r, h.hub, orderID)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order id")
		return 0, false
	}
	return orderID, true
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderservice.ErrOrderNotFound),
		errors.Is(err, orderservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orderservice.ErrInvalidRankRange),
		errors.Is(err, orderservice.ErrEmptyMessage):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orderservice.ErrAccessDenied):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, orderservice.ErrInvalidTransition),
		errors.Is(err, orderservice.ErrOrderClosed):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, balanceservice.ErrInsufficientBalance):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toOrderDTO(order *domain.Order, messages []domain.Message) dto.OrderResponseDTO {
	resp := dto.OrderResponseDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		CurrentRank:     order.CurrentRank,
		TargetRank:      order.TargetRank,
		Price:           order.Price,
		Status:          order.Status,
		BoosterID:       order.BoosterID,
		BoosterUsername: order.BoosterUsername,
		GameUsername:    order.GameUsername,
		GamePassword:    order.GamePassword,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
	if rank, ok := catalog.Get(order.CurrentRank); ok {
		resp.CurrentRankName = rank.Name
	}
	if rank, ok := catalog.Get(order.TargetRank); ok {
		resp.TargetRankName = rank.Name
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, toMessageDTO(&messages[i]))
	}
	return resp
}

func toMessageDTO(message *domain.Message) dto.MessageResponseDTO {
	return dto.MessageResponseDTO{
		ID:         message.ID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Content:    message.Content,
		SentAt:     message.SentAt.Format(time.RFC3339),
	}
}
