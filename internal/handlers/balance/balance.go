package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boostmart/boostmart/internal/dto"
	"github.com/boostmart/boostmart/internal/service/balanceservice"
	"github.com/boostmart/boostmart/pkg/auth"
	"github.com/boostmart/boostmart/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	Deposit(ctx context.Context, userID int, amount int64) (int64, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current balance
//	@Description	Retrieve the authenticated user's balance
//	@Tags			Balance
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		respondBalanceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Balance: balance})
}

// Deposit godoc
//
//	@Summary		Top up the balance
//	@Description	Credit the authenticated user's balance
//	@Tags			Balance
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit request body"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid amount"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/balance/deposit [post]
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	balance, err := h.balanceService.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		respondBalanceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Balance: balance})
}

func respondBalanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balanceservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, balanceservice.ErrInvalidAmount):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
