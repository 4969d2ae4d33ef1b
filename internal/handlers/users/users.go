package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/internal/dto"
	"github.com/boostmart/boostmart/internal/service/userservice"
	"github.com/boostmart/boostmart/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	List(ctx context.Context) ([]domain.User, error)
	ChangeRole(ctx context.Context, userID int, role string) (*domain.User, error)
	Remove(ctx context.Context, userID int) error
	Count(ctx context.Context) (int, error)
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUsers godoc
//
//	@Summary		List all users
//	@Description	Admin-only listing of every account
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.UserResponseDTO
//	@Failure		403	{object}	utils.Response	"Not an admin"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.userService.List(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.UserResponseDTO, 0, len(list))
	for i := range list {
		response = append(response, dto.UserResponseDTO{
			ID:       list[i].ID,
			Email:    list[i].Email,
			Username: list[i].Username,
			Role:     list[i].Role,
			Balance:  list[i].Balance,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// UpdateRole godoc
//
//	@Summary		Change a user's role
//	@Description	Admin-only role assignment (customer, booster, admin)
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int						true	"User id"
//	@Param			request	body	dto.UpdateRoleRequestDTO	true	"Role request body"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		400	{object}	utils.Response	"Unknown role"
//	@Failure		403	{object}	utils.Response	"Not an admin"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.ChangeRole(r.Context(), userID, req.Role)
	if err != nil {
		respondUserError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserResponseDTO{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		Balance:  user.Balance,
	})
}

// DeleteUser godoc
//
//	@Summary		Remove a user
//	@Description	Admin-only account removal; a removed user's token stops working
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response
//	@Failure		403	{object}	utils.Response	"Not an admin"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.userService.Remove(r.Context(), userID); err != nil {
		respondUserError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "User removed"})
}

// GetCount godoc
//
//	@Summary		Count users
//	@Description	Public count of registered accounts
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	dto.UserCountResponseDTO
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/count [get]
func (h *UserHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.userService.Count(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserCountResponseDTO{Count: count})
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	return userID, true
}

func respondUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, userservice.ErrInvalidRole):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
