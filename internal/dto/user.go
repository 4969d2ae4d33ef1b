package dto

type UserResponseDTO struct {
	ID       int    `json:"id" example:"1"`
	Email    string `json:"email" example:"player@example.com"`
	Username string `json:"username" example:"player1"`
	Role     string `json:"role" example:"customer"`
	Balance  int64  `json:"balance" example:"1500"`
}

type UpdateRoleRequestDTO struct {
	Role string `json:"role" validate:"required,oneof=customer booster admin" example:"booster"`
}

type UserCountResponseDTO struct {
	Count int `json:"count" example:"42"`
}
