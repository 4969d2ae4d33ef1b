package dto

type RegisterRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"player@example.com"`
	Username string `json:"username" validate:"required,min=3,max=50" example:"player1"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"player@example.com"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponseDTO struct {
	Token string          `json:"token"`
	User  UserResponseDTO `json:"user"`
}
