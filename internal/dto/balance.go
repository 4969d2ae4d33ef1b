package dto

type BalanceResponseDTO struct {
	Balance int64 `json:"balance" example:"1500"`
}

type DepositRequestDTO struct {
	Amount int64 `json:"amount" validate:"required,gt=0" example:"500"`
}
