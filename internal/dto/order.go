package dto

type CreateOrderRequestDTO struct {
	CurrentRank  int    `json:"current_rank" validate:"required" example:"7"`
	TargetRank   int    `json:"target_rank" validate:"required" example:"10"`
	Priority     bool   `json:"priority" example:"false"`
	Streaming    bool   `json:"streaming" example:"false"`
	GameUsername string `json:"game_username,omitempty" example:"summoner42"`
	GamePassword string `json:"game_password,omitempty"`
}

type QuoteResponseDTO struct {
	CurrentRank int   `json:"current_rank" example:"7"`
	TargetRank  int   `json:"target_rank" example:"10"`
	Priority    bool  `json:"priority"`
	Streaming   bool  `json:"streaming"`
	Price       int64 `json:"price" example:"790"`
}

type OrderResponseDTO struct {
	ID              int                  `json:"id" example:"1"`
	UserID          int                  `json:"user_id" example:"1"`
	CurrentRank     int                  `json:"current_rank" example:"7"`
	CurrentRankName string               `json:"current_rank_name" example:"Gümüş 1"`
	TargetRank      int                  `json:"target_rank" example:"10"`
	TargetRankName  string               `json:"target_rank_name" example:"Altın 1"`
	Price           int64                `json:"price" example:"790"`
	Status          string               `json:"status" example:"pending"`
	BoosterID       *int                 `json:"booster_id,omitempty" example:"2"`
	BoosterUsername *string              `json:"booster_username,omitempty" example:"booster1"`
	GameUsername    *string              `json:"game_username,omitempty"`
	GamePassword    *string              `json:"game_password,omitempty"`
	CreatedAt       string               `json:"created_at" example:"2020-12-09T16:09:57+03:00"`
	Messages        []MessageResponseDTO `json:"messages,omitempty"`
}

type MessageRequestDTO struct {
	Content string `json:"content" validate:"required,max=2000" example:"When can you start?"`
}

type MessageResponseDTO struct {
	ID         string `json:"id" example:"6f2d2a1e-0d8a-4f0e-9c8c-8a1a0b1c2d3e"`
	SenderID   int    `json:"sender_id" example:"1"`
	SenderName string `json:"sender_name" example:"player1"`
	Content    string `json:"content" example:"When can you start?"`
	SentAt     string `json:"sent_at" example:"2020-12-09T16:09:57+03:00"`
}
