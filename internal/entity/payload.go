package entity

import "time"

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

type RoomJoined struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message,omitempty"`
}

type RoomJoinError struct {
	Error string `json:"error"`
}

type StartGame struct {
	Start   bool   `json:"start"`
	Symbol  Symbol `json:"symbol"            validate:"oneof=x o"`
	Message string `json:"message,omitempty"`
}

// GameUpdate - sent with update_game. Subscribers of on_game_update receive the bare matrix.
type GameUpdate struct {
	Matrix Board `json:"matrix"`
}

// GameWin - sent with game_win. Subscribers of on_game_win receive the bare message.
type GameWin struct {
	Message string `json:"message" validate:"required,max=256"`
}

type JoinChat struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

type ChatJoined struct {
	RoomID  string        `json:"roomId"`
	History []ChatMessage `json:"history"`
}

type SendMessage struct {
	Message string `json:"message" validate:"required,max=500"`
}

type ChatMessage struct {
	PlayerID string    `json:"playerId"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt"`
}
