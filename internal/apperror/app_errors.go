package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameNotFinished   = errors.New("game has no winner yet")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomNotFound      = errors.New("room not found")
	ErrNotInRoom         = errors.New("player is not in the room")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrEmptyChatMessage  = errors.New("chat message is empty")
	ErrSocketUnavailable = errors.New("socket is not connected")
)
