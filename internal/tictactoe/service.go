package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

const (
	MessageYouWon  = "You Won!"
	MessageYouLost = "You Lost!"
	MessageTie     = "The Game is a TIE!"
)

// Emitter - the sending side of an event connection.
type Emitter interface {
	Emit(event events.Event, payload any) error
}

// GameService - sends the player's actions to the room server.
type GameService struct {
	logger   *slog.Logger
	socket   Emitter
	notifier Notifier
}

func NewGameService(logger *slog.Logger, socket Emitter, notifier Notifier) *GameService {
	return &GameService{
		logger:   logger.With("component", "game_service"),
		socket:   socket,
		notifier: notifier,
	}
}

func (that *GameService) emit(event events.Event, payload any) error {
	if that.socket == nil {
		return apperror.ErrSocketUnavailable
	}

	if err := that.socket.Emit(event, payload); err != nil {
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}

	return nil
}

func (that *GameService) JoinGame(roomID string) error {
	payload := entity.JoinRoom{RoomID: roomID}
	if err := entity.Validate(payload); err != nil {
		return err
	}

	return that.emit(events.JoinGame, payload)
}

// UpdateGame - places the move, sends the new matrix and, when the move decides the game,
// tells the opponent and the local player the result.
func (that *GameService) UpdateGame(board entity.Board, move entity.Move) (entity.Board, error) {
	log := that.logger.With("method", "UpdateGame")

	if err := entity.Validate(move); err != nil {
		return board, err
	}

	next, err := board.Apply(move)
	if err != nil {
		return board, fmt.Errorf("failed to apply move: %w", err)
	}

	if err = that.emit(events.UpdateGame, entity.GameUpdate{Matrix: next}); err != nil {
		return board, err
	}

	switch next.Evaluate(move.Symbol) {
	case entity.OutcomeWon:
		if err = that.emit(events.GameWin, entity.GameWin{Message: MessageYouLost}); err != nil {
			log.Error("failed to announce win", "error", err)
		}
		that.notifier.Notify(MessageYouWon)
	case entity.OutcomeTie:
		if err = that.emit(events.GameWin, entity.GameWin{Message: MessageTie}); err != nil {
			log.Error("failed to announce tie", "error", err)
		}
		that.notifier.Notify(MessageTie)
	case entity.OutcomeOngoing, entity.OutcomeLost:
	}

	return next, nil
}

func (that *GameService) JoinChat(roomID string) error {
	payload := entity.JoinChat{RoomID: roomID}
	if err := entity.Validate(payload); err != nil {
		return err
	}

	return that.emit(events.JoinChat, payload)
}

func (that *GameService) SendMessage(text string) error {
	payload := entity.SendMessage{Message: text}
	if err := entity.Validate(payload); err != nil {
		return err
	}

	return that.emit(events.Message, payload)
}
