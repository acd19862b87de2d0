package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

type roomRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
}

type RoomManager struct {
	logger   *slog.Logger
	roomRepo roomRepo
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger: logger,

		roomRepo: roomRepo,
	}
}

// JoinGame - puts the player into the room and reports whether this join started a game.
func (that *RoomManager) JoinGame(ctx context.Context, roomID, playerID string) (*entity.Room, bool, error) {
	log := that.logger.With("method", "JoinGame", "roomID", roomID, "playerID", playerID)

	var started bool

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		var joinErr error
		started, joinErr = room.Join(playerID)
		return joinErr
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to join room: %w", err)
	}

	log.Debug("player joined", "players", len(room.Players), "started", started)

	return room, started, nil
}

// LeaveGame - removes the player and returns the room as left behind.
// Leaving a room the player is not in is not an error and returns a nil room.
func (that *RoomManager) LeaveGame(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "LeaveGame", "roomID", roomID, "playerID", playerID)

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		return room.Leave(playerID)
	})
	if errors.Is(err, apperror.ErrNotInRoom) {
		log.Debug("player was not in the room")
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to leave room: %w", err)
	}

	return room, nil
}

// UpdateGame - accepts board as the room's new board if it is exactly one legal move of the player.
func (that *RoomManager) UpdateGame(ctx context.Context, roomID, playerID string, board entity.Board) (*entity.Room, entity.Move, error) {
	var move entity.Move

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		var playErr error
		move, playErr = room.Play(playerID, board)
		return playErr
	})
	if err != nil {
		return nil, entity.Move{}, fmt.Errorf("failed to update game: %w", err)
	}

	if room.IsFinished() {
		that.logger.Info("game finished", "method", "UpdateGame", "roomID", roomID, "winner", room.Winner)
	}

	return room, move, nil
}

func (that *RoomManager) FinishGame(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		return room.Finish(playerID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish game: %w", err)
	}

	return room, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}
