package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

const maxUpdateRetries = 10

var ErrTooManyConflicts = errors.New("room changed concurrently too many times")

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository - rooms expire ttl after their last change; zero keeps them forever.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal(response, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// Update - loads the room (a new one if absent), applies fn and stores the result in one
// optimistic transaction. An error from fn aborts without writing. Rooms left empty are deleted.
func (that *dbRoom) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	key := roomKey(id)

	var updated *entity.Room

	txf := func(tx *redis.Tx) error {
		room := entity.NewRoom(id)

		response, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to get room: %w", err)
		default:
			if err = json.Unmarshal(response, room); err != nil {
				return fmt.Errorf("failed to unmarshal room: %w", err)
			}
		}

		if err = fn(room); err != nil {
			return err
		}

		roomJSON, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if room.IsEmpty() {
				pipe.Del(ctx, key)
				return nil
			}

			pipe.Set(ctx, key, roomJSON, that.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = room

		return nil
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return nil, err
	}

	return nil, fmt.Errorf("%w: %s", ErrTooManyConflicts, id)
}
