package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

type ChatRepository interface {
	Append(ctx context.Context, roomID string, message entity.ChatMessage) error
	History(ctx context.Context, roomID string, limit int) ([]entity.ChatMessage, error)
}

type dbChat struct {
	client *redis.Client
	size   int
	ttl    time.Duration
}

// NewChatRepository - keeps the last size messages of every room.
func NewChatRepository(client *redis.Client, size int, ttl time.Duration) ChatRepository {
	return &dbChat{
		client: client,
		size:   size,
		ttl:    ttl,
	}
}

func chatKey(roomID string) string {
	return "chat:" + roomID
}

func (that *dbChat) Append(ctx context.Context, roomID string, message entity.ChatMessage) error {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	key := chatKey(roomID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, messageJSON)
		pipe.LTrim(ctx, key, int64(-that.size), -1)
		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

// History - returns up to limit latest messages, oldest first.
func (that *dbChat) History(ctx context.Context, roomID string, limit int) ([]entity.ChatMessage, error) {
	if limit <= 0 {
		return []entity.ChatMessage{}, nil
	}

	response, err := that.client.LRange(ctx, chatKey(roomID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}

	history := make([]entity.ChatMessage, 0, len(response))
	for _, item := range response {
		var message entity.ChatMessage
		if err = json.Unmarshal([]byte(item), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		history = append(history, message)
	}

	return history, nil
}
