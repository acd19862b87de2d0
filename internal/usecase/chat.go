package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

type chatRepo interface {
	Append(ctx context.Context, roomID string, message entity.ChatMessage) error
	History(ctx context.Context, roomID string, limit int) ([]entity.ChatMessage, error)
}

type censor interface {
	Apply(text string) string
}

type Chat struct {
	logger      *slog.Logger
	chatRepo    chatRepo
	censor      censor
	historySize int

	now func() time.Time
}

func NewChat(logger *slog.Logger, chatRepo chatRepo, censor censor, historySize int) *Chat {
	return &Chat{
		logger: logger,

		chatRepo:    chatRepo,
		censor:      censor,
		historySize: historySize,

		now: time.Now,
	}
}

// JoinChat - returns the room's recent history, oldest first.
func (that *Chat) JoinChat(ctx context.Context, roomID string) ([]entity.ChatMessage, error) {
	history, err := that.chatRepo.History(ctx, roomID, that.historySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	return history, nil
}

// Send - censors and stores a message from the player.
func (that *Chat) Send(ctx context.Context, roomID, playerID, text string) (entity.ChatMessage, error) {
	log := that.logger.With("method", "Send", "roomID", roomID, "playerID", playerID)

	text = strings.TrimSpace(text)
	if text == "" {
		return entity.ChatMessage{}, apperror.ErrEmptyChatMessage
	}

	if err := entity.Validate(entity.SendMessage{Message: text}); err != nil {
		return entity.ChatMessage{}, err
	}

	message := entity.ChatMessage{
		PlayerID: playerID,
		Message:  that.censor.Apply(text),
		SentAt:   that.now().UTC(),
	}

	if message.Message != text {
		log.Info("chat message censored")
	}

	if err := that.chatRepo.Append(ctx, roomID, message); err != nil {
		return entity.ChatMessage{}, fmt.Errorf("failed to store chat message: %w", err)
	}

	return message, nil
}
