package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

type mockRoomRepo struct {
	mock.Mock

	rooms map[string]*entity.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: map[string]*entity.Room{}}
}

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)

	room, _ := args.Get(0).(*entity.Room)

	return room, args.Error(1)
}

// Update applies fn to the in-memory room unless the expectation returns an error.
func (that *mockRoomRepo) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	if err := that.Called(ctx, id).Error(0); err != nil {
		return nil, err
	}

	room, ok := that.rooms[id]
	if !ok {
		room = entity.NewRoom(id)
	}

	copied := *room
	copied.Players = make([]*entity.Player, 0, len(room.Players))
	for _, player := range room.Players {
		p := *player
		copied.Players = append(copied.Players, &p)
	}

	if err := fn(&copied); err != nil {
		return nil, err
	}

	if copied.IsEmpty() {
		delete(that.rooms, id)
	} else {
		that.rooms[id] = &copied
	}

	return &copied, nil
}

type mockChatRepo struct {
	mock.Mock
}

func (that *mockChatRepo) Append(ctx context.Context, roomID string, message entity.ChatMessage) error {
	return that.Called(ctx, roomID, message).Error(0)
}

func (that *mockChatRepo) History(ctx context.Context, roomID string, limit int) ([]entity.ChatMessage, error) {
	args := that.Called(ctx, roomID, limit)

	history, _ := args.Get(0).([]entity.ChatMessage)

	return history, args.Error(1)
}

type fakeCensor struct{}

func (fakeCensor) Apply(text string) string {
	if text == "noob" {
		return "****"
	}

	return text
}
