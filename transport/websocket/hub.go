package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
)

type member struct {
	playerID string
	conn     *socket.Conn
}

// hub - room membership of live connections. Game and chat rooms use separate keys.
type hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[string]member
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger: logger,
		rooms:  make(map[string]map[string]member),
	}
}

func gameKey(roomID string) string {
	return "game:" + roomID
}

func chatKey(roomID string) string {
	return "chat:" + roomID
}

func (that *hub) join(key, playerID string, conn *socket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[key]
	if !ok {
		members = make(map[string]member)
		that.rooms[key] = members
	}

	members[conn.ID()] = member{playerID: playerID, conn: conn}
}

func (that *hub) leave(key string, conn *socket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[key]
	if !ok {
		return
	}

	delete(members, conn.ID())

	if len(members) == 0 {
		delete(that.rooms, key)
	}
}

func (that *hub) members(key string) []member {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return lo.Values(that.rooms[key])
}

// broadcast - emits to every member of the room except the sender.
func (that *hub) broadcast(key string, except *socket.Conn, event events.Event, payload any) error {
	targets := lo.Filter(that.members(key), func(m member, _ int) bool {
		return except == nil || m.conn.ID() != except.ID()
	})

	var errs []error
	for _, target := range targets {
		if err := target.conn.Emit(event, payload); err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", target.playerID, err))
		}
	}

	that.logger.Debug("broadcast", "room", key, "event", event, "recipients", len(targets))

	return errors.Join(errs...)
}
