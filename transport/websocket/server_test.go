package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/moderation"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
	"github.com/rocketscienceinc/tictactoe-socket/internal/usecase"
)

const waitTimeout = 2 * time.Second

type memoryRooms struct {
	mu    sync.Mutex
	rooms map[string][]byte
}

func (that *memoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room := entity.NewRoom(id)
	if raw, ok := that.rooms[id]; ok {
		if err := json.Unmarshal(raw, room); err != nil {
			return nil, err
		}
	}

	return room, nil
}

func (that *memoryRooms) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	room, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = fn(room); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}

	that.rooms[id] = raw

	return room, nil
}

type memoryChat struct {
	mu       sync.Mutex
	messages map[string][]entity.ChatMessage
}

func (that *memoryChat) Append(_ context.Context, roomID string, message entity.ChatMessage) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.messages[roomID] = append(that.messages[roomID], message)

	return nil
}

func (that *memoryChat) History(_ context.Context, roomID string, _ int) ([]entity.ChatMessage, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.ChatMessage{}, that.messages[roomID]...), nil
}

func newTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	censor, err := moderation.NewCensor([]string{"noob"}, '*')
	require.NoError(t, err)

	rooms := usecase.NewRoomManager(logger, &memoryRooms{rooms: map[string][]byte{}})
	chat := usecase.NewChat(logger, &memoryChat{messages: map[string][]entity.ChatMessage{}}, censor, 10)

	srv := httptest.NewServer(New(logger, rooms, chat).Router())
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type client struct {
	conn     *socket.Conn
	received chan socket.Message
}

func connect(t *testing.T, url string) *client {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	conn, err := socket.Dial(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), url, nil)
	require.NoError(t, err)

	c := &client{conn: conn, received: make(chan socket.Message, 64)}

	for _, event := range events.All() {
		conn.On(event, func(payload json.RawMessage) {
			c.received <- socket.Message{Action: event, Payload: payload}
		})
	}

	go func() { _ = conn.Listen(ctx) }()

	t.Cleanup(func() {
		cancel()
		_ = conn.Close()
	})

	return c
}

func (that *client) emit(t *testing.T, event events.Event, payload any) {
	t.Helper()
	require.NoError(t, that.conn.Emit(event, payload))
}

// expect - waits for event, skipping everything else.
func (that *client) expect(t *testing.T, event events.Event) json.RawMessage {
	t.Helper()

	timeout := time.After(waitTimeout)
	for {
		select {
		case msg := <-that.received:
			if msg.Action == event {
				return msg.Payload
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", event)
			return nil
		}
	}
}

// reply - the first event other than connect, or "" on timeout.
func (that *client) reply(t *testing.T) events.Event {
	t.Helper()

	timeout := time.After(waitTimeout)
	for {
		select {
		case msg := <-that.received:
			if msg.Action != events.Connect {
				return msg.Action
			}
		case <-timeout:
			return ""
		}
	}
}

func (that *client) expectNone(t *testing.T, event events.Event, within time.Duration) {
	t.Helper()

	timeout := time.After(within)
	for {
		select {
		case msg := <-that.received:
			if msg.Action == event {
				t.Fatalf("unexpected %s: %s", event, msg.Payload)
			}
		case <-timeout:
			return
		}
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(raw, &value))

	return value
}

func TestServer_GameFlow(t *testing.T) {
	url := newTestServer(t)

	alice := connect(t, url)
	bob := connect(t, url)

	// Given: alice waits in a room
	alice.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})
	joined := decode[entity.RoomJoined](t, alice.expect(t, events.RoomJoined))
	assert.Equal(t, "lobby", joined.RoomID)

	// When: bob joins the same room
	bob.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})

	// Then: bob starts as x and alice waits as o
	bob.expect(t, events.RoomJoined)
	bobStart := decode[entity.StartGame](t, bob.expect(t, events.StartGame))
	assert.Equal(t, entity.StartGame{Start: true, Symbol: entity.X}, bobStart)

	aliceStart := decode[entity.StartGame](t, alice.expect(t, events.StartGame))
	assert.Equal(t, entity.StartGame{Start: false, Symbol: entity.O}, aliceStart)

	// When: bob plays the center
	board := entity.NewBoard()
	board[1][1] = entity.X
	bob.emit(t, events.UpdateGame, entity.GameUpdate{Matrix: board})

	// Then: alice receives the bare matrix
	got := decode[entity.Board](t, alice.expect(t, events.OnGameUpdate))
	assert.Equal(t, board, got)

	t.Run("Out of turn update is dropped", func(t *testing.T) {
		// When: bob moves again before alice
		again := board
		again[0][0] = entity.X
		bob.emit(t, events.UpdateGame, entity.GameUpdate{Matrix: again})

		// Then: alice hears nothing
		alice.expectNone(t, events.OnGameUpdate, 200*time.Millisecond)
	})

	t.Run("Third player is turned away", func(t *testing.T) {
		carol := connect(t, url)

		// When: carol joins the full room
		carol.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})

		// Then: she gets the room full error
		joinErr := decode[entity.RoomJoinError](t, carol.expect(t, events.RoomJoinError))
		assert.Equal(t, roomFullMessage, joinErr.Error)
	})

	t.Run("Win is relayed", func(t *testing.T) {
		moves := []struct {
			player *client
			other  *client
			row    int
			col    int
			symbol entity.Symbol
		}{
			{alice, bob, 0, 0, entity.O},
			{bob, alice, 0, 1, entity.X},
			{alice, bob, 2, 2, entity.O},
			{bob, alice, 2, 1, entity.X},
		}

		for _, m := range moves {
			board[m.row][m.col] = m.symbol
			m.player.emit(t, events.UpdateGame, entity.GameUpdate{Matrix: board})
			m.other.expect(t, events.OnGameUpdate)
		}

		// When: bob, who completed the middle column, reports the result
		bob.emit(t, events.GameWin, entity.GameWin{Message: "You Lost!"})

		// Then: alice receives the bare message
		message := decode[string](t, alice.expect(t, events.OnGameWin))
		assert.Equal(t, "You Lost!", message)
	})
}

func TestServer_Chat(t *testing.T) {
	url := newTestServer(t)

	alice := connect(t, url)
	bob := connect(t, url)

	// Given: both players in the same chat
	alice.emit(t, events.JoinChat, entity.JoinChat{RoomID: "lobby"})
	joined := decode[entity.ChatJoined](t, alice.expect(t, events.ChatJoined))
	assert.Equal(t, "lobby", joined.RoomID)
	assert.Empty(t, joined.History)

	bob.emit(t, events.JoinChat, entity.JoinChat{RoomID: "lobby"})
	bob.expect(t, events.ChatJoined)

	// When: bob sends an insult
	bob.emit(t, events.Message, entity.SendMessage{Message: "you noob"})

	// Then: alice gets it censored
	message := decode[entity.ChatMessage](t, alice.expect(t, events.OnMessage))
	assert.Equal(t, "you ****", message.Message)
	assert.NotEmpty(t, message.PlayerID)
	assert.False(t, message.SentAt.IsZero())

	// And: bob does not get his own message back
	bob.expectNone(t, events.OnMessage, 200*time.Millisecond)

	// And: a late joiner sees the history
	carol := connect(t, url)
	carol.emit(t, events.JoinChat, entity.JoinChat{RoomID: "lobby"})
	late := decode[entity.ChatJoined](t, carol.expect(t, events.ChatJoined))
	require.Len(t, late.History, 1)
	assert.Equal(t, "you ****", late.History[0].Message)
}

func TestServer_InvalidJoin(t *testing.T) {
	url := newTestServer(t)
	alice := connect(t, url)

	// When: join_game arrives without a room id
	alice.emit(t, events.JoinGame, map[string]string{})

	// Then: the player is told why
	joinErr := decode[entity.RoomJoinError](t, alice.expect(t, events.RoomJoinError))
	assert.Contains(t, joinErr.Error, "RoomID")
}

func TestServer_Disconnect(t *testing.T) {
	url := newTestServer(t)

	alice := connect(t, url)
	bob := connect(t, url)

	alice.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})
	alice.expect(t, events.RoomJoined)
	bob.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})
	bob.expect(t, events.StartGame)
	alice.expect(t, events.StartGame)

	// When: bob drops
	require.NoError(t, bob.conn.Close())

	// Then: the seat frees up and a newcomer starts a game with alice
	joined := false
	for attempt := 0; attempt < 20 && !joined; attempt++ {
		carol := connect(t, url)
		carol.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})

		joined = carol.reply(t) == events.RoomJoined
		if !joined {
			time.Sleep(50 * time.Millisecond)
		}
	}
	require.True(t, joined)

	start := decode[entity.StartGame](t, alice.expect(t, events.StartGame))
	assert.Equal(t, entity.O, start.Symbol)
}

func TestServer_OpponentLeft(t *testing.T) {
	url := newTestServer(t)

	// Given: alice and bob mid-game
	alice := connect(t, url)
	bob := connect(t, url)

	alice.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})
	alice.expect(t, events.RoomJoined)
	bob.emit(t, events.JoinGame, entity.JoinRoom{RoomID: "lobby"})
	bob.expect(t, events.StartGame)
	alice.expect(t, events.StartGame)

	// When: bob drops
	require.NoError(t, bob.conn.Close())

	// Then: alice is told she is waiting in the same room again
	joined := decode[entity.RoomJoined](t, alice.expect(t, events.RoomJoined))
	assert.Equal(t, "lobby", joined.RoomID)
	assert.Equal(t, opponentLeftMessage, joined.Message)
}

func TestServer_SessionCookie(t *testing.T) {
	url := newTestServer(t)

	// When: a client connects without a cookie
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	// Then: a user_session cookie is issued
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	// When: the client comes back with it
	header := http.Header{}
	header.Add("Cookie", cookies[0].Name+"="+cookies[0].Value)

	again, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer again.Close()

	// Then: no new cookie is issued
	assert.Empty(t, resp.Cookies())
}
