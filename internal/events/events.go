// Package events holds the socket event names shared by the player and the room server.
// The names are a wire contract and must not change.
package events

type Event string

const (
	Connect         Event = "connect"
	ConnectError    Event = "connect_error"
	JoinGame        Event = "join_game"
	RoomJoined      Event = "room_joined"
	RoomJoinError   Event = "room_join_error"
	UpdateGame      Event = "update_game"
	OnGameUpdate    Event = "on_game_update"
	StartGame       Event = "start_game"
	GameWin         Event = "game_win"
	OnGameWin       Event = "on_game_win"
	StartGameFirst  Event = "start_game_first"
	StartGameSecond Event = "start_game_second"
	JoinChat        Event = "join_chat"
	ChatJoined      Event = "chat_joined"
	Message         Event = "message"
	OnMessage       Event = "on_message"
)

var ordered = []Event{
	Connect,
	ConnectError,
	JoinGame,
	RoomJoined,
	RoomJoinError,
	UpdateGame,
	OnGameUpdate,
	StartGame,
	GameWin,
	OnGameWin,
	StartGameFirst,
	StartGameSecond,
	JoinChat,
	ChatJoined,
	Message,
	OnMessage,
}

var registry = func() map[string]Event {
	m := make(map[string]Event, len(ordered))
	for _, event := range ordered {
		m[string(event)] = event
	}
	return m
}()

func (e Event) String() string {
	return string(e)
}

// Lookup - resolves a semantic identifier to its wire name.
func Lookup(id string) (Event, bool) {
	event, ok := registry[id]
	return event, ok
}

// All - returns every event in declaration order.
func All() []Event {
	out := make([]Event, len(ordered))
	copy(out, ordered)
	return out
}

// Registry - returns a copy of the identifier to wire name mapping.
func Registry() map[string]Event {
	out := make(map[string]Event, len(registry))
	for id, event := range registry {
		out[id] = event
	}
	return out
}
