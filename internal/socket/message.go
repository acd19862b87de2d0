package socket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

// Message - the envelope of every frame: the event name and its JSON payload.
type Message struct {
	Action  events.Event    `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler - receives the raw payload of one event.
type Handler func(payload json.RawMessage)
