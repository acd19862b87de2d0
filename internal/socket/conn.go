// Package socket carries named events over a websocket connection.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

var ErrDial = errors.New("failed to dial socket")

// Conn - one side of an event connection. Emit may be called from any goroutine;
// handlers run one at a time on the goroutine that called Listen.
type Conn struct {
	id     string
	logger *slog.Logger
	ws     *websocket.Conn

	writeMu sync.Mutex

	handlersMu sync.RWMutex
	handlers   map[events.Event]map[uint64]Handler
	nextID     uint64

	closed atomic.Bool

	pongWait   time.Duration
	pingPeriod time.Duration
}

func New(logger *slog.Logger, ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessageSize)

	id := uuid.NewString()

	return &Conn{
		id:       id,
		logger:   logger.With("component", "socket", "conn", id),
		ws:       ws,
		handlers: make(map[events.Event]map[uint64]Handler),

		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

// Dial - opens a client connection to url.
func Dial(ctx context.Context, logger *slog.Logger, url string, header http.Header) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDial, url, err)
	}

	return New(logger, ws), nil
}

func (that *Conn) ID() string {
	if that == nil {
		return ""
	}

	return that.id
}

// On - registers handler for event and returns the function that removes it.
// On a nil connection nothing is registered.
func (that *Conn) On(event events.Event, handler Handler) func() {
	if that == nil {
		return func() {}
	}

	that.handlersMu.Lock()
	id := that.nextID
	that.nextID++
	if that.handlers[event] == nil {
		that.handlers[event] = make(map[uint64]Handler)
	}
	that.handlers[event][id] = handler
	that.handlersMu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			that.handlersMu.Lock()
			defer that.handlersMu.Unlock()

			delete(that.handlers[event], id)
			if len(that.handlers[event]) == 0 {
				delete(that.handlers, event)
			}
		})
	}
}

// Emit - sends event with payload encoded as JSON. A nil payload is omitted.
func (that *Conn) Emit(event events.Event, payload any) error {
	if that == nil {
		return apperror.ErrSocketUnavailable
	}

	msg := Message{Action: event}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		msg.Payload = raw
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s: %w", event, err)
	}

	return nil
}

// Listen - reads messages and dispatches them until the connection closes or ctx is done.
// The local connect event is dispatched first. A peer that stops answering pings is dropped.
func (that *Conn) Listen(ctx context.Context) error {
	if that == nil {
		return apperror.ErrSocketUnavailable
	}

	log := that.logger.With("method", "Listen")

	stop := context.AfterFunc(ctx, func() {
		_ = that.Close()
	})
	defer stop()

	if err := that.ws.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	that.ws.SetPongHandler(func(string) error {
		return that.ws.SetReadDeadline(time.Now().Add(that.pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go that.keepAlive(done)

	that.dispatch(events.Connect, nil)

	for {
		_, data, err := that.ws.ReadMessage()
		if err != nil {
			if that.closed.Load() || ctx.Err() != nil ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		that.dispatch(msg.Action, msg.Payload)
	}
}

// keepAlive - pings the peer until done is closed or a ping cannot be written.
func (that *Conn) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(that.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				that.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (that *Conn) dispatch(event events.Event, payload json.RawMessage) {
	that.handlersMu.RLock()
	registered := that.handlers[event]
	ids := lo.Keys(registered)
	slices.Sort(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, registered[id])
	}
	that.handlersMu.RUnlock()

	if len(handlers) == 0 {
		that.logger.Debug("no handlers for event", "event", event)
		return
	}

	for _, handler := range handlers {
		handler(payload)
	}
}

// Close - sends a close frame and releases the connection. Safe to call more than once.
func (that *Conn) Close() error {
	if that == nil {
		return nil
	}

	if !that.closed.CompareAndSwap(false, true) {
		return nil
	}

	deadline := time.Now().Add(writeWait)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := that.ws.WriteControl(websocket.CloseMessage, closeMsg, deadline); err != nil &&
		!errors.Is(err, websocket.ErrCloseSent) {
		that.logger.Debug("failed to send close frame", "error", err)
	}

	if err := that.ws.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
