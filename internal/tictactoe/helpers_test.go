package tictactoe

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSocket struct {
	mu       sync.Mutex
	nextID   int
	handlers map[events.Event]map[int]socket.Handler
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{handlers: make(map[events.Event]map[int]socket.Handler)}
}

func (f *fakeSocket) On(event events.Event, handler socket.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	if f.handlers[event] == nil {
		f.handlers[event] = make(map[int]socket.Handler)
	}
	f.handlers[event][id] = handler

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers[event], id)
	}
}

func (f *fakeSocket) count(event events.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.handlers[event])
}

func (f *fakeSocket) push(event events.Event, payload string) {
	f.mu.Lock()
	handlers := make([]socket.Handler, 0, len(f.handlers[event]))
	for _, handler := range f.handlers[event] {
		handlers = append(handlers, handler)
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(json.RawMessage(payload))
	}
}

type updaterMock struct {
	mock.Mock
}

func (m *updaterMock) UpdateGame(board entity.Board, move entity.Move) (entity.Board, error) {
	args := m.Called(board, move)
	return args.Get(0).(entity.Board), args.Error(1)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type emitted struct {
	event   events.Event
	payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (e *recordingEmitter) Emit(event events.Event, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, emitted{event: event, payload: payload})

	return nil
}
