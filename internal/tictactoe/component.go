// Package tictactoe is the player's board: it mirrors the server-pushed game state,
// projects it into a view and turns clicks on free cells into moves.
package tictactoe

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
)

// Socket - the subscription side of an event connection.
type Socket interface {
	On(event events.Event, handler socket.Handler) func()
}

// MoveUpdater - submits a move and returns the board after it.
type MoveUpdater interface {
	UpdateGame(board entity.Board, move entity.Move) (entity.Board, error)
}

// Notifier - shows a message to the player. It must not call back into the Component.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

// Evaluator - decides the outcome of a board for the given symbol.
type Evaluator func(board entity.Board, symbol entity.Symbol) entity.Outcome

func evaluateBoard(board entity.Board, symbol entity.Symbol) entity.Outcome {
	return board.Evaluate(symbol)
}

// View - what the player sees: the cells plus whether input is locked.
type View struct {
	Cells   entity.Board
	Symbol  entity.Symbol
	Phase   entity.Phase
	Outcome entity.Outcome
	Blocked bool
	Waiting bool
}

type Option func(*Component)

func WithEvaluator(evaluate Evaluator) Option {
	return func(that *Component) {
		that.evaluate = evaluate
	}
}

// WithOnChange - registers fn to be called with the new view after every state change.
func WithOnChange(fn func(View)) Option {
	return func(that *Component) {
		that.onChange = fn
	}
}

type Component struct {
	logger   *slog.Logger
	updater  MoveUpdater
	notifier Notifier
	evaluate Evaluator
	onChange func(View)

	mu          sync.Mutex
	board       entity.Board
	session     entity.Session
	mounted     bool
	unsubscribe []func()
}

func New(logger *slog.Logger, updater MoveUpdater, notifier Notifier, opts ...Option) *Component {
	component := &Component{
		logger:   logger.With("component", "board"),
		updater:  updater,
		notifier: notifier,
		evaluate: evaluateBoard,
		board:    entity.NewBoard(),
		session:  entity.Session{Outcome: entity.OutcomeOngoing},
	}

	for _, opt := range opts {
		opt(component)
	}

	return component
}

// Mount - subscribes the game handlers once and returns the function that removes them.
// A nil socket is skipped.
func (that *Component) Mount(sock Socket) func() {
	if sock == nil {
		that.logger.Debug("socket is not connected, skipping subscriptions")
		return func() {}
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.mounted {
		return that.unmount
	}

	that.unsubscribe = []func(){
		sock.On(events.RoomJoined, that.handleRoomJoined),
		sock.On(events.OnGameUpdate, that.handleGameUpdate),
		sock.On(events.StartGame, that.handleGameStart),
		sock.On(events.OnGameWin, that.handleGameWin),
	}
	that.mounted = true

	return that.unmount
}

func (that *Component) unmount() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, off := range that.unsubscribe {
		off()
	}

	that.unsubscribe = nil
	that.mounted = false
}

func (that *Component) View() View {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.viewLocked()
}

func (that *Component) Session() entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session
}

func (that *Component) viewLocked() View {
	return View{
		Cells:   that.board,
		Symbol:  that.session.Symbol,
		Phase:   that.session.Phase(),
		Outcome: that.session.Outcome,
		Blocked: that.session.IsBlocked() || that.session.Outcome.IsDecided(),
		Waiting: !that.session.IsGameStarted,
	}
}

// Click - plays the cell for the local player. It reports false without submitting
// anything when input is locked or the cell is taken.
func (that *Component) Click(row, col int) (bool, error) {
	that.mu.Lock()

	if that.viewLocked().Blocked {
		that.mu.Unlock()
		return false, nil
	}

	cell, err := that.board.Cell(row, col)
	if err != nil {
		that.mu.Unlock()
		return false, err
	}

	if cell != entity.Empty {
		that.mu.Unlock()
		return false, nil
	}

	move := entity.Move{Row: row, Column: col, Symbol: that.session.Symbol}

	next, err := that.updater.UpdateGame(that.board, move)
	if err != nil {
		that.mu.Unlock()
		return false, fmt.Errorf("failed to update game: %w", err)
	}

	that.board = next
	that.session.IsPlayerTurn = false
	that.session.Outcome = that.evaluate(next, move.Symbol)
	view := that.viewLocked()
	that.mu.Unlock()

	that.changed(view)

	return true, nil
}

// handleRoomJoined - being seated in a room means waiting for an opponent on a fresh board.
func (that *Component) handleRoomJoined(payload json.RawMessage) {
	log := that.logger.With("method", "handleRoomJoined")

	var joined entity.RoomJoined
	if err := json.Unmarshal(payload, &joined); err != nil {
		log.Error("failed to decode room_joined", "error", err)
		return
	}

	that.mu.Lock()
	that.board = entity.NewBoard()
	that.session = entity.Session{Outcome: entity.OutcomeOngoing}
	view := that.viewLocked()
	that.mu.Unlock()

	if joined.Message != "" {
		that.notifier.Notify(joined.Message)
	}

	that.changed(view)
}

func (that *Component) handleGameUpdate(payload json.RawMessage) {
	log := that.logger.With("method", "handleGameUpdate")

	var board entity.Board
	if err := json.Unmarshal(payload, &board); err != nil {
		log.Error("failed to decode board", "error", err)
		return
	}

	that.mu.Lock()
	if !that.session.IsGameStarted {
		that.session.IsGameStarted = true
	}
	that.board = board
	that.session.Outcome = that.evaluate(board, that.session.Symbol)
	that.session.IsPlayerTurn = true
	view := that.viewLocked()
	that.mu.Unlock()

	that.changed(view)
}

func (that *Component) handleGameStart(payload json.RawMessage) {
	log := that.logger.With("method", "handleGameStart")

	var options entity.StartGame
	if err := entity.DecodePayload(payload, &options); err != nil {
		log.Error("failed to decode start options", "error", err)
		return
	}

	if options.Message != "" {
		log.Info("game started", "message", options.Message)
	}

	that.mu.Lock()
	that.board = entity.NewBoard()
	that.session = entity.Session{
		Symbol:        options.Symbol,
		IsGameStarted: true,
		IsPlayerTurn:  options.Start,
		Outcome:       entity.OutcomeOngoing,
	}
	view := that.viewLocked()
	that.mu.Unlock()

	that.changed(view)
}

func (that *Component) handleGameWin(payload json.RawMessage) {
	log := that.logger.With("method", "handleGameWin")

	message, err := decodeWinMessage(payload)
	if err != nil {
		log.Error("failed to decode win message", "error", err)
		return
	}

	that.mu.Lock()
	that.session.IsPlayerTurn = false
	view := that.viewLocked()
	that.mu.Unlock()

	that.notifier.Notify(message)
	that.changed(view)
}

// decodeWinMessage - accepts the bare string and the {"message": ...} form.
func decodeWinMessage(payload json.RawMessage) (string, error) {
	var message string
	if err := json.Unmarshal(payload, &message); err == nil {
		return message, nil
	}

	var win entity.GameWin
	if err := entity.DecodePayload(payload, &win); err != nil {
		return "", err
	}

	return win.Message, nil
}

func (that *Component) changed(view View) {
	if that.onChange != nil {
		that.onChange(view)
	}
}
