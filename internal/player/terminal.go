// Package player is the terminal front end: it mounts the board component on a socket
// connection, draws the board after every change and turns typed lines into clicks.
package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/tictactoe"
)

type Conn interface {
	tictactoe.Socket
	tictactoe.Emitter
}

type Option func(*Terminal)

// WithAutoplay - lets bot play every turn of the local player.
func WithAutoplay(bot *Bot) Option {
	return func(terminal *Terminal) {
		terminal.bot = bot
	}
}

type Terminal struct {
	logger  *slog.Logger
	roomID  string
	colored bool

	outMu sync.Mutex
	out   io.Writer

	component *tictactoe.Component
	service   *tictactoe.GameService
	bot       *Bot

	offs []func()
}

func NewTerminal(logger *slog.Logger, conn Conn, out io.Writer, roomID string, colored bool, opts ...Option) *Terminal {
	terminal := &Terminal{
		logger:  logger,
		roomID:  roomID,
		colored: colored,
		out:     out,
	}

	for _, opt := range opts {
		opt(terminal)
	}

	notifier := tictactoe.NotifierFunc(terminal.notify)

	terminal.service = tictactoe.NewGameService(logger, conn, notifier)
	terminal.component = tictactoe.New(logger, terminal.service, notifier,
		tictactoe.WithOnChange(terminal.changed))

	// the room banner goes out before the component redraws the board
	terminal.offs = append(terminal.offs,
		conn.On(events.Connect, terminal.handleConnect),
		conn.On(events.RoomJoined, terminal.handleRoomJoined),
		conn.On(events.RoomJoinError, terminal.handleRoomJoinError),
		conn.On(events.ChatJoined, terminal.handleChatJoined),
		conn.On(events.OnMessage, terminal.handleMessage),
		terminal.component.Mount(conn),
	)

	return terminal
}

// Close - removes every handler the terminal registered.
func (that *Terminal) Close() {
	for _, off := range that.offs {
		off()
	}
}

// Run - executes typed commands until /quit, end of input or ctx is done.
func (that *Terminal) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	that.printf("%s\n", Help)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			if quit := that.execute(line); quit {
				return nil
			}
		}
	}
}

func (that *Terminal) execute(line string) bool {
	if line == "" {
		return false
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		that.printf("%v\n%s\n", err, Help)
		return false
	}

	switch cmd.Kind {
	case CommandQuit:
		return true
	case CommandHelp:
		that.printf("%s\n", Help)
	case CommandBoard:
		that.draw(that.component.View())
	case CommandSay:
		if err = that.service.SendMessage(cmd.Text); err != nil {
			that.printf("message not sent: %v\n", err)
		}
	case CommandMove:
		that.click(cmd.Row, cmd.Column)
	}

	return false
}

func (that *Terminal) click(row, col int) {
	view := that.component.View()

	accepted, err := that.component.Click(row, col)
	if err != nil {
		that.printf("move failed: %v\n", err)
		return
	}

	if accepted {
		return
	}

	switch {
	case view.Waiting:
		that.printf("%s\n", tictactoe.WaitingBanner)
	case view.Blocked:
		that.printf("wait for your turn\n")
	default:
		that.printf("cell %d,%d is not available\n", row, col)
	}
}

func (that *Terminal) handleConnect(json.RawMessage) {
	if err := that.service.JoinGame(that.roomID); err != nil {
		that.logger.Error("failed to join game", "roomID", that.roomID, "error", err)
	}

	if err := that.service.JoinChat(that.roomID); err != nil {
		that.logger.Error("failed to join chat", "roomID", that.roomID, "error", err)
	}
}

func (that *Terminal) handleRoomJoined(payload json.RawMessage) {
	var joined entity.RoomJoined
	if err := json.Unmarshal(payload, &joined); err != nil {
		that.logger.Error("failed to decode room_joined", "error", err)
		return
	}

	if joined.Message == "" {
		that.printf("joined room %s\n", joined.RoomID)
	}
}

func (that *Terminal) handleRoomJoinError(payload json.RawMessage) {
	var joinErr entity.RoomJoinError
	if err := json.Unmarshal(payload, &joinErr); err != nil {
		that.logger.Error("failed to decode room_join_error", "error", err)
		return
	}

	that.printf("%s\n", joinErr.Error)
}

func (that *Terminal) handleChatJoined(payload json.RawMessage) {
	var joined entity.ChatJoined
	if err := json.Unmarshal(payload, &joined); err != nil {
		that.logger.Error("failed to decode chat_joined", "error", err)
		return
	}

	for _, message := range joined.History {
		that.printMessage(message)
	}
}

func (that *Terminal) handleMessage(payload json.RawMessage) {
	var message entity.ChatMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		that.logger.Error("failed to decode on_message", "error", err)
		return
	}

	that.printMessage(message)
}

func (that *Terminal) printMessage(message entity.ChatMessage) {
	sender := message.PlayerID
	if len(sender) > 8 {
		sender = sender[:8]
	}

	that.printf("[%s] %s: %s\n", message.SentAt.Local().Format("15:04"), sender, message.Message)
}

func (that *Terminal) notify(message string) {
	that.printf("*** %s ***\n", message)
}

func (that *Terminal) changed(view tictactoe.View) {
	that.draw(view)

	if that.bot == nil || view.Phase != entity.PhaseMyTurn {
		return
	}

	row, col, err := that.bot.Pick(view.Cells)
	if err != nil {
		that.logger.Error("bot could not move", "error", err)
		return
	}

	that.printf("autoplay: %d %d\n", row, col)
	that.click(row, col)
}

func (that *Terminal) draw(view tictactoe.View) {
	that.outMu.Lock()
	defer that.outMu.Unlock()

	if err := tictactoe.Render(that.out, view, that.colored); err != nil {
		that.logger.Error("failed to render board", "error", err)
	}
}

func (that *Terminal) printf(format string, args ...any) {
	that.outMu.Lock()
	defer that.outMu.Unlock()

	if _, err := fmt.Fprintf(that.out, format, args...); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		that.logger.Debug("failed to write output", "error", err)
	}
}
