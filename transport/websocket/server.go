package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
)

const (
	sessionCookie   = "user_session"
	shutdownTimeout = 5 * time.Second
)

type uRoom interface {
	JoinGame(ctx context.Context, roomID, playerID string) (*entity.Room, bool, error)
	LeaveGame(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	UpdateGame(ctx context.Context, roomID, playerID string, board entity.Board) (*entity.Room, entity.Move, error)
	FinishGame(ctx context.Context, roomID, playerID string) (*entity.Room, error)
}

type uChat interface {
	JoinChat(ctx context.Context, roomID string) ([]entity.ChatMessage, error)
	Send(ctx context.Context, roomID, playerID, text string) (entity.ChatMessage, error)
}

// session - per connection state, touched only by the connection's listening goroutine.
type session struct {
	playerID string
	conn     *socket.Conn

	gameRoom string
	chatRoom string
}

type handlerFunc func(ctx context.Context, sess *session, payload json.RawMessage) error

type Server struct {
	logger *slog.Logger
	uRoom  uRoom
	uChat  uChat

	hub      *hub
	upgrader websocket.Upgrader

	handlers map[events.Event]handlerFunc
}

func New(logger *slog.Logger, uRoom uRoom, uChat uChat) *Server {
	server := &Server{
		logger: logger,
		uRoom:  uRoom,
		uChat:  uChat,

		hub: newHub(logger),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},

		handlers: make(map[events.Event]handlerFunc),
	}

	server.handlers[events.JoinGame] = server.handleJoinGame
	server.handlers[events.UpdateGame] = server.handleUpdateGame
	server.handlers[events.GameWin] = server.handleGameWin
	server.handlers[events.JoinChat] = server.handleJoinChat
	server.handlers[events.Message] = server.handleMessage

	return server
}

// Router - serves the websocket endpoint at /ws.
func (that *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Handle("/ws", that).Methods(http.MethodGet)

	return router
}

// Start - starts WebSocket server and shuts it down once ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the connection and runs its event loop until the peer goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	playerID, header := that.sessionCookie(req)

	ws, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx := req.Context()

	sess := &session{
		playerID: playerID,
		conn:     socket.New(that.logger, ws),
	}
	defer sess.conn.Close()

	for event, handler := range that.handlers {
		sess.conn.On(event, that.wrap(ctx, event, sess, handler))
	}

	log.Info("WebSocket connection established", "playerID", playerID, "connID", sess.conn.ID())

	if err = sess.conn.Listen(ctx); err != nil {
		log.Error("error handling messages", "playerID", playerID, "error", err)
	}

	that.handleDisconnect(context.WithoutCancel(ctx), sess)
}

func (that *Server) wrap(ctx context.Context, event events.Event, sess *session, handler handlerFunc) socket.Handler {
	return func(payload json.RawMessage) {
		if err := handler(ctx, sess, payload); err != nil {
			that.logger.Error("error processing message",
				"event", event, "playerID", sess.playerID, "error", err)
		}
	}
}

// sessionCookie - returns the player id from the user_session cookie, issuing a new one when absent.
func (that *Server) sessionCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionCookie")

	if cookie, err := req.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/ws",
		HttpOnly: true,
	}

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": []string{cookie.String()}}
}
