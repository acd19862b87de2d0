package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type uRoom interface {
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
}

// NewRouter - GET /ping, GET /events and GET /rooms/{roomID}.
func NewRouter(logger *slog.Logger, uRoom uRoom) *mux.Router {
	router := mux.NewRouter()

	ping := NewPingHandler()
	rooms := newRoomHandler(logger, uRoom)

	router.HandleFunc("/ping", ping.PingHandler).Methods(http.MethodGet)
	router.HandleFunc("/events", eventsHandler).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{roomID}", rooms.GetRoom).Methods(http.MethodGet)

	return router
}

// Start - serves the REST API until ctx is done.
func Start(ctx context.Context, logger *slog.Logger, port string, uRoom uRoom) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(logger, uRoom),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
