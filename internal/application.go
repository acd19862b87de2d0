package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-socket/internal/config"
	"github.com/rocketscienceinc/tictactoe-socket/internal/moderation"
	"github.com/rocketscienceinc/tictactoe-socket/internal/repository"
	"github.com/rocketscienceinc/tictactoe-socket/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-socket/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-socket/transport/rest"
	"github.com/rocketscienceinc/tictactoe-socket/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// signalContext - a context canceled on SIGINT or SIGTERM.
func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)

		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// RunApp - runs the room server.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signalContext(log)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	censor, err := moderation.NewCensor(conf.Chat.CensoredWords, conf.Chat.Mask())
	if err != nil {
		return fmt.Errorf("could not build chat censor: %w", err)
	}

	roomRepo := repository.NewRoomRepository(redisStorage, conf.Room.TTL)
	chatRepo := repository.NewChatRepository(redisStorage, conf.Chat.HistorySize, conf.Chat.TTL)

	roomUseCase := usecase.NewRoomManager(logger, roomRepo)
	chatUseCase := usecase.NewChat(logger, chatRepo, censor, conf.Chat.HistorySize)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, roomUseCase); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomUseCase, chatUseCase)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
