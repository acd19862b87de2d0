package application

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rocketscienceinc/tictactoe-socket/internal/config"
	"github.com/rocketscienceinc/tictactoe-socket/internal/player"
	"github.com/rocketscienceinc/tictactoe-socket/internal/socket"
)

// RunPlayer - connects the terminal player to the room server and plays until /quit,
// end of input, a signal or the server going away.
func RunPlayer(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "player")

	ctx, cancel := signalContext(log)
	defer cancel()

	conn, err := socket.Dial(ctx, logger, conf.Player.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", conf.Player.ServerURL, err)
	}

	defer func() {
		if err = conn.Close(); err != nil {
			log.Error("could not close connection", "error", err)
		}
	}()

	var opts []player.Option
	if conf.Player.Autoplay {
		opts = append(opts, player.WithAutoplay(player.NewBot(uint64(time.Now().UnixNano()))))
	}

	terminal := player.NewTerminal(logger, conn, os.Stdout, conf.Player.RoomID, conf.Player.Colored, opts...)
	defer terminal.Close()

	listenErrCh := make(chan error, 1)
	go func() {
		listenErrCh <- conn.Listen(ctx)
		cancel()
	}()

	if err = terminal.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cancel()

	if listenErr := <-listenErrCh; listenErr != nil {
		return fmt.Errorf("connection lost: %w", listenErr)
	}

	return nil
}
