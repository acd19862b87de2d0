package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/tictactoe-socket/internal"
	"github.com/rocketscienceinc/tictactoe-socket/internal/config"
)

// main - is the entry point of the terminal player. The board owns stdout, logs go to stderr.
func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	room := flag.String("room", "", "room to join, overrides the config")
	server := flag.String("server", "", "websocket url of the room server, overrides the config")
	autoplay := flag.Bool("autoplay", false, "let the computer pick moves")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *room != "" {
		conf.Player.RoomID = *room
	}

	if *server != "" {
		conf.Player.ServerURL = *server
	}

	if *autoplay {
		conf.Player.Autoplay = true
	}

	level := slog.LevelWarn
	if conf.LogLevel == "debug" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err = app.RunPlayer(logger, conf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
