package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandSay
	CommandBoard
	CommandHelp
	CommandQuit
)

type Command struct {
	Kind   CommandKind
	Row    int
	Column int
	Text   string
}

const Help = `commands:
  <row> <col>   place your mark, e.g. "1 2"
  /say <text>   send a chat message
  /board        redraw the board
  /help         show this help
  /quit         leave the game`

// ParseCommand - reads one line typed by the player.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "/") {
		name, rest, _ := strings.Cut(line, " ")

		switch name {
		case "/say":
			return Command{Kind: CommandSay, Text: strings.TrimSpace(rest)}, nil
		case "/board":
			return Command{Kind: CommandBoard}, nil
		case "/help":
			return Command{Kind: CommandHelp}, nil
		case "/quit", "/exit":
			return Command{Kind: CommandQuit}, nil
		}

		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return Command{}, fmt.Errorf("invalid row %q: %w", fields[0], err)
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return Command{}, fmt.Errorf("invalid column %q: %w", fields[1], err)
	}

	return Command{Kind: CommandMove, Row: row, Column: col}, nil
}
