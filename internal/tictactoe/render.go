package tictactoe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

const WaitingBanner = "Waiting for Other Player to Join to Start the Game!"

var glyphColor = color.HEX("#8e44ad")

// Render - draws the view as a text grid with row and column indexes.
func Render(w io.Writer, view View, colored bool) error {
	if view.Waiting {
		if _, err := fmt.Fprintln(w, WaitingBanner); err != nil {
			return fmt.Errorf("failed to write banner: %w", err)
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "0", "1", "2"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetRowLine(true)

	for row := range entity.BoardSize {
		line := []string{strconv.Itoa(row)}
		for col := range entity.BoardSize {
			line = append(line, glyph(view.Cells[row][col], colored))
		}
		table.Append(line)
	}

	table.Render()

	if _, err := fmt.Fprintln(w, statusLine(view)); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}

	return nil
}

func glyph(symbol entity.Symbol, colored bool) string {
	if symbol == entity.Empty {
		return " "
	}

	text := strings.ToUpper(string(symbol))
	if colored {
		return glyphColor.Sprint(text)
	}

	return text
}

func statusLine(view View) string {
	mark := strings.ToUpper(string(view.Symbol))

	switch view.Phase {
	case entity.PhaseWaiting:
		return "status: waiting"
	case entity.PhaseFinished:
		return fmt.Sprintf("status: finished (%s), you are %s", view.Outcome, mark)
	case entity.PhaseMyTurn:
		return fmt.Sprintf("status: your turn, you are %s", mark)
	default:
		return fmt.Sprintf("status: opponent's turn, you are %s", mark)
	}
}
