package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
)

const BoardSize = 3

var (
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidBoard      = errors.New("board must be 3x3")
	ErrIllegalTransition = errors.New("board does not follow from a single move")
)

// WinLines - lists every row, column and diagonal as (row, column) pairs.
var WinLines = [][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Outcome - the result of a board seen from one player's side.
type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeTie     Outcome = "tie"
)

func (that Outcome) IsDecided() bool {
	return that == OutcomeWon || that == OutcomeLost || that == OutcomeTie
}

// Move - a single mark placed by a player.
type Move struct {
	Row    int    `json:"row"    validate:"min=0,max=2"`
	Column int    `json:"column" validate:"min=0,max=2"`
	Symbol Symbol `json:"symbol" validate:"oneof=x o"`
}

// Board - the 3x3 play matrix, addressed as [row][column].
type Board [BoardSize][BoardSize]Symbol

func NewBoard() Board {
	return Board{}
}

func inRange(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (that Board) Cell(row, col int) (Symbol, error) {
	if !inRange(row, col) {
		return Empty, fmt.Errorf("%w: row %d column %d", ErrInvalidCell, row, col)
	}

	return that[row][col], nil
}

// Apply - returns a copy of the board with the move placed on it.
func (that Board) Apply(move Move) (Board, error) {
	if !inRange(move.Row, move.Column) {
		return that, fmt.Errorf("%w: row %d column %d", ErrInvalidCell, move.Row, move.Column)
	}

	if !move.Symbol.IsValid() {
		return that, fmt.Errorf("%w: %q", ErrInvalidSymbol, move.Symbol)
	}

	if that[move.Row][move.Column] != Empty {
		return that, apperror.ErrCellOccupied
	}

	next := that
	next[move.Row][move.Column] = move.Symbol

	return next, nil
}

func (that Board) cells() []Symbol {
	return lo.Flatten([][]Symbol{that[0][:], that[1][:], that[2][:]})
}

func (that Board) Winner() Symbol {
	for _, line := range WinLines {
		a := that[line[0][0]][line[0][1]]
		b := that[line[1][0]][line[1][1]]
		c := that[line[2][0]][line[2][1]]

		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that Board) IsFull() bool {
	return lo.EveryBy(that.cells(), func(cell Symbol) bool {
		return cell != Empty
	})
}

func (that Board) IsEmpty() bool {
	return lo.EveryBy(that.cells(), func(cell Symbol) bool {
		return cell == Empty
	})
}

func (that Board) Count(symbol Symbol) int {
	return lo.Count(that.cells(), symbol)
}

// Evaluate - reports the state of the board for the player holding me.
func (that Board) Evaluate(me Symbol) Outcome {
	switch winner := that.Winner(); {
	case winner != Empty && winner == me:
		return OutcomeWon
	case winner != Empty:
		return OutcomeLost
	case that.IsFull():
		return OutcomeTie
	default:
		return OutcomeOngoing
	}
}

// NextMove - finds the single move that turns the board into next.
func (that Board) NextMove(next Board) (Move, error) {
	var (
		move  Move
		found int
	)

	for row := range BoardSize {
		for col := range BoardSize {
			before, after := that[row][col], next[row][col]
			if before == after {
				continue
			}

			if before != Empty || !after.IsValid() {
				return Move{}, fmt.Errorf("%w: cell %d,%d changed from %q to %q", ErrIllegalTransition, row, col, before, after)
			}

			move = Move{Row: row, Column: col, Symbol: after}
			found++
		}
	}

	if found != 1 {
		return Move{}, fmt.Errorf("%w: %d cells changed", ErrIllegalTransition, found)
	}

	return move, nil
}

// UnmarshalJSON - rejects matrices that are not exactly 3x3.
func (that *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Symbol
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	if len(rows) != BoardSize {
		return fmt.Errorf("%w: got %d rows", ErrInvalidBoard, len(rows))
	}

	var board Board
	for row, cells := range rows {
		if len(cells) != BoardSize {
			return fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, row, len(cells))
		}
		copy(board[row][:], cells)
	}

	*that = board

	return nil
}
