package entity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	MaxPlayers = 2
)

var ErrUnknownRoomStatus = errors.New("unknown room status")

// Room - a game room shared by at most two players.
type Room struct {
	ID      string    `json:"id"`
	Players []*Player `json:"players"`
	Board   Board     `json:"board"`
	Turn    Symbol    `json:"turn"`
	Winner  Symbol    `json:"winner"`
	Status  string    `json:"status"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:     id,
		Board:  NewBoard(),
		Status: StatusWaiting,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) Player(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}

func (that *Room) Opponent(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID != id {
			return player, true
		}
	}

	return nil, false
}

// ConfirmOngoingState - returns an error unless moves can be played.
func (that *Room) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRoomStatus, that.Status)
	}
}

// Join - adds the player and reports whether a new game started.
// The player completing the room plays "x" and moves first.
func (that *Room) Join(playerID string) (bool, error) {
	if _, ok := that.Player(playerID); ok {
		if that.IsFinished() && that.IsFull() {
			that.start(playerID)
			return true, nil
		}

		return false, nil
	}

	if that.IsFull() {
		return false, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	that.Players = append(that.Players, &Player{ID: playerID})

	if !that.IsFull() {
		return false, nil
	}

	that.start(playerID)

	return true, nil
}

func (that *Room) start(firstPlayerID string) {
	for _, player := range that.Players {
		if player.ID == firstPlayerID {
			player.Symbol = X
		} else {
			player.Symbol = O
		}
	}

	that.Board = NewBoard()
	that.Turn = X
	that.Winner = Empty
	that.Status = StatusOngoing
}

// Leave - removes the player; whoever stays waits for a new opponent on a fresh board.
func (that *Room) Leave(playerID string) error {
	idx := slices.IndexFunc(that.Players, func(player *Player) bool {
		return player.ID == playerID
	})
	if idx < 0 {
		return fmt.Errorf("%w: %s", apperror.ErrNotInRoom, playerID)
	}

	that.Players = slices.Delete(that.Players, idx, idx+1)

	for _, player := range that.Players {
		player.Symbol = Empty
	}

	that.Board = NewBoard()
	that.Turn = Empty
	that.Winner = Empty
	that.Status = StatusWaiting

	return nil
}

// Play - accepts next as the new board if it follows from one move of the player whose turn it is.
func (that *Room) Play(playerID string, next Board) (Move, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return Move{}, err
	}

	player, ok := that.Player(playerID)
	if !ok {
		return Move{}, fmt.Errorf("%w: %s", apperror.ErrNotInRoom, playerID)
	}

	if that.Turn != player.Symbol {
		return Move{}, apperror.ErrNotYourTurn
	}

	move, err := that.Board.NextMove(next)
	if err != nil {
		return Move{}, err
	}

	if move.Symbol != player.Symbol {
		return Move{}, fmt.Errorf("%w: placed %q as %q", ErrIllegalTransition, move.Symbol, player.Symbol)
	}

	that.Board = next
	that.Turn = player.Symbol.Opponent()
	that.updateState()

	return move, nil
}

// Finish - marks the game over once the board is decided.
func (that *Room) Finish(playerID string) error {
	if _, ok := that.Player(playerID); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrNotInRoom, playerID)
	}

	if that.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}

	if that.Board.Winner() == Empty && !that.Board.IsFull() {
		return apperror.ErrGameNotFinished
	}

	that.updateState()

	return nil
}

func (that *Room) updateState() {
	winner := that.Board.Winner()
	if winner == Empty && !that.Board.IsFull() {
		return
	}

	that.Winner = winner
	that.Turn = Empty
	that.Status = StatusFinished
}
