package player

import (
	"errors"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type cell struct {
	row int
	col int
}

// Bot - picks a random free cell. Used by the autoplay mode.
type Bot struct {
	rand *rand.Rand
}

func NewBot(seed uint64) *Bot {
	return &Bot{rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint: gosec // it's ok
}

func (that *Bot) Pick(board entity.Board) (int, int, error) {
	free := make([]cell, 0, entity.BoardSize*entity.BoardSize)
	for row := range entity.BoardSize {
		for col := range entity.BoardSize {
			free = append(free, cell{row: row, col: col})
		}
	}

	free = lo.Filter(free, func(c cell, _ int) bool {
		return board[c.row][c.col] == entity.Empty
	})

	if len(free) == 0 {
		return 0, 0, ErrNoAvailableMoves
	}

	chosen := free[that.rand.IntN(len(free))]

	return chosen.row, chosen.col, nil
}
