package service

import (
	"errors"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// BotService plays O in solo tic-tac-toe.
type BotService interface {
	MakeTurn(state *entity.TicTacToeState) error
}

type botService struct {
	rnd *pkg.Rand
}

func NewBotService(rnd *pkg.Rand) BotService {
	return &botService{rnd: rnd}
}

// MakeTurn picks a random empty cell. It does nothing unless the game is a
// solo one that is still running with O to move.
func (that *botService) MakeTurn(state *entity.TicTacToeState) error {
	if state.Mode != entity.ModeSolo || state.IsFinished() || state.Current != entity.MarkO {
		return nil
	}

	availableCells := tictactoe.AvailableCells(state)
	if len(availableCells) == 0 {
		return ErrNoAvailableMoves
	}

	chosenCell := availableCells[that.rnd.IntN(len(availableCells))]
	tictactoe.MakeTurn(state, chosenCell)

	return nil
}
