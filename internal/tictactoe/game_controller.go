package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	DefaultXName   = "Player 1"
	DefaultOName   = "Player 2"
	ComputerName   = "Computer"
	drawWinnerName = "Draw"
)

func NewState(mode entity.Mode, xName, oName string) *entity.TicTacToeState {
	if mode != entity.ModeSolo {
		mode = entity.ModeVersus
	}

	if xName == "" {
		xName = DefaultXName
	}

	if oName == "" {
		oName = DefaultOName
		if mode == entity.ModeSolo {
			oName = ComputerName
		}
	}

	state := &entity.TicTacToeState{
		Mode:  mode,
		XName: xName,
		OName: oName,
	}
	resetBoard(state)

	return state
}

// NextRound clears the board for another round, keeping names and scores.
func NextRound(state *entity.TicTacToeState) {
	resetBoard(state)
}

func resetBoard(state *entity.TicTacToeState) {
	state.Board = [9]string{}
	state.Current = entity.MarkX
	state.Status = entity.StatusOngoing
	state.Winner = ""
	state.WinnerName = ""
	state.ShowOverlay = false
	state.Message = turnMessage(state)
}

// SetPlayerName renames whoever holds mark.
func SetPlayerName(state *entity.TicTacToeState, mark, name string) {
	if mark == entity.MarkX {
		state.XName = name
	} else {
		state.OName = name
	}

	if !state.IsFinished() {
		state.Message = turnMessage(state)
	}
}

// MakeTurn places the current mark on cell. Moves on a finished board, on an
// occupied cell or outside the board are ignored and reported as false.
func MakeTurn(state *entity.TicTacToeState, cell int) bool {
	if state.IsFinished() || !validCell(state, cell) {
		return false
	}

	state.Board[cell] = state.Current
	updateGameStatus(state)

	return true
}

// AvailableCells - lists the empty cells in board order.
func AvailableCells(state *entity.TicTacToeState) []int {
	cells := make([]int, 0, len(state.Board))
	for i, cell := range state.Board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func validCell(state *entity.TicTacToeState, cell int) bool {
	if cell < 0 || cell >= len(state.Board) {
		return false
	}

	return state.Board[cell] == entity.EmptyCell
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(state *entity.TicTacToeState) {
	switch winner := checkGameStatus(state.Board); winner {
	case entity.MarkX, entity.MarkO:
		state.Status = entity.StatusFinished
		state.Winner = winner
		state.WinnerName = state.NameFor(winner)
		state.ShowOverlay = true
		state.Message = fmt.Sprintf("%s (%s) wins!", state.WinnerName, winner)

		if winner == entity.MarkX {
			state.ScoreX++
		} else {
			state.ScoreO++
		}
	case entity.WinnerDraw:
		state.Status = entity.StatusFinished
		state.Winner = entity.WinnerDraw
		state.WinnerName = drawWinnerName
		state.ShowOverlay = true
		state.Message = "It's a draw!"
		state.ScoreDraw++
	default:
		state.Current = toggleMark(state.Current)
		state.Message = turnMessage(state)
	}
}

func toggleMark(currentMark string) string {
	if currentMark == entity.MarkX {
		return entity.MarkO
	}
	return entity.MarkX
}

func turnMessage(state *entity.TicTacToeState) string {
	return fmt.Sprintf("%s (%s) to move", state.NameFor(state.Current), state.Current)
}

// checkGameStatus returns the winning mark, WinnerDraw on a full board, or ""
// while the game goes on.
func checkGameStatus(board [9]string) string {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.WinnerDraw
}
