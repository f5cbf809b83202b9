package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

func TestNewState(t *testing.T) {
	t.Run("Solo names the computer", func(t *testing.T) {
		// Given: a solo game without names
		state := NewState(entity.ModeSolo, "", "")

		// Then: X starts on an empty board against the computer
		assert.Equal(t, [9]string{}, state.Board)
		assert.Equal(t, entity.MarkX, state.Current)
		assert.Equal(t, entity.StatusOngoing, state.Status)
		assert.Equal(t, DefaultXName, state.XName)
		assert.Equal(t, ComputerName, state.OName)
	})

	t.Run("Unknown mode falls back to versus", func(t *testing.T) {
		state := NewState("", "Ana", "")

		assert.Equal(t, entity.ModeVersus, state.Mode)
		assert.Equal(t, "Ana", state.XName)
		assert.Equal(t, DefaultOName, state.OName)
	})
}

func TestMakeTurn(t *testing.T) {
	t.Run("MakeTurn", func(t *testing.T) {
		// Given: a new game
		state := NewState(entity.ModeVersus, "", "")

		// When: X plays cell 0
		ok := MakeTurn(state, 0)

		// Then: the board reflects the turn and O moves next
		require.True(t, ok)
		assert.Equal(t, [9]string{entity.MarkX}, state.Board)
		assert.Equal(t, entity.MarkO, state.Current)
		assert.Equal(t, "Player 2 (O) to move", state.Message)
	})

	t.Run("Occupied cell is ignored", func(t *testing.T) {
		// Given: X already holds cell 0
		state := NewState(entity.ModeVersus, "", "")
		require.True(t, MakeTurn(state, 0))
		before := *state

		// When: O plays the same cell
		ok := MakeTurn(state, 0)

		// Then: the state remains unchanged
		assert.False(t, ok)
		assert.Equal(t, before, *state)
	})

	t.Run("Out of range cells are ignored", func(t *testing.T) {
		state := NewState(entity.ModeVersus, "", "")
		before := *state

		assert.False(t, MakeTurn(state, 9))
		assert.False(t, MakeTurn(state, -1))
		assert.Equal(t, before, *state)
	})

	t.Run("Move after the game is finished", func(t *testing.T) {
		// Given: X has completed the top row
		state := NewState(entity.ModeVersus, "", "")
		for _, cell := range []int{0, 3, 1, 4, 2} {
			require.True(t, MakeTurn(state, cell))
		}

		// Then: X wins and the next move is ignored
		assert.Equal(t, entity.StatusFinished, state.Status)
		assert.Equal(t, entity.MarkX, state.Winner)
		assert.Equal(t, DefaultXName, state.WinnerName)
		assert.Equal(t, 1, state.ScoreX)
		assert.True(t, state.ShowOverlay)
		assert.False(t, MakeTurn(state, 5))
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a sequence of moves that fills the board with no line
		state := NewState(entity.ModeVersus, "", "")
		for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			require.True(t, MakeTurn(state, cell))
		}

		// Then: the game is a draw
		assert.Equal(t, entity.StatusFinished, state.Status)
		assert.Equal(t, entity.WinnerDraw, state.Winner)
		assert.Equal(t, 1, state.ScoreDraw)
	})
}

func TestNextRound(t *testing.T) {
	// Given: a finished game
	state := NewState(entity.ModeVersus, "Ana", "Bia")
	for _, cell := range []int{0, 3, 1, 4, 2} {
		require.True(t, MakeTurn(state, cell))
	}

	// When: a new round starts
	NextRound(state)

	// Then: the board is cleared and the score is kept
	assert.Equal(t, [9]string{}, state.Board)
	assert.Equal(t, entity.StatusOngoing, state.Status)
	assert.Equal(t, entity.MarkX, state.Current)
	assert.Equal(t, 1, state.ScoreX)
	assert.False(t, state.ShowOverlay)
}

func TestAvailableCells(t *testing.T) {
	state := NewState(entity.ModeVersus, "", "")
	require.True(t, MakeTurn(state, 4))

	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, AvailableCells(state))
}

func TestGame_checkGameStatus(t *testing.T) {
	t.Run("Every line wins", func(t *testing.T) {
		for _, combo := range entity.WinCombos {
			// Given: a board with only this line filled by O
			var board [9]string
			for _, cell := range combo {
				board[cell] = entity.MarkO
			}

			// Then: O is the winner
			assert.Equal(t, entity.MarkO, checkGameStatus(board), "combo %v", combo)
		}
	})

	t.Run("Winner on the first row", func(t *testing.T) {
		// Given: [X,X,X,O,O,_,_,_,_]
		board := [9]string{entity.MarkX, entity.MarkX, entity.MarkX, entity.MarkO, entity.MarkO}

		// Then: X wins
		require.Equal(t, entity.MarkX, checkGameStatus(board))
	})

	t.Run("Ongoing Game", func(t *testing.T) {
		// Given: a game where there is no winner yet
		board := [9]string{entity.MarkX, entity.MarkO, entity.MarkX, "", entity.MarkO, "", entity.MarkX, "", ""}

		// Then: the game should continue (no winner)
		require.Equal(t, "", checkGameStatus(board))
	})

	t.Run("Draw", func(t *testing.T) {
		// Given: a full board with no line
		board := [9]string{entity.MarkO, entity.MarkX, entity.MarkO, entity.MarkO, entity.MarkX, entity.MarkX, entity.MarkX, entity.MarkO, entity.MarkX}

		// Then: the game is a draw
		assert.Equal(t, entity.WinnerDraw, checkGameStatus(board))
	})
}
