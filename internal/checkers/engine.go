package checkers

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	DefaultBlueName  = "Blue Team"
	DefaultGreenName = "Green Team"

	chainMessage = "Capture required: continue with the same piece."
)

// Move is one legal destination for a piece.
type Move struct {
	To      int  `json:"to"`
	Capture bool `json:"capture"`
}

// MoveMap maps a source cell to its legal destinations.
type MoveMap map[int][]Move

type direction struct {
	dr, dc int
}

var (
	blueDirs  = []direction{{-1, -1}, {-1, 1}}
	greenDirs = []direction{{1, -1}, {1, 1}}
	kingDirs  = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// IsDark reports whether a cell is playable.
func IsDark(idx int) bool {
	r, c := idx/entity.BoardSide, idx%entity.BoardSide
	return (r+c)%2 == 1
}

func NewBoard() [entity.BoardCells]entity.Piece {
	var board [entity.BoardCells]entity.Piece

	for idx := range board {
		if !IsDark(idx) {
			continue
		}

		switch r := idx / entity.BoardSide; {
		case r <= 2:
			board[idx] = entity.GreenMan
		case r >= 5:
			board[idx] = entity.BlueMan
		}
	}

	return board
}

func NewState(blueName, greenName string) *entity.CheckersState {
	if blueName == "" {
		blueName = DefaultBlueName
	}

	if greenName == "" {
		greenName = DefaultGreenName
	}

	state := &entity.CheckersState{
		BlueName:  blueName,
		GreenName: greenName,
	}
	resetBoard(state)

	return state
}

// NextRound puts a fresh board in place, keeping names and scores.
func NextRound(state *entity.CheckersState) {
	resetBoard(state)
}

// SetPlayerName renames a side.
func SetPlayerName(state *entity.CheckersState, side entity.Side, name string) {
	if side == entity.SideGreen {
		state.GreenName = name
	} else {
		state.BlueName = name
	}

	if !state.IsFinished() && !state.InChain() {
		state.Message = turnMessage(state)
	}
}

func resetBoard(state *entity.CheckersState) {
	state.Board = NewBoard()
	state.Turn = entity.SideBlue
	state.Status = entity.StatusOngoing
	state.ForcedFrom = entity.NoCell
	state.Selected = entity.NoCell
	state.Winner = entity.SideNone
	state.WinnerName = ""
	state.ShowOverlay = false
	state.Message = turnMessage(state)
}

func dirsFor(piece entity.Piece) []direction {
	switch piece {
	case entity.BlueMan:
		return blueDirs
	case entity.GreenMan:
		return greenDirs
	default:
		return kingDirs
	}
}

func inBounds(r, c int) bool {
	return r >= 0 && r < entity.BoardSide && c >= 0 && c < entity.BoardSide
}

func inRange(idx int) bool {
	return idx >= 0 && idx < entity.BoardCells
}

// pieceMoves lists captures and, unless captureOnly, simple steps for the
// piece on idx.
func pieceMoves(board *[entity.BoardCells]entity.Piece, idx int, captureOnly bool) []Move {
	piece := board[idx]
	if piece == entity.PieceEmpty {
		return nil
	}

	owner := piece.Owner()
	r, c := idx/entity.BoardSide, idx%entity.BoardSide

	var moves []Move
	for _, d := range dirsFor(piece) {
		r1, c1 := r+d.dr, c+d.dc
		r2, c2 := r+2*d.dr, c+2*d.dc

		if inBounds(r1, c1) && inBounds(r2, c2) {
			over := board[r1*entity.BoardSide+c1].Owner()
			land := r2*entity.BoardSide + c2

			if over != entity.SideNone && over != owner && board[land] == entity.PieceEmpty {
				moves = append(moves, Move{To: land, Capture: true})
			}
		}

		if captureOnly {
			continue
		}

		if inBounds(r1, c1) {
			step := r1*entity.BoardSide + c1
			if board[step] == entity.PieceEmpty {
				moves = append(moves, Move{To: step})
			}
		}
	}

	return moves
}

func captures(board *[entity.BoardCells]entity.Piece, idx int) []Move {
	return pieceMoves(board, idx, true)
}

// LegalMoves returns every legal move for the side to move. Captures are
// mandatory: if any candidate piece can capture, only captures are returned.
// During a chain the forced piece is the only candidate.
func LegalMoves(state *entity.CheckersState) MoveMap {
	var candidates []int

	if state.InChain() {
		candidates = []int{state.ForcedFrom}
	} else {
		for idx, piece := range state.Board {
			if piece.Owner() == state.Turn {
				candidates = append(candidates, idx)
			}
		}
	}

	captureMap := make(MoveMap)
	for _, idx := range candidates {
		if caps := captures(&state.Board, idx); len(caps) > 0 {
			captureMap[idx] = caps
		}
	}

	if len(captureMap) > 0 || state.InChain() {
		return captureMap
	}

	stepMap := make(MoveMap)
	for _, idx := range candidates {
		var steps []Move
		for _, m := range pieceMoves(&state.Board, idx, false) {
			if !m.Capture {
				steps = append(steps, m)
			}
		}

		if len(steps) > 0 {
			stepMap[idx] = steps
		}
	}

	return stepMap
}

// ApplyMove plays from -> to if it is legal. Anything else is ignored and
// reported as false, leaving the state untouched.
func ApplyMove(state *entity.CheckersState, from, to int) bool {
	if state.IsFinished() || !inRange(from) || !inRange(to) {
		return false
	}

	for _, m := range LegalMoves(state)[from] {
		if m.To == to {
			apply(state, from, to, m.Capture)
			return true
		}
	}

	return false
}

// Click implements the select-then-target protocol. It returns true only when
// the click changed the state.
func Click(state *entity.CheckersState, idx int) bool {
	if state.IsFinished() || !inRange(idx) {
		return false
	}

	legal := LegalMoves(state)

	if state.Selected == entity.NoCell {
		if _, ok := legal[idx]; ok {
			state.Selected = idx
			return true
		}

		return false
	}

	for _, m := range legal[state.Selected] {
		if m.To == idx {
			apply(state, state.Selected, idx, m.Capture)
			return true
		}
	}

	prev := state.Selected
	if _, ok := legal[idx]; ok {
		state.Selected = idx
	} else {
		state.Selected = entity.NoCell
	}

	return state.Selected != prev
}

func apply(state *entity.CheckersState, from, to int, capture bool) {
	piece := state.Board[from]
	state.Board[from] = entity.PieceEmpty
	state.Board[to] = piece

	promoted := false
	switch row := to / entity.BoardSide; {
	case piece == entity.BlueMan && row == 0:
		state.Board[to] = entity.BlueKing
		promoted = true
	case piece == entity.GreenMan && row == entity.BoardSide-1:
		state.Board[to] = entity.GreenKing
		promoted = true
	}

	if capture {
		fr, fc := from/entity.BoardSide, from%entity.BoardSide
		tr, tc := to/entity.BoardSide, to%entity.BoardSide
		state.Board[((fr+tr)/2)*entity.BoardSide+(fc+tc)/2] = entity.PieceEmpty

		// promotion ends the ply even if another jump is on the board
		if !promoted && len(captures(&state.Board, to)) > 0 {
			state.Status = entity.StatusChain
			state.ForcedFrom = to
			state.Selected = to
			state.Message = chainMessage

			return
		}
	}

	finishTurn(state)
}

func finishTurn(state *entity.CheckersState) {
	mover := state.Turn

	state.Turn = mover.Opponent()
	state.Status = entity.StatusOngoing
	state.ForcedFrom = entity.NoCell
	state.Selected = entity.NoCell

	if countPieces(state, state.Turn) == 0 || len(LegalMoves(state)) == 0 {
		declareWinner(state, mover)
		return
	}

	state.Message = turnMessage(state)
}

func declareWinner(state *entity.CheckersState, winner entity.Side) {
	state.Status = entity.StatusFinished
	state.Winner = winner
	state.WinnerName = state.NameFor(winner)
	state.ShowOverlay = true
	state.Message = fmt.Sprintf("%s wins!", state.WinnerName)

	if winner == entity.SideBlue {
		state.ScoreBlue++
	} else {
		state.ScoreGreen++
	}
}

func countPieces(state *entity.CheckersState, side entity.Side) int {
	n := 0
	for _, piece := range state.Board {
		if piece.Owner() == side {
			n++
		}
	}

	return n
}

func turnMessage(state *entity.CheckersState) string {
	return fmt.Sprintf("%s to move", state.NameFor(state.Turn))
}

// CellOrder lists board cells in display order for a role: green sees the
// board rotated so its own pieces are at the bottom.
func CellOrder(role entity.Role) []int {
	order := make([]int, entity.BoardCells)
	for i := range order {
		if role == entity.RoleGreen {
			order[i] = entity.BoardCells - 1 - i
		} else {
			order[i] = i
		}
	}

	return order
}
