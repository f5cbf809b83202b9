package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrPayloadMismatch = errors.New("session payload does not match its kind")

// Session is one running match. Exactly one of the state payloads is set and
// it always matches Kind.
type Session struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	Quiz      *QuizState      `json:"quiz,omitempty"`
	TicTacToe *TicTacToeState `json:"tictactoe,omitempty"`
	Checkers  *CheckersState  `json:"checkers,omitempty"`

	// RoomCode is the room the session is shared through, if any.
	RoomCode string `json:"room_code,omitempty"`

	CreatedAt     time.Time `json:"created_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`
}

func (that *Session) Validate() error {
	var ok bool

	switch that.Kind {
	case KindQuiz:
		ok = that.Quiz != nil && that.TicTacToe == nil && that.Checkers == nil
	case KindTicTacToe:
		ok = that.TicTacToe != nil && that.Quiz == nil && that.Checkers == nil
	case KindCheckers:
		ok = that.Checkers != nil && that.Quiz == nil && that.TicTacToe == nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, that.Kind)
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrPayloadMismatch, that.Kind)
	}

	return nil
}

func (that *Session) IsFinished() bool {
	switch that.Kind {
	case KindQuiz:
		return that.Quiz.IsFinished()
	case KindTicTacToe:
		return that.TicTacToe.IsFinished()
	case KindCheckers:
		return that.Checkers.IsFinished()
	default:
		return false
	}
}

// Clone returns a deep copy, so stores never share state with callers.
func (that *Session) Clone() *Session {
	clone := *that

	if that.Quiz != nil {
		clone.Quiz = that.Quiz.Clone()
	}

	if that.TicTacToe != nil {
		ttt := *that.TicTacToe
		clone.TicTacToe = &ttt
	}

	if that.Checkers != nil {
		ck := *that.Checkers
		clone.Checkers = &ck
	}

	return &clone
}
