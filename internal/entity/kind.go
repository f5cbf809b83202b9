package entity

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindQuiz      Kind = "quiz"
	KindTicTacToe Kind = "tictactoe"
	KindCheckers  Kind = "checkers"
)

// Role is a fixed seat identity inside a session. Every kind has exactly two.
type Role string

const (
	RoleP1    Role = "p1"
	RoleP2    Role = "p2"
	RoleX     Role = "X"
	RoleO     Role = "O"
	RoleBlue  Role = "b"
	RoleGreen Role = "g"
)

type Mode string

const (
	ModeSolo   Mode = "solo"
	ModeVersus Mode = "versus"
)

var ErrUnknownKind = errors.New("unknown game kind")

func ParseKind(raw string) (Kind, error) {
	switch kind := Kind(raw); kind {
	case KindQuiz, KindTicTacToe, KindCheckers:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// HostRole returns the role of whoever opens a room (and of the solo player).
func HostRole(kind Kind) Role {
	switch kind {
	case KindTicTacToe:
		return RoleX
	case KindCheckers:
		return RoleBlue
	default:
		return RoleP1
	}
}

// GuestRole returns the complementary role assigned on join.
func GuestRole(kind Kind) Role {
	switch kind {
	case KindTicTacToe:
		return RoleO
	case KindCheckers:
		return RoleGreen
	default:
		return RoleP2
	}
}

func (that Mode) Valid() bool {
	return that == ModeSolo || that == ModeVersus
}
