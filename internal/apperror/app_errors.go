package apperror

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTurnNotYours       = errors.New("it's not your turn")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomExpired        = errors.New("room expired")
	ErrSessionExpired     = errors.New("session expired")
	ErrGameFinished       = errors.New("game is already finished")
	ErrNotRoomHost        = errors.New("only the room host can do that")
	ErrUnknownGameKind    = errors.New("unknown game kind")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")
)
