package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
)

const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 6

	DefaultCodeAttempts = 200
)

type roomReserver interface {
	// Reserve stores room only if its code is free and reports whether it did.
	Reserve(ctx context.Context, room *entity.RoomBinding) (bool, error)
}

// RoomCodeGenerator hands out room codes that are unique across all game
// kinds. Uniqueness comes from the registry's atomic reservation, so
// concurrent callers never receive the same code.
type RoomCodeGenerator struct {
	registry roomReserver
	rnd      *pkg.Rand
	attempts int
	fallback func() string
}

func NewRoomCodeGenerator(registry roomReserver, rnd *pkg.Rand, attempts int) *RoomCodeGenerator {
	if attempts < 1 {
		attempts = DefaultCodeAttempts
	}

	return &RoomCodeGenerator{
		registry: registry,
		rnd:      rnd,
		attempts: attempts,
		fallback: UUIDCode,
	}
}

// UUIDCode - derives a code from a fresh uuid.
func UUIDCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:CodeLength])
}

// Allocate reserves a fresh code for room and sets room.Code.
func (that *RoomCodeGenerator) Allocate(ctx context.Context, room *entity.RoomBinding) (string, error) {
	for range that.attempts {
		ok, err := that.reserve(ctx, room, that.randomCode())
		if err != nil {
			return "", err
		}

		if ok {
			return room.Code, nil
		}
	}

	ok, err := that.reserve(ctx, room, that.fallback())
	if err != nil {
		return "", err
	}

	if !ok {
		return "", apperror.ErrCodeSpaceExhausted
	}

	return room.Code, nil
}

func (that *RoomCodeGenerator) reserve(ctx context.Context, room *entity.RoomBinding, code string) (bool, error) {
	room.Code = code

	ok, err := that.registry.Reserve(ctx, room)
	if err != nil {
		return false, fmt.Errorf("failed to reserve room code: %w", err)
	}

	return ok, nil
}

func (that *RoomCodeGenerator) randomCode() string {
	var sb strings.Builder
	sb.Grow(CodeLength)

	for range CodeLength {
		sb.WriteByte(CodeAlphabet[that.rnd.IntN(len(CodeAlphabet))])
	}

	return sb.String()
}

// ValidCode reports whether raw has the shape of a room code.
func ValidCode(raw string) bool {
	if len(raw) != CodeLength {
		return false
	}

	for i := range len(raw) {
		if !strings.ContainsRune(CodeAlphabet, rune(raw[i])) {
			return false
		}
	}

	return true
}
