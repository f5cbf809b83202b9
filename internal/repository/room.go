package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const roomKeyPrefix = "room:"

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository holds room bindings for every game kind in one code
// namespace.
type RoomRepository interface {
	// Reserve stores room only if its code is unused and reports whether it did.
	Reserve(ctx context.Context, room *entity.RoomBinding) (bool, error)
	GetByCode(ctx context.Context, code string) (*entity.RoomBinding, error)
	Update(ctx context.Context, room *entity.RoomBinding) error
	DeleteByCode(ctx context.Context, code string) error
}

// ReleaseRooms returns an EvictFunc that deletes the room an evicted session
// was shared through. released, if set, is told the code of every room
// deleted that way.
func ReleaseRooms(logger *slog.Logger, rooms RoomRepository, released func(code string)) EvictFunc {
	log := logger.With("component", "roomReleaser")

	return func(ctx context.Context, session *entity.Session) {
		if session.RoomCode == "" {
			return
		}

		room, err := rooms.GetByCode(ctx, session.RoomCode)
		if err != nil {
			if !errors.Is(err, ErrRoomNotFound) {
				log.Error("failed to get room of evicted session", "roomCode", session.RoomCode, "error", err)
			}
			return
		}

		// the code may have been handed to another session since
		if room.SessionID != session.ID {
			return
		}

		if err = rooms.DeleteByCode(ctx, room.Code); err != nil {
			log.Error("failed to delete room of evicted session", "roomCode", room.Code, "error", err)
			return
		}

		log.Info("room released", "roomCode", room.Code, "sessionID", session.ID)

		if released != nil {
			released(room.Code)
		}
	}
}

type memoryRoom struct {
	mu    sync.RWMutex
	rooms map[string]entity.RoomBinding
}

func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{rooms: make(map[string]entity.RoomBinding)}
}

func (that *memoryRoom) Reserve(_ context.Context, room *entity.RoomBinding) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.Code]; ok {
		return false, nil
	}
	that.rooms[room.Code] = *room

	return true, nil
}

func (that *memoryRoom) GetByCode(_ context.Context, code string) (*entity.RoomBinding, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return &room, nil
}

func (that *memoryRoom) Update(_ context.Context, room *entity.RoomBinding) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.Code]; !ok {
		return ErrRoomNotFound
	}
	that.rooms[room.Code] = *room

	return nil
}

func (that *memoryRoom) DeleteByCode(_ context.Context, code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, code)

	return nil
}

type dbRoom struct {
	client *redis.Client
}

func NewRedisRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(code string) string {
	return roomKeyPrefix + code
}

func (that *dbRoom) Reserve(ctx context.Context, room *entity.RoomBinding) (bool, error) {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return false, fmt.Errorf("could not marshal room: %w", err)
	}

	reserved, err := that.client.SetNX(ctx, roomKey(room.Code), roomJSON, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve room: %w", err)
	}

	return reserved, nil
}

func (that *dbRoom) GetByCode(ctx context.Context, code string) (*entity.RoomBinding, error) {
	response, err := that.client.Get(ctx, roomKey(code)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	var room entity.RoomBinding
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbRoom) Update(ctx context.Context, room *entity.RoomBinding) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	updated, err := that.client.SetXX(ctx, roomKey(room.Code), roomJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	if !updated {
		return ErrRoomNotFound
	}

	return nil
}

func (that *dbRoom) DeleteByCode(ctx context.Context, code string) error {
	if err := that.client.Del(ctx, roomKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete room by code: %w", err)
	}

	return nil
}
