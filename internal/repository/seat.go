package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	seatKeyPrefix = "seat:"
	seatTTL       = 24 * time.Hour

	// every session has at most two seats
	seatsPerSession = 2
)

var ErrSeatNotFound = errors.New("seat not found")

type SeatRepository interface {
	Save(ctx context.Context, seat *entity.Seat) error
	GetByToken(ctx context.Context, token string) (*entity.Seat, error)
	DeleteByToken(ctx context.Context, token string) error
}

type memorySeat struct {
	cache *lru.Cache[string, entity.Seat]
}

func NewMemorySeatRepository(sessionCapacity int) (SeatRepository, error) {
	if sessionCapacity < 1 {
		sessionCapacity = DefaultCapacity
	}

	cache, err := lru.New[string, entity.Seat](sessionCapacity * seatsPerSession)
	if err != nil {
		return nil, fmt.Errorf("failed to create seat cache: %w", err)
	}

	return &memorySeat{cache: cache}, nil
}

func (that *memorySeat) Save(_ context.Context, seat *entity.Seat) error {
	that.cache.Add(seat.Token, *seat)

	return nil
}

func (that *memorySeat) GetByToken(_ context.Context, token string) (*entity.Seat, error) {
	seat, ok := that.cache.Get(token)
	if !ok {
		return nil, ErrSeatNotFound
	}

	return &seat, nil
}

func (that *memorySeat) DeleteByToken(_ context.Context, token string) error {
	that.cache.Remove(token)

	return nil
}

type dbSeat struct {
	client *redis.Client
}

func NewRedisSeatRepository(client *redis.Client) SeatRepository {
	return &dbSeat{
		client: client,
	}
}

func (that *dbSeat) Save(ctx context.Context, seat *entity.Seat) error {
	seatJSON, err := json.Marshal(seat)
	if err != nil {
		return fmt.Errorf("failed to marshal seat: %w", err)
	}

	err = that.client.Set(ctx, seatKeyPrefix+seat.Token, seatJSON, seatTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set seat: %w", err)
	}

	return nil
}

func (that *dbSeat) GetByToken(ctx context.Context, token string) (*entity.Seat, error) {
	response, err := that.client.Get(ctx, seatKeyPrefix+token).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSeatNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get seat by token: %w", err)
	}

	var seat entity.Seat
	if err = json.Unmarshal([]byte(response), &seat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seat: %w", err)
	}

	return &seat, nil
}

func (that *dbSeat) DeleteByToken(ctx context.Context, token string) error {
	if err := that.client.Del(ctx, seatKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete seat by token: %w", err)
	}

	return nil
}
