package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	DefaultCapacity = 500

	sessionKeyPrefix = "session:"
	sessionsTouched  = "sessions:touched"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// EvictFunc is called with every session a store drops to stay within its
// capacity. Explicit deletes do not call it.
type EvictFunc func(ctx context.Context, session *entity.Session)

// SessionRepository is a bounded store of running sessions. Once more than
// the configured capacity is held, the least recently written session is
// dropped. Update never recreates a dropped session.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type memorySession struct {
	logger  *slog.Logger
	evicted EvictFunc

	// serializes check-then-write so Update cannot race an eviction
	mu    sync.Mutex
	cache *lru.Cache[string, *entity.Session]
	// id being removed by DeleteByID, guarded by mu
	removing string
}

func NewMemorySessionRepository(logger *slog.Logger, capacity int, onEvict EvictFunc) (SessionRepository, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	that := &memorySession{
		logger:  logger.With("component", "memorySessionRepository"),
		evicted: onEvict,
	}

	cache, err := lru.NewWithEvict[string, *entity.Session](capacity, that.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	that.cache = cache

	return that, nil
}

// onEvict runs inside cache calls, all of which hold mu.
func (that *memorySession) onEvict(id string, session *entity.Session) {
	if id == that.removing {
		return
	}

	that.logger.Info("session evicted", "sessionID", id)

	if that.evicted != nil {
		that.evicted(context.Background(), session)
	}
}

func (that *memorySession) Create(_ context.Context, session *entity.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.cache.Contains(session.ID) {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	that.cache.Add(session.ID, session.Clone())

	return nil
}

func (that *memorySession) Update(_ context.Context, session *entity.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.cache.Contains(session.ID) {
		return ErrSessionNotFound
	}

	that.cache.Add(session.ID, session.Clone())

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	session, ok := that.cache.Peek(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session.Clone(), nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removing = id
	that.cache.Remove(id)
	that.removing = ""

	return nil
}

type dbSession struct {
	logger   *slog.Logger
	client   *redis.Client
	capacity int64
	evicted  EvictFunc
}

func NewRedisSessionRepository(logger *slog.Logger, client *redis.Client, capacity int, onEvict EvictFunc) SessionRepository {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &dbSession{
		logger:   logger.With("component", "redisSessionRepository"),
		client:   client,
		capacity: int64(capacity),
		evicted:  onEvict,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func touchScore(session *entity.Session) float64 {
	return float64(session.LastTouchedAt.UnixMicro())
}

func (that *dbSession) Create(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	created, err := that.client.SetNX(ctx, sessionKey(session.ID), sessionJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	member := redis.Z{Score: touchScore(session), Member: session.ID}
	if err = that.client.ZAdd(ctx, sessionsTouched, member).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}

	return that.evict(ctx)
}

// evict drops the least recently written sessions beyond capacity.
func (that *dbSession) evict(ctx context.Context) error {
	count, err := that.client.ZCard(ctx, sessionsTouched).Result()
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}

	if count <= that.capacity {
		return nil
	}

	oldest, err := that.client.ZPopMin(ctx, sessionsTouched, count-that.capacity).Result()
	if err != nil {
		return fmt.Errorf("failed to pop oldest sessions: %w", err)
	}

	keys := make([]string, 0, len(oldest))
	for _, z := range oldest {
		id, _ := z.Member.(string)
		keys = append(keys, sessionKey(id))
		that.logger.Info("session evicted", "sessionID", id)
	}

	var sessions []*entity.Session
	if that.evicted != nil {
		sessions = that.loadMany(ctx, keys)
	}

	if err = that.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete evicted sessions: %w", err)
	}

	for _, session := range sessions {
		that.evicted(ctx, session)
	}

	return nil
}

// loadMany reads the sessions stored under keys, skipping missing or
// unreadable ones.
func (that *dbSession) loadMany(ctx context.Context, keys []string) []*entity.Session {
	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		that.logger.Error("failed to read evicted sessions", "error", err)
		return nil
	}

	sessions := make([]*entity.Session, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var session entity.Session
		if err = json.Unmarshal([]byte(raw), &session); err != nil {
			that.logger.Error("failed to unmarshal evicted session", "error", err)
			continue
		}
		sessions = append(sessions, &session)
	}

	return sessions
}

func (that *dbSession) Update(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	// XX: only overwrite, never resurrect an evicted session
	updated, err := that.client.SetXX(ctx, sessionKey(session.ID), sessionJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	if !updated {
		return ErrSessionNotFound
	}

	member := redis.Z{Score: touchScore(session), Member: session.ID}
	if err = that.client.ZAddXX(ctx, sessionsTouched, member).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if err := that.client.ZRem(ctx, sessionsTouched, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex session: %w", err)
	}

	return nil
}

func marshalSession(session *entity.Session) ([]byte, error) {
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	return sessionJSON, nil
}
