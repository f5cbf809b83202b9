package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/testing/suite"
)

func TestRedisSessionRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)

	// Given: a new tic-tac-toe session
	session := newSession("123")

	// When: Create is called
	err := sessionRepo.Create(ctx, session)

	// Then: the session is stored and a second Create is refused
	require.NoError(t, err)
	require.ErrorIs(t, sessionRepo.Create(ctx, session), ErrSessionExists)
}

func TestRedisSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)

		// Given: a stored session
		session := newSession("123")
		session.TicTacToe.Board[4] = entity.MarkX
		require.NoError(t, sessionRepo.Create(ctx, session))

		// When: GetByID is called with the existing ID
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: the retrieved session matches the saved one
		require.NoError(t, err)
		assert.Equal(t, session.ID, retrieved.ID)
		assert.Equal(t, session.Kind, retrieved.Kind)
		assert.Equal(t, session.TicTacToe, retrieved.TicTacToe)
		assert.Nil(t, retrieved.Checkers)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)

		// When: GetByID is called with a non-existent ID
		retrieved, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestRedisSessionRepository_Update(t *testing.T) {
	t.Run("Update_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)
		session := newSession("123")
		require.NoError(t, sessionRepo.Create(ctx, session))

		// When: the session is changed and updated
		session.TicTacToe.Board[0] = entity.MarkX
		session.LastTouchedAt = time.Now()
		require.NoError(t, sessionRepo.Update(ctx, session))

		// Then: the change is persisted
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.MarkX, retrieved.TicTacToe.Board[0])
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)

		// When: a session that was never created is updated
		err := sessionRepo.Update(ctx, newSession("ghost"))

		// Then: it is not recreated
		require.ErrorIs(t, err, ErrSessionNotFound)
		_, err = sessionRepo.GetByID(ctx, "ghost")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestRedisSessionRepository_Eviction(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 2, nil)

	// Given: three sessions written one after another into a store of two
	base := time.Now()
	for i, id := range []string{"s1", "s2", "s3"} {
		session := newSession(id)
		session.LastTouchedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, sessionRepo.Create(ctx, session))
	}

	// Then: the oldest one is gone and stays gone
	_, err := sessionRepo.GetByID(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, sessionRepo.Update(ctx, newSession("s1")), ErrSessionNotFound)

	count, err := st.Storage.ZCard(ctx, sessionsTouched).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRedisSessionRepository_EvictionReleasesRoom(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRedisRoomRepository(st.Storage)
	sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 1, ReleaseRooms(st.Logger, roomRepo, nil))

	// Given: a session shared through a room
	base := time.Now()
	session := newSession("s1")
	session.RoomCode = "ABC123"
	session.LastTouchedAt = base
	require.NoError(t, sessionRepo.Create(ctx, session))
	_, err := roomRepo.Reserve(ctx, &entity.RoomBinding{Code: "ABC123", SessionID: "s1"})
	require.NoError(t, err)

	// When: a newer session pushes it out
	next := newSession("s2")
	next.LastTouchedAt = base.Add(time.Second)
	require.NoError(t, sessionRepo.Create(ctx, next))

	// Then: the room key is gone with it
	_, err = roomRepo.GetByCode(ctx, "ABC123")
	require.ErrorIs(t, err, ErrRoomNotFound)

	exists, err := st.Storage.Exists(ctx, roomKey("ABC123")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewRedisSessionRepository(st.Logger, st.Storage, 10, nil)
	require.NoError(t, sessionRepo.Create(ctx, newSession("123")))

	// When: DeleteByID is called
	require.NoError(t, sessionRepo.DeleteByID(ctx, "123"))

	// Then: the session and its index entry are gone
	_, err := sessionRepo.GetByID(ctx, "123")
	require.ErrorIs(t, err, ErrSessionNotFound)

	count, err := st.Storage.ZCard(ctx, sessionsTouched).Result()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisRoomRepository(t *testing.T) {
	t.Run("Reserve_Unique", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRedisRoomRepository(st.Storage)

		// Given: a reserved code
		room := &entity.RoomBinding{Code: "ABC123", Kind: entity.KindTicTacToe, SessionID: "s1"}
		ok, err := roomRepo.Reserve(ctx, room)
		require.NoError(t, err)
		require.True(t, ok)

		// When: another kind reserves the same code
		ok, err = roomRepo.Reserve(ctx, &entity.RoomBinding{Code: "ABC123", Kind: entity.KindQuiz, SessionID: "s2"})

		// Then: the reservation is refused and the first binding kept
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := roomRepo.GetByCode(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, "s1", stored.SessionID)
		assert.Equal(t, entity.KindTicTacToe, stored.Kind)
	})

	t.Run("Update_And_Delete", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRedisRoomRepository(st.Storage)
		room := &entity.RoomBinding{Code: "ABC123", SessionID: "s1"}
		_, err := roomRepo.Reserve(ctx, room)
		require.NoError(t, err)

		room.SecondPartyJoined = true
		require.NoError(t, roomRepo.Update(ctx, room))

		stored, err := roomRepo.GetByCode(ctx, "ABC123")
		require.NoError(t, err)
		assert.True(t, stored.SecondPartyJoined)

		require.NoError(t, roomRepo.DeleteByCode(ctx, "ABC123"))
		_, err = roomRepo.GetByCode(ctx, "ABC123")
		require.ErrorIs(t, err, ErrRoomNotFound)
		require.ErrorIs(t, roomRepo.Update(ctx, room), ErrRoomNotFound)
	})
}

func TestRedisSeatRepository(t *testing.T) {
	ctx, st := suite.New(t)

	seatRepo := NewRedisSeatRepository(st.Storage)

	// Given: a saved seat
	seat := &entity.Seat{Token: "t1", SessionID: "s1", Kind: entity.KindQuiz, Role: entity.RoleP1}
	require.NoError(t, seatRepo.Save(ctx, seat))

	// Then: it can be read back and removed
	stored, err := seatRepo.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, seat, stored)

	ttl, err := st.Storage.TTL(ctx, seatKeyPrefix+"t1").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0, "seat should expire")

	require.NoError(t, seatRepo.DeleteByToken(ctx, "t1"))
	_, err = seatRepo.GetByToken(ctx, "t1")
	require.ErrorIs(t, err, ErrSeatNotFound)
}
