package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/checkers"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/internal/quiz"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
)

var errRegistryDown = errors.New("registry down")

type fakeRegistry struct {
	mu    sync.Mutex
	codes map[string]bool
	err   error
	full  bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{codes: map[string]bool{}}
}

func (that *fakeRegistry) Reserve(_ context.Context, room *entity.RoomBinding) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return false, that.err
	}

	if that.full || that.codes[room.Code] {
		return false, nil
	}
	that.codes[room.Code] = true

	return true, nil
}

func tttSession(state *entity.TicTacToeState) *entity.Session {
	return &entity.Session{ID: "s1", Kind: entity.KindTicTacToe, TicTacToe: state}
}

func TestBotService_MakeTurn(t *testing.T) {
	bot := NewBotService(pkg.NewRand(7))

	t.Run("Bot plays O on an empty cell", func(t *testing.T) {
		// Given: X has just played in a solo game
		state := tictactoe.NewState(entity.ModeSolo, "", "")
		require.True(t, tictactoe.MakeTurn(state, 4))

		// When: the bot plays
		require.NoError(t, bot.MakeTurn(state))

		// Then: exactly one O is on the board and X is to move
		count := 0
		for _, cell := range state.Board {
			if cell == entity.MarkO {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, entity.MarkX, state.Board[4])
		assert.Equal(t, entity.MarkX, state.Current)
	})

	t.Run("Bot stays out of versus games and finished games", func(t *testing.T) {
		versus := tictactoe.NewState(entity.ModeVersus, "", "")
		require.True(t, tictactoe.MakeTurn(versus, 0))
		before := *versus
		require.NoError(t, bot.MakeTurn(versus))
		assert.Equal(t, before, *versus)

		finished := tictactoe.NewState(entity.ModeSolo, "", "")
		finished.Status = entity.StatusFinished
		finished.Current = entity.MarkO
		require.NoError(t, bot.MakeTurn(finished))
		assert.Equal(t, [9]string{}, finished.Board)
	})

	t.Run("Full board reports no moves", func(t *testing.T) {
		state := tictactoe.NewState(entity.ModeSolo, "", "")
		state.Board = [9]string{"X", "O", "X", "X", "O", "O", "O", "X", "X"}
		state.Current = entity.MarkO

		assert.ErrorIs(t, bot.MakeTurn(state), ErrNoAvailableMoves)
	})
}

func TestTurnGate(t *testing.T) {
	t.Run("Solo sessions are always playable until finished", func(t *testing.T) {
		session := tttSession(tictactoe.NewState(entity.ModeVersus, "", ""))

		assert.True(t, CanAct(session, nil, entity.RoleX))
		assert.True(t, CanAct(session, nil, entity.RoleO))
		assert.Equal(t, entity.PhaseInProgress, PhaseOf(session, nil))

		session.TicTacToe.Status = entity.StatusFinished
		assert.False(t, CanAct(session, nil, entity.RoleX))
		assert.Equal(t, entity.PhaseFinished, PhaseOf(session, nil))
	})

	t.Run("Nobody plays while the room waits for the guest", func(t *testing.T) {
		session := tttSession(tictactoe.NewState(entity.ModeVersus, "", ""))
		room := &entity.RoomBinding{Code: "ABC123"}

		assert.Equal(t, entity.PhaseWaitingForSecondParty, PhaseOf(session, room))
		assert.False(t, CanAct(session, room, entity.RoleX))
	})

	t.Run("Only the role on turn may act in a full room", func(t *testing.T) {
		session := tttSession(tictactoe.NewState(entity.ModeVersus, "", ""))
		room := &entity.RoomBinding{Code: "ABC123", SecondPartyJoined: true}

		assert.True(t, CanAct(session, room, entity.RoleX))
		assert.False(t, CanAct(session, room, entity.RoleO))

		require.True(t, tictactoe.MakeTurn(session.TicTacToe, 0))
		assert.False(t, CanAct(session, room, entity.RoleX))
		assert.True(t, CanAct(session, room, entity.RoleO))
	})

	t.Run("Checkers chain is its own phase", func(t *testing.T) {
		state := checkers.NewState("", "")
		state.Status = entity.StatusChain
		state.ForcedFrom = 42
		session := &entity.Session{Kind: entity.KindCheckers, Checkers: state}
		room := &entity.RoomBinding{SecondPartyJoined: true}

		assert.Equal(t, entity.PhaseChainContinuation, PhaseOf(session, room))
		assert.True(t, CanAct(session, room, entity.RoleBlue))
		assert.False(t, CanAct(session, room, entity.RoleGreen))
	})

	t.Run("Quiz roles follow the current player", func(t *testing.T) {
		state := &entity.QuizState{
			Config:        entity.QuizConfig{Mode: entity.ModeVersus},
			Order:         []string{"BR", "AR"},
			CurrentPlayer: 2,
		}
		session := &entity.Session{Kind: entity.KindQuiz, Quiz: state}
		room := &entity.RoomBinding{SecondPartyJoined: true}

		assert.Equal(t, entity.RoleP2, CurrentRole(session))
		assert.True(t, CanAct(session, room, entity.RoleP2))
		assert.False(t, CanAct(session, room, entity.RoleP1))

		state.Config.Mode = entity.ModeSolo
		assert.False(t, CanAct(session, room, entity.RoleP2))
	})
}

func TestRoomCodeGenerator_Allocate(t *testing.T) {
	ctx := context.Background()

	t.Run("Codes have the expected shape", func(t *testing.T) {
		generator := NewRoomCodeGenerator(newFakeRegistry(), pkg.NewRand(1), 0)
		room := &entity.RoomBinding{}

		code, err := generator.Allocate(ctx, room)

		require.NoError(t, err)
		assert.True(t, ValidCode(code), code)
		assert.Equal(t, code, room.Code)
	})

	t.Run("Falls back to the uuid source once attempts are spent", func(t *testing.T) {
		// Given: every random code collides
		registry := newFakeRegistry()
		generator := NewRoomCodeGenerator(registry, pkg.NewRand(1), 3)
		for range 3 {
			_, err := generator.Allocate(ctx, &entity.RoomBinding{})
			require.NoError(t, err)
		}
		generator.rnd = pkg.NewRand(1)
		generator.fallback = func() string { return "ZZZZZZ" }

		// When: allocating again with the same random sequence
		code, err := generator.Allocate(ctx, &entity.RoomBinding{})

		// Then: the fallback code is used
		require.NoError(t, err)
		assert.Equal(t, "ZZZZZZ", code)
	})

	t.Run("Exhausted code space is an error", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.full = true
		generator := NewRoomCodeGenerator(registry, pkg.NewRand(1), 5)

		_, err := generator.Allocate(ctx, &entity.RoomBinding{})

		assert.ErrorIs(t, err, apperror.ErrCodeSpaceExhausted)
	})

	t.Run("Registry errors are returned", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.err = errRegistryDown
		generator := NewRoomCodeGenerator(registry, pkg.NewRand(1), 5)

		_, err := generator.Allocate(ctx, &entity.RoomBinding{})

		assert.ErrorIs(t, err, errRegistryDown)
	})

	t.Run("Concurrent allocations are unique", func(t *testing.T) {
		// Given: one registry shared by every host
		registry := newFakeRegistry()
		generator := NewRoomCodeGenerator(registry, pkg.NewRand(3), 50)

		// When: many hosts open rooms at once
		const hosts = 64
		codes := make([]string, hosts)
		var wg sync.WaitGroup
		for i := range hosts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				code, err := generator.Allocate(ctx, &entity.RoomBinding{})
				assert.NoError(t, err)
				codes[i] = code
			}()
		}
		wg.Wait()

		// Then: no two hosts share a code
		seen := map[string]bool{}
		for _, code := range codes {
			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("AB12CD"))
	assert.False(t, ValidCode("ab12cd"))
	assert.False(t, ValidCode("AB12C"))
	assert.False(t, ValidCode("AB-2CD"))
	assert.True(t, ValidCode(UUIDCode()))
}

func TestKeyedLocker(t *testing.T) {
	t.Run("Same key is serialized", func(t *testing.T) {
		locker := NewKeyedLocker()
		var inside, maxInside atomic.Int32

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locker.Lock("s1")
				defer unlock()

				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxInside.Load())
		assert.Empty(t, locker.locks)
	})

	t.Run("Different keys do not block", func(t *testing.T) {
		locker := NewKeyedLocker()
		unlock := locker.Lock("a")
		defer unlock()

		done := make(chan struct{})
		go func() {
			locker.Lock("b")()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on another key blocked")
		}
	})
}

func TestProjector_Project(t *testing.T) {
	catalog, err := quiz.NewSampleCatalog()
	require.NoError(t, err)
	engine := quiz.NewEngine(catalog, pkg.NewRand(9), 5)
	projector := NewProjector(engine)

	t.Run("Waiting room host", func(t *testing.T) {
		session := tttSession(tictactoe.NewState(entity.ModeVersus, "", ""))
		seat := &entity.Seat{Kind: entity.KindTicTacToe, Role: entity.RoleX, RoomCode: "ABC123"}
		room := &entity.RoomBinding{Code: "ABC123"}

		snapshot := projector.Project(session, seat, room)

		assert.Equal(t, "ABC123", snapshot.RoomCode)
		assert.True(t, snapshot.Waiting)
		assert.False(t, snapshot.CanPlay)
		assert.True(t, snapshot.AutoRefresh)
		assert.Equal(t, entity.PhaseWaitingForSecondParty, snapshot.Phase)
		assert.NotSame(t, session.TicTacToe, snapshot.TicTacToe)
	})

	t.Run("Checkers green seat sees a rotated board and legal sources", func(t *testing.T) {
		state := checkers.NewState("", "")
		session := &entity.Session{Kind: entity.KindCheckers, Checkers: state}
		seat := &entity.Seat{Kind: entity.KindCheckers, Role: entity.RoleGreen, RoomCode: "ABC123"}
		room := &entity.RoomBinding{Code: "ABC123", SecondPartyJoined: true}

		snapshot := projector.Project(session, seat, room)

		require.NotNil(t, snapshot.Checkers)
		assert.False(t, snapshot.CanPlay)
		assert.True(t, snapshot.AutoRefresh)
		assert.Equal(t, 63, snapshot.Checkers.CellOrder[0])
		assert.Equal(t, []int{40, 42, 44, 46}, snapshot.Checkers.LegalSources)
		assert.Empty(t, snapshot.Checkers.Targets)
	})

	t.Run("Checkers selection exposes targets", func(t *testing.T) {
		state := checkers.NewState("", "")
		require.True(t, checkers.Click(state, 40))
		session := &entity.Session{Kind: entity.KindCheckers, Checkers: state}
		seat := &entity.Seat{Kind: entity.KindCheckers, Role: entity.RoleBlue}

		snapshot := projector.Project(session, seat, nil)

		assert.True(t, snapshot.CanPlay)
		assert.False(t, snapshot.AutoRefresh)
		assert.Equal(t, []checkers.Move{{To: 33}}, snapshot.Checkers.Targets)
		assert.Equal(t, 0, snapshot.Checkers.CellOrder[0])
	})

	t.Run("Quiz view carries labelled choices and a summary when done", func(t *testing.T) {
		state, err := engine.NewState(entity.QuizConfig{Rounds: 1})
		require.NoError(t, err)
		session := &entity.Session{Kind: entity.KindQuiz, Quiz: state}
		seat := &entity.Seat{Kind: entity.KindQuiz, Role: entity.RoleP1}

		snapshot := projector.Project(session, seat, nil)
		require.Len(t, snapshot.Quiz.Choices, len(state.Options))
		assert.NotEmpty(t, snapshot.Quiz.Choices[0].Label)
		assert.Nil(t, snapshot.Quiz.Summary)

		engine.Skip(state)
		snapshot = projector.Project(session, seat, nil)
		require.NotNil(t, snapshot.Quiz.Summary)
		assert.Equal(t, 1, snapshot.Quiz.Summary.Errors)
		assert.Equal(t, entity.PhaseFinished, snapshot.Phase)
	})
}
