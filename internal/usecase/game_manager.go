package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/checkers"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/internal/quiz"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository"
	"github.com/rocketscienceinc/gamehub-backend/internal/service"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
)

const (
	waitingQuizGuest = "Waiting for Player 2"
	waitingTTTGuest  = "Waiting for O"
)

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type roomRepo interface {
	GetByCode(ctx context.Context, code string) (*entity.RoomBinding, error)
	Update(ctx context.Context, room *entity.RoomBinding) error
	DeleteByCode(ctx context.Context, code string) error
}

type seatRepo interface {
	Save(ctx context.Context, seat *entity.Seat) error
	GetByToken(ctx context.Context, token string) (*entity.Seat, error)
	DeleteByToken(ctx context.Context, token string) error
}

type codeAllocator interface {
	Allocate(ctx context.Context, room *entity.RoomBinding) (string, error)
}

// Notifier is told about every change to a room's session.
type Notifier interface {
	Notify(roomCode string)
}

// GameConfig is what a host or a joiner sends when taking a seat.
type GameConfig struct {
	Mode      entity.Mode
	HostName  string
	GuestName string
	Quiz      entity.QuizConfig
}

// SeatResult is returned to a client that has just taken a seat.
type SeatResult struct {
	Token    string            `json:"session_token"`
	RoomCode string            `json:"room_code,omitempty"`
	Role     entity.Role       `json:"role"`
	Snapshot *service.Snapshot `json:"snapshot"`
}

// GameManager runs the session protocol for every game kind. It is the only
// component that writes sessions, rooms and seats.
type GameManager struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	roomRepo    roomRepo
	seatRepo    seatRepo
	codes       codeAllocator

	quiz      *quiz.Engine
	bot       service.BotService
	projector *service.Projector
	locker    *service.KeyedLocker
	notifier  Notifier

	now func() time.Time
}

func NewGameManager(
	logger *slog.Logger,
	sessionRepo sessionRepo,
	roomRepo roomRepo,
	seatRepo seatRepo,
	codes codeAllocator,
	quizEngine *quiz.Engine,
	bot service.BotService,
	notifier Notifier,
) *GameManager {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &GameManager{
		logger: logger.With("component", "gameManager"),

		sessionRepo: sessionRepo,
		roomRepo:    roomRepo,
		seatRepo:    seatRepo,
		codes:       codes,

		quiz:      quizEngine,
		bot:       bot,
		projector: service.NewProjector(quizEngine),
		locker:    service.NewKeyedLocker(),
		notifier:  notifier,

		now: time.Now,
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// Create starts a solo (or local hot-seat) session that is playable at once.
func (that *GameManager) Create(ctx context.Context, kind entity.Kind, cfg GameConfig) (*SeatResult, error) {
	session, err := that.createSession(ctx, kind, cfg, false)
	if err != nil {
		return nil, err
	}

	seat := &entity.Seat{
		Token:     pkg.GenerateToken(),
		SessionID: session.ID,
		Kind:      kind,
		Role:      entity.HostRole(kind),
	}

	if err = that.seatRepo.Save(ctx, seat); err != nil {
		that.deleteSession(ctx, session.ID)
		return nil, fmt.Errorf("failed to save seat: %w", err)
	}

	return that.seatResult(seat, session, nil), nil
}

// CreateRoom starts a session and opens it for a second party under a fresh
// room code.
func (that *GameManager) CreateRoom(ctx context.Context, kind entity.Kind, cfg GameConfig) (*SeatResult, error) {
	log := that.logger.With("method", "CreateRoom", "kind", kind)

	session, err := that.createSession(ctx, kind, cfg, true)
	if err != nil {
		return nil, err
	}

	room := &entity.RoomBinding{
		Kind:      kind,
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	code, err := that.codes.Allocate(ctx, room)
	if err != nil {
		that.deleteSession(ctx, session.ID)
		return nil, fmt.Errorf("failed to allocate room code: %w", err)
	}

	session.RoomCode = code
	if err = that.updateSession(ctx, session); err != nil {
		that.deleteRoom(ctx, code)
		return nil, err
	}

	seat := &entity.Seat{
		Token:     pkg.GenerateToken(),
		SessionID: session.ID,
		Kind:      kind,
		RoomCode:  code,
		Role:      entity.HostRole(kind),
	}

	if err = that.seatRepo.Save(ctx, seat); err != nil {
		that.deleteRoom(ctx, code)
		that.deleteSession(ctx, session.ID)
		return nil, fmt.Errorf("failed to save seat: %w", err)
	}

	log.Info("room created", "roomCode", code, "sessionID", session.ID)

	return that.seatResult(seat, session, room), nil
}

// JoinRoom seats the caller in the complementary role of the room's session.
// A later joiner replaces an earlier one.
func (that *GameManager) JoinRoom(ctx context.Context, code, name string) (*SeatResult, error) {
	log := that.logger.With("method", "JoinRoom")

	code = strings.ToUpper(strings.TrimSpace(code))

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := that.locker.Lock(room.SessionID)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, room.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		log.Warn("purging room of an expired session", "roomCode", code)
		that.deleteRoom(ctx, code)

		return nil, apperror.ErrRoomExpired
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if room.SecondPartyJoined {
		log.Info("second party replaced", "roomCode", code)
	}

	seatGuest(session, name)
	session.LastTouchedAt = that.now()

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	room.SecondPartyJoined = true
	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	seat := &entity.Seat{
		Token:     pkg.GenerateToken(),
		SessionID: session.ID,
		Kind:      session.Kind,
		RoomCode:  code,
		Role:      entity.GuestRole(session.Kind),
	}

	if err = that.seatRepo.Save(ctx, seat); err != nil {
		return nil, fmt.Errorf("failed to save seat: %w", err)
	}

	log.Info("room joined", "roomCode", code, "role", seat.Role)
	that.notifier.Notify(code)

	return that.seatResult(seat, session, room), nil
}

// Act applies one ply for the seat behind token. Plies that are well formed
// but illegal under the rules leave the state as it was.
func (that *GameManager) Act(ctx context.Context, token string, action entity.Action) (*service.Snapshot, error) {
	seat, unlock, err := that.lockSeat(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, room, err := that.load(ctx, seat, true)
	if err != nil {
		return nil, err
	}

	if session.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if !service.CanAct(session, room, seat.Role) {
		return nil, apperror.ErrTurnNotYours
	}

	changed, err := that.apply(session, room, action)
	if err != nil {
		return nil, err
	}

	if changed {
		session.LastTouchedAt = that.now()
		if err = that.updateSession(ctx, session); err != nil {
			return nil, err
		}

		that.notify(room)
	}

	return that.projector.Project(session, seat, room), nil
}

func (that *GameManager) apply(session *entity.Session, room *entity.RoomBinding, action entity.Action) (bool, error) {
	switch session.Kind {
	case entity.KindTicTacToe:
		if action.Cell == nil || *action.Cell < 0 || *action.Cell >= len(session.TicTacToe.Board) {
			return false, fmt.Errorf("%w: cell must be between 0 and 8", apperror.ErrInvalidInput)
		}

		if !tictactoe.MakeTurn(session.TicTacToe, *action.Cell) {
			return false, nil
		}

		if room == nil {
			if err := that.bot.MakeTurn(session.TicTacToe); err != nil {
				that.logger.Error("bot failed to make turn", "sessionID", session.ID, "error", err)
			}
		}

		return true, nil
	case entity.KindCheckers:
		switch {
		case action.From != nil && action.To != nil:
			if !validBoardCell(*action.From) || !validBoardCell(*action.To) {
				return false, fmt.Errorf("%w: cells must be between 0 and 63", apperror.ErrInvalidInput)
			}

			return checkers.ApplyMove(session.Checkers, *action.From, *action.To), nil
		case action.Cell != nil:
			if !validBoardCell(*action.Cell) {
				return false, fmt.Errorf("%w: cell must be between 0 and 63", apperror.ErrInvalidInput)
			}

			return checkers.Click(session.Checkers, *action.Cell), nil
		default:
			return false, fmt.Errorf("%w: expected a cell or a from/to pair", apperror.ErrInvalidInput)
		}
	default:
		switch {
		case action.Skip:
			that.quiz.Skip(session.Quiz)
			return true, nil
		case action.Option != "":
			if err := that.quiz.Answer(session.Quiz, action.Option); err != nil {
				return false, err
			}

			return true, nil
		default:
			return false, fmt.Errorf("%w: expected an option or skip", apperror.ErrInvalidInput)
		}
	}
}

func validBoardCell(idx int) bool {
	return idx >= 0 && idx < entity.BoardCells
}

// Poll is a read-only view of the seat's session.
func (that *GameManager) Poll(ctx context.Context, token string) (*service.Snapshot, error) {
	seat, err := that.getSeat(ctx, token)
	if err != nil {
		return nil, err
	}

	session, room, err := that.load(ctx, seat, false)
	if err != nil {
		return nil, err
	}

	return that.projector.Project(session, seat, room), nil
}

// NextRound resets the board, keeping names and scores. Inside a room only the
// host may call it.
func (that *GameManager) NextRound(ctx context.Context, token string) (*service.Snapshot, error) {
	seat, unlock, err := that.lockSeat(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if seat.InRoom() && !seat.IsHost() {
		return nil, apperror.ErrNotRoomHost
	}

	session, room, err := that.load(ctx, seat, true)
	if err != nil {
		return nil, err
	}

	switch session.Kind {
	case entity.KindTicTacToe:
		tictactoe.NextRound(session.TicTacToe)
	case entity.KindCheckers:
		checkers.NextRound(session.Checkers)
	default:
		if err = that.quiz.NextRound(session.Quiz); err != nil {
			return nil, err
		}
	}

	session.LastTouchedAt = that.now()
	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	that.notify(room)

	return that.projector.Project(session, seat, room), nil
}

// DismissOverlay hides the end-of-game (or correct-answer) overlay.
func (that *GameManager) DismissOverlay(ctx context.Context, token string) (*service.Snapshot, error) {
	seat, unlock, err := that.lockSeat(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, room, err := that.load(ctx, seat, true)
	if err != nil {
		return nil, err
	}

	switch session.Kind {
	case entity.KindTicTacToe:
		session.TicTacToe.ShowOverlay = false
	case entity.KindCheckers:
		session.Checkers.ShowOverlay = false
	default:
		session.Quiz.ShowOverlay = false
		session.Quiz.OverlayEffect = ""
	}

	session.LastTouchedAt = that.now()
	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	that.notify(room)

	return that.projector.Project(session, seat, room), nil
}

// LeaveRoom ends the seat. The host takes the room and the session with it;
// a guest only frees the second place. Outside a room it discards the session.
func (that *GameManager) LeaveRoom(ctx context.Context, token string) error {
	log := that.logger.With("method", "LeaveRoom")

	seat, unlock, err := that.lockSeat(ctx, token)
	if err != nil {
		return err
	}
	defer unlock()

	that.deleteSeat(ctx, seat.Token)

	if !seat.InRoom() {
		that.deleteSession(ctx, seat.SessionID)
		return nil
	}

	room, err := that.getRoom(ctx, seat.RoomCode)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if seat.IsHost() {
		that.deleteRoom(ctx, room.Code)
		that.deleteSession(ctx, room.SessionID)
		log.Info("room closed by host", "roomCode", room.Code)
	} else {
		room.SecondPartyJoined = false
		if err = that.roomRepo.Update(ctx, room); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
			return fmt.Errorf("failed to update room: %w", err)
		}
		log.Info("guest left room", "roomCode", room.Code)
	}

	that.notifier.Notify(room.Code)

	return nil
}

// Reset discards the seat's session so the client can start over. Inside a
// room it behaves like LeaveRoom, so a guest never destroys the host's game.
func (that *GameManager) Reset(ctx context.Context, token string) error {
	return that.LeaveRoom(ctx, token)
}

// RoomExists reports whether code is a live room. A room whose session is
// gone is purged on the way.
func (that *GameManager) RoomExists(ctx context.Context, code string) (bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	room, err := that.getRoom(ctx, code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	_, err = that.sessionRepo.GetByID(ctx, room.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		that.logger.Warn("purging room of an expired session", "method", "RoomExists", "roomCode", code)
		that.deleteRoom(ctx, code)
		that.notifier.Notify(code)

		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to get session: %w", err)
	}

	return true, nil
}

func (that *GameManager) createSession(ctx context.Context, kind entity.Kind, cfg GameConfig, paired bool) (*entity.Session, error) {
	now := that.now()
	session := &entity.Session{
		ID:            pkg.GenerateSessionID(),
		Kind:          kind,
		CreatedAt:     now,
		LastTouchedAt: now,
	}

	switch kind {
	case entity.KindTicTacToe:
		mode, guest := cfg.Mode, cfg.GuestName
		if paired {
			mode, guest = entity.ModeVersus, waitingTTTGuest
		}
		session.TicTacToe = tictactoe.NewState(mode, cfg.HostName, guest)
	case entity.KindCheckers:
		// a paired room keeps the submitted green name until someone joins
		session.Checkers = checkers.NewState(cfg.HostName, cfg.GuestName)
	case entity.KindQuiz:
		quizCfg := cfg.Quiz
		quizCfg.Mode = cfg.Mode
		quizCfg.Player1Name = cfg.HostName
		quizCfg.Player2Name = cfg.GuestName
		if paired {
			quizCfg.Mode = entity.ModeVersus
			quizCfg.Player2Name = waitingQuizGuest
		}

		state, err := that.quiz.NewState(quizCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start quiz: %w", err)
		}
		session.Quiz = state
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameKind, kind)
	}

	if err := that.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// seatGuest puts the joiner's name in place of the placeholder.
func seatGuest(session *entity.Session, name string) {
	switch session.Kind {
	case entity.KindTicTacToe:
		if name == "" {
			name = tictactoe.DefaultOName
		}
		session.TicTacToe.Mode = entity.ModeVersus
		tictactoe.SetPlayerName(session.TicTacToe, entity.MarkO, name)
	case entity.KindCheckers:
		if name == "" {
			name = checkers.DefaultGreenName
		}
		checkers.SetPlayerName(session.Checkers, entity.SideGreen, name)
	case entity.KindQuiz:
		if name == "" {
			name = quiz.DefaultPlayer2Name
		}
		session.Quiz.Config.Mode = entity.ModeVersus
		session.Quiz.Config.Player2Name = name
	}
}

func (that *GameManager) seatResult(seat *entity.Seat, session *entity.Session, room *entity.RoomBinding) *SeatResult {
	return &SeatResult{
		Token:    seat.Token,
		RoomCode: seat.RoomCode,
		Role:     seat.Role,
		Snapshot: that.projector.Project(session, seat, room),
	}
}

// lockSeat resolves token and takes the lock of its session.
func (that *GameManager) lockSeat(ctx context.Context, token string) (*entity.Seat, func(), error) {
	seat, err := that.getSeat(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	return seat, that.locker.Lock(seat.SessionID), nil
}

func (that *GameManager) getSeat(ctx context.Context, token string) (*entity.Seat, error) {
	if token == "" {
		return nil, apperror.ErrSessionExpired
	}

	seat, err := that.seatRepo.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrSeatNotFound) {
		return nil, apperror.ErrSessionExpired
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	return seat, nil
}

func (that *GameManager) getRoom(ctx context.Context, code string) (*entity.RoomBinding, error) {
	room, err := that.roomRepo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// load fetches the seat's session and room. With purge set, dangling seats
// and rooms found on the way are removed.
func (that *GameManager) load(ctx context.Context, seat *entity.Seat, purge bool) (*entity.Session, *entity.RoomBinding, error) {
	log := that.logger.With("method", "load", "sessionID", seat.SessionID)

	session, err := that.sessionRepo.GetByID(ctx, seat.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		if purge {
			log.Info("purging seat of an expired session")
			that.deleteSeat(ctx, seat.Token)
			that.purgeRoom(ctx, seat)
		}

		return nil, nil, apperror.ErrSessionExpired
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !seat.InRoom() {
		return session, nil, nil
	}

	room, err := that.getRoom(ctx, seat.RoomCode)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		// the room is gone but the session lives on: keep playing unpaired
		if purge {
			seat.RoomCode = ""
			if err = that.seatRepo.Save(ctx, seat); err != nil {
				log.Error("failed to detach seat from room", "error", err)
			}
		}

		return session, nil, nil
	}

	if err != nil {
		return nil, nil, err
	}

	return session, room, nil
}

func (that *GameManager) purgeRoom(ctx context.Context, seat *entity.Seat) {
	if !seat.InRoom() {
		return
	}

	room, err := that.roomRepo.GetByCode(ctx, seat.RoomCode)
	if err != nil {
		return
	}

	if room.SessionID == seat.SessionID {
		that.deleteRoom(ctx, room.Code)
		that.notifier.Notify(room.Code)
	}
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	err := that.sessionRepo.Update(ctx, session)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return apperror.ErrSessionExpired
	}

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *GameManager) deleteSession(ctx context.Context, id string) {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		that.logger.Error("failed to delete session", "sessionID", id, "error", err)
	}
}

func (that *GameManager) deleteRoom(ctx context.Context, code string) {
	if err := that.roomRepo.DeleteByCode(ctx, code); err != nil {
		that.logger.Error("failed to delete room", "roomCode", code, "error", err)
	}
}

func (that *GameManager) deleteSeat(ctx context.Context, token string) {
	if err := that.seatRepo.DeleteByToken(ctx, token); err != nil {
		that.logger.Error("failed to delete seat", "error", err)
	}
}

func (that *GameManager) notify(room *entity.RoomBinding) {
	if room != nil {
		that.notifier.Notify(room.Code)
	}
}
