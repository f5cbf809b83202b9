package service

import (
	"slices"

	"github.com/rocketscienceinc/gamehub-backend/internal/checkers"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/quiz"
)

// Snapshot is what a seat sees of its session on poll or after an action.
type Snapshot struct {
	Kind        entity.Kind  `json:"kind"`
	Role        entity.Role  `json:"role"`
	RoomCode    string       `json:"room_code,omitempty"`
	Phase       entity.Phase `json:"phase"`
	CanPlay     bool         `json:"can_play"`
	Waiting     bool         `json:"waiting"`
	AutoRefresh bool         `json:"auto_refresh"`

	Quiz      *QuizView              `json:"quiz,omitempty"`
	TicTacToe *entity.TicTacToeState `json:"tictactoe,omitempty"`
	Checkers  *CheckersView          `json:"checkers,omitempty"`
}

type QuizView struct {
	*entity.QuizState

	PlayerName string        `json:"player_name"`
	Prompt     string        `json:"prompt"`
	Choices    []quiz.Option `json:"choices"`
	Summary    *quiz.Summary `json:"summary,omitempty"`
}

type CheckersView struct {
	*entity.CheckersState

	LegalSources []int           `json:"legal_sources"`
	Targets      []checkers.Move `json:"targets"`
	CellOrder    []int           `json:"cell_order"`
}

type Projector struct {
	quiz *quiz.Engine
}

func NewProjector(quizEngine *quiz.Engine) *Projector {
	return &Projector{quiz: quizEngine}
}

// Project builds the view of session for seat. It never mutates its inputs.
func (that *Projector) Project(session *entity.Session, seat *entity.Seat, room *entity.RoomBinding) *Snapshot {
	phase := PhaseOf(session, room)
	canPlay := CanAct(session, room, seat.Role)
	waiting := phase == entity.PhaseWaitingForSecondParty

	snapshot := &Snapshot{
		Kind:        session.Kind,
		Role:        seat.Role,
		Phase:       phase,
		CanPlay:     canPlay,
		Waiting:     waiting,
		AutoRefresh: room != nil && (waiting || (!canPlay && phase != entity.PhaseFinished)),
	}

	if room != nil {
		snapshot.RoomCode = room.Code
	}

	switch session.Kind {
	case entity.KindQuiz:
		snapshot.Quiz = that.projectQuiz(session.Quiz.Clone())
	case entity.KindTicTacToe:
		ttt := *session.TicTacToe
		snapshot.TicTacToe = &ttt
	case entity.KindCheckers:
		snapshot.Checkers = projectCheckers(session.Checkers, seat, room)
	}

	return snapshot
}

func (that *Projector) projectQuiz(state *entity.QuizState) *QuizView {
	view := &QuizView{
		QuizState:  state,
		PlayerName: quiz.PlayerName(state),
		Prompt:     that.quiz.Prompt(state),
		Choices:    that.quiz.Options(state),
	}

	if state.IsFinished() {
		summary := quiz.Summarize(state)
		view.Summary = &summary
	}

	return view
}

func projectCheckers(state *entity.CheckersState, seat *entity.Seat, room *entity.RoomBinding) *CheckersView {
	clone := *state
	legal := checkers.LegalMoves(&clone)

	sources := make([]int, 0, len(legal))
	for from := range legal {
		sources = append(sources, from)
	}
	slices.Sort(sources)

	targets := []checkers.Move{}
	if clone.Selected != entity.NoCell {
		targets = append(targets, legal[clone.Selected]...)
	}

	// only paired players get a rotated board
	orientation := entity.RoleBlue
	if room != nil {
		orientation = seat.Role
	}

	return &CheckersView{
		CheckersState: &clone,
		LegalSources:  sources,
		Targets:       targets,
		CellOrder:     checkers.CellOrder(orientation),
	}
}
