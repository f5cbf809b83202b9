package service

import "github.com/rocketscienceinc/gamehub-backend/internal/entity"

// CurrentRole returns the role whose ply it is.
func CurrentRole(session *entity.Session) entity.Role {
	switch session.Kind {
	case entity.KindTicTacToe:
		return entity.Role(session.TicTacToe.Current)
	case entity.KindCheckers:
		return entity.Role(session.Checkers.Turn)
	default:
		if session.Quiz.CurrentPlayer == 2 {
			return entity.RoleP2
		}

		return entity.RoleP1
	}
}

// PhaseOf combines the match status with the room pairing state. room is nil
// for sessions that were never opened for pairing.
func PhaseOf(session *entity.Session, room *entity.RoomBinding) entity.Phase {
	switch {
	case session.IsFinished():
		return entity.PhaseFinished
	case room != nil && !room.SecondPartyJoined:
		return entity.PhaseWaitingForSecondParty
	case session.Kind == entity.KindCheckers && session.Checkers.InChain():
		return entity.PhaseChainContinuation
	default:
		return entity.PhaseInProgress
	}
}

// CanAct reports whether role may play right now. Without a room every ply is
// open to the local player(s). Inside a room both parties must be present and
// only the role on turn may act.
func CanAct(session *entity.Session, room *entity.RoomBinding, role entity.Role) bool {
	switch PhaseOf(session, room) {
	case entity.PhaseFinished, entity.PhaseWaitingForSecondParty:
		return false
	}

	if room == nil {
		return true
	}

	if session.Kind == entity.KindQuiz && session.Quiz.Config.Mode != entity.ModeVersus {
		return false
	}

	return CurrentRole(session) == role
}
