package entity

// Status is the engine-level lifecycle of a single match.
type Status string

const (
	StatusOngoing  Status = "ongoing"
	StatusChain    Status = "chain"
	StatusFinished Status = "finished"
)

// Phase is what the turn gate sees: the match status combined with the room
// pairing state.
type Phase string

const (
	PhaseWaitingForSecondParty Phase = "waiting_for_second_party"
	PhaseInProgress            Phase = "in_progress"
	PhaseChainContinuation     Phase = "chain_continuation"
	PhaseFinished              Phase = "finished"
)
