package entity

// Action is the game-specific payload of an act call.
//
// Tic-tac-toe reads Cell. Checkers reads either Cell (click protocol) or the
// From/To pair. The quiz reads Option, or Skip.
type Action struct {
	Cell   *int   `json:"cell,omitempty"`
	From   *int   `json:"from,omitempty"`
	To     *int   `json:"to,omitempty"`
	Option string `json:"option,omitempty"`
	Skip   bool   `json:"skip,omitempty"`
}
