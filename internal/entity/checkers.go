package entity

const (
	BoardCells = 64
	BoardSide  = 8

	// NoCell marks an unset cell reference (no forced piece, no selection).
	NoCell = -1
)

type Side string

const (
	SideNone  Side = ""
	SideBlue  Side = "b"
	SideGreen Side = "g"
)

type Piece string

const (
	PieceEmpty Piece = ""
	BlueMan    Piece = "b"
	BlueKing   Piece = "B"
	GreenMan   Piece = "g"
	GreenKing  Piece = "G"
)

func (that Piece) Owner() Side {
	switch that {
	case BlueMan, BlueKing:
		return SideBlue
	case GreenMan, GreenKing:
		return SideGreen
	default:
		return SideNone
	}
}

func (that Piece) IsKing() bool {
	return that == BlueKing || that == GreenKing
}

func (that Side) Opponent() Side {
	switch that {
	case SideBlue:
		return SideGreen
	case SideGreen:
		return SideBlue
	default:
		return SideNone
	}
}

// CheckersState is a checkers match. ForcedFrom is only meaningful while
// Status is StatusChain.
type CheckersState struct {
	BlueName  string `json:"blue_name"`
	GreenName string `json:"green_name"`

	Board      [BoardCells]Piece `json:"board"`
	Turn       Side              `json:"turn"`
	Status     Status            `json:"status"`
	ForcedFrom int               `json:"forced_from"`
	Selected   int               `json:"selected"`
	Winner     Side              `json:"winner"`
	WinnerName string            `json:"winner_name"`
	Message    string            `json:"message"`

	ScoreBlue  int `json:"score_blue"`
	ScoreGreen int `json:"score_green"`

	ShowOverlay bool `json:"show_overlay"`
}

func (that *CheckersState) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *CheckersState) InChain() bool {
	return that.Status == StatusChain && that.ForcedFrom != NoCell
}

func (that *CheckersState) NameFor(side Side) string {
	if side == SideGreen {
		return that.GreenName
	}

	return that.BlueName
}
