package entity

const (
	MarkX     = "X"
	MarkO     = "O"
	EmptyCell = ""

	WinnerDraw = "draw"
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type TicTacToeState struct {
	Mode  Mode   `json:"mode"`
	XName string `json:"x_name"`
	OName string `json:"o_name"`

	Board      [9]string `json:"board"`
	Current    string    `json:"current"`
	Status     Status    `json:"status"`
	Winner     string    `json:"winner"`
	WinnerName string    `json:"winner_name"`
	Message    string    `json:"message"`

	ScoreX    int `json:"score_x"`
	ScoreO    int `json:"score_o"`
	ScoreDraw int `json:"score_draw"`

	ShowOverlay bool `json:"show_overlay"`
}

func (that *TicTacToeState) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *TicTacToeState) NameFor(mark string) string {
	if mark == MarkX {
		return that.XName
	}

	return that.OName
}
