package entity

import "slices"

const (
	QuizFlagCountry    = "flag_country"
	QuizCountryCapital = "country_capital"

	ContinentAll = "all"

	OverlayCorrect = "correct"
	OverlayWrong   = "wrong"
)

type QuizConfig struct {
	Mode            Mode     `json:"mode"`
	QuizType        string   `json:"quiz_type"`
	ContinentFilter []string `json:"continent_filter"`
	Player1Name     string   `json:"player1_name"`
	Player2Name     string   `json:"player2_name"`
	Rounds          int      `json:"rounds"`
	PointsPerHit    int      `json:"points_per_hit"`
	MaxAttempts     int      `json:"max_attempts"`
	FlashMode       bool     `json:"flash_mode"`
	RoundTime       int      `json:"round_time"`
}

type QuizResult struct {
	RoundNo       int    `json:"round_no"`
	Player        string `json:"player"`
	Code          string `json:"code"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

type QuizState struct {
	Config QuizConfig `json:"config"`

	Order         []string     `json:"order"`
	RoundIndex    int          `json:"round_index"`
	AttemptsLeft  int          `json:"attempts_left"`
	CurrentPlayer int          `json:"current_player"`
	ScoreP1       int          `json:"score_p1"`
	ScoreP2       int          `json:"score_p2"`
	Results       []QuizResult `json:"results"`
	Feedback      string       `json:"feedback"`
	Options       []string     `json:"options"`
	OptionsFor    string       `json:"options_for"`
	ShowOverlay   bool         `json:"show_overlay"`
	OverlayEffect string       `json:"overlay_effect,omitempty"`
}

func (that *QuizState) IsFinished() bool {
	return that.RoundIndex >= len(that.Order)
}

// CurrentCode returns the code being asked, or "" once the quiz is over.
func (that *QuizState) CurrentCode() string {
	if that.IsFinished() {
		return ""
	}

	return that.Order[that.RoundIndex]
}

func (that *QuizState) Clone() *QuizState {
	clone := *that
	clone.Config.ContinentFilter = slices.Clone(that.Config.ContinentFilter)
	clone.Order = slices.Clone(that.Order)
	clone.Results = slices.Clone(that.Results)
	clone.Options = slices.Clone(that.Options)

	return &clone
}
