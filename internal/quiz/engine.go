package quiz

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
)

const (
	DefaultRounds       = 50
	DefaultPointsPerHit = 10
	DefaultMaxAttempts  = 1
	DefaultRoundTime    = 7
	DefaultPlayer1Name  = "Player 1"
	DefaultPlayer2Name  = "Player 2"

	maxOptions = 6

	startFeedback = "Pick the correct answer."
	skippedLabel  = "<skipped>"
	drawWinner    = "Draw"
)

var ErrEmptyPool = errors.New("no questions available for this filter")

// Option is one answer choice as shown to players.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Summary struct {
	TotalRounds int                 `json:"total_rounds"`
	Hits        int                 `json:"hits"`
	Errors      int                 `json:"errors"`
	Percent     float64             `json:"percent"`
	Winner      string              `json:"winner,omitempty"`
	Missed      []entity.QuizResult `json:"missed"`
}

type Engine struct {
	catalog       Catalog
	rnd           *pkg.Rand
	defaultRounds int
}

func NewEngine(catalog Catalog, rnd *pkg.Rand, defaultRounds int) *Engine {
	if defaultRounds < 1 {
		defaultRounds = DefaultRounds
	}

	return &Engine{
		catalog:       catalog,
		rnd:           rnd,
		defaultRounds: defaultRounds,
	}
}

// NormalizeConfig fills unset numeric fields with defaults, clamps the rest
// to at least 1 and normalizes the continent filter.
func (that *Engine) NormalizeConfig(cfg entity.QuizConfig) entity.QuizConfig {
	if !cfg.Mode.Valid() {
		cfg.Mode = entity.ModeSolo
	}

	if cfg.QuizType != entity.QuizCountryCapital {
		cfg.QuizType = entity.QuizFlagCountry
	}

	cfg.ContinentFilter = NormalizeContinents(cfg.ContinentFilter)

	if cfg.Player1Name == "" {
		cfg.Player1Name = DefaultPlayer1Name
	}

	if cfg.Player2Name == "" {
		cfg.Player2Name = DefaultPlayer2Name
	}

	cfg.Rounds = orDefault(cfg.Rounds, that.defaultRounds)
	cfg.PointsPerHit = orDefault(cfg.PointsPerHit, DefaultPointsPerHit)
	cfg.MaxAttempts = orDefault(cfg.MaxAttempts, DefaultMaxAttempts)
	cfg.RoundTime = orDefault(cfg.RoundTime, DefaultRoundTime)

	return cfg
}

func orDefault(value, def int) int {
	switch {
	case value == 0:
		return def
	case value < 1:
		return 1
	default:
		return value
	}
}

func (that *Engine) NewState(cfg entity.QuizConfig) (*entity.QuizState, error) {
	cfg = that.NormalizeConfig(cfg)

	order, err := that.sample(cfg)
	if err != nil {
		return nil, err
	}

	state := &entity.QuizState{
		Config:        cfg,
		Order:         order,
		AttemptsLeft:  cfg.MaxAttempts,
		CurrentPlayer: 1,
		Results:       []entity.QuizResult{},
		Feedback:      startFeedback,
	}
	that.ensureOptions(state)

	return state, nil
}

// NextRound draws a new question order for the same configuration. Scores
// carry over; results start empty.
func (that *Engine) NextRound(state *entity.QuizState) error {
	order, err := that.sample(state.Config)
	if err != nil {
		return err
	}

	state.Order = order
	state.RoundIndex = 0
	state.AttemptsLeft = state.Config.MaxAttempts
	state.CurrentPlayer = 1
	state.Results = []entity.QuizResult{}
	state.Feedback = startFeedback
	state.Options = nil
	state.OptionsFor = ""
	state.ShowOverlay = false
	state.OverlayEffect = ""
	that.ensureOptions(state)

	return nil
}

func (that *Engine) sample(cfg entity.QuizConfig) ([]string, error) {
	pool := slices.Clone(that.catalog.Pool(cfg.QuizType, cfg.ContinentFilter))
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidInput, ErrEmptyPool)
	}

	that.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool[:min(cfg.Rounds, len(pool))], nil
}

// Answer registers code as the current player's answer. Codes outside the
// question pool are rejected with apperror.ErrInvalidInput. Answers on a
// finished quiz are ignored.
func (that *Engine) Answer(state *entity.QuizState, code string) error {
	if state.IsFinished() {
		return nil
	}

	if !slices.Contains(that.pool(state), code) {
		return fmt.Errorf("%w: unknown option %q", apperror.ErrInvalidInput, code)
	}

	that.register(state, code, that.catalog.Label(state.Config.QuizType, code), false)

	return nil
}

// Skip counts as a wrong answer regardless of remaining attempts.
func (that *Engine) Skip(state *entity.QuizState) {
	if state.IsFinished() {
		return
	}

	that.register(state, "", skippedLabel, true)
}

func (that *Engine) register(state *entity.QuizState, selected, selectedLabel string, forcedWrong bool) {
	code := state.CurrentCode()
	player := PlayerName(state)
	correctLabel := that.catalog.Label(state.Config.QuizType, code)

	result := entity.QuizResult{
		RoundNo:       state.RoundIndex + 1,
		Player:        player,
		Code:          code,
		Selected:      selectedLabel,
		CorrectAnswer: correctLabel,
	}

	if !forcedWrong && selected == code {
		if state.Config.Mode == entity.ModeVersus && state.CurrentPlayer == 2 {
			state.ScoreP2 += state.Config.PointsPerHit
		} else {
			state.ScoreP1 += state.Config.PointsPerHit
		}

		result.Correct = true
		state.Results = append(state.Results, result)
		state.Feedback = fmt.Sprintf("%s got it right!", player)
		state.ShowOverlay = true
		state.OverlayEffect = entity.OverlayCorrect
		that.advance(state)

		return
	}

	state.ShowOverlay = false
	state.OverlayEffect = entity.OverlayWrong
	state.AttemptsLeft--

	if state.AttemptsLeft > 0 && !forcedWrong {
		state.Feedback = fmt.Sprintf("%s missed. Attempts left: %d", player, state.AttemptsLeft)
		return
	}

	state.Results = append(state.Results, result)
	if forcedWrong {
		state.Feedback = fmt.Sprintf("%s skipped. Correct answer: %s", player, correctLabel)
	} else {
		state.Feedback = fmt.Sprintf("%s missed. Correct answer: %s", player, correctLabel)
	}
	that.advance(state)
}

func (that *Engine) advance(state *entity.QuizState) {
	state.RoundIndex++
	state.AttemptsLeft = state.Config.MaxAttempts
	state.Options = nil
	state.OptionsFor = ""

	if state.Config.Mode == entity.ModeVersus {
		if state.CurrentPlayer == 1 {
			state.CurrentPlayer = 2
		} else {
			state.CurrentPlayer = 1
		}
	}

	that.ensureOptions(state)
}

// ensureOptions builds the choices for the current code. It is a no-op when
// they already belong to that code, so options stay stable between reads.
func (that *Engine) ensureOptions(state *entity.QuizState) {
	code := state.CurrentCode()
	if code == "" || state.OptionsFor == code {
		return
	}

	pool := that.pool(state)

	distractors := make([]string, 0, len(pool))
	for _, candidate := range pool {
		if candidate != code {
			distractors = append(distractors, candidate)
		}
	}

	that.rnd.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})

	count := min(maxOptions, len(pool))
	options := append([]string{code}, distractors[:max(count-1, 0)]...)
	that.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	state.Options = options
	state.OptionsFor = code
}

func (that *Engine) pool(state *entity.QuizState) []string {
	return that.catalog.Pool(state.Config.QuizType, state.Config.ContinentFilter)
}

// Options returns the current choices with their labels.
func (that *Engine) Options(state *entity.QuizState) []Option {
	options := make([]Option, 0, len(state.Options))
	for _, code := range state.Options {
		options = append(options, Option{Code: code, Label: that.catalog.Label(state.Config.QuizType, code)})
	}

	return options
}

// Prompt is the visual shown for the current code: the country name for
// capital questions, the code itself (a flag) otherwise.
func (that *Engine) Prompt(state *entity.QuizState) string {
	code := state.CurrentCode()
	if code == "" {
		return ""
	}

	if state.Config.QuizType == entity.QuizCountryCapital {
		return that.catalog.Label(entity.QuizFlagCountry, code)
	}

	return code
}

func PlayerName(state *entity.QuizState) string {
	if state.Config.Mode == entity.ModeVersus && state.CurrentPlayer == 2 {
		return state.Config.Player2Name
	}

	return state.Config.Player1Name
}

func Summarize(state *entity.QuizState) Summary {
	summary := Summary{
		TotalRounds: len(state.Results),
		Missed:      []entity.QuizResult{},
	}

	for _, result := range state.Results {
		if result.Correct {
			summary.Hits++
		} else {
			summary.Missed = append(summary.Missed, result)
		}
	}
	summary.Errors = summary.TotalRounds - summary.Hits

	if summary.TotalRounds > 0 {
		percent := float64(summary.Hits) / float64(summary.TotalRounds) * 100
		summary.Percent = math.Round(percent*10) / 10
	}

	if state.Config.Mode == entity.ModeVersus {
		switch {
		case state.ScoreP1 > state.ScoreP2:
			summary.Winner = state.Config.Player1Name
		case state.ScoreP2 > state.ScoreP1:
			summary.Winner = state.Config.Player2Name
		default:
			summary.Winner = drawWinner
		}
	}

	return summary
}
