package rest

import (
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
)

type quizRequest struct {
	QuizType        string   `json:"quiz_type" validate:"omitempty,oneof=flag_country country_capital"`
	ContinentFilter []string `json:"continent_filter" validate:"max=8,dive,max=3"`
	Rounds          int      `json:"rounds" validate:"gte=0,lte=500"`
	PointsPerHit    int      `json:"points_per_hit" validate:"gte=0,lte=1000"`
	MaxAttempts     int      `json:"max_attempts" validate:"gte=0,lte=10"`
	FlashMode       bool     `json:"flash_mode"`
	RoundTime       int      `json:"round_time" validate:"gte=0,lte=300"`
}

type createRequest struct {
	Mode      string       `json:"mode" validate:"omitempty,oneof=solo versus"`
	HostName  string       `json:"host_name" validate:"max=40"`
	GuestName string       `json:"guest_name" validate:"max=40"`
	Quiz      *quizRequest `json:"quiz"`
}

func (that *createRequest) toConfig() usecase.GameConfig {
	cfg := usecase.GameConfig{
		Mode:      entity.Mode(that.Mode),
		HostName:  that.HostName,
		GuestName: that.GuestName,
	}

	if that.Quiz != nil {
		cfg.Quiz = entity.QuizConfig{
			QuizType:        that.Quiz.QuizType,
			ContinentFilter: that.Quiz.ContinentFilter,
			Rounds:          that.Quiz.Rounds,
			PointsPerHit:    that.Quiz.PointsPerHit,
			MaxAttempts:     that.Quiz.MaxAttempts,
			FlashMode:       that.Quiz.FlashMode,
			RoundTime:       that.Quiz.RoundTime,
		}
	}

	return cfg
}

type joinRequest struct {
	Code string `json:"code" validate:"required,len=6,alphanum"`
	Name string `json:"name" validate:"max=40"`
}

type actRequest struct {
	Cell   *int   `json:"cell" validate:"omitempty,gte=0,lte=63"`
	From   *int   `json:"from" validate:"omitempty,gte=0,lte=63"`
	To     *int   `json:"to" validate:"omitempty,gte=0,lte=63"`
	Option string `json:"option" validate:"max=8"`
	Skip   bool   `json:"skip"`
}

func (that *actRequest) toAction() entity.Action {
	return entity.Action{
		Cell:   that.Cell,
		From:   that.From,
		To:     that.To,
		Option: that.Option,
		Skip:   that.Skip,
	}
}
