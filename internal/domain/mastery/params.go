package mastery

import (
	"errors"
	"fmt"

	"github.com/phrazzld/stargazer/internal/domain"
)

// Parameter validation errors
var (
	ErrInvalidThreshold = errors.New("mastery threshold must be between 0 and 1")
	ErrInvalidInterval  = errors.New("review intervals must be at least 1 day")
	ErrInvalidDelta     = errors.New("correct delta must be positive and wrong delta negative")
)

// Params defines all configurable parameters of the mastery update rule
// and the review scheduler.
type Params struct {
	// Mastery deltas before the difficulty multiplier is applied
	BaseCorrectDelta float64
	BaseWrongDelta   float64

	// Scales the delta by question difficulty
	DifficultyMultiplier map[domain.Difficulty]float64

	// Mastery at or above this value counts as "high"
	MasteryThreshold float64

	// Review intervals in days
	ReviewIntervalWrong       int
	ReviewIntervalLowMastery  int
	ReviewIntervalHighMastery int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	BaseCorrectDelta float64
	BaseWrongDelta   float64

	EasyMultiplier   float64
	MediumMultiplier float64
	HardMultiplier   float64

	MasteryThreshold float64

	ReviewIntervalWrong       int
	ReviewIntervalLowMastery  int
	ReviewIntervalHighMastery int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		BaseCorrectDelta: 0.15,
		BaseWrongDelta:   -0.12,

		DifficultyMultiplier: map[domain.Difficulty]float64{
			domain.DifficultyEasy:   0.9,
			domain.DifficultyMedium: 1.0,
			domain.DifficultyHard:   1.15,
		},

		MasteryThreshold: 0.6,

		ReviewIntervalWrong:       1,
		ReviewIntervalLowMastery:  3,
		ReviewIntervalHighMastery: 7,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.BaseCorrectDelta != 0 {
		params.BaseCorrectDelta = config.BaseCorrectDelta
	}
	if config.BaseWrongDelta != 0 {
		params.BaseWrongDelta = config.BaseWrongDelta
	}

	if config.EasyMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyEasy] = config.EasyMultiplier
	}
	if config.MediumMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyMedium] = config.MediumMultiplier
	}
	if config.HardMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyHard] = config.HardMultiplier
	}

	if config.MasteryThreshold > 0 {
		params.MasteryThreshold = config.MasteryThreshold
	}

	if config.ReviewIntervalWrong > 0 {
		params.ReviewIntervalWrong = config.ReviewIntervalWrong
	}
	if config.ReviewIntervalLowMastery > 0 {
		params.ReviewIntervalLowMastery = config.ReviewIntervalLowMastery
	}
	if config.ReviewIntervalHighMastery > 0 {
		params.ReviewIntervalHighMastery = config.ReviewIntervalHighMastery
	}

	return params
}

// Validate checks that the parameters produce bounded, forward-moving schedules.
func (p *Params) Validate() error {
	if p.BaseCorrectDelta <= 0 || p.BaseWrongDelta >= 0 {
		return fmt.Errorf("%w: correct=%v wrong=%v", ErrInvalidDelta, p.BaseCorrectDelta, p.BaseWrongDelta)
	}
	if p.MasteryThreshold < 0 || p.MasteryThreshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, p.MasteryThreshold)
	}
	if p.ReviewIntervalWrong < 1 || p.ReviewIntervalLowMastery < 1 || p.ReviewIntervalHighMastery < 1 {
		return ErrInvalidInterval
	}
	return nil
}

// multiplier returns the difficulty multiplier, 1.0 for unknown difficulties.
func (p *Params) multiplier(d domain.Difficulty) float64 {
	if m, ok := p.DifficultyMultiplier[d]; ok {
		return m
	}
	return 1.0
}
