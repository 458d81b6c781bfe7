package recommend

import (
	"errors"
	"time"
)

// Parameter validation errors
var (
	ErrInvalidLimit     = errors.New("recommendation limit must be at least 1")
	ErrInvalidTTL       = errors.New("recommendation cache TTL must be positive")
	ErrInvalidThreshold = errors.New("mastery thresholds must satisfy 0 <= critical <= low <= 1")
)

// Params configures candidate selection and the cache lifetime.
type Params struct {
	// Maximum number of items in a generated set
	Limit int

	// How long a generated set may be served from cache
	CacheTTL time.Duration

	// Seen tags below LowMastery produce low_mastery candidates; those below
	// CriticalMastery get the higher lesson priority.
	LowMastery      float64
	CriticalMastery float64
}

// ParamsConfig overrides the defaults. Zero values keep the defaults.
type ParamsConfig struct {
	Limit           int
	CacheTTL        time.Duration
	LowMastery      float64
	CriticalMastery float64
}

// NewDefaultParams returns the default generator parameters.
func NewDefaultParams() *Params {
	return &Params{
		Limit:           3,
		CacheTTL:        6 * time.Hour,
		LowMastery:      0.6,
		CriticalMastery: 0.3,
	}
}

// NewParams applies config on top of the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()
	if config.Limit != 0 {
		params.Limit = config.Limit
	}
	if config.CacheTTL != 0 {
		params.CacheTTL = config.CacheTTL
	}
	if config.LowMastery != 0 {
		params.LowMastery = config.LowMastery
	}
	if config.CriticalMastery != 0 {
		params.CriticalMastery = config.CriticalMastery
	}
	return params
}

// Validate checks parameter consistency.
func (p *Params) Validate() error {
	if p.Limit < 1 {
		return ErrInvalidLimit
	}
	if p.CacheTTL <= 0 {
		return ErrInvalidTTL
	}
	if p.CriticalMastery < 0 || p.LowMastery > 1 || p.CriticalMastery > p.LowMastery {
		return ErrInvalidThreshold
	}
	return nil
}
