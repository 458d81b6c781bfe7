package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Store   StoreConfig   `mapstructure:"store" validate:"required"`
	Engine  EngineConfig  `mapstructure:"engine" validate:"required"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and configures the progress store backend.
type StoreConfig struct {
	Backend     string `mapstructure:"backend" validate:"required,oneof=memory badger postgres"`
	Key         string `mapstructure:"key" validate:"required"`
	BadgerDir   string `mapstructure:"badger_dir" validate:"required_if=Backend badger"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Backend postgres"`
	// Attempts per operation when a concurrent write wins the revision race
	MaxRetries int `mapstructure:"max_retries" validate:"gte=1,lte=10"`
}

// EngineConfig tunes the mastery update rule, the review intervals and the
// recommendation generator.
type EngineConfig struct {
	CorrectDelta     float64 `mapstructure:"correct_delta" validate:"gt=0,lte=1"`
	WrongDelta       float64 `mapstructure:"wrong_delta" validate:"lt=0,gte=-1"`
	MasteryThreshold float64 `mapstructure:"mastery_threshold" validate:"gt=0,lte=1"`

	ReviewIntervalWrongDays int `mapstructure:"review_interval_wrong_days" validate:"gte=1"`
	ReviewIntervalLowDays   int `mapstructure:"review_interval_low_days" validate:"gte=1"`
	ReviewIntervalHighDays  int `mapstructure:"review_interval_high_days" validate:"gte=1"`

	RecommendationLimit      int `mapstructure:"recommendation_limit" validate:"gte=1,lte=10"`
	RecommendationCacheHours int `mapstructure:"recommendation_cache_hours" validate:"gte=1,lte=168"`
}

// CatalogConfig points at an optional lesson catalog file. An empty path
// selects the built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}
