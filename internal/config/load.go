package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STARGAZER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("store.backend", "badger")
	v.SetDefault("store.key", "stargazer-progress")
	v.SetDefault("store.badger_dir", "./data/progress")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_retries", 3)

	v.SetDefault("engine.correct_delta", 0.15)
	v.SetDefault("engine.wrong_delta", -0.12)
	v.SetDefault("engine.mastery_threshold", 0.6)
	v.SetDefault("engine.review_interval_wrong_days", 1)
	v.SetDefault("engine.review_interval_low_days", 3)
	v.SetDefault("engine.review_interval_high_days", 7)
	v.SetDefault("engine.recommendation_limit", 3)
	v.SetDefault("engine.recommendation_cache_hours", 6)

	v.SetDefault("catalog.path", "")
}

// Load configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence.
//
// When configFile is empty, Load looks for stargazer.yaml in the working
// directory and carries on without it if absent. An explicit configFile must
// exist. Environment variables use the STARGAZER_ prefix with dots replaced by
// underscores, e.g. STARGAZER_SERVER_PORT.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("stargazer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
