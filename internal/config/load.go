package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables with the
// LEXIVID_ prefix take precedence over values from the config file.
// Returns a populated Config struct or an error if loading or validation
// fails; validation failures are fatal at startup and never retried.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEXIVID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly so AutomaticEnv
	// exposes them to Unmarshal.
	for _, key := range []string{"database.url", "captions.endpoint", "llm.gemini_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.requests_per_sec", 5)
	v.SetDefault("captions.timeout_seconds", 60)
	v.SetDefault("queue.worker_count", 2)
	v.SetDefault("queue.batch_limit", 10)
	v.SetDefault("queue.base_backoff_seconds", 30)
	v.SetDefault("queue.lock_timeout_seconds", 600)
	v.SetDefault("queue.max_attempts", 5)
	v.SetDefault("queue.poll_interval_seconds", 15)
	v.SetDefault("queue.reclaim_batch_size", 50)
}
