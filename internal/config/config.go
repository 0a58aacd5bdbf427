package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Captions CaptionsConfig `mapstructure:"captions" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
}

// ServerConfig contains the HTTP admin surface settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains the text-generation provider settings. An empty API
// key disables the provider: reevaluation and example generation then run
// heuristics only.
type LLMConfig struct {
	GeminiAPIKey   string  `mapstructure:"gemini_api_key"`
	ModelName      string  `mapstructure:"model_name"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"  validate:"gte=0"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" validate:"gte=0"`
}

// CaptionsConfig contains the caption-fetching tool settings.
type CaptionsConfig struct {
	Endpoint       string `mapstructure:"endpoint" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// QueueConfig contains the job queue tuning knobs.
type QueueConfig struct {
	WorkerCount         int `mapstructure:"worker_count"          validate:"required,gt=0"`
	BatchLimit          int `mapstructure:"batch_limit"           validate:"required,gt=0"`
	BaseBackoffSeconds  int `mapstructure:"base_backoff_seconds"  validate:"required,gt=0"`
	LockTimeoutSeconds  int `mapstructure:"lock_timeout_seconds"  validate:"required,gt=0"`
	MaxAttempts         int `mapstructure:"max_attempts"          validate:"required,gt=0"`
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
	ReclaimBatchSize    int `mapstructure:"reclaim_batch_size"    validate:"required,gt=0"`
}
