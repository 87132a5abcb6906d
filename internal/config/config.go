package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Reports  ReportsConfig  `mapstructure:"reports" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects and locates the task store.
type DatabaseConfig struct {
	// Driver is one of postgres, sqlite or memory.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite memory"`
	// URL is a postgres connection URL or a sqlite file path.
	URL string `mapstructure:"url" validate:"required_unless=Driver memory"`
}

// ReportsConfig controls where ledger files are read from and reports are written to.
type ReportsConfig struct {
	InputDir       string        `mapstructure:"input_dir" validate:"required"`
	OutputDir      string        `mapstructure:"output_dir" validate:"required"`
	FileSuffix     string        `mapstructure:"file_suffix" validate:"required"`
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"required,gte=1"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

// TaskConfig controls the background report workers.
type TaskConfig struct {
	// WorkerCount is the number of consumers per report kind.
	WorkerCount    int  `mapstructure:"worker_count" validate:"required,gte=1"`
	QueueSize      int  `mapstructure:"queue_size" validate:"required,gte=1"`
	RecoverOnStart bool `mapstructure:"recover_on_start"`
}
