package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. LEDGER_SERVER_PORT or LEDGER_REPORTS_MAX_CONCURRENCY.
const EnvPrefix = "LEDGER"

// ConfigFileEnv names an explicit config file, overriding ./config.yaml.
const ConfigFileEnv = "LEDGER_CONFIG_FILE"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Default returns the configuration Load would produce with no file and no environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "ledger.db",
		},
		Reports: ReportsConfig{
			InputDir:       "tmp",
			OutputDir:      "out",
			FileSuffix:     ".csv",
			MaxConcurrency: 20,
			RetryDelay:     defaultRetryDelay,
		},
		Task: TaskConfig{
			WorkerCount:    1,
			QueueSize:      100,
			RecoverOnStart: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.url", d.Database.URL)

	v.SetDefault("reports.input_dir", d.Reports.InputDir)
	v.SetDefault("reports.output_dir", d.Reports.OutputDir)
	v.SetDefault("reports.file_suffix", d.Reports.FileSuffix)
	v.SetDefault("reports.max_concurrency", d.Reports.MaxConcurrency)
	v.SetDefault("reports.retry_delay", d.Reports.RetryDelay)

	v.SetDefault("task.worker_count", d.Task.WorkerCount)
	v.SetDefault("task.queue_size", d.Task.QueueSize)
	v.SetDefault("task.recover_on_start", d.Task.RecoverOnStart)
}
