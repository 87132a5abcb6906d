package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/ledger-reports/internal/config"
	"github.com/phrazzld/ledger-reports/internal/platform/logger"
	"github.com/phrazzld/ledger-reports/internal/redact"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "ledger-reports",
		Short: "Generate financial reports from ledger files",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv(config.ConfigFileEnv, configFile)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newGenerateCommand(),
		newStatusCommand(),
	)

	return root
}

// loadConfig loads the configuration and installs the configured logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"database_url", redact.URL(cfg.Database.URL),
		"input_dir", cfg.Reports.InputDir,
		"output_dir", cfg.Reports.OutputDir)

	return cfg, log, nil
}
