package main

import (
	"fmt"

	"github.com/phrazzld/ledger-reports/internal/task"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the status of every report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			s, db, err := openTaskStore(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			statuses, err := task.NewStatusReporter(s).Statuses(cmd.Context())
			if err != nil {
				return err
			}
			for _, kind := range task.Kinds {
				file := kind.ReportFile()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", file, statuses[file])
			}
			return nil
		},
	}
}
