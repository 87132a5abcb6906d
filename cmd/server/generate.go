package main

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/ledger-reports/internal/ledger"
	"github.com/phrazzld/ledger-reports/internal/report"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate reports synchronously or write a synthetic ledger",
	}

	type reportCmd struct {
		use, short string
		file       string
		run        func(*report.Generator, context.Context) error
	}
	reports := []reportCmd{
		{"accounts", "Generate the account balances report", report.AccountsFile, (*report.Generator).GenerateAccounts},
		{"yearly", "Generate the yearly cash report", report.YearlyFile, (*report.Generator).GenerateYearly},
		{"fs", "Generate the financial statement", report.StatementFile, (*report.Generator).GenerateFinancialStatement},
	}

	for _, rc := range reports {
		cmd.AddCommand(&cobra.Command{
			Use:   rc.use,
			Short: rc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReports(cmd, func(ctx context.Context, g *report.Generator) ([]string, error) {
					if err := rc.run(g, ctx); err != nil {
						return nil, err
					}
					return []string{rc.file}, nil
				})
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Generate every report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd, func(ctx context.Context, g *report.Generator) ([]string, error) {
				var files []string
				for _, rc := range reports {
					if err := rc.run(g, ctx); err != nil {
						return files, err
					}
					files = append(files, rc.file)
				}
				return files, nil
			})
		},
	})

	cmd.AddCommand(newGenerateLedgerCommand())
	return cmd
}

// runReports builds a Generator from the configuration and runs fn,
// printing the path of each report written.
func runReports(cmd *cobra.Command, fn func(context.Context, *report.Generator) ([]string, error)) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	g, err := newReportGenerator(cfg.Reports, log)
	if err != nil {
		return err
	}

	start := time.Now()
	files, err := fn(cmd.Context(), g)
	for _, file := range files {
		fmt.Fprintln(cmd.OutOrStdout(), g.OutputPath(file))
	}
	if err != nil {
		return err
	}

	log.Info("reports generated", "count", len(files), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func newGenerateLedgerCommand() *cobra.Command {
	var (
		dir   string
		lines int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Write synthetic monthly ledger files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Reports.InputDir
			}

			synth := ledger.DefaultSyntheticConfig(dir)
			synth.Lines = lines
			synth.Seed = seed
			synth.Suffix = cfg.Reports.FileSuffix

			files, err := ledger.WriteSynthetic(synth)
			if err != nil {
				return err
			}

			log.Info("synthetic ledger written", "dir", dir, "files", len(files), "lines", lines)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d lines across %d files to %s\n", lines, len(files), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: reports.input_dir)")
	cmd.Flags().IntVar(&lines, "lines", 10_000, "number of ledger lines to write")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	return cmd
}
