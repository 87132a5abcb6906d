package report

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/phrazzld/ledger-reports/internal/ledger"
)

// Output file names, one per report.
const (
	AccountsFile  = "accounts.csv"
	YearlyFile    = "yearly.csv"
	StatementFile = "fs.csv"
)

// GeneratorConfig locates the ledger input and report output.
type GeneratorConfig struct {
	// Input is the ledger directory.
	Input fs.FS
	// OutputDir receives the report files.
	OutputDir string
	// Suffix selects ledger files by name, e.g. ".csv".
	Suffix string
	// MaxConcurrency caps the number of ledger files read at once.
	MaxConcurrency int
}

// Generator produces the three reports from a ledger directory.
type Generator struct {
	input     fs.FS
	outputDir string
	suffix    string
	processor *ledger.Processor
	logger    *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(cfg GeneratorConfig, logger *slog.Logger) (*Generator, error) {
	if cfg.Input == nil {
		return nil, fmt.Errorf("report generator: input filesystem is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("report generator: output directory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "report_generator")
	return &Generator{
		input:     cfg.Input,
		outputDir: cfg.OutputDir,
		suffix:    cfg.Suffix,
		processor: ledger.NewProcessor(cfg.Input, cfg.MaxConcurrency, logger),
		logger:    logger,
	}, nil
}

// OutputPath returns where the report with the given file name is written.
func (g *Generator) OutputPath(file string) string {
	return filepath.Join(g.outputDir, file)
}

// GenerateAccounts writes the account balances report.
func (g *Generator) GenerateAccounts(ctx context.Context) error {
	return generate(ctx, g, AccountsFile, AccountsAggregation, (*AccountBalances).Lines)
}

// GenerateYearly writes the yearly cash report.
func (g *Generator) GenerateYearly(ctx context.Context) error {
	return generate(ctx, g, YearlyFile, YearlyAggregation, YearlyCash.Lines)
}

// GenerateFinancialStatement writes the financial statement report.
func (g *Generator) GenerateFinancialStatement(ctx context.Context) error {
	return generate(ctx, g, StatementFile, StatementAggregation, func(b StatementBalances) []string {
		return NewStatement(b).Lines()
	})
}

// generate lists the ledger files, excluding the report's own output name,
// folds them and writes the rendered lines. Nothing is written on failure.
func generate[T any](
	ctx context.Context,
	g *Generator,
	file string,
	agg ledger.Aggregation[T],
	render func(T) []string,
) error {
	start := time.Now()
	log := g.logger.With("report", file)

	names, err := ledger.ListFiles(g.input, g.suffix, file)
	if err != nil {
		return fmt.Errorf("report %s: %w", file, err)
	}

	result, err := ledger.Fold(ctx, g.processor, names, agg)
	if err != nil {
		return fmt.Errorf("report %s: %w", file, err)
	}

	lines := render(result)
	path := g.OutputPath(file)
	if err := WriteLines(path, lines); err != nil {
		return fmt.Errorf("report %s: %w", file, err)
	}

	log.Info("report generated",
		"path", path,
		"input_files", len(names),
		"rows", len(lines),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
