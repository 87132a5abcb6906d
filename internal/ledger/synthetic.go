package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SyntheticAccounts are the account names written by WriteSynthetic.
var SyntheticAccounts = []string{
	"Cash", "Accounts Receivable", "Inventory", "Accounts Payable",
	"Sales Revenue", "Cost of Goods Sold", "Salaries Expense", "Rent Expense",
	"Utilities Expense", "Interest Expense", "Tax Expense", "Loan Payable",
	"Common Stock", "Retained Earnings", "Dividends Payable", "Sales Tax Payable",
	"Prepaid Expenses", "Accrued Liabilities", "Unearned Revenue", "Fixed Assets",
}

// SyntheticDescriptions are the descriptions written by WriteSynthetic.
var SyntheticDescriptions = []string{
	"Invoice payment", "Purchase of goods", "Salary disbursement", "Rent payment",
	"Product sale", "Inventory adjustment", "Utility bill", "Loan repayment",
	"Interest income", "Tax payment",
}

// maxSyntheticCents bounds generated amounts to below 120000.00.
const maxSyntheticCents = 12_000_000

// SyntheticConfig controls WriteSynthetic.
type SyntheticConfig struct {
	Dir    string
	Lines  int
	Seed   uint64
	Suffix string
	// From and To bound the generated dates, To exclusive.
	From time.Time
	To   time.Time
}

// DefaultSyntheticConfig writes into dir, dated 2020 through 2024.
func DefaultSyntheticConfig(dir string) SyntheticConfig {
	return SyntheticConfig{
		Dir:    dir,
		Lines:  10_000,
		Seed:   1,
		Suffix: ".csv",
		From:   time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WriteSynthetic writes cfg.Lines random ledger lines into monthly partition
// files named YYYY-MM<suffix> under cfg.Dir, replacing any existing ones.
// Each line carries an amount on exactly one of debit or credit. The same
// seed always produces the same files. It returns the file names written,
// sorted.
func WriteSynthetic(cfg SyntheticConfig) (files []string, err error) {
	if cfg.Lines < 0 {
		return nil, fmt.Errorf("line count must not be negative, got %d", cfg.Lines)
	}
	if !cfg.To.After(cfg.From) {
		return nil, errors.New("synthetic date range is empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	days := int(cfg.To.Sub(cfg.From).Hours() / 24)
	if days < 1 {
		days = 1
	}

	type partition struct {
		f *os.File
		w *bufio.Writer
	}
	parts := make(map[string]*partition)
	defer func() {
		for _, p := range parts {
			if ferr := p.w.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("failed to flush ledger file: %w", ferr)
			}
			if cerr := p.f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close ledger file: %w", cerr)
			}
		}
		if err != nil {
			files = nil
		}
	}()

	for range cfg.Lines {
		date := cfg.From.AddDate(0, 0, rng.IntN(days))
		name := date.Format("2006-01") + cfg.Suffix

		p, ok := parts[name]
		if !ok {
			f, err := os.Create(filepath.Join(cfg.Dir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to create ledger file %s: %w", name, err)
			}
			p = &partition{f: f, w: bufio.NewWriter(f)}
			parts[name] = p
		}

		amount := decimal.New(rng.Int64N(maxSyntheticCents), -2).StringFixed(2)
		debit, credit := amount, ""
		if rng.IntN(2) == 0 {
			debit, credit = "", amount
		}

		_, err := fmt.Fprintf(p.w, "%s,%s,%s,%s,%s\n",
			date.Format(DateLayout),
			SyntheticAccounts[rng.IntN(len(SyntheticAccounts))],
			SyntheticDescriptions[rng.IntN(len(SyntheticDescriptions))],
			debit, credit)
		if err != nil {
			return nil, fmt.Errorf("failed to write ledger file %s: %w", name, err)
		}
	}

	files = make([]string, 0, len(parts))
	for name := range parts {
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}
