package report

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/phrazzld/ledger-reports/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fold[T any](t *testing.T, fsys fstest.MapFS, agg ledger.Aggregation[T]) T {
	t.Helper()
	names, err := ledger.ListFiles(fsys, ".csv")
	require.NoError(t, err)
	got, err := ledger.Fold(context.Background(), ledger.NewProcessor(fsys, 20, nil), names, agg)
	require.NoError(t, err)
	return got
}

func files(contents map[string][]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, lines := range contents {
		fsys[name] = &fstest.MapFile{Data: []byte(strings.Join(lines, "\n"))}
	}
	return fsys
}

func TestAccountBalances(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"file1.csv": {
			"2021-01-01,Cash,,100,0",
			"2021-01-01,Sales Revenue,,0,50",
			"2021-01-01,Inventory,,0,20",
		},
		"file2.csv": {
			"2021-01-02,Cash,,200,0",
			"2021-01-02,Sales Revenue,,0,30",
			"2021-01-02,Inventory,,10,0",
		},
	})

	got := fold(t, fsys, AccountsAggregation)

	assert.Equal(t, []string{
		"Account,Balance",
		"Cash,300.00",
		"Sales Revenue,-80.00",
		"Inventory,-10.00",
	}, got.Lines())
}

func TestAccountBalances_FirstSeenOrderAcrossFiles(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"a.csv": {"2021-01-01,Rent Expense,,5,", "2021-01-01,Cash,,,5"},
		"b.csv": {"2021-01-02,Loan Payable,,,7", "2021-01-02,Rent Expense,,1,"},
	})

	got := fold(t, fsys, AccountsAggregation)
	assert.Equal(t, []string{"Rent Expense", "Cash", "Loan Payable"}, got.Accounts())

	balance, ok := got.Balance("Rent Expense")
	require.True(t, ok)
	assert.Equal(t, "6.00", balance.StringFixed(2))
}

func TestAccountBalances_EmptyAmountsContributeZero(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"a.csv": {"2021-01-01,Cash,,,", "2021-01-01,Cash,,oops,", ""},
	})

	got := fold(t, fsys, AccountsAggregation)
	assert.Equal(t, []string{"Account,Balance", "Cash,0.00"}, got.Lines())
}

func TestYearlyCash(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"2020.csv": {
			"2020-01-15,Cash,,500,0",
			"2020-06-20,Cash,,0,100",
			"2020-12-31,Inventory,,200,0",
		},
		"2021.csv": {
			"2021-03-10,Cash,,300,0",
			"2021-09-15,Cash,,0,50",
			"2021-11-20,Sales Revenue,,0,200",
		},
		"2022.csv": {
			"2022-01-01,Cash,,100,0",
			"2022-12-25,Cash,,50,25",
		},
	})

	got := fold(t, fsys, YearlyAggregation)

	assert.Equal(t, []string{
		"Financial Year,Cash Balance",
		"2020,400.00",
		"2021,250.00",
		"2022,125.00",
	}, got.Lines())
}

func TestYearlyCash_IgnoresOtherAccountsAndUndatedLines(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"mixed.csv": {
			"2023-02-01,Cash Equivalents,,999999,",
			"2023-02-01,cash,,999999,",
			"not-a-date,Cash,,50,",
			"2019-07-04,Cash,,10,",
		},
	})

	got := fold(t, fsys, YearlyAggregation)
	assert.Equal(t, []string{"Financial Year,Cash Balance", "2019,10.00"}, got.Lines())
}

func TestFinancialStatement(t *testing.T) {
	t.Parallel()

	fsys := files(map[string][]string{
		"2024-01.csv": {
			"2024-01-02,Sales Revenue,Product sale,,1000",
			"2024-01-03,Cost of Goods Sold,Purchase of goods,500,",
			"2024-01-04,Salaries Expense,Salary disbursement,300,",
		},
		"2024-02.csv": {
			"2024-02-01,Cash,Invoice payment,2000,",
			"2024-02-02,Accounts Receivable,Invoice payment,500,",
			"2024-02-03,Accounts Payable,Purchase of goods,,800",
			"2024-02-04,Common Stock,,,1200",
			"2024-02-05,Petty Cash,ignored,12345,",
		},
	})

	got := NewStatement(fold(t, fsys, StatementAggregation))

	assert.Equal(t, "-1800.00", got.NetIncome.StringFixed(2))
	assert.Equal(t, "2500.00", got.TotalAssets.StringFixed(2))
	assert.Equal(t, "-800.00", got.TotalLiabilities.StringFixed(2))
	assert.Equal(t, "-3000.00", got.TotalEquity.StringFixed(2))

	want := []string{
		"Basic Financial Statement",
		"",
		"Income Statement",
		"Sales Revenue,-1000.00",
		"Cost of Goods Sold,500.00",
		"Salaries Expense,300.00",
		"Rent Expense,0.00",
		"Utilities Expense,0.00",
		"Interest Expense,0.00",
		"Tax Expense,0.00",
		"Net Income,-1800.00",
		"",
		"Balance Sheet",
		"Assets",
		"Cash,2000.00",
		"Accounts Receivable,500.00",
		"Inventory,0.00",
		"Fixed Assets,0.00",
		"Prepaid Expenses,0.00",
		"Total Assets,2500.00",
		"",
		"Liabilities",
		"Accounts Payable,-800.00",
		"Loan Payable,0.00",
		"Sales Tax Payable,0.00",
		"Accrued Liabilities,0.00",
		"Unearned Revenue,0.00",
		"Dividends Payable,0.00",
		"Total Liabilities,-800.00",
		"",
		"Equity",
		"Common Stock,-1200.00",
		"Retained Earnings,0.00",
		"Retained Earnings (Net Income),-1800.00",
		"Total Equity,-3000.00",
		"",
		"Assets = Liabilities + Equity 2500.00 = -3800.00",
	}
	assert.Equal(t, want, got.Lines())
}

func TestFinancialStatement_SeedsEveryAccount(t *testing.T) {
	t.Parallel()

	got := fold(t, fstest.MapFS{}, StatementAggregation)

	require.Len(t, got, len(Taxonomy))
	for _, e := range Taxonomy {
		balance, ok := got[e.Account]
		require.True(t, ok, e.Account)
		assert.Equal(t, "0.00", balance.StringFixed(2), e.Account)
	}
	assert.NotContains(t, got, "Petty Cash")
}

func TestTaxonomy(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, e := range Taxonomy {
		assert.False(t, seen[e.Account], "duplicate account %q", e.Account)
		seen[e.Account] = true

		switch e.Group {
		case Revenues, Expenses:
			assert.Equal(t, IncomeStatement, e.Section, e.Account)
		case Assets, Liabilities, Equity:
			assert.Equal(t, BalanceSheet, e.Section, e.Account)
		default:
			t.Errorf("account %q has unknown group %q", e.Account, e.Group)
		}
	}

	assert.True(t, InTaxonomy("Cash"))
	assert.False(t, InTaxonomy("Petty Cash"))
	assert.Equal(t, []string{"Common Stock", "Retained Earnings"}, GroupAccounts(Equity))
}
