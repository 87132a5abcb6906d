package report

import (
	"github.com/phrazzld/ledger-reports/internal/ledger"
	"github.com/shopspring/decimal"
)

// StatementTitle is the first line of the financial statement report.
const StatementTitle = "Basic Financial Statement"

// NetIncomeEquityLabel is the synthetic equity line that folds net income into equity.
const NetIncomeEquityLabel = "Retained Earnings (Net Income)"

// StatementBalances holds a running total for every taxonomy account.
type StatementBalances map[string]decimal.Decimal

// NewStatementBalances returns balances with every taxonomy account seeded at zero.
func NewStatementBalances() StatementBalances {
	b := make(StatementBalances, len(Taxonomy))
	for _, e := range Taxonomy {
		b[e.Account] = decimal.Zero
	}
	return b
}

// Sum totals the balances of the accounts in g.
func (b StatementBalances) Sum(g Group) decimal.Decimal {
	total := decimal.Zero
	for _, account := range GroupAccounts(g) {
		total = total.Add(b[account])
	}
	return total
}

// Statement is the computed financial statement.
type Statement struct {
	Balances         StatementBalances
	NetIncome        decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}

// NewStatement derives the statement totals from folded balances.
// Net income is revenues minus expenses and is added to equity.
func NewStatement(b StatementBalances) *Statement {
	netIncome := b.Sum(Revenues).Sub(b.Sum(Expenses))
	return &Statement{
		Balances:         b,
		NetIncome:        netIncome,
		TotalAssets:      b.Sum(Assets),
		TotalLiabilities: b.Sum(Liabilities),
		TotalEquity:      b.Sum(Equity).Add(netIncome),
	}
}

// Lines renders the multi-section statement. The closing equation line is
// informational and is printed whether or not the two sides agree.
func (s *Statement) Lines() []string {
	var lines []string
	row := func(label string, v decimal.Decimal) {
		lines = append(lines, label+","+v.StringFixed(2))
	}
	accounts := func(g Group) {
		for _, account := range GroupAccounts(g) {
			row(account, s.Balances[account])
		}
	}

	lines = append(lines, StatementTitle, "")

	lines = append(lines, string(IncomeStatement))
	accounts(Revenues)
	accounts(Expenses)
	row("Net Income", s.NetIncome)
	lines = append(lines, "")

	lines = append(lines, string(BalanceSheet))
	lines = append(lines, string(Assets))
	accounts(Assets)
	row("Total Assets", s.TotalAssets)
	lines = append(lines, "")

	lines = append(lines, string(Liabilities))
	accounts(Liabilities)
	row("Total Liabilities", s.TotalLiabilities)
	lines = append(lines, "")

	lines = append(lines, string(Equity))
	accounts(Equity)
	row(NetIncomeEquityLabel, s.NetIncome)
	row("Total Equity", s.TotalEquity)
	lines = append(lines, "")

	lines = append(lines, "Assets = Liabilities + Equity "+
		s.TotalAssets.StringFixed(2)+" = "+
		s.TotalLiabilities.Add(s.TotalEquity).StringFixed(2))

	return lines
}

// StatementAggregation sums lines of taxonomy accounts and ignores all others.
var StatementAggregation = ledger.Aggregation[StatementBalances]{
	New: NewStatementBalances,
	Fold: func(acc StatementBalances, line ledger.Line) {
		if total, ok := acc[line.Account]; ok {
			acc[line.Account] = total.Add(line.Amount())
		}
	},
	Merge: func(dst, src StatementBalances) {
		for account, total := range src {
			dst[account] = dst[account].Add(total)
		}
	},
}
