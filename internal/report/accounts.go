package report

import (
	"github.com/phrazzld/ledger-reports/internal/ledger"
	"github.com/shopspring/decimal"
)

// AccountsHeader is the first line of the account balances report.
const AccountsHeader = "Account,Balance"

// AccountBalances is an open-world mapping from account name to signed
// total that remembers the order accounts were first seen in.
type AccountBalances struct {
	order  []string
	totals map[string]decimal.Decimal
}

// NewAccountBalances returns an empty AccountBalances.
func NewAccountBalances() *AccountBalances {
	return &AccountBalances{totals: make(map[string]decimal.Decimal)}
}

// Add adds amount to account, recording the account if it is new.
func (b *AccountBalances) Add(account string, amount decimal.Decimal) {
	total, ok := b.totals[account]
	if !ok {
		b.order = append(b.order, account)
	}
	b.totals[account] = total.Add(amount)
}

// Merge adds every total in src into b, appending unseen accounts in src's order.
func (b *AccountBalances) Merge(src *AccountBalances) {
	for _, account := range src.order {
		b.Add(account, src.totals[account])
	}
}

// Accounts returns account names in first-seen order.
func (b *AccountBalances) Accounts() []string {
	return append([]string(nil), b.order...)
}

// Balance returns the total for account and whether it was seen.
func (b *AccountBalances) Balance(account string) (decimal.Decimal, bool) {
	total, ok := b.totals[account]
	return total, ok
}

// Lines renders the report: the header then one "<account>,<balance>" row per account.
func (b *AccountBalances) Lines() []string {
	lines := make([]string, 0, len(b.order)+1)
	lines = append(lines, AccountsHeader)
	for _, account := range b.order {
		lines = append(lines, account+","+b.totals[account].StringFixed(2))
	}
	return lines
}

// AccountsAggregation sums every line into its account.
var AccountsAggregation = ledger.Aggregation[*AccountBalances]{
	New: NewAccountBalances,
	Fold: func(acc *AccountBalances, line ledger.Line) {
		acc.Add(line.Account, line.Amount())
	},
	Merge: func(dst, src *AccountBalances) {
		dst.Merge(src)
	},
}
