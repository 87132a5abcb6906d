package report

// Section is a top-level part of the financial statement.
type Section string

// Group is a category of accounts within a Section.
type Group string

const (
	IncomeStatement Section = "Income Statement"
	BalanceSheet    Section = "Balance Sheet"
)

const (
	Revenues    Group = "Revenues"
	Expenses    Group = "Expenses"
	Assets      Group = "Assets"
	Liabilities Group = "Liabilities"
	Equity      Group = "Equity"
)

// TaxonomyEntry places one account in the statement.
type TaxonomyEntry struct {
	Section Section
	Group   Group
	Account string
}

// Taxonomy is the closed set of accounts the financial statement reports on,
// in output order.
var Taxonomy = []TaxonomyEntry{
	{IncomeStatement, Revenues, "Sales Revenue"},

	{IncomeStatement, Expenses, "Cost of Goods Sold"},
	{IncomeStatement, Expenses, "Salaries Expense"},
	{IncomeStatement, Expenses, "Rent Expense"},
	{IncomeStatement, Expenses, "Utilities Expense"},
	{IncomeStatement, Expenses, "Interest Expense"},
	{IncomeStatement, Expenses, "Tax Expense"},

	{BalanceSheet, Assets, "Cash"},
	{BalanceSheet, Assets, "Accounts Receivable"},
	{BalanceSheet, Assets, "Inventory"},
	{BalanceSheet, Assets, "Fixed Assets"},
	{BalanceSheet, Assets, "Prepaid Expenses"},

	{BalanceSheet, Liabilities, "Accounts Payable"},
	{BalanceSheet, Liabilities, "Loan Payable"},
	{BalanceSheet, Liabilities, "Sales Tax Payable"},
	{BalanceSheet, Liabilities, "Accrued Liabilities"},
	{BalanceSheet, Liabilities, "Unearned Revenue"},
	{BalanceSheet, Liabilities, "Dividends Payable"},

	{BalanceSheet, Equity, "Common Stock"},
	{BalanceSheet, Equity, "Retained Earnings"},
}

var taxonomyIndex = func() map[string]TaxonomyEntry {
	idx := make(map[string]TaxonomyEntry, len(Taxonomy))
	for _, e := range Taxonomy {
		idx[e.Account] = e
	}
	return idx
}()

// InTaxonomy reports whether account belongs to the financial statement.
func InTaxonomy(account string) bool {
	_, ok := taxonomyIndex[account]
	return ok
}

// GroupAccounts returns the accounts of g in taxonomy order.
func GroupAccounts(g Group) []string {
	var accounts []string
	for _, e := range Taxonomy {
		if e.Group == g {
			accounts = append(accounts, e.Account)
		}
	}
	return accounts
}
