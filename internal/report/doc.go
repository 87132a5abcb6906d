// Package report turns ledger files into the three CSV-shaped reports:
// flat account balances, yearly cash balances and a categorized financial
// statement. Each report is a ledger.Aggregation folded by the bounded
// ledger.Processor and serialized to newline-joined text.
//
// All totals follow the raw debit-minus-credit convention; no accounting
// sign normalization is applied.
package report
