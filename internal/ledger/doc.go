// Package ledger reads partitioned, append-only ledger files and folds their
// lines into partial results under a fixed concurrency ceiling.
//
// A ledger line has five comma-separated positional fields:
//
//	date,account,description,debit,credit
//
// Parsing is lenient: missing or non-numeric amounts count as zero, so a
// malformed trailing line contributes nothing instead of failing the run.
// Amounts are shopspring decimals, which keeps every merge exact and
// independent of the order files complete in.
package ledger
