package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of the date field.
const DateLayout = "2006-01-02"

const numFields = 5

const (
	colDate = iota
	colAccount
	colDesc
	colDebit
	colCredit
)

// Line is one parsed ledger record.
type Line struct {
	Date        time.Time // zero when the date field is not a valid DateLayout date
	RawDate     string
	Account     string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Amount is the signed contribution of the line to any balance: debit minus credit.
func (l Line) Amount() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// Year returns the calendar year of the line. When the date does not parse,
// a leading four-digit prefix of the raw field is used instead.
func (l Line) Year() (int, bool) {
	if !l.Date.IsZero() {
		return l.Date.Year(), true
	}
	if len(l.RawDate) < 4 {
		return 0, false
	}
	prefix := l.RawDate[:4]
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseLine splits raw on commas into the five positional fields.
// Missing trailing fields are treated as empty and extra fields are ignored.
// It reports false for blank lines, which carry no record.
func ParseLine(raw string) (Line, bool) {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return Line{}, false
	}

	fields := strings.SplitN(raw, ",", numFields+1)
	for len(fields) < numFields {
		fields = append(fields, "")
	}

	line := Line{
		RawDate:     strings.TrimSpace(fields[colDate]),
		Account:     fields[colAccount],
		Description: fields[colDesc],
		Debit:       ParseAmount(fields[colDebit]),
		Credit:      ParseAmount(fields[colCredit]),
	}
	if d, err := time.Parse(DateLayout, line.RawDate); err == nil {
		line.Date = d
	}
	return line, true
}

// ParseAmount parses a decimal amount, returning zero for empty or
// non-numeric input.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
