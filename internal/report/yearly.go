package report

import (
	"slices"
	"strconv"

	"github.com/phrazzld/ledger-reports/internal/ledger"
	"github.com/shopspring/decimal"
)

// YearlyHeader is the first line of the yearly cash report.
const YearlyHeader = "Financial Year,Cash Balance"

// CashAccount is the only account the yearly report considers.
const CashAccount = "Cash"

// YearlyCash maps a calendar year to the signed total of its Cash lines.
type YearlyCash map[int]decimal.Decimal

// Years returns the years present, ascending.
func (y YearlyCash) Years() []int {
	years := make([]int, 0, len(y))
	for year := range y {
		years = append(years, year)
	}
	slices.Sort(years)
	return years
}

// Lines renders the report: the header then one "<year>,<balance>" row per year, ascending.
func (y YearlyCash) Lines() []string {
	years := y.Years()
	lines := make([]string, 0, len(years)+1)
	lines = append(lines, YearlyHeader)
	for _, year := range years {
		lines = append(lines, strconv.Itoa(year)+","+y[year].StringFixed(2))
	}
	return lines
}

// YearlyAggregation buckets Cash lines by year. Lines of other accounts, and
// Cash lines with no recognizable year, are ignored.
var YearlyAggregation = ledger.Aggregation[YearlyCash]{
	New: func() YearlyCash { return make(YearlyCash) },
	Fold: func(acc YearlyCash, line ledger.Line) {
		if line.Account != CashAccount {
			return
		}
		year, ok := line.Year()
		if !ok {
			return
		}
		acc[year] = acc[year].Add(line.Amount())
	},
	Merge: func(dst, src YearlyCash) {
		for year, total := range src {
			dst[year] = dst[year].Add(total)
		}
	},
}
