package report

import (
	"sort"

	"expensetracker/internal/core"
)

// MonthlyReport builds one entry per (year, month) present after filtering
// records to expense-kind entries of the given year (and month, when
// supplied). Each entry carries a category breakdown whose percentages are
// relative to that month's total.
//
// The result is ordered year ascending then month ascending, independent of
// input order.
func MonthlyReport(records []core.Transaction, year int, month *int) []core.MonthlyExpenseReport {
	type monthKey struct {
		year  int
		month int
	}
	groups := make(map[monthKey][]core.Transaction)

	for _, t := range records {
		if t.Kind != core.Expense {
			continue
		}
		if t.Date.Year() != year {
			continue
		}
		// The month bound applies only when present.
		if month != nil && int(t.Date.Month()) != *month {
			continue
		}
		key := monthKey{year: t.Date.Year(), month: int(t.Date.Month())}
		groups[key] = append(groups[key], t)
	}

	reports := make([]core.MonthlyExpenseReport, 0, len(groups))
	for key, group := range groups {
		var total int64
		for _, t := range group {
			total += t.Amount.Cents
		}
		reports = append(reports, core.MonthlyExpenseReport{
			Year:              key.year,
			Month:             key.month,
			TotalCents:        total,
			Count:             len(group),
			CategorySummaries: categoryBreakdown(group, total),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Year != reports[j].Year {
			return reports[i].Year < reports[j].Year
		}
		return reports[i].Month < reports[j].Month
	})
	return reports
}
