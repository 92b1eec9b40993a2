// Package report computes aggregate views over a user's transactions:
// the overall summary and the per-month expense reports. All functions are
// pure; degenerate inputs (empty sets, zero totals) produce zero-valued
// fields, never errors.
package report

import (
	"sort"

	"expensetracker/internal/core"
)

// Summarize partitions records by kind and computes totals, averages and
// the expense-only category and monthly breakdowns.
//
// Averages carry an explicit divide-by-zero guard: an empty partition
// averages to 0. Max and min are taken over the combined set.
func Summarize(records []core.Transaction) core.ExpenseSummary {
	summary := core.ExpenseSummary{
		MonthlyTotals:     []core.MonthlyTotal{},
		CategorySummaries: []core.CategorySummary{},
	}
	if len(records) == 0 {
		return summary
	}

	var expenses []core.Transaction
	var incomeCount int
	maxCents := records[0].Amount.Cents
	minCents := records[0].Amount.Cents

	for _, t := range records {
		switch t.Kind {
		case core.Expense:
			summary.TotalExpenseCents += t.Amount.Cents
			expenses = append(expenses, t)
		case core.Income:
			summary.TotalIncomeCents += t.Amount.Cents
			incomeCount++
		}
		if t.Amount.Cents > maxCents {
			maxCents = t.Amount.Cents
		}
		if t.Amount.Cents < minCents {
			minCents = t.Amount.Cents
		}
	}

	summary.TotalCount = len(records)
	summary.MaxAmountCents = maxCents
	summary.MinAmountCents = minCents
	if len(expenses) > 0 {
		summary.AverageExpenseCents = float64(summary.TotalExpenseCents) / float64(len(expenses))
	}
	if incomeCount > 0 {
		summary.AverageIncomeCents = float64(summary.TotalIncomeCents) / float64(incomeCount)
	}

	summary.CategorySummaries = categoryBreakdown(expenses, summary.TotalExpenseCents)
	summary.MonthlyTotals = monthlyTotals(expenses)

	return summary
}

type categoryAccumulator struct {
	id    string
	name  string
	total int64
	count int
}

// categoryBreakdown groups transactions by category id in a single pass and
// orders the result by total descending. totalCents is the denominator for
// percentages; when it is 0 every percentage is 0.
func categoryBreakdown(records []core.Transaction, totalCents int64) []core.CategorySummary {
	groups := make(map[string]*categoryAccumulator)
	var order []string // first-seen order, keeps equal totals deterministic

	for _, t := range records {
		acc, ok := groups[t.CategoryID]
		if !ok {
			name := t.CategoryName
			if name == "" {
				name = core.UncategorizedName
			}
			acc = &categoryAccumulator{id: t.CategoryID, name: name}
			groups[t.CategoryID] = acc
			order = append(order, t.CategoryID)
		}
		acc.total += t.Amount.Cents
		acc.count++
	}

	summaries := make([]core.CategorySummary, 0, len(order))
	for _, id := range order {
		acc := groups[id]
		percentage := 0.0
		if totalCents > 0 {
			percentage = float64(acc.total) / float64(totalCents) * 100
		}
		summaries = append(summaries, core.CategorySummary{
			CategoryID:   acc.id,
			CategoryName: acc.name,
			TotalCents:   acc.total,
			Count:        acc.count,
			Percentage:   percentage,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalCents > summaries[j].TotalCents
	})
	return summaries
}

// monthlyTotals groups by (year, month) of the transaction date. The result
// order follows first appearance in the input; callers needing chronological
// order must sort, as MonthlyReport does.
func monthlyTotals(records []core.Transaction) []core.MonthlyTotal {
	type monthKey struct {
		year  int
		month int
	}
	sums := make(map[monthKey]int64)
	var order []monthKey

	for _, t := range records {
		key := monthKey{year: t.Date.Year(), month: int(t.Date.Month())}
		if _, ok := sums[key]; !ok {
			order = append(order, key)
		}
		sums[key] += t.Amount.Cents
	}

	totals := make([]core.MonthlyTotal, 0, len(order))
	for _, key := range order {
		totals = append(totals, core.MonthlyTotal{
			Year:        key.year,
			Month:       key.month,
			AmountCents: sums[key],
		})
	}
	return totals
}
