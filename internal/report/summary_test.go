package report

import (
	"math"
	"testing"
	"time"

	"expensetracker/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expense(id string, cents int64, date time.Time, categoryID, categoryName string) core.Transaction {
	return core.Transaction{
		ID:           id,
		Amount:       core.Money{Cents: cents},
		Date:         date,
		Kind:         core.Expense,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
}

func income(id string, cents int64, date time.Time) core.Transaction {
	return core.Transaction{
		ID:     id,
		Amount: core.Money{Cents: cents},
		Date:   date,
		Kind:   core.Income,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	if got.TotalExpenseCents != 0 || got.TotalIncomeCents != 0 || got.TotalCount != 0 {
		t.Errorf("Summarize(nil) totals = %+v, want zeros", got)
	}
	if got.AverageExpenseCents != 0 || got.AverageIncomeCents != 0 {
		t.Errorf("Summarize(nil) averages = (%v, %v), want zeros", got.AverageExpenseCents, got.AverageIncomeCents)
	}
	if got.MonthlyTotals == nil || len(got.MonthlyTotals) != 0 {
		t.Errorf("Summarize(nil) MonthlyTotals = %v, want empty non-nil", got.MonthlyTotals)
	}
	if got.CategorySummaries == nil || len(got.CategorySummaries) != 0 {
		t.Errorf("Summarize(nil) CategorySummaries = %v, want empty non-nil", got.CategorySummaries)
	}
}

func TestSummarize_MixedKinds(t *testing.T) {
	records := []core.Transaction{
		expense("e1", 10000, day(2024, time.January, 5), "cat-a", "Groceries"),
		expense("e2", 30000, day(2024, time.January, 20), "cat-b", "Rent"),
		expense("e3", 20000, day(2024, time.February, 5), "cat-a", "Groceries"),
		income("i1", 500000, day(2024, time.January, 25)),
	}

	got := Summarize(records)

	if got.TotalExpenseCents != 60000 {
		t.Errorf("TotalExpenseCents = %v, want 60000", got.TotalExpenseCents)
	}
	if got.TotalIncomeCents != 500000 {
		t.Errorf("TotalIncomeCents = %v, want 500000", got.TotalIncomeCents)
	}
	if got.TotalCount != 4 {
		t.Errorf("TotalCount = %v, want 4", got.TotalCount)
	}
	if !almostEqual(got.AverageExpenseCents, 20000) {
		t.Errorf("AverageExpenseCents = %v, want 20000", got.AverageExpenseCents)
	}
	if !almostEqual(got.AverageIncomeCents, 500000) {
		t.Errorf("AverageIncomeCents = %v, want 500000", got.AverageIncomeCents)
	}

	// Max and min cover both kinds.
	if got.MaxAmountCents != 500000 {
		t.Errorf("MaxAmountCents = %v, want 500000", got.MaxAmountCents)
	}
	if got.MinAmountCents != 10000 {
		t.Errorf("MinAmountCents = %v, want 10000", got.MinAmountCents)
	}

	// Category breakdown covers expenses only. Both categories total 30000,
	// so first-seen order breaks the tie: Groceries before Rent.
	if len(got.CategorySummaries) != 2 {
		t.Fatalf("CategorySummaries = %v, want 2 entries", got.CategorySummaries)
	}
	first, second := got.CategorySummaries[0], got.CategorySummaries[1]
	if first.CategoryName != "Groceries" || first.TotalCents != 30000 || first.Count != 2 {
		t.Errorf("first category = %+v, want Groceries/30000/2", first)
	}
	if second.CategoryName != "Rent" || second.TotalCents != 30000 || second.Count != 1 {
		t.Errorf("second category = %+v, want Rent/30000/1", second)
	}
	if !almostEqual(first.Percentage, 50) || !almostEqual(second.Percentage, 50) {
		t.Errorf("percentages = (%v, %v), want 50/50", first.Percentage, second.Percentage)
	}

	// Monthly totals cover expenses only.
	if len(got.MonthlyTotals) != 2 {
		t.Fatalf("MonthlyTotals = %v, want 2 entries", got.MonthlyTotals)
	}
	byMonth := map[int]int64{}
	for _, m := range got.MonthlyTotals {
		byMonth[m.Month] = m.AmountCents
	}
	if byMonth[1] != 40000 || byMonth[2] != 20000 {
		t.Errorf("monthly totals = %v, want Jan 40000, Feb 20000", byMonth)
	}
}

func TestSummarize_OnlyIncome(t *testing.T) {
	got := Summarize([]core.Transaction{
		income("i1", 1000, day(2024, time.May, 1)),
		income("i2", 3000, day(2024, time.May, 2)),
	})

	if got.TotalExpenseCents != 0 {
		t.Errorf("TotalExpenseCents = %v, want 0", got.TotalExpenseCents)
	}
	if got.AverageExpenseCents != 0 {
		t.Errorf("AverageExpenseCents = %v, want 0 (no expenses to average)", got.AverageExpenseCents)
	}
	if !almostEqual(got.AverageIncomeCents, 2000) {
		t.Errorf("AverageIncomeCents = %v, want 2000", got.AverageIncomeCents)
	}
	if len(got.CategorySummaries) != 0 {
		t.Errorf("CategorySummaries = %v, want empty", got.CategorySummaries)
	}
	if got.MaxAmountCents != 3000 || got.MinAmountCents != 1000 {
		t.Errorf("max/min = (%v, %v), want (3000, 1000)", got.MaxAmountCents, got.MinAmountCents)
	}
}

func TestSummarize_UncategorizedFallback(t *testing.T) {
	got := Summarize([]core.Transaction{
		expense("e1", 500, day(2024, time.July, 1), "cat-gone", ""),
	})

	if len(got.CategorySummaries) != 1 {
		t.Fatalf("CategorySummaries = %v, want 1 entry", got.CategorySummaries)
	}
	if got.CategorySummaries[0].CategoryName != core.UncategorizedName {
		t.Errorf("CategoryName = %v, want %v", got.CategorySummaries[0].CategoryName, core.UncategorizedName)
	}
	if !almostEqual(got.CategorySummaries[0].Percentage, 100) {
		t.Errorf("Percentage = %v, want 100", got.CategorySummaries[0].Percentage)
	}
}

func TestSummarize_CategoriesOrderedByTotalDescending(t *testing.T) {
	got := Summarize([]core.Transaction{
		expense("e1", 100, day(2024, time.March, 1), "cat-a", "Small"),
		expense("e2", 900, day(2024, time.March, 2), "cat-b", "Big"),
		expense("e3", 400, day(2024, time.March, 3), "cat-c", "Middle"),
	})

	want := []string{"Big", "Middle", "Small"}
	if len(got.CategorySummaries) != len(want) {
		t.Fatalf("CategorySummaries = %v, want %d entries", got.CategorySummaries, len(want))
	}
	for i := range want {
		if got.CategorySummaries[i].CategoryName != want[i] {
			t.Errorf("CategorySummaries[%d] = %v, want %v", i, got.CategorySummaries[i].CategoryName, want[i])
		}
	}
}

func TestCategoryBreakdown_ZeroDenominator(t *testing.T) {
	records := []core.Transaction{
		expense("e1", 0, day(2024, time.April, 1), "cat-a", "Groceries"),
		expense("e2", 0, day(2024, time.April, 2), "cat-b", "Rent"),
	}

	got := categoryBreakdown(records, 0)

	if len(got) != 2 {
		t.Fatalf("categoryBreakdown() = %v, want 2 entries", got)
	}
	for _, cs := range got {
		if cs.Percentage != 0 {
			t.Errorf("Percentage for %v = %v, want 0 when the total is 0", cs.CategoryName, cs.Percentage)
		}
	}
}

func TestSummarize_SingleTransactionMaxEqualsMin(t *testing.T) {
	got := Summarize([]core.Transaction{
		expense("e1", 7777, day(2024, time.August, 8), "cat-a", "Other"),
	})

	if got.MaxAmountCents != 7777 || got.MinAmountCents != 7777 {
		t.Errorf("max/min = (%v, %v), want both 7777", got.MaxAmountCents, got.MinAmountCents)
	}
}
