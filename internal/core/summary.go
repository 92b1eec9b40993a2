package core

// CategorySummary is a per-category rollup within a report slice.
// Percentage is the category's share of the containing total (0-100);
// it is 0 whenever that total is 0.
type CategorySummary struct {
	CategoryID   string
	CategoryName string
	TotalCents   int64
	Count        int
	Percentage   float64
}

// MonthlyTotal is the expense total for one calendar month.
type MonthlyTotal struct {
	Year        int
	Month       int // 1-12
	AmountCents int64
}

// ExpenseSummary aggregates a filtered transaction set. Totals, max and min
// are int64 cents; the two averages keep fractional cents.
//
// MonthlyTotals and CategorySummaries cover expense-kind records only, while
// TotalCount, MaxAmountCents and MinAmountCents cover the combined set.
type ExpenseSummary struct {
	TotalExpenseCents   int64
	TotalIncomeCents    int64
	TotalCount          int
	AverageExpenseCents float64
	AverageIncomeCents  float64
	MaxAmountCents      int64
	MinAmountCents      int64
	MonthlyTotals       []MonthlyTotal
	CategorySummaries   []CategorySummary
}

// MonthlyExpenseReport is the per-month rollup with a category breakdown;
// CategorySummaries percentages are relative to this month's total.
type MonthlyExpenseReport struct {
	Year              int
	Month             int // 1-12
	TotalCents        int64
	Count             int
	CategorySummaries []CategorySummary
}
