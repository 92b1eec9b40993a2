package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/query"
	"expensetracker/internal/report"
)

// TransactionLister is the read surface reports need.
type TransactionLister interface {
	ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
}

type summaryResult struct {
	Summary core.ExpenseSummary
}

type monthlyResult struct {
	Reports []core.MonthlyExpenseReport
}

// ReportService computes summaries and monthly reports, caching results per
// user until the next write.
type ReportService struct {
	store        TransactionLister
	summaryCache *cache.Cache[summaryResult]
	monthlyCache *cache.Cache[monthlyResult]
}

func NewReportService(store TransactionLister, cacheSize int, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		store:        store,
		summaryCache: cache.New[summaryResult](cacheSize, cacheTTL),
		monthlyCache: cache.New[monthlyResult](cacheSize, cacheTTL),
	}
}

// Invalidate drops every cached report for the owner. Called after each
// transaction write.
func (s *ReportService) Invalidate(ownerID string) {
	s.summaryCache.DeletePrefix(ownerID + "|")
	s.monthlyCache.DeletePrefix(ownerID + "|")
}

// Summary filters the owner's transactions and aggregates them.
func (s *ReportService) Summary(ctx context.Context, ownerID string, filter query.FilterSpec) (core.ExpenseSummary, error) {
	key := summaryKey(ownerID, filter)
	if cached, ok := s.summaryCache.Get(key); ok {
		return cached.Summary, nil
	}

	records, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("list transactions: %w", err)
	}

	summary := report.Summarize(query.Filter(records, filter))
	s.summaryCache.Set(key, summaryResult{Summary: summary})
	return summary, nil
}

// Monthly builds the per-month expense reports for a year, optionally
// narrowed to a single month.
func (s *ReportService) Monthly(ctx context.Context, ownerID string, year int, month *int) ([]core.MonthlyExpenseReport, error) {
	key := monthlyKey(ownerID, year, month)
	if cached, ok := s.monthlyCache.Get(key); ok {
		return cached.Reports, nil
	}

	records, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	reports := report.MonthlyReport(records, year, month)
	s.monthlyCache.Set(key, monthlyResult{Reports: reports})
	return reports, nil
}

func summaryKey(ownerID string, f query.FilterSpec) string {
	var b strings.Builder
	b.WriteString(ownerID)
	b.WriteString("|summary|")
	b.WriteString(f.SearchTerm)
	b.WriteString("|")
	if f.StartDate != nil {
		b.WriteString(f.StartDate.Format(time.RFC3339))
	}
	b.WriteString("|")
	if f.EndDate != nil {
		b.WriteString(f.EndDate.Format(time.RFC3339))
	}
	b.WriteString("|")
	b.WriteString(strings.Join(f.CategoryIDs, ","))
	b.WriteString("|")
	if f.MinAmount != nil {
		fmt.Fprintf(&b, "%d", *f.MinAmount)
	}
	b.WriteString("|")
	if f.MaxAmount != nil {
		fmt.Fprintf(&b, "%d", *f.MaxAmount)
	}
	return b.String()
}

func monthlyKey(ownerID string, year int, month *int) string {
	if month != nil {
		return fmt.Sprintf("%s|monthly|%d-%d", ownerID, year, *month)
	}
	return fmt.Sprintf("%s|monthly|%d", ownerID, year)
}
