package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
)

type categorySummaryResponse struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Total        string  `json:"total"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type monthlyTotalResponse struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Amount string `json:"amount"`
}

type summaryResponse struct {
	TotalExpenses     string                    `json:"totalExpenses"`
	TotalIncome       string                    `json:"totalIncome"`
	TotalCount        int                       `json:"totalCount"`
	AverageExpense    string                    `json:"averageExpense"`
	AverageIncome     string                    `json:"averageIncome"`
	MaxAmount         string                    `json:"maxAmount"`
	MinAmount         string                    `json:"minAmount"`
	MonthlyTotals     []monthlyTotalResponse    `json:"monthlyTotals"`
	CategorySummaries []categorySummaryResponse `json:"categorySummaries"`
}

type monthlyReportResponse struct {
	Year       int                       `json:"year"`
	Month      int                       `json:"month"`
	Total      string                    `json:"total"`
	Count      int                       `json:"count"`
	Categories []categorySummaryResponse `json:"categories"`
}

func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilterSpec(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.reports.Summary(r.Context(), userID(r), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary report failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	monthly := make([]monthlyTotalResponse, 0, len(summary.MonthlyTotals))
	for _, m := range summary.MonthlyTotals {
		monthly = append(monthly, monthlyTotalResponse{
			Year:   m.Year,
			Month:  m.Month,
			Amount: core.FormatCents(m.AmountCents),
		})
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		TotalExpenses:     core.FormatCents(summary.TotalExpenseCents),
		TotalIncome:       core.FormatCents(summary.TotalIncomeCents),
		TotalCount:        summary.TotalCount,
		AverageExpense:    formatCentsFloat(summary.AverageExpenseCents),
		AverageIncome:     formatCentsFloat(summary.AverageIncomeCents),
		MaxAmount:         core.FormatCents(summary.MaxAmountCents),
		MinAmount:         core.FormatCents(summary.MinAmountCents),
		MonthlyTotals:     monthly,
		CategorySummaries: toCategorySummaryResponses(summary.CategorySummaries),
	})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year := time.Now().Year()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", v))
			return
		}
		year = y
	}

	var month *int
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q", v))
			return
		}
		month = &m
	}

	reports, err := s.reports.Monthly(r.Context(), userID(r), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly report failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]monthlyReportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, monthlyReportResponse{
			Year:       rep.Year,
			Month:      rep.Month,
			Total:      core.FormatCents(rep.TotalCents),
			Count:      rep.Count,
			Categories: toCategorySummaryResponses(rep.CategorySummaries),
		})
	}

	respondJSON(w, http.StatusOK, out)
}

func toCategorySummaryResponses(in []core.CategorySummary) []categorySummaryResponse {
	out := make([]categorySummaryResponse, 0, len(in))
	for _, cs := range in {
		out = append(out, categorySummaryResponse{
			CategoryID:   cs.CategoryID,
			CategoryName: cs.CategoryName,
			Total:        core.FormatCents(cs.TotalCents),
			Count:        cs.Count,
			Percentage:   cs.Percentage,
		})
	}
	return out
}

// formatCentsFloat renders a fractional cents value as currency units with
// two decimals.
func formatCentsFloat(cents float64) string {
	return fmt.Sprintf("%.2f", cents/100)
}
