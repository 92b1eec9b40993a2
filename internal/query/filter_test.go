package query

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func centsPtr(c int64) *int64 { return &c }

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:           "t1",
			Amount:       core.Money{Cents: 4550},
			Description:  "Grocery run",
			Notes:        "weekly shop",
			Date:         day(2024, time.March, 2),
			Kind:         core.Expense,
			CategoryID:   "cat-food",
			CategoryName: "Groceries",
		},
		{
			ID:           "t2",
			Amount:       core.Money{Cents: 120000},
			Description:  "March rent",
			Date:         day(2024, time.March, 1),
			Kind:         core.Expense,
			CategoryID:   "cat-rent",
			CategoryName: "Rent",
		},
		{
			ID:           "t3",
			Amount:       core.Money{Cents: 300000},
			Description:  "Salary",
			Notes:        "monthly pay",
			Date:         day(2024, time.March, 25),
			Kind:         core.Income,
			CategoryID:   "cat-salary",
			CategoryName: "Salary",
		},
		{
			ID:           "t4",
			Amount:       core.Money{Cents: 899},
			Description:  "Cinema ticket",
			Date:         day(2024, time.April, 5),
			Kind:         core.Expense,
			CategoryID:   "cat-fun",
			CategoryName: "Entertainment",
		},
	}
}

func TestBuildPredicate(t *testing.T) {
	records := sampleTransactions()

	tests := []struct {
		name    string
		spec    FilterSpec
		wantIDs []string
	}{
		{
			name:    "empty spec matches everything",
			spec:    FilterSpec{},
			wantIDs: []string{"t1", "t2", "t3", "t4"},
		},
		{
			name:    "search matches description",
			spec:    FilterSpec{SearchTerm: "rent"},
			wantIDs: []string{"t2"},
		},
		{
			name:    "search matches notes",
			spec:    FilterSpec{SearchTerm: "weekly"},
			wantIDs: []string{"t1"},
		},
		{
			name:    "search is case sensitive",
			spec:    FilterSpec{SearchTerm: "Rent"},
			wantIDs: nil,
		},
		{
			name:    "blank search matches everything",
			spec:    FilterSpec{SearchTerm: "   "},
			wantIDs: []string{"t1", "t2", "t3", "t4"},
		},
		{
			name: "date bounds are inclusive",
			spec: FilterSpec{
				StartDate: datePtr(day(2024, time.March, 1)),
				EndDate:   datePtr(day(2024, time.March, 2)),
			},
			wantIDs: []string{"t1", "t2"},
		},
		{
			name:    "start date only",
			spec:    FilterSpec{StartDate: datePtr(day(2024, time.March, 25))},
			wantIDs: []string{"t3", "t4"},
		},
		{
			name:    "category membership",
			spec:    FilterSpec{CategoryIDs: []string{"cat-food", "cat-fun"}},
			wantIDs: []string{"t1", "t4"},
		},
		{
			name:    "unknown category matches nothing",
			spec:    FilterSpec{CategoryIDs: []string{"cat-missing"}},
			wantIDs: nil,
		},
		{
			name: "amount bounds are inclusive",
			spec: FilterSpec{
				MinAmount: centsPtr(899),
				MaxAmount: centsPtr(4550),
			},
			wantIDs: []string{"t1", "t4"},
		},
		{
			name: "all conditions are ANDed",
			spec: FilterSpec{
				SearchTerm:  "r",
				StartDate:   datePtr(day(2024, time.March, 1)),
				EndDate:     datePtr(day(2024, time.March, 31)),
				CategoryIDs: []string{"cat-food", "cat-rent"},
				MinAmount:   centsPtr(100000),
			},
			wantIDs: []string{"t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.spec)

			var gotIDs []string
			for _, tr := range got {
				gotIDs = append(gotIDs, tr.ID)
			}

			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("Filter() returned %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("Filter()[%d] = %v, want %v", i, gotIDs[i], tt.wantIDs[i])
				}
			}
		})
	}
}

func TestFilter_PreservesInputOrderAndInput(t *testing.T) {
	records := sampleTransactions()
	before := make([]core.Transaction, len(records))
	copy(before, records)

	got := Filter(records, FilterSpec{MinAmount: centsPtr(1000)})

	if len(got) != 2 || got[0].ID != "t2" || got[1].ID != "t3" {
		t.Fatalf("Filter() order = %v", got)
	}
	for i := range records {
		if records[i].ID != before[i].ID {
			t.Fatal("Filter() mutated its input")
		}
	}
}
