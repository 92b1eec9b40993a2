package query

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

func TestResolveComparator(t *testing.T) {
	a := core.Transaction{
		ID:           "a",
		Amount:       core.Money{Cents: 100},
		Description:  "Apples",
		CategoryName: "Groceries",
		Date:         day(2024, time.January, 1),
		CreatedAt:    day(2024, time.January, 10),
	}
	b := core.Transaction{
		ID:           "b",
		Amount:       core.Money{Cents: 200},
		Description:  "Bus ticket",
		CategoryName: "Transport",
		Date:         day(2024, time.February, 1),
		CreatedAt:    day(2024, time.January, 5),
	}

	tests := []struct {
		name string
		spec SortSpec
		// want reports whether a sorts before b.
		want bool
	}{
		{"date ascending", SortSpec{Field: "date", Direction: "asc"}, true},
		{"date descending", SortSpec{Field: "date", Direction: "desc"}, false},
		{"empty direction is ascending", SortSpec{Field: "date"}, true},
		{"direction is case insensitive", SortSpec{Field: "date", Direction: "ASC"}, true},
		{"unknown direction is descending", SortSpec{Field: "date", Direction: "sideways"}, false},
		{"amount ascending", SortSpec{Field: "amount", Direction: "asc"}, true},
		{"amount descending", SortSpec{Field: "amount", Direction: "desc"}, false},
		{"description ascending", SortSpec{Field: "description", Direction: "asc"}, true},
		{"category ascending", SortSpec{Field: "category", Direction: "asc"}, true},
		{"createdAt ascending puts older entry first", SortSpec{Field: "createdAt", Direction: "asc"}, false},
		{"createdAt descending via constants", SortSpec{Field: SortByCreatedAt, Direction: DirectionDesc}, true},
		{"field is case insensitive", SortSpec{Field: "AMOUNT", Direction: "asc"}, true},
		{"unknown field falls back to date descending", SortSpec{Field: "nonsense", Direction: "asc"}, false},
		{"empty field falls back to date descending", SortSpec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			less := ResolveComparator(tt.spec)
			if got := less(a, b); got != tt.want {
				t.Errorf("less(a, b) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort_StableOnTies(t *testing.T) {
	sameDay := day(2024, time.June, 15)
	records := []core.Transaction{
		{ID: "first", Date: sameDay, Amount: core.Money{Cents: 100}},
		{ID: "second", Date: sameDay, Amount: core.Money{Cents: 200}},
		{ID: "third", Date: sameDay, Amount: core.Money{Cents: 300}},
	}

	Sort(records, SortSpec{Field: "date", Direction: "asc"})

	for i, want := range []string{"first", "second", "third"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %v, want %v (ties must keep input order)", i, records[i].ID, want)
		}
	}
}

func TestSort_OrdersWholeSlice(t *testing.T) {
	records := sampleTransactions()

	Sort(records, SortSpec{Field: "amount", Direction: "desc"})

	want := []string{"t3", "t2", "t1", "t4"}
	for i := range want {
		if records[i].ID != want[i] {
			t.Errorf("records[%d].ID = %v, want %v", i, records[i].ID, want[i])
		}
	}
}
