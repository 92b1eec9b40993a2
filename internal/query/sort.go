package query

import (
	"sort"
	"strings"

	"expensetracker/internal/core"
)

// Sortable field names, matched case-insensitively.
const (
	SortByDate        = "date"
	SortByAmount      = "amount"
	SortByDescription = "description"
	SortByCategory    = "category"
	SortByCreatedAt   = "createdAt"
)

// Directions. Anything supplied that is not case-insensitively "asc" sorts
// descending; an empty direction sorts ascending.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// SortSpec holds sorting preferences for transaction listings.
type SortSpec struct {
	Field     string
	Direction string
}

// LessFunc is a strict-weak ordering over transactions.
type LessFunc func(a, b core.Transaction) bool

// ResolveComparator maps a SortSpec onto a field comparator.
//
// An unknown or absent field falls back to the default ordering, date
// descending, regardless of the supplied direction. Ties are not broken
// here: callers must use a stable sort if they need ties to keep the
// underlying order.
func ResolveComparator(spec SortSpec) LessFunc {
	var less LessFunc
	switch strings.ToLower(strings.TrimSpace(spec.Field)) {
	case SortByDate:
		less = func(a, b core.Transaction) bool { return a.Date.Before(b.Date) }
	case SortByAmount:
		less = func(a, b core.Transaction) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortByDescription:
		less = func(a, b core.Transaction) bool { return a.Description < b.Description }
	case SortByCategory:
		less = func(a, b core.Transaction) bool { return a.CategoryName < b.CategoryName }
	case strings.ToLower(SortByCreatedAt):
		less = func(a, b core.Transaction) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b core.Transaction) bool { return b.Date.Before(a.Date) }
	}

	if isDescending(spec.Direction) {
		asc := less
		less = func(a, b core.Transaction) bool { return asc(b, a) }
	}
	return less
}

// isDescending normalizes the direction rule: empty means ascending,
// "asc" (case-insensitive) means ascending, anything else descending.
func isDescending(direction string) bool {
	d := strings.TrimSpace(direction)
	if d == "" {
		return false
	}
	if strings.EqualFold(d, DirectionDesc) {
		return true
	}
	return !strings.EqualFold(d, DirectionAsc)
}

// Sort orders records in place. The sort is stable, so records comparing
// equal keep the order the repository returned them in.
func Sort(records []core.Transaction, spec SortSpec) {
	less := ResolveComparator(spec)
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}
