// Package query turns declarative request parameters (filter, sort, page)
// into in-memory operations over a user's transaction set. Everything here
// is pure: no I/O, no shared state, deterministic for a given input.
package query

import (
	"strings"
	"time"

	"expensetracker/internal/core"
)

// FilterSpec holds filter criteria for transaction queries.
// Optional numeric and date bounds are pointers to distinguish
// "not set" from zero values.
type FilterSpec struct {
	SearchTerm  string     // substring match on description or notes, case-sensitive
	StartDate   *time.Time // inclusive lower bound on Date
	EndDate     *time.Time // inclusive upper bound on Date
	CategoryIDs []string   // membership test; empty imposes no constraint
	MinAmount   *int64     // inclusive lower bound in cents
	MaxAmount   *int64     // inclusive upper bound in cents
}

// Predicate reports whether a single transaction matches.
type Predicate func(core.Transaction) bool

// BuildPredicate translates a FilterSpec into a single boolean test.
// Active conditions are ANDed; absent conditions impose no constraint.
func BuildPredicate(spec FilterSpec) Predicate {
	var conds []Predicate

	if term := spec.SearchTerm; strings.TrimSpace(term) != "" {
		conds = append(conds, func(t core.Transaction) bool {
			return strings.Contains(t.Description, term) || strings.Contains(t.Notes, term)
		})
	}
	if spec.StartDate != nil {
		start := *spec.StartDate
		conds = append(conds, func(t core.Transaction) bool {
			return !t.Date.Before(start)
		})
	}
	if spec.EndDate != nil {
		end := *spec.EndDate
		conds = append(conds, func(t core.Transaction) bool {
			return !t.Date.After(end)
		})
	}
	if len(spec.CategoryIDs) > 0 {
		ids := make(map[string]struct{}, len(spec.CategoryIDs))
		for _, id := range spec.CategoryIDs {
			ids[id] = struct{}{}
		}
		conds = append(conds, func(t core.Transaction) bool {
			_, ok := ids[t.CategoryID]
			return ok
		})
	}
	if spec.MinAmount != nil {
		min := *spec.MinAmount
		conds = append(conds, func(t core.Transaction) bool {
			return t.Amount.Cents >= min
		})
	}
	if spec.MaxAmount != nil {
		max := *spec.MaxAmount
		conds = append(conds, func(t core.Transaction) bool {
			return t.Amount.Cents <= max
		})
	}

	return func(t core.Transaction) bool {
		for _, cond := range conds {
			if !cond(t) {
				return false
			}
		}
		return true
	}
}

// Filter returns the transactions matching spec, preserving input order.
// The input slice is never mutated.
func Filter(records []core.Transaction, spec FilterSpec) []core.Transaction {
	match := BuildPredicate(spec)
	out := make([]core.Transaction, 0, len(records))
	for _, t := range records {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}
