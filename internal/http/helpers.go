package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/query"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseFilterSpec reads the filter query parameters shared by the list and
// summary endpoints.
func parseFilterSpec(r *http.Request) (query.FilterSpec, error) {
	q := r.URL.Query()
	spec := query.FilterSpec{
		SearchTerm: q.Get("searchTerm"),
	}

	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return spec, fmt.Errorf("invalid startDate %q, expected YYYY-MM-DD", v)
		}
		spec.StartDate = &t
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return spec, fmt.Errorf("invalid endDate %q, expected YYYY-MM-DD", v)
		}
		// The end bound covers the whole day.
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		spec.EndDate = &end
	}
	if v := strings.TrimSpace(q.Get("categoryIds")); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				spec.CategoryIDs = append(spec.CategoryIDs, id)
			}
		}
	}
	if v := strings.TrimSpace(q.Get("minAmount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return spec, fmt.Errorf("invalid minAmount %q", v)
		}
		spec.MinAmount = &cents
	}
	if v := strings.TrimSpace(q.Get("maxAmount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return spec, fmt.Errorf("invalid maxAmount %q", v)
		}
		spec.MaxAmount = &cents
	}

	return spec, nil
}

func parseSortSpec(r *http.Request) query.SortSpec {
	q := r.URL.Query()
	return query.SortSpec{
		Field:     q.Get("sortBy"),
		Direction: q.Get("sortDirection"),
	}
}

// parsePageSpec reads page and pageSize. Absent values stay zero so the
// service can apply defaults; explicit garbage is an error.
func parsePageSpec(r *http.Request) (query.PageSpec, error) {
	q := r.URL.Query()
	var spec query.PageSpec

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, fmt.Errorf("invalid page %q", v)
		}
		spec.Number = n
	}
	if v := strings.TrimSpace(q.Get("pageSize")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, fmt.Errorf("invalid pageSize %q", v)
		}
		spec.Size = n
	}

	return spec, nil
}
