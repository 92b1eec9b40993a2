package query

import (
	"errors"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name           string
		pageNumber     int
		pageSize       int
		wantItems      []int
		wantTotalPages int
	}{
		{"first page", 1, 3, []int{1, 2, 3}, 3},
		{"middle page", 2, 3, []int{4, 5, 6}, 3},
		{"short last page", 3, 3, []int{7}, 3},
		{"page past the end is empty", 5, 3, []int{}, 3},
		{"page size larger than set", 1, 50, []int{1, 2, 3, 4, 5, 6, 7}, 1},
		{"page size one", 7, 1, []int{7}, 7},
		{"enormous page number is an empty page", 1 << 62, 4, []int{}, 2},
		{"enormous page size returns everything", 1, 1 << 62, []int{1, 2, 3, 4, 5, 6, 7}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Paginate(items, len(items), tt.pageNumber, tt.pageSize)
			if err != nil {
				t.Fatalf("Paginate() error = %v", err)
			}

			if len(got.Items) != len(tt.wantItems) {
				t.Fatalf("Paginate() items = %v, want %v", got.Items, tt.wantItems)
			}
			for i := range got.Items {
				if got.Items[i] != tt.wantItems[i] {
					t.Errorf("Paginate() items[%d] = %v, want %v", i, got.Items[i], tt.wantItems[i])
				}
			}

			if got.TotalCount != len(items) {
				t.Errorf("Paginate() TotalCount = %v, want %v", got.TotalCount, len(items))
			}
			if got.TotalPages != tt.wantTotalPages {
				t.Errorf("Paginate() TotalPages = %v, want %v", got.TotalPages, tt.wantTotalPages)
			}
			if got.PageNumber != tt.pageNumber || got.PageSize != tt.pageSize {
				t.Errorf("Paginate() echoed page = (%d, %d), want (%d, %d)",
					got.PageNumber, got.PageSize, tt.pageNumber, tt.pageSize)
			}
		})
	}
}

func TestPaginate_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"zero page number", 0, 10},
		{"negative page number", -1, 10},
		{"zero page size", 1, 0},
		{"negative page size", 1, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Paginate([]int{1, 2, 3}, 3, tt.pageNumber, tt.pageSize)
			if !errors.Is(err, ErrInvalidPage) {
				t.Errorf("Paginate() error = %v, want ErrInvalidPage", err)
			}
		})
	}
}

func TestPaginate_EmptySet(t *testing.T) {
	got, err := Paginate([]string{}, 0, 1, 10)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("Paginate() items = %v, want empty", got.Items)
	}
	if got.TotalPages != 0 {
		t.Errorf("Paginate() TotalPages = %v, want 0", got.TotalPages)
	}
	if got.TotalCount != 0 {
		t.Errorf("Paginate() TotalCount = %v, want 0", got.TotalCount)
	}
}
