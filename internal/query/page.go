package query

import "errors"

// ErrInvalidPage is returned for page numbers or sizes below 1.
var ErrInvalidPage = errors.New("page number and page size must be at least 1")

// DefaultPageSize is applied by callers when no size is supplied.
const DefaultPageSize = 10

// PageSpec selects one page of an ordered sequence.
type PageSpec struct {
	Number int // 1-based
	Size   int
}

// PaginatedResult is one page of items plus the paging envelope.
// TotalCount is the size of the filtered set before slicing.
type PaginatedResult[T any] struct {
	Items      []T
	TotalCount int
	PageNumber int
	PageSize   int
	TotalPages int
}

// Paginate slices items to the requested page. totalCount must be the size
// of the filtered, pre-pagination set; it is reported as-is, so a page past
// the end yields an empty item list with the count unchanged.
func Paginate[T any](items []T, totalCount, pageNumber, pageSize int) (PaginatedResult[T], error) {
	if pageNumber < 1 || pageSize < 1 {
		return PaginatedResult[T]{}, ErrInvalidPage
	}

	// (pageNumber-1)*pageSize can overflow for absurd page numbers. Every
	// page beyond the last occupied one is the same empty page, so only do
	// the offset arithmetic when the page lands inside the slice; the bound
	// check divides instead of multiplying and cannot overflow.
	page := []T{}
	if len(items) > 0 && pageNumber-1 <= (len(items)-1)/pageSize {
		offset := (pageNumber - 1) * pageSize
		end := len(items)
		if end-offset > pageSize {
			end = offset + pageSize
		}
		page = items[offset:end]
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount-1)/pageSize + 1
	}

	return PaginatedResult[T]{
		Items:      page,
		TotalCount: totalCount,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
