package collection

import "fmt"

// Pagination defaults applied when the caller leaves PageRequest fields zero.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageRequest selects a 1-based page of a result set. Zero values take the
// package defaults; negative values are rejected.
type PageRequest struct {
	Page     int
	PageSize int
}

// normalize applies defaults and validates the request.
func (p PageRequest) normalize() (PageRequest, error) {
	if p.Page < 0 {
		return p, InvalidArgumentError(fmt.Sprintf("page must be positive, got %d", p.Page))
	}
	if p.PageSize < 0 {
		return p, InvalidArgumentError(fmt.Sprintf("page size must be positive, got %d", p.PageSize))
	}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p, nil
}

// PageMeta describes the position of a page within the full result set.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// PageResult is one page of records together with its pagination metadata.
type PageResult[T any] struct {
	Items []T `json:"items"`
	PageMeta
}

// newPageMeta computes page metadata. TotalPages is ceil(total / limit).
func newPageMeta(page PageRequest, total int64) PageMeta {
	limit := int64(page.PageSize)
	return PageMeta{
		Page:       page.Page,
		Limit:      page.PageSize,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}
