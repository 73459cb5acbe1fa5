package models

// DefaultPageSize is the number of recipes shown per page.
const DefaultPageSize = 12

// Pagination describes where a page sits in a result set of Total items.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total_count"`
}

// NewPagination clamps page to at least 1 and falls back to [DefaultPageSize].
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total}
}

// Skip is the number of items before this page.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(Total / PageSize).
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Visible reports whether pagination controls should be shown at all.
func (p Pagination) Visible() bool {
	return p.Total > p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }

// Clamp bounds page to [1, TotalPages], or 1 when there are no results.
func (p Pagination) Clamp(page int) int {
	last := p.TotalPages()
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}
