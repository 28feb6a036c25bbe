package domain

import "math"

// Page is one offset-based slice of an ordered item set.
type Page struct {
	Items      []*Item `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
	HasNext    bool    `json:"hasNext"`
	HasPrev    bool    `json:"hasPrev"`
}

// ValidatePaging rejects non-positive page numbers and sizes.
func ValidatePaging(page, pageSize int) error {
	if page < 1 {
		return &ValidationError{Field: "page", Reason: "must be a positive integer"}
	}
	if pageSize < 1 {
		return &ValidationError{Field: "pageSize", Reason: "must be a positive integer"}
	}
	return nil
}

// Offset returns the number of items preceding the requested page.
// It saturates at math.MaxInt instead of wrapping for huge page numbers.
func Offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// NewPage fills in the derived pagination metadata.
// A page past the end keeps its metadata and carries no items.
func NewPage(items []*Item, total, page, pageSize int) *Page {
	totalPages := 0
	if pageSize > 0 {
		totalPages = total / pageSize
		if total%pageSize != 0 {
			totalPages++
		}
	}
	if items == nil {
		items = []*Item{}
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
