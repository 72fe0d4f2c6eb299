package services

import "gorm.io/gorm"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page selects one page of a listing; page numbers start at 1
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps page and limit to sane values
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Pagination is the metadata returned next to a page of results
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Paginate applies offset and limit to a query
func (p Page) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset((p.Number - 1) * p.Limit).Limit(p.Limit)
}

// Result builds the pagination metadata for total matching rows
func (p Page) Result(total int64) Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{Page: p.Number, Limit: p.Limit, Total: total, TotalPages: totalPages}
}
