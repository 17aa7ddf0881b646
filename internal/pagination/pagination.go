// Package pagination implements offset-based pagination shared by the event
// and attendee list endpoints.
package pagination

import "strconv"

const (
	// MaxPerPage caps page size regardless of what the caller asks for.
	MaxPerPage = 100
)

// Params is a parsed page request.
type Params struct {
	Page    int
	PerPage int
}

// Meta is the pagination block returned alongside list data.
type Meta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// Parse reads page/per_page query values, applying the given per-page
// default and clamping to sane bounds. Unparseable values fall back to
// defaults.
func Parse(pageStr, perPageStr string, defaultPerPage int) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// MetaFor computes the meta block for a total row count.
// last_page is ceil(total/per_page), and at least 1.
func (p Params) MetaFor(total int) Meta {
	lastPage := (total + p.PerPage - 1) / p.PerPage
	if lastPage < 1 {
		lastPage = 1
	}
	return Meta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
