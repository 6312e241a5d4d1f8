package pagination

import (
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is the page the caller asks for.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta describes a page returned by the backend.
type Meta struct {
	Page       int `json:"page" validate:"gte=0"`
	Limit      int `json:"limit" validate:"gte=0"`
	Total      int `json:"total" validate:"gte=0"`
	TotalPages int `json:"totalPages" validate:"gte=0"`
}

// Page is a slice of items with its metadata.
type Page[T any] struct {
	Data []T  `json:"data" validate:"dive"`
	Meta Meta `json:"meta"`
}

// Parse reads page and limit from raw query values, falling back to the
// defaults for anything missing or invalid.
func Parse(page, limit string) Params {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// Normalize clamps p into the accepted range.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Query returns the backend query parameters for p.
func (p Params) Query() map[string]string {
	p = p.Normalize()
	return map[string]string{
		"page":  strconv.Itoa(p.Page),
		"limit": strconv.Itoa(p.Limit),
	}
}

// Offset is the zero-based index of the first item on the page.
func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Pages derives the number of pages for total items of size limit.
func Pages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// HasNext reports whether a page follows m.
func (m Meta) HasNext() bool {
	return m.Page < m.pages()
}

// HasPrev reports whether a page precedes m.
func (m Meta) HasPrev() bool {
	return m.Page > 1
}

// Next returns the params for the following page, or m's own page at the end.
func (m Meta) Next() Params {
	if !m.HasNext() {
		return Params{Page: m.Page, Limit: m.Limit}
	}
	return Params{Page: m.Page + 1, Limit: m.Limit}
}

// Prev returns the params for the preceding page, or the first page.
func (m Meta) Prev() Params {
	if !m.HasPrev() {
		return Params{Page: DefaultPage, Limit: m.Limit}
	}
	return Params{Page: m.Page - 1, Limit: m.Limit}
}

func (m Meta) pages() int {
	if m.TotalPages > 0 {
		return m.TotalPages
	}
	return Pages(m.Total, m.Limit)
}
