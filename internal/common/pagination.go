package common

import (
	"net/http"
	"strconv"
)

// Pagination is the page metadata block attached to product, order, and
// audit-log listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads the "page" and "limit" query parameters. Missing or
// non-positive values fall back to page 1 and defaultPerPage; callers cap the
// upper bound themselves.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	return
}
