package service

import "github.com/yamdb/reviewhub/internal/core/ports"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// normalizePage applies the default page and caps the page size.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) ports.Page[T] {
	if items == nil {
		items = []T{}
	}
	return ports.Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}
