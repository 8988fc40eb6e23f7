package dto

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// keeps (page-1)*pageSize within a postgres integer offset
	maxPage = math.MaxInt32 / MaxPageSize
)

// Paginated is the list envelope shared by every collection endpoint.
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginated creates a paginated response
func NewPaginated[T any](data []T, total int64, page, pageSize int) Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	return Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageParams parses page and page_size, falling back to defaults on bad input.
// Pages past the last representable offset are clamped.
func PageParams(pageStr, pageSizeStr string) (page, pageSize int) {
	page, pageSize = 1, DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = min(p, maxPage)
	}
	if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 && ps <= MaxPageSize {
		pageSize = ps
	}
	return page, pageSize
}
