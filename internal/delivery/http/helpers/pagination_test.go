package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventparticipation/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"?page=3&page_size=50", domain.PaginationParams{Page: 3, PageSize: 50}},
		{"?page=0&page_size=-1", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"?page=abc&page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{"?page=99999999", domain.PaginationParams{Page: maxPage, PageSize: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/participations"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		name   string
		params domain.PaginationParams
		total  int
		want   PaginationMeta
	}{
		{"first of three", domain.PaginationParams{Page: 1, PageSize: 20}, 41, PaginationMeta{Page: 1, PageSize: 20, Total: 41, TotalPages: 3, HasNext: true}},
		{"last page", domain.PaginationParams{Page: 3, PageSize: 20}, 41, PaginationMeta{Page: 3, PageSize: 20, Total: 41, TotalPages: 3}},
		{"empty", domain.PaginationParams{Page: 1, PageSize: 20}, 0, PaginationMeta{Page: 1, PageSize: 20}},
		{"no page size", domain.PaginationParams{Page: 1}, 5, PaginationMeta{Page: 1, Total: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPaginationMeta(tt.params, tt.total))
		})
	}
}
