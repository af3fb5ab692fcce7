package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newQueryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/movies?"+rawQuery, nil)
	return c
}

func TestParsePaginationDefaults(t *testing.T) {
	c := newQueryContext(t, "")

	page, perPage, err := parsePagination(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 {
		t.Fatalf("expected default page 1, got %d", page)
	}
	if perPage != 10 {
		t.Fatalf("expected default per_page 10, got %d", perPage)
	}
}

func TestParsePaginationExplicitValues(t *testing.T) {
	c := newQueryContext(t, "page=3&per_page=20")

	page, perPage, err := parsePagination(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 3 || perPage != 20 {
		t.Fatalf("expected page 3 per_page 20, got %d and %d", page, perPage)
	}
}

func TestParsePaginationRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{name: "zero page", query: "page=0"},
		{name: "negative page", query: "page=-2"},
		{name: "non numeric page", query: "page=abc"},
		{name: "zero per page", query: "per_page=0"},
		{name: "per page above cap", query: "per_page=21"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newQueryContext(t, tc.query)

			if _, _, err := parsePagination(c); err == nil {
				t.Fatalf("expected error for query %q", tc.query)
			}
		})
	}
}

func TestNewPageMetaLinks(t *testing.T) {
	c := newQueryContext(t, "page=2&per_page=10&search=nolan")

	meta := newPageMeta(c, 2, 10, 35)

	if meta.TotalPages != 4 {
		t.Fatalf("expected 4 total pages, got %d", meta.TotalPages)
	}
	if meta.TotalItems != 35 {
		t.Fatalf("expected 35 total items, got %d", meta.TotalItems)
	}
	if meta.PrevPage == nil || *meta.PrevPage != "/api/v1/movies?page=1&per_page=10&search=nolan" {
		t.Fatalf("unexpected prev link %v", meta.PrevPage)
	}
	if meta.NextPage == nil || *meta.NextPage != "/api/v1/movies?page=3&per_page=10&search=nolan" {
		t.Fatalf("unexpected next link %v", meta.NextPage)
	}
}

func TestNewPageMetaBoundaryPages(t *testing.T) {
	first := newPageMeta(newQueryContext(t, "page=1"), 1, 10, 15)
	if first.PrevPage != nil {
		t.Fatalf("expected no prev link on the first page, got %v", *first.PrevPage)
	}
	if first.NextPage == nil {
		t.Fatalf("expected next link on the first page")
	}

	last := newPageMeta(newQueryContext(t, "page=2"), 2, 10, 15)
	if last.NextPage != nil {
		t.Fatalf("expected no next link on the last page, got %v", *last.NextPage)
	}

	empty := newPageMeta(newQueryContext(t, ""), 1, 10, 0)
	if empty.TotalPages != 0 || empty.PrevPage != nil || empty.NextPage != nil {
		t.Fatalf("expected empty meta for zero items, got %+v", empty)
	}
}
