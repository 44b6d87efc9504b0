package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 10},
		{"?page=3&page_size=25", 3, 25},
		{"?page=0&page_size=-1", 1, 10},
		{"?page=abc&page_size=1000", 1, MaxPageSize},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/contacts"+tc.query, nil)

		p := ParsePageParams(c)
		assert.Equal(t, tc.page, p.Page, tc.query)
		assert.Equal(t, tc.pageSize, p.PageSize, tc.query)
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	empty := NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	assert.Equal(t, 10, (&PageParams{Page: 2, PageSize: 10}).GetOffset())
}

func TestParseOrdering(t *testing.T) {
	allowed := map[string]string{"name": "name", "created_at": "created_at"}

	assert.Equal(t, "name ASC, id ASC", ParseOrdering("name", allowed, "name"))
	assert.Equal(t, "created_at DESC, id DESC", ParseOrdering("-created_at", allowed, "name"))
	assert.Equal(t, "name, id", ParseOrdering("password; DROP TABLE", allowed, "name"))
	assert.Equal(t, "name, id", ParseOrdering("", allowed, "name"))
}
