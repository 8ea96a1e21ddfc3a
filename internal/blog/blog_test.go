package blog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slyyfoxx/foxxtalk/internal/store"
)

func makePosts(n int) []*store.Post {
	posts := make([]*store.Post, n)
	for i := range posts {
		posts[i] = &store.Post{ID: int64(i + 1), Title: fmt.Sprintf("Post %d", i+1), Category: "general"}
	}
	return posts
}

func ids(posts []*store.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	posts := []*store.Post{
		{ID: 1, Title: "Go Generics", Content: "type parameters", Category: "tech"},
		{ID: 2, Title: "Podcast launch", Content: "Audio for everyone", Category: "media"},
		{ID: 3, Title: "Pricing", Content: "How we think about GO-to-market", Category: "business"},
	}

	tests := []struct {
		name     string
		search   string
		category string
		want     []int64
	}{
		{"no filter", "", "", []int64{1, 2, 3}},
		{"all category", "", "all", []int64{1, 2, 3}},
		{"title match ignores case", "podcast", "", []int64{2}},
		{"content match", "AUDIO", "", []int64{2}},
		{"title or content", "go", "", []int64{1, 3}},
		{"category only", "", "tech", []int64{1}},
		{"search and category", "go", "business", []int64{3}},
		{"no match", "rust", "", []int64{}},
		{"whitespace search ignored", "   ", "media", []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(posts, tt.search, tt.category)))
		})
	}
}

func TestPaginate(t *testing.T) {
	posts := makePosts(7)

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantIDs   []int64
		wantPrev  bool
		wantNext  bool
		wantPages int
	}{
		{"first page", 1, 1, []int64{1, 2, 3}, false, true, 3},
		{"middle page", 2, 2, []int64{4, 5, 6}, true, true, 3},
		{"last partial page", 3, 3, []int64{7}, true, false, 3},
		{"past the end clamps", 9, 3, []int64{7}, true, false, 3},
		{"zero clamps", 0, 1, []int64{1, 2, 3}, false, true, 3},
		{"negative clamps", -4, 1, []int64{1, 2, 3}, false, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(posts, tt.page, 3)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantIDs, ids(p.Posts))
			assert.Equal(t, tt.wantPrev, p.HasPrev())
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, 7, p.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 3, 3)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Posts)
	assert.False(t, p.ShowPagination())
	assert.Empty(t, p.Numbers())
}

func TestPaginate_SinglePageHidesPagination(t *testing.T) {
	p := Paginate(makePosts(3), 1, 3)
	assert.False(t, p.ShowPagination())
	assert.Equal(t, []int{1}, p.Numbers())
}

func TestFeatured(t *testing.T) {
	assert.Equal(t, []int64{5, 4, 3}, ids(Featured(makePosts(5), 3)))
	assert.Equal(t, []int64{2, 1}, ids(Featured(makePosts(2), 3)))
	assert.Empty(t, Featured(nil, 3))
	assert.Empty(t, Featured(makePosts(4), 0))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "abcde...", Excerpt("abcdefghij", 5))
	assert.Equal(t, "héllo...", Excerpt("héllo wörld", 5), "counts runes, not bytes")
	long := strings.Repeat("x", 250)
	assert.Len(t, Excerpt(long, ListExcerptLen), ListExcerptLen+3)
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("# Title\n\nSome **bold** text\n\n<script>alert(1)</script>"))
	require.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title Some bold text", PlainText("# Title\n\nSome **bold** text"))
}
