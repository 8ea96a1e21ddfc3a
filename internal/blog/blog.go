// Package blog implements the listing rules of the public blog: search,
// category filter, pagination, featured posts and excerpts.
package blog

import (
	"strings"
	"unicode/utf8"

	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// AllCategories is the filter value that matches every category.
const AllCategories = "all"

// Excerpt lengths used by the blog listing and the landing page.
const (
	ListExcerptLen     = 200
	FeaturedExcerptLen = 120
)

// Filter keeps posts whose title or content contains search
// (case-insensitive) and whose category matches. An empty search or a
// category of "" or "all" does not filter.
func Filter(posts []*store.Post, search, category string) []*store.Post {
	search = strings.ToLower(strings.TrimSpace(search))
	if category == AllCategories {
		category = ""
	}
	out := make([]*store.Post, 0, len(posts))
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Page is one page of a filtered listing.
type Page struct {
	Posts      []*store.Post
	Number     int
	TotalPages int
	Total      int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Prev returns the previous page number.
func (p Page) Prev() int { return p.Number - 1 }

// Next returns the next page number.
func (p Page) Next() int { return p.Number + 1 }

// ShowPagination reports whether page links should be rendered.
func (p Page) ShowPagination() bool { return p.TotalPages > 1 }

// Numbers lists every page number, 1 through TotalPages.
func (p Page) Numbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Paginate slices posts into pages of perPage. The requested page is clamped
// to the available range; an empty listing is page 1 of 0.
func Paginate(posts []*store.Post, page, perPage int) Page {
	if perPage <= 0 {
		perPage = 1
	}
	total := len(posts)
	totalPages := (total + perPage - 1) / perPage
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start > total {
		start = total
	}
	return Page{
		Posts:      posts[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// Featured returns the n most recent posts, newest first. posts must be in
// publication order.
func Featured(posts []*store.Post, n int) []*store.Post {
	if n <= 0 {
		return nil
	}
	start := max(len(posts)-n, 0)
	out := make([]*store.Post, 0, len(posts)-start)
	for i := len(posts) - 1; i >= start; i-- {
		out = append(out, posts[i])
	}
	return out
}

// Excerpt returns the first n runes of s followed by "...", or s unchanged
// when it is short enough.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
