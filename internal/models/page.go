package models

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset within a PostgreSQL integer for any page size
	MaxPage = math.MaxInt32 / MaxPageSize
)

// SearchType selects which article field a keyword search matches against
type SearchType string

const (
	SearchTypeTitle    SearchType = "TITLE"
	SearchTypeContent  SearchType = "CONTENT"
	SearchTypeID       SearchType = "ID"
	SearchTypeNickname SearchType = "NICKNAME"
	SearchTypeHashtag  SearchType = "HASHTAG"
)

// ParseSearchType accepts the search type names case-insensitively.
// An empty string yields an empty SearchType, meaning no filter.
func ParseSearchType(s string) (SearchType, error) {
	if s == "" {
		return "", nil
	}
	st := SearchType(strings.ToUpper(s))
	switch st {
	case SearchTypeTitle, SearchTypeContent, SearchTypeID, SearchTypeNickname, SearchTypeHashtag:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown search type %q", ErrInvalidInput, s)
}

// sortable article columns keyed by their request name
var sortColumns = map[string]string{
	"createdAt": "a.created_at",
	"title":     "a.title",
	"userId":    "a.user_id",
}

// Pageable describes one page of a sorted listing. Page is 0-based.
type Pageable struct {
	Page      int
	Size      int
	Sort      string
	Ascending bool
}

// DefaultPageable returns the first page sorted by creation time, newest first.
func DefaultPageable() Pageable {
	return Pageable{Page: 0, Size: DefaultPageSize, Sort: "createdAt"}
}

// Normalize clamps page and size and falls back to the default sort key.
func (p Pageable) Normalize() Pageable {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if _, ok := sortColumns[p.Sort]; !ok {
		p.Sort = "createdAt"
	}
	return p
}

// Offset returns the row offset of the page
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// OrderBy returns a whitelisted ORDER BY clause body. The id tie-breaker
// keeps paging stable.
func (p Pageable) OrderBy() string {
	col, ok := sortColumns[p.Sort]
	if !ok {
		col = sortColumns["createdAt"]
	}
	dir := "DESC"
	if p.Ascending {
		dir = "ASC"
	}
	return col + " " + dir + ", a.id " + dir
}

// Page is one page of results together with the totals needed to page further
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage computes TotalPages from total and the page size.
func NewPage[T any](content []T, p Pageable, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return &Page[T]{
		Content:       content,
		Number:        p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// EmptyPage returns a page with no content.
func EmptyPage[T any](p Pageable) *Page[T] {
	return NewPage[T](nil, p, 0)
}

// MapPage converts the content of a page, keeping its totals.
func MapPage[T, U any](in *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, 0, len(in.Content))
	for _, v := range in.Content {
		out = append(out, fn(v))
	}
	return &Page[U]{
		Content:       out,
		Number:        in.Number,
		Size:          in.Size,
		TotalElements: in.TotalElements,
		TotalPages:    in.TotalPages,
	}
}
