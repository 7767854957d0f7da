package repository

import (
	"context"

	"gorm.io/gorm"
)

const (
	// DefaultPerPage is used when the client does not ask for a page size.
	DefaultPerPage = 10
	// MaxPerPage caps the page size a client may request.
	MaxPerPage = 100
)

// Page selects a window of a list.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes client-supplied paging values.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPerPage
	}
	if size > MaxPerPage {
		size = MaxPerPage
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginated is one page of records plus the totals needed to render navigation.
type Paginated[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// Pages is the total number of pages, zero for an empty list.
func (p *Paginated[T]) Pages() int {
	if p.Total == 0 || p.Page.Size == 0 {
		return 0
	}
	return int((p.Total + int64(p.Page.Size) - 1) / int64(p.Page.Size))
}

// HasNext reports whether a later page exists.
func (p *Paginated[T]) HasNext() bool {
	return p.Page.Number < p.Pages()
}

// HasPrev reports whether an earlier page exists.
func (p *Paginated[T]) HasPrev() bool {
	return p.Page.Number > 1
}

// paginate counts the rows matched by query and loads the requested window ordered by id.
// Each branch runs on its own session so the count does not leak into the select. Scopes
// such as preloads apply to the select only.
func paginate[T any](ctx context.Context, query *gorm.DB, page Page, scopes ...func(*gorm.DB) *gorm.DB) (*Paginated[T], error) {
	var total int64
	var zero T
	if err := query.Session(&gorm.Session{Context: ctx}).Model(&zero).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, page.Size)
	err := query.Session(&gorm.Session{Context: ctx}).
		Scopes(scopes...).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &Paginated[T]{Items: items, Total: total, Page: page}, nil
}
