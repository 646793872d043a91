package services

import "gorm.io/gorm"

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// Keeps (page-1)*limit far from int overflow.
	maxPage = 1_000_000
)

type Page struct {
	Page  int
	Limit int
}

func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = NewPage(p.Page, p.Limit)
	return db.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}
