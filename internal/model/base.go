package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all records.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Archivable adds soft-delete fields. Archiving is one-directional:
// nothing in the codebase clears these fields once set.
type Archivable struct {
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}

// Pagination represents 1-indexed page/limit query parameters.
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// Normalize applies defaults and clamps out-of-range values.
func (p *Pagination) Normalize(defaultLimit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset converts page/limit to a row offset.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination block returned alongside list results.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
