package option

import (
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/quotient/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement. Repositories chain these so query shape
// stays in one place.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

// ApplyPagination adds the keyset predicate for a (created_at desc, id desc)
// ordering and fetches one row past the page size so the caller can detect
// another page. An undecodable token is ignored rather than failing the list.
func ApplyPagination(page pagination.Pagination) Option {
	return ApplyPaginationKeyed(page, "created_at", "id")
}

// ApplyPaginationKeyed is ApplyPagination over explicit timestamp and id
// columns, for tables whose ordering column is not created_at or whose
// query joins and needs qualified names. Column names come from code, never
// from request input.
func ApplyPaginationKeyed(page pagination.Pagination, tsColumn, idColumn string) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		pageSize := page.PageSize
		if pageSize <= 0 {
			pageSize = 10
		}

		if token := strings.TrimSpace(page.PageToken); token != "" {
			if cursor, err := pagination.DecodeCursor(token); err == nil && cursor != nil {
				ts, tsErr := time.Parse(time.RFC3339, cursor.CreatedAt)
				id, idErr := strconv.ParseInt(strings.TrimSpace(cursor.ID), 10, 64)
				if tsErr == nil && idErr == nil {
					predicate := tsColumn + " < ? OR (" + tsColumn + " = ? AND " + idColumn + " < ?)"
					stmt = stmt.Where(predicate, ts, ts, id)
				}
			}
		}

		return stmt.Limit(pageSize + 1)
	})
}
