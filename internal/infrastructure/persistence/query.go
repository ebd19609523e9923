package persistence

import (
	"strings"

	"github.com/dropship/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Search vectors must match the expressions of the GIN indexes in EnsureSchema
// for PostgreSQL to use them.
const (
	supplierSearchVector = "to_tsvector('simple', name)"
	productSearchVector  = "to_tsvector('simple', name || ' ' || coalesce(description, ''))"
)

// textSearch applies a word search over the given columns. PostgreSQL uses the
// full-text index; other dialects (sqlite in tests) fall back to LIKE.
func textSearch(query *gorm.DB, term, vector string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return query
	}
	if isPostgres(query) {
		return query.Where(vector+" @@ plainto_tsquery('simple', ?)", term)
	}
	pattern := "%" + strings.ToLower(term) + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}

// paginate applies ordering from an allow-list and page limits.
func paginate(query *gorm.DB, filter shared.Filter, sortable map[string]string, fallback string) *gorm.DB {
	filter = filter.Normalize()
	column, ok := sortable[filter.OrderBy]
	if !ok {
		column = fallback
	}
	return query.
		Order(column + " " + strings.ToUpper(filter.OrderDir)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}
