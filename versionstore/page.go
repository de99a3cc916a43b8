package versionstore

import (
	"errors"
)

// ErrUnknownSortDirection is returned when a sort direction token cannot be normalized.
var ErrUnknownSortDirection = errors.New("unknown sort direction token")

// SortDirection is the normalized, signed ordering value of a sort key.
type SortDirection int

const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

// ParseSortDirection normalizes an ascending/descending token to its signed
// ordering value. Recognized tokens: "asc", "ascending", "1", "desc",
// "descending", "-1".
func ParseSortDirection(token string) (SortDirection, error) {
	switch token {
	case "asc", "ascending", "1":
		return SortAscending, nil
	case "desc", "descending", "-1":
		return SortDescending, nil
	default:
		return 0, ErrUnknownSortDirection
	}
}

// SortField orders a result set by one field.
type SortField struct {
	Field     FieldNameString
	Direction SortDirection
}

// Sort is an ordered list of sort keys, applied in declaration order.
type Sort []SortField

// Rewrite returns a new Sort with every field name passed through
// rewriteKey; the receiver is never modified.
func (s Sort) Rewrite(rewriteKey func(FieldNameString) FieldNameString) Sort {
	if s == nil {
		return nil
	}

	rewritten := make(Sort, len(s))

	for i, sortField := range s {
		rewritten[i] = SortField{Field: rewriteKey(sortField.Field), Direction: sortField.Direction}
	}

	return rewritten
}

// Page describes the requested result window. Number is 1-based.
type Page struct {
	Limit  uint
	Number uint
	Sort   Sort
}

// Result is the uniform paginated shape returned by every resolution,
// paginated or not. It is passed through to callers unchanged except for
// Docs, which always holds normalized entities.
type Result struct {
	Docs          Entities `json:"docs"`
	TotalDocs     int64    `json:"totalDocs"`
	Limit         uint     `json:"limit"`
	Page          uint     `json:"page"`
	TotalPages    uint     `json:"totalPages"`
	PagingCounter uint     `json:"pagingCounter"`
	HasPrevPage   bool     `json:"hasPrevPage"`
	HasNextPage   bool     `json:"hasNextPage"`
	PrevPage      *uint    `json:"prevPage"`
	NextPage      *uint    `json:"nextPage"`
}

// BuildResult computes the pagination envelope for one page of resolved
// entities. A limit of zero means the resolution was not paginated: all
// docs are on a single page.
func BuildResult(docs Entities, totalDocs int64, limit uint, page uint) Result {
	result := Result{
		Docs:          docs,
		TotalDocs:     totalDocs,
		Limit:         limit,
		Page:          page,
		TotalPages:    1,
		PagingCounter: 1,
	}

	if limit == 0 {
		return result
	}

	totalPages := uint((totalDocs + int64(limit) - 1) / int64(limit))
	if totalPages == 0 {
		totalPages = 1
	}

	result.TotalPages = totalPages
	result.PagingCounter = (page-1)*limit + 1

	if page > 1 {
		prev := page - 1
		result.HasPrevPage = true
		result.PrevPage = &prev
	}

	if int64(page)*int64(limit) < totalDocs {
		next := page + 1
		result.HasNextPage = true
		result.NextPage = &next
	}

	return result
}
