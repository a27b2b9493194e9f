package query

import (
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// Pagination limits, matching the reference client configuration.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// SortDirection orders a sorted page ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField is the closed set of fields a page may be sorted by. Sorting is
// never driven by raw field-name strings; unknown names fail to parse.
type SortField string

const (
	SortByID         SortField = "id"
	SortByTitle      SortField = "title"
	SortByStatus     SortField = "status"
	SortByPriority   SortField = "priority"
	SortByCategory   SortField = "category"
	SortByCreatedBy  SortField = "createdBy"
	SortByAssignedTo SortField = "assignedTo"
	SortByCreatedAt  SortField = "createdAt"
	SortByUpdatedAt  SortField = "updatedAt"
	SortByResolvedAt SortField = "resolvedAt"
	SortByClosedAt   SortField = "closedAt"
	SortByDueDate    SortField = "dueDate"
)

// ParseSortField maps a requested field name onto the closed enum.
func ParseSortField(name string) (SortField, bool) {
	switch SortField(name) {
	case SortByID, SortByTitle, SortByStatus, SortByPriority, SortByCategory,
		SortByCreatedBy, SortByAssignedTo, SortByCreatedAt, SortByUpdatedAt,
		SortByResolvedAt, SortByClosedAt, SortByDueDate:
		return SortField(name), true
	}
	return "", false
}

// Pagination selects a page window. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// Sort selects the sort key and direction.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// Filters are conjunctive: every present field must match. Absent fields
// impose no constraint.
type Filters struct {
	Status     []domain.TicketStatus
	Priority   []domain.TicketPriority
	Category   []domain.TicketCategory
	Search     string
	AssignedTo string
	CreatedBy  string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Spec is the full query specification for one listing request. It is
// ephemeral caller state and is never persisted.
type Spec struct {
	Pagination Pagination
	Sort       *Sort
	Filters    Filters
}

// Page is one page of results with pagination metadata.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Normalize clamps pagination to valid bounds: page >= 1, pageSize within
// [1, MaxPageSize], defaulting to DefaultPageSize when unset.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
