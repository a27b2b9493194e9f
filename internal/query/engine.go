package query

import (
	"sort"
	"strings"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// Engine filters, sorts and paginates a ticket snapshot. The pipeline order
// is fixed: filter, then stable sort, then paginate. Both backends route
// every listing through this one implementation so the business contract is
// honored identically everywhere.
type Engine struct{}

// NewEngine returns a query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Execute runs the spec against the snapshot and returns one page. A page
// past the end of the collection yields an empty slice with correct
// total/totalPages metadata; it is not an error.
func (e *Engine) Execute(snapshot []domain.Ticket, spec Spec) Page[domain.Ticket] {
	filtered := e.filter(snapshot, spec.Filters)
	if spec.Sort != nil {
		e.sortTickets(filtered, *spec.Sort)
	}
	return paginate(filtered, spec.Pagination.Normalize())
}

func (e *Engine) filter(tickets []domain.Ticket, f Filters) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, t := range tickets {
		if len(f.Status) > 0 && !containsStatus(f.Status, t.Status) {
			continue
		}
		if len(f.Priority) > 0 && !containsPriority(f.Priority, t.Priority) {
			continue
		}
		if len(f.Category) > 0 && !containsCategory(f.Category, t.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.ID), search) {
			continue
		}
		if f.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != f.AssignedTo) {
			continue
		}
		if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
			continue
		}
		if f.DateFrom != nil && t.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && t.CreatedAt.After(*f.DateTo) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// sortTickets stable-sorts in place. Comparison is lexicographic on the
// field's string representation. Tickets whose sort field is null always
// sort after every non-null value, in both directions; the direction only
// flips the comparison of two non-null values.
func (e *Engine) sortTickets(tickets []domain.Ticket, s Sort) {
	desc := s.Direction == SortDesc
	sort.SliceStable(tickets, func(i, j int) bool {
		a, aNull := sortKey(&tickets[i], s.Field)
		b, bNull := sortKey(&tickets[j], s.Field)
		if aNull != bNull {
			return bNull
		}
		if aNull {
			return false
		}
		cmp := strings.Compare(a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// sortKey extracts the string representation of the sort field, reporting
// null for unset optional fields. Times render as fixed-width UTC RFC3339
// so lexicographic order matches chronological order.
func sortKey(t *domain.Ticket, field SortField) (string, bool) {
	switch field {
	case SortByID:
		return t.ID, false
	case SortByTitle:
		return t.Title, false
	case SortByStatus:
		return string(t.Status), false
	case SortByPriority:
		return string(t.Priority), false
	case SortByCategory:
		return string(t.Category), false
	case SortByCreatedBy:
		return t.CreatedBy, false
	case SortByAssignedTo:
		if t.AssignedTo == nil {
			return "", true
		}
		return *t.AssignedTo, false
	case SortByCreatedAt:
		return timeKey(t.CreatedAt), false
	case SortByUpdatedAt:
		return timeKey(t.UpdatedAt), false
	case SortByResolvedAt:
		if t.ResolvedAt == nil {
			return "", true
		}
		return timeKey(*t.ResolvedAt), false
	case SortByClosedAt:
		if t.ClosedAt == nil {
			return "", true
		}
		return timeKey(*t.ClosedAt), false
	case SortByDueDate:
		if t.DueDate == nil {
			return "", true
		}
		return timeKey(*t.DueDate), false
	default:
		return t.ID, false
	}
}

func timeKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func paginate(tickets []domain.Ticket, p Pagination) Page[domain.Ticket] {
	total := len(tickets)
	totalPages := (total + p.PageSize - 1) / p.PageSize

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]domain.Ticket, end-start)
	copy(data, tickets[start:end])

	return Page[domain.Ticket]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}

func containsStatus(set []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPriority(set []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, p := range set {
		if p == v {
			return true
		}
	}
	return false
}

func containsCategory(set []domain.TicketCategory, v domain.TicketCategory) bool {
	for _, c := range set {
		if c == v {
			return true
		}
	}
	return false
}

// PaginateUsers applies the same page-window rules to a user collection.
func PaginateUsers(users []domain.User, p Pagination) Page[domain.User] {
	p = p.Normalize()
	total := len(users)
	totalPages := (total + p.PageSize - 1) / p.PageSize

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]domain.User, end-start)
	copy(data, users[start:end])

	return Page[domain.User]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}
