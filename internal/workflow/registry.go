package workflow

import (
	"fmt"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// Transition is a directed edge of the ticket lifecycle graph. An edge
// names the roles allowed to perform it and whether a comment is mandatory.
type Transition struct {
	From            domain.TicketStatus
	To              domain.TicketStatus
	AllowedRoles    []domain.UserRole
	RequiresComment bool
}

// Allows reports whether the role may perform this transition.
func (t Transition) Allows(role domain.UserRole) bool {
	for _, r := range t.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

type edgeKey struct {
	from domain.TicketStatus
	to   domain.TicketStatus
}

// Registry holds the immutable transition table. It is built once at
// startup and afterwards only read, so it needs no locking.
type Registry struct {
	edges map[edgeKey]Transition
	order []Transition
}

// NewRegistry builds a registry from the given edges. It panics on a
// duplicate (from,to) pair, an empty role set, or an unknown status; the
// table is process configuration and must not start corrupted.
func NewRegistry(transitions []Transition) *Registry {
	r := &Registry{edges: make(map[edgeKey]Transition, len(transitions))}
	for _, t := range transitions {
		if !t.From.Valid() || !t.To.Valid() {
			panic(fmt.Sprintf("workflow: unknown status in transition %s -> %s", t.From, t.To))
		}
		if len(t.AllowedRoles) == 0 {
			panic(fmt.Sprintf("workflow: transition %s -> %s has no allowed roles", t.From, t.To))
		}
		key := edgeKey{from: t.From, to: t.To}
		if _, exists := r.edges[key]; exists {
			panic(fmt.Sprintf("workflow: duplicate transition %s -> %s", t.From, t.To))
		}
		t.AllowedRoles = append([]domain.UserRole(nil), t.AllowedRoles...)
		r.edges[key] = t
		r.order = append(r.order, t)
	}
	return r
}

// DefaultRegistry returns the production transition table: 11 edges over
// the 6 statuses.
func DefaultRegistry() *Registry {
	adminOnly := []domain.UserRole{domain.RoleAdmin}
	managers := []domain.UserRole{domain.RoleAdmin, domain.RoleManager}
	reviewers := []domain.UserRole{domain.RoleAdmin, domain.RoleManager, domain.RoleReviewer}

	return NewRegistry([]Transition{
		{From: domain.TicketStatusOpen, To: domain.TicketStatusInProgress, AllowedRoles: reviewers},
		{From: domain.TicketStatusOpen, To: domain.TicketStatusRejected, AllowedRoles: managers, RequiresComment: true},

		{From: domain.TicketStatusInProgress, To: domain.TicketStatusPendingReview, AllowedRoles: reviewers},
		{From: domain.TicketStatusInProgress, To: domain.TicketStatusOpen, AllowedRoles: managers, RequiresComment: true},

		{From: domain.TicketStatusPendingReview, To: domain.TicketStatusResolved, AllowedRoles: managers},
		{From: domain.TicketStatusPendingReview, To: domain.TicketStatusInProgress, AllowedRoles: reviewers, RequiresComment: true},
		{From: domain.TicketStatusPendingReview, To: domain.TicketStatusRejected, AllowedRoles: managers, RequiresComment: true},

		{From: domain.TicketStatusResolved, To: domain.TicketStatusClosed, AllowedRoles: managers},
		{From: domain.TicketStatusResolved, To: domain.TicketStatusInProgress, AllowedRoles: managers, RequiresComment: true},

		{From: domain.TicketStatusClosed, To: domain.TicketStatusOpen, AllowedRoles: adminOnly, RequiresComment: true},

		{From: domain.TicketStatusRejected, To: domain.TicketStatusOpen, AllowedRoles: adminOnly, RequiresComment: true},
	})
}

// Lookup returns the transition for (from, to), if one exists.
func (r *Registry) Lookup(from, to domain.TicketStatus) (Transition, bool) {
	t, ok := r.edges[edgeKey{from: from, to: to}]
	return t, ok
}

// AllowedTargets returns the statuses reachable from the given status, in
// table order.
func (r *Registry) AllowedTargets(from domain.TicketStatus) []domain.TicketStatus {
	var targets []domain.TicketStatus
	for _, t := range r.order {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	return targets
}

// Len returns the number of edges in the table.
func (r *Registry) Len() int {
	return len(r.edges)
}

// Transitions returns a copy of the full table in declaration order.
func (r *Registry) Transitions() []Transition {
	return append([]Transition(nil), r.order...)
}
