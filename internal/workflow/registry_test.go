package workflow

import (
	"testing"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

func TestDefaultRegistryShape(t *testing.T) {
	r := DefaultRegistry()
	if r.Len() != 11 {
		t.Fatalf("expected 11 edges, got %d", r.Len())
	}
	for _, tr := range r.Transitions() {
		if len(tr.AllowedRoles) == 0 {
			t.Fatalf("edge %s -> %s has no allowed roles", tr.From, tr.To)
		}
	}
}

func TestDefaultRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		name            string
		from, to        domain.TicketStatus
		exists          bool
		requiresComment bool
		allowsReviewer  bool
	}{
		{"open to in progress", domain.TicketStatusOpen, domain.TicketStatusInProgress, true, false, true},
		{"open to rejected", domain.TicketStatusOpen, domain.TicketStatusRejected, true, true, false},
		{"pending review to resolved", domain.TicketStatusPendingReview, domain.TicketStatusResolved, true, false, false},
		{"pending review rework", domain.TicketStatusPendingReview, domain.TicketStatusInProgress, true, true, true},
		{"closed reopen", domain.TicketStatusClosed, domain.TicketStatusOpen, true, true, false},
		{"rejected reopen", domain.TicketStatusRejected, domain.TicketStatusOpen, true, true, false},
		{"no open to resolved", domain.TicketStatusOpen, domain.TicketStatusResolved, false, false, false},
		{"no closed to resolved", domain.TicketStatusClosed, domain.TicketStatusResolved, false, false, false},
		{"no self edge", domain.TicketStatusOpen, domain.TicketStatusOpen, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr, ok := r.Lookup(tc.from, tc.to)
			if ok != tc.exists {
				t.Fatalf("Lookup(%s, %s) exists=%v, want %v", tc.from, tc.to, ok, tc.exists)
			}
			if !ok {
				return
			}
			if tr.RequiresComment != tc.requiresComment {
				t.Fatalf("RequiresComment=%v, want %v", tr.RequiresComment, tc.requiresComment)
			}
			if got := tr.Allows(domain.RoleReviewer); got != tc.allowsReviewer {
				t.Fatalf("Allows(REVIEWER)=%v, want %v", got, tc.allowsReviewer)
			}
		})
	}
}

func TestDefaultRegistryAdminNotUniversal(t *testing.T) {
	// The admin role is not a bypass: where no edge exists, nobody may move.
	r := DefaultRegistry()
	if _, ok := r.Lookup(domain.TicketStatusResolved, domain.TicketStatusOpen); ok {
		t.Fatal("RESOLVED -> OPEN must not exist for any role")
	}
}

func TestAllowedTargets(t *testing.T) {
	r := DefaultRegistry()
	targets := r.AllowedTargets(domain.TicketStatusPendingReview)
	want := []domain.TicketStatus{
		domain.TicketStatusResolved,
		domain.TicketStatusInProgress,
		domain.TicketStatusRejected,
	}
	if len(targets) != len(want) {
		t.Fatalf("expected %d targets, got %v", len(want), targets)
	}
	for i, status := range want {
		if targets[i] != status {
			t.Fatalf("target[%d]=%s, want %s", i, targets[i], status)
		}
	}
}

func TestNewRegistryPanics(t *testing.T) {
	edge := Transition{
		From:         domain.TicketStatusOpen,
		To:           domain.TicketStatusInProgress,
		AllowedRoles: []domain.UserRole{domain.RoleAdmin},
	}
	tests := []struct {
		name  string
		edges []Transition
	}{
		{"duplicate edge", []Transition{edge, edge}},
		{"empty roles", []Transition{{From: domain.TicketStatusOpen, To: domain.TicketStatusInProgress}}},
		{"unknown status", []Transition{{From: "BOGUS", To: domain.TicketStatusOpen, AllowedRoles: edge.AllowedRoles}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			NewRegistry(tc.edges)
		})
	}
}
