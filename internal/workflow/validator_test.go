package workflow

import (
	"testing"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestValidator() *Validator {
	return NewValidatorWithClock(DefaultRegistry(), fixedClock)
}

func strPtr(s string) *string { return &s }

func TestAttemptTransitionErrors(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name     string
		from     domain.TicketStatus
		target   domain.TicketStatus
		role     domain.UserRole
		comment  *string
		wantCode string
	}{
		{"unknown edge", domain.TicketStatusOpen, domain.TicketStatusResolved, domain.RoleAdmin, nil, "INVALID_TRANSITION"},
		{"unknown edge beats role check", domain.TicketStatusOpen, domain.TicketStatusClosed, domain.RoleViewer, nil, "INVALID_TRANSITION"},
		{"viewer forbidden", domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.RoleViewer, nil, "FORBIDDEN"},
		{"reviewer cannot resolve", domain.TicketStatusPendingReview, domain.TicketStatusResolved, domain.RoleReviewer, nil, "FORBIDDEN"},
		{"role check beats comment check", domain.TicketStatusOpen, domain.TicketStatusRejected, domain.RoleViewer, nil, "FORBIDDEN"},
		{"missing comment", domain.TicketStatusOpen, domain.TicketStatusRejected, domain.RoleAdmin, nil, "COMMENT_REQUIRED"},
		{"blank comment", domain.TicketStatusOpen, domain.TicketStatusRejected, domain.RoleAdmin, strPtr("   "), "COMMENT_REQUIRED"},
		{"manager cannot reopen closed", domain.TicketStatusClosed, domain.TicketStatusOpen, domain.RoleManager, strPtr("please"), "FORBIDDEN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ticket := &domain.Ticket{ID: "TKT-000001", Status: tc.from}
			_, err := v.AttemptTransition(ticket, tc.target, tc.role, tc.comment)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsCode(err, tc.wantCode) {
				t.Fatalf("expected code %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestAttemptTransitionAccepted(t *testing.T) {
	v := newTestValidator()
	ticket := &domain.Ticket{ID: "TKT-000001", Status: domain.TicketStatusOpen}

	m, err := v.AttemptTransition(ticket, domain.TicketStatusInProgress, domain.RoleReviewer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.FromStatus != domain.TicketStatusOpen || m.ToStatus != domain.TicketStatusInProgress {
		t.Fatalf("unexpected mutation statuses: %+v", m)
	}
	if !m.UpdatedAt.Equal(fixedClock()) {
		t.Fatalf("UpdatedAt=%v, want fixed clock", m.UpdatedAt)
	}
	if m.SetResolvedAt || m.SetClosedAt {
		t.Fatal("resolution timestamps must not be set")
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatal("validator must not mutate the ticket")
	}
}

func TestAttemptTransitionCommentNormalized(t *testing.T) {
	v := newTestValidator()
	ticket := &domain.Ticket{ID: "TKT-000001", Status: domain.TicketStatusOpen}

	m, err := v.AttemptTransition(ticket, domain.TicketStatusRejected, domain.RoleManager, strPtr("  duplicate of TKT-000009  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Comment == nil || *m.Comment != "duplicate of TKT-000009" {
		t.Fatalf("comment not trimmed: %v", m.Comment)
	}
}

func TestResolvedAtSetOnce(t *testing.T) {
	v := newTestValidator()

	fresh := &domain.Ticket{ID: "TKT-000001", Status: domain.TicketStatusPendingReview}
	m, err := v.AttemptTransition(fresh, domain.TicketStatusResolved, domain.RoleManager, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.SetResolvedAt {
		t.Fatal("first resolution must set resolvedAt")
	}

	earlier := fixedClock().Add(-48 * time.Hour)
	again := &domain.Ticket{
		ID:         "TKT-000002",
		Status:     domain.TicketStatusPendingReview,
		ResolvedAt: &earlier,
	}
	m, err = v.AttemptTransition(again, domain.TicketStatusResolved, domain.RoleManager, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.SetResolvedAt {
		t.Fatal("re-resolution must keep the original resolvedAt")
	}
}

func TestClosedAtSetOnce(t *testing.T) {
	v := newTestValidator()

	earlier := fixedClock().Add(-24 * time.Hour)
	reclosed := &domain.Ticket{
		ID:       "TKT-000001",
		Status:   domain.TicketStatusResolved,
		ClosedAt: &earlier,
	}
	m, err := v.AttemptTransition(reclosed, domain.TicketStatusClosed, domain.RoleManager, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.SetClosedAt {
		t.Fatal("re-closing must keep the original closedAt")
	}
}

func TestAdminReopenPreservesTimestamps(t *testing.T) {
	v := newTestValidator()
	resolved := fixedClock().Add(-72 * time.Hour)
	closed := fixedClock().Add(-48 * time.Hour)
	ticket := &domain.Ticket{
		ID:         "TKT-000001",
		Status:     domain.TicketStatusClosed,
		ResolvedAt: &resolved,
		ClosedAt:   &closed,
	}

	m, err := v.AttemptTransition(ticket, domain.TicketStatusOpen, domain.RoleAdmin, strPtr("issue came back"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.SetResolvedAt || m.SetClosedAt {
		t.Fatal("reopening must not touch resolution timestamps")
	}
	if m.ToStatus != domain.TicketStatusOpen {
		t.Fatalf("ToStatus=%s, want OPEN", m.ToStatus)
	}
}
