package workflow

import (
	"strings"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// Mutation describes the field changes an accepted transition produces.
// The validator computes it; the repository applies it. SetResolvedAt and
// SetClosedAt are only true when the timestamp was previously unset;
// re-entering RESOLVED or CLOSED never overwrites the original mark.
type Mutation struct {
	FromStatus    domain.TicketStatus
	ToStatus      domain.TicketStatus
	UpdatedAt     time.Time
	SetResolvedAt bool
	SetClosedAt   bool
	Comment       *string
}

// Validator checks requested transitions against the registry. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	registry *Registry
	now      func() time.Time
}

// NewValidator builds a validator over the given registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry, now: time.Now}
}

// NewValidatorWithClock is used by tests that need a fixed clock.
func NewValidatorWithClock(registry *Registry, now func() time.Time) *Validator {
	return &Validator{registry: registry, now: now}
}

// AttemptTransition validates a single requested transition and computes
// the resulting mutation. It is pure: the ticket is only read, never
// changed. Checks run in a fixed order: edge existence, then role, then
// comment.
func (v *Validator) AttemptTransition(ticket *domain.Ticket, target domain.TicketStatus, actorRole domain.UserRole, comment *string) (*Mutation, error) {
	transition, ok := v.registry.Lookup(ticket.Status, target)
	if !ok {
		return nil, apperrors.NewInvalidTransition(
			"no transition from "+string(ticket.Status)+" to "+string(target),
			map[string]any{"from": ticket.Status, "to": target},
		)
	}
	if !transition.Allows(actorRole) {
		return nil, apperrors.NewForbidden("role " + string(actorRole) + " may not perform this transition")
	}
	if transition.RequiresComment && isBlank(comment) {
		return nil, apperrors.NewCommentRequired("a comment is required for this transition")
	}

	now := v.now()
	m := &Mutation{
		FromStatus: ticket.Status,
		ToStatus:   target,
		UpdatedAt:  now,
		Comment:    normalizeComment(comment),
	}
	if target == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		m.SetResolvedAt = true
	}
	if target == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		m.SetClosedAt = true
	}
	return m, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func normalizeComment(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
