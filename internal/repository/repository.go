package repository

import (
	"context"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// TicketRepository owns the canonical ticket set. Mutations to the same
// ticket id are serialized; a transition's status change, timestamps and
// history entry become visible to readers as one unit.
type TicketRepository interface {
	Create(ctx context.Context, createdBy string, form domain.TicketForm) (*domain.Ticket, error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error)
	Transition(ctx context.Context, id string, target domain.TicketStatus, actorID string, actorRole domain.UserRole, comment *string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	SetSLABreached(ctx context.Context, id string, breached bool) (*domain.Ticket, error)
}

// HistoryLog is the append-only ledger of lifecycle events. It is written
// only by ticket repository mutations, never directly by clients.
type HistoryLog interface {
	Append(ctx context.Context, entry *domain.TicketHistoryEntry) error
	EntriesFor(ctx context.Context, ticketID string) ([]domain.TicketHistoryEntry, error)
}

// UserRepository provides access to service-desk users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
