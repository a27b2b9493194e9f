package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// TicketStore is the in-memory ticket repository. A store-wide RWMutex
// guards the map so readers always see fully applied mutations, and a
// per-ticket mutex serializes mutations on the same id without blocking
// mutations on other ids.
type TicketStore struct {
	validator *workflow.Validator
	history   repository.HistoryLog
	now       func() time.Time

	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
	nextSeq int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewTicketStore builds an empty store wired to the validator and history
// log.
func NewTicketStore(validator *workflow.Validator, history repository.HistoryLog) *TicketStore {
	return &TicketStore{
		validator: validator,
		history:   history,
		now:       time.Now,
		tickets:   make(map[string]*domain.Ticket),
		locks:     make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the store clock; used by tests and the seeder.
func (s *TicketStore) WithClock(now func() time.Time) *TicketStore {
	s.now = now
	return s
}

// Load inserts pre-built tickets (seed data) without history side effects
// and advances the id sequence past the highest loaded id.
func (s *TicketStore) Load(tickets []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range tickets {
		t := tickets[i].Clone()
		if _, exists := s.tickets[t.ID]; exists {
			continue
		}
		s.tickets[t.ID] = t
		s.order = append(s.order, t.ID)
		var seq int64
		if _, err := fmt.Sscanf(t.ID, "TKT-%06d", &seq); err == nil && seq > s.nextSeq {
			s.nextSeq = seq
		}
	}
}

// Create allocates the next sequential id and appends the creation history
// entry in the same critical section, so no reader can observe the ticket
// without its "Created" entry.
func (s *TicketStore) Create(ctx context.Context, createdBy string, form domain.TicketForm) (*domain.Ticket, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	ticket := &domain.Ticket{
		ID:          fmt.Sprintf("TKT-%06d", s.nextSeq),
		Title:       form.Title,
		Description: form.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    form.Priority,
		Category:    form.Category,
		CreatedBy:   createdBy,
		AssignedTo:  form.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     form.DueDate,
		Tags:        form.Tags,
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}

	s.tickets[ticket.ID] = ticket
	s.order = append(s.order, ticket.ID)

	entry := &domain.TicketHistoryEntry{
		TicketID:    ticket.ID,
		Action:      domain.HistoryActionCreated,
		FromStatus:  nil,
		ToStatus:    domain.TicketStatusOpen,
		PerformedBy: createdBy,
		PerformedAt: now,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		delete(s.tickets, ticket.ID)
		s.order = s.order[:len(s.order)-1]
		return nil, err
	}
	return ticket.Clone(), nil
}

// Get returns a copy of the ticket.
func (s *TicketStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket.Clone(), nil
}

// Update merges non-workflow fields and bumps updatedAt. Status is never
// touched here.
func (s *TicketStore) Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	unlock := s.lockTicket(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	updated := ticket.Clone()
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.AssignedTo != nil {
		updated.AssignedTo = *patch.AssignedTo
	}
	if patch.DueDate != nil {
		updated.DueDate = *patch.DueDate
	}
	if patch.Tags != nil {
		updated.Tags = append([]string(nil), (*patch.Tags)...)
	}
	updated.UpdatedAt = s.now()

	s.tickets[id] = updated
	return updated.Clone(), nil
}

// Transition fetches the ticket, delegates the business decision to the
// workflow validator, and applies the accepted mutation together with its
// history entry atomically.
func (s *TicketStore) Transition(ctx context.Context, id string, target domain.TicketStatus, actorID string, actorRole domain.UserRole, comment *string) (*domain.Ticket, error) {
	unlock := s.lockTicket(id)
	defer unlock()

	s.mu.RLock()
	ticket, ok := s.tickets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	mutation, err := s.validator.AttemptTransition(ticket, target, actorRole, comment)
	if err != nil {
		return nil, err
	}

	updated := ticket.Clone()
	updated.Status = mutation.ToStatus
	updated.UpdatedAt = mutation.UpdatedAt
	if mutation.SetResolvedAt {
		ts := mutation.UpdatedAt
		updated.ResolvedAt = &ts
	}
	if mutation.SetClosedAt {
		ts := mutation.UpdatedAt
		updated.ClosedAt = &ts
	}

	from := mutation.FromStatus
	entry := &domain.TicketHistoryEntry{
		TicketID:    id,
		Action:      domain.HistoryActionStatusChanged,
		FromStatus:  &from,
		ToStatus:    mutation.ToStatus,
		PerformedBy: actorID,
		PerformedAt: mutation.UpdatedAt,
		Comment:     mutation.Comment,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.tickets[id] = updated
	return updated.Clone(), nil
}

// List returns a consistent snapshot of all tickets in insertion order.
func (s *TicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tickets[id].Clone())
	}
	return out, nil
}

// SetSLABreached flags a ticket whose due date has passed. The flag is
// derived state maintained by the SLA worker, not by transitions, and does
// not bump updatedAt.
func (s *TicketStore) SetSLABreached(ctx context.Context, id string, breached bool) (*domain.Ticket, error) {
	unlock := s.lockTicket(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	updated := ticket.Clone()
	updated.SLABreached = breached
	s.tickets[id] = updated
	return updated.Clone(), nil
}

// lockTicket serializes mutations per ticket id. The returned func releases
// the lock.
func (s *TicketStore) lockTicket(id string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

var _ repository.TicketRepository = (*TicketStore)(nil)
