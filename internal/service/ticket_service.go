package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/events"
	"github.com/itsd-platform/helpdesk-service/internal/query"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Business rules live in the
// workflow validator and the query engine; this layer validates input,
// delegates, and publishes lifecycle events.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.HistoryLog
	engine     *query.Engine
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	HistoryLog repository.HistoryLog
	Engine     *query.Engine
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	engine := deps.Engine
	if engine == nil {
		engine = query.NewEngine()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryLog,
		engine:     engine,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket validates the form and creates an OPEN ticket.
func (s *TicketService) CreateTicket(ctx context.Context, createdBy string, form domain.TicketForm) (*domain.Ticket, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	if form.Title == "" || form.Description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if form.Priority == "" {
		form.Priority = domain.TicketPriorityMedium
	}
	if !form.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": form.Priority})
	}
	if form.Category == "" {
		form.Category = domain.TicketCategoryOther
	}
	if !form.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": form.Category})
	}

	ticket, err := s.tickets.Create(ctx, createdBy, form)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  createdBy,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// ListTickets executes a query spec against the current snapshot.
func (s *TicketService) ListTickets(ctx context.Context, spec query.Spec) (query.Page[domain.Ticket], error) {
	snapshot, err := s.tickets.List(ctx)
	if err != nil {
		return query.Page[domain.Ticket]{}, err
	}
	return s.engine.Execute(snapshot, spec), nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.Get(ctx, id)
}

// UpdateTicket merges non-workflow fields. Status changes go through
// TransitionTicket only.
func (s *TicketService) UpdateTicket(ctx context.Context, actorID, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.NewValidationError("title cannot be blank", nil)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": *patch.Category})
	}

	ticket, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload:  events.TicketUpdatedPayload{ChangedFields: patch.ChangedFields()},
	})
	return ticket, nil
}

// TransitionTicket runs the workflow for one status change. The repository
// delegates the business decision to the validator and applies the result
// atomically.
func (s *TicketService) TransitionTicket(ctx context.Context, actor *domain.User, id string, target domain.TicketStatus, comment *string) (*domain.Ticket, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": target})
	}

	before, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Transition(ctx, id, target, actor.ID, actor.Role, comment)
	if err != nil {
		return nil, err
	}

	payload := events.TicketStatusChangedPayload{
		OldStatus: before.Status,
		NewStatus: ticket.Status,
	}
	if comment != nil {
		payload.Comment = strings.TrimSpace(*comment)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  payload,
	})
	return ticket, nil
}

// GetHistory returns a ticket's audit trail, oldest first.
func (s *TicketService) GetHistory(ctx context.Context, ticketID string) ([]domain.TicketHistoryEntry, error) {
	if _, err := s.tickets.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.EntriesFor(ctx, ticketID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
