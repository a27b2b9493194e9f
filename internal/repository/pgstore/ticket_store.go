package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

const ticketColumns = `id, title, description, status, priority, category, created_by,
               assigned_to, created_at, updated_at, resolved_at, closed_at, due_date,
               sla_breached, tags`

// TicketStore is the Postgres-backed ticket repository. Per-id mutation
// serialization comes from row locks: every mutation runs in a transaction
// that selects the ticket FOR UPDATE, so a transition's status change and
// history entry commit as one unit.
type TicketStore struct {
	pool      *pgxpool.Pool
	validator *workflow.Validator
	now       func() time.Time
}

// NewTicketStore builds the store.
func NewTicketStore(pool *pgxpool.Pool, validator *workflow.Validator) *TicketStore {
	return &TicketStore{pool: pool, validator: validator, now: time.Now}
}

// Create allocates the next id from the ticket sequence and inserts the
// ticket with its creation history entry in one transaction.
func (s *TicketStore) Create(ctx context.Context, createdBy string, form domain.TicketForm) (*domain.Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('ticket_id_seq')`).Scan(&seq); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:          fmt.Sprintf("TKT-%06d", seq),
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

	const insert = `
        INSERT INTO tickets (id, title, description, status, priority, category, created_by,
            assigned_to, created_at, updated_at, due_date, sla_breached, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	if _, err := tx.Exec(ctx, insert,
		ticket.ID, ticket.Title, ticket.Description, ticket.Status, ticket.Priority,
		ticket.Category, ticket.CreatedBy, ticket.AssignedTo, ticket.CreatedAt,
		ticket.UpdatedAt, ticket.DueDate, ticket.SLABreached, ticket.Tags,
	); err != nil {
		return nil, err
	}

	if err := insertHistory(ctx, tx, &domain.TicketHistoryEntry{
		TicketID:    ticket.ID,
		Action:      domain.HistoryActionCreated,
		ToStatus:    domain.TicketStatusOpen,
		PerformedBy: createdBy,
		PerformedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get fetches one ticket.
func (s *TicketStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, err
}

// Update merges non-workflow fields under a row lock.
func (s *TicketStore) Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ticket, err := lockTicket(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		ticket.Title = *patch.Title
	}
	if patch.Description != nil {
		ticket.Description = *patch.Description
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Category != nil {
		ticket.Category = *patch.Category
	}
	if patch.AssignedTo != nil {
		ticket.AssignedTo = *patch.AssignedTo
	}
	if patch.DueDate != nil {
		ticket.DueDate = *patch.DueDate
	}
	if patch.Tags != nil {
		ticket.Tags = append([]string(nil), (*patch.Tags)...)
	}
	ticket.UpdatedAt = s.now()

	const update = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, category=$4,
            assigned_to=$5, due_date=$6, tags=$7, updated_at=$8
        WHERE id=$9`
	if _, err := tx.Exec(ctx, update,
		ticket.Title, ticket.Description, ticket.Priority, ticket.Category,
		ticket.AssignedTo, ticket.DueDate, ticket.Tags, ticket.UpdatedAt, id,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Transition applies a validated workflow mutation and its history entry in
// one transaction.
func (s *TicketStore) Transition(ctx context.Context, id string, target domain.TicketStatus, actorID string, actorRole domain.UserRole, comment *string) (*domain.Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ticket, err := lockTicket(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	mutation, err := s.validator.AttemptTransition(ticket, target, actorRole, comment)
	if err != nil {
		return nil, err
	}

	ticket.Status = mutation.ToStatus
	ticket.UpdatedAt = mutation.UpdatedAt
	if mutation.SetResolvedAt {
		ts := mutation.UpdatedAt
		ticket.ResolvedAt = &ts
	}
	if mutation.SetClosedAt {
		ts := mutation.UpdatedAt
		ticket.ClosedAt = &ts
	}

	const update = `
        UPDATE tickets SET status=$1, updated_at=$2, resolved_at=$3, closed_at=$4
        WHERE id=$5`
	if _, err := tx.Exec(ctx, update,
		ticket.Status, ticket.UpdatedAt, ticket.ResolvedAt, ticket.ClosedAt, id,
	); err != nil {
		return nil, err
	}

	from := mutation.FromStatus
	if err := insertHistory(ctx, tx, &domain.TicketHistoryEntry{
		TicketID:    id,
		Action:      domain.HistoryActionStatusChanged,
		FromStatus:  &from,
		ToStatus:    mutation.ToStatus,
		PerformedBy: actorID,
		PerformedAt: mutation.UpdatedAt,
		Comment:     mutation.Comment,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns the full ticket set ordered by id; the query engine handles
// filtering and sorting so both backends behave identically.
func (s *TicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// Load bulk-inserts pre-built tickets and advances the id sequence past the
// highest loaded id. Used by demo-data seeding only.
func (s *TicketStore) Load(ctx context.Context, tickets []domain.Ticket) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	var maxSeq int64
	for i := range tickets {
		t := &tickets[i]
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := tx.Exec(ctx, insert,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.Category,
			t.CreatedBy, t.AssignedTo, t.CreatedAt, t.UpdatedAt, t.ResolvedAt,
			t.ClosedAt, t.DueDate, t.SLABreached, tags,
		); err != nil {
			return err
		}
		var seq int64
		if _, err := fmt.Sscanf(t.ID, "TKT-%06d", &seq); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	if maxSeq > 0 {
		if _, err := tx.Exec(ctx, `SELECT setval('ticket_id_seq', $1)`, maxSeq); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetSLABreached updates the derived SLA flag without touching updated_at.
func (s *TicketStore) SetSLABreached(ctx context.Context, id string, breached bool) (*domain.Ticket, error) {
	cmd, err := s.pool.Exec(ctx, `UPDATE tickets SET sla_breached=$1 WHERE id=$2`, breached, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return s.Get(ctx, id)
}

func lockTicket(ctx context.Context, tx pgx.Tx, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	ticket, err := scanTicket(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.DueDate,
		&ticket.SLABreached,
		&ticket.Tags,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

var _ repository.TicketRepository = (*TicketStore)(nil)
