package pgstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
)

// HistoryLog reads the append-only audit ledger. Writes go through the
// ticket store's transactions; Append exists for the repository contract
// and for seeding.
type HistoryLog struct {
	pool *pgxpool.Pool
}

// NewHistoryLog builds the log.
func NewHistoryLog(pool *pgxpool.Pool) *HistoryLog {
	return &HistoryLog{pool: pool}
}

// Append inserts one entry.
func (l *HistoryLog) Append(ctx context.Context, entry *domain.TicketHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO ticket_history (id, ticket_id, action, from_status, to_status, performed_by, performed_at, comment)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := l.pool.Exec(ctx, query,
		entry.ID, entry.TicketID, entry.Action, entry.FromStatus, entry.ToStatus,
		entry.PerformedBy, entry.PerformedAt, entry.Comment,
	)
	return err
}

// EntriesFor returns entries ascending by performed_at.
func (l *HistoryLog) EntriesFor(ctx context.Context, ticketID string) ([]domain.TicketHistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, action, from_status, to_status, performed_by, performed_at, comment
        FROM ticket_history WHERE ticket_id=$1 ORDER BY performed_at ASC, id ASC`
	rows, err := l.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]domain.TicketHistoryEntry, error) {
	var result []domain.TicketHistoryEntry
	for rows.Next() {
		var entry domain.TicketHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.PerformedBy,
			&entry.PerformedAt,
			&entry.Comment,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.TicketHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO ticket_history (id, ticket_id, action, from_status, to_status, performed_by, performed_at, comment)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := tx.Exec(ctx, query,
		entry.ID, entry.TicketID, entry.Action, entry.FromStatus, entry.ToStatus,
		entry.PerformedBy, entry.PerformedAt, entry.Comment,
	)
	return err
}

var _ repository.HistoryLog = (*HistoryLog)(nil)
