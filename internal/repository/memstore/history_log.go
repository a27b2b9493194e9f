package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
)

// HistoryLog keeps the append-only audit ledger in memory. Entries are
// immutable once appended; there is no update or delete.
type HistoryLog struct {
	mu      sync.RWMutex
	entries map[string][]domain.TicketHistoryEntry
}

// NewHistoryLog builds an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{entries: make(map[string][]domain.TicketHistoryEntry)}
}

// Append stores the entry, assigning an id when the caller left it empty.
func (l *HistoryLog) Append(ctx context.Context, entry *domain.TicketHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.TicketID] = append(l.entries[entry.TicketID], *entry.Clone())
	return nil
}

// EntriesFor returns the ticket's entries ascending by performedAt. Equal
// timestamps keep append order.
func (l *HistoryLog) EntriesFor(ctx context.Context, ticketID string) ([]domain.TicketHistoryEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored := l.entries[ticketID]
	out := make([]domain.TicketHistoryEntry, 0, len(stored))
	for i := range stored {
		out = append(out, *stored[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PerformedAt.Before(out[j].PerformedAt)
	})
	return out, nil
}

var _ repository.HistoryLog = (*HistoryLog)(nil)
