package domain

import "time"

// History action labels.
const (
	HistoryActionCreated       = "Created"
	HistoryActionStatusChanged = "Status Changed"
)

// TicketHistoryEntry is an immutable audit record of a ticket's creation or
// a status transition. FromStatus is nil only on the creation entry.
type TicketHistoryEntry struct {
	ID          string
	TicketID    string
	Action      string
	FromStatus  *TicketStatus
	ToStatus    TicketStatus
	PerformedBy string
	PerformedAt time.Time
	Comment     *string
}

// Clone returns a copy; entries handed out by the log stay immutable.
func (e *TicketHistoryEntry) Clone() *TicketHistoryEntry {
	cp := *e
	if e.FromStatus != nil {
		v := *e.FromStatus
		cp.FromStatus = &v
	}
	if e.Comment != nil {
		v := *e.Comment
		cp.Comment = &v
	}
	return &cp
}
