package dto

import (
	"encoding/json"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	AssignedTo  *string               `json:"assignedTo,omitempty"`
	DueDate     *time.Time            `json:"dueDate,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
}

// Optional distinguishes an absent JSON field from an explicit null.
// Set reports whether the field appeared in the payload at all.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateTicketRequest is a partial form: absent fields stay unchanged,
// while explicit nulls clear the nullable fields.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Category    *domain.TicketCategory `json:"category"`
	AssignedTo  Optional[string]       `json:"assignedTo"`
	DueDate     Optional[time.Time]    `json:"dueDate"`
	Tags        *[]string              `json:"tags"`
}

// TransitionTicketRequest payload.
type TransitionTicketRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment *string             `json:"comment,omitempty"`
}

// TicketResponse mirrors the ticket wire shape.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	CreatedBy   string                `json:"createdBy"`
	AssignedTo  *string               `json:"assignedTo"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	ResolvedAt  *time.Time            `json:"resolvedAt"`
	ClosedAt    *time.Time            `json:"closedAt"`
	DueDate     *time.Time            `json:"dueDate"`
	SLABreached bool                  `json:"slaBreached"`
	Tags        []string              `json:"tags"`
}

// TicketHistoryResponse mirrors one audit entry.
type TicketHistoryResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticketId"`
	Action      string               `json:"action"`
	FromStatus  *domain.TicketStatus `json:"fromStatus"`
	ToStatus    domain.TicketStatus  `json:"toStatus"`
	PerformedBy string               `json:"performedBy"`
	PerformedAt time.Time            `json:"performedAt"`
	Comment     *string              `json:"comment"`
}

// PageResponse is the generic pagination envelope.
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ResolvedAt:  t.ResolvedAt,
		ClosedAt:    t.ClosedAt,
		DueDate:     t.DueDate,
		SLABreached: t.SLABreached,
		Tags:        t.Tags,
	}
}

// FromHistoryEntry maps a domain history entry onto the wire shape.
func FromHistoryEntry(e *domain.TicketHistoryEntry) TicketHistoryResponse {
	return TicketHistoryResponse{
		ID:          e.ID,
		TicketID:    e.TicketID,
		Action:      e.Action,
		FromStatus:  e.FromStatus,
		ToStatus:    e.ToStatus,
		PerformedBy: e.PerformedBy,
		PerformedAt: e.PerformedAt,
		Comment:     e.Comment,
	}
}
