package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "OPEN"
	TicketStatusInProgress    TicketStatus = "IN_PROGRESS"
	TicketStatusPendingReview TicketStatus = "PENDING_REVIEW"
	TicketStatusResolved      TicketStatus = "RESOLVED"
	TicketStatusClosed        TicketStatus = "CLOSED"
	TicketStatusRejected      TicketStatus = "REJECTED"
)

// TicketStatuses lists every status in declaration order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPendingReview,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusRejected,
}

// Valid reports whether the status is one of the six enumerated values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusPendingReview,
		TicketStatusResolved, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketPriorities lists every priority in declaration order.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketCategory enumerates the kind of issue a ticket reports.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategoryAccess   TicketCategory = "ACCESS"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// TicketCategories lists every category in declaration order.
var TicketCategories = []TicketCategory{
	TicketCategoryHardware,
	TicketCategorySoftware,
	TicketCategoryNetwork,
	TicketCategoryAccess,
	TicketCategoryOther,
}

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryHardware, TicketCategorySoftware, TicketCategoryNetwork,
		TicketCategoryAccess, TicketCategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for service-desk requests.
//
// ResolvedAt and ClosedAt are write-once: they are set by the first
// transition into RESOLVED/CLOSED and are never cleared afterwards, even
// when an admin reopens the ticket. They serve as a "has ever been
// resolved/closed" audit mark.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    TicketCategory
	CreatedBy   string
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
	DueDate     *time.Time
	SLABreached bool
	Tags        []string
}

// Clone returns a deep copy so repository snapshots cannot be mutated by
// callers.
func (t *Ticket) Clone() *Ticket {
	cp := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		cp.AssignedTo = &v
	}
	cp.ResolvedAt = cloneTime(t.ResolvedAt)
	cp.ClosedAt = cloneTime(t.ClosedAt)
	cp.DueDate = cloneTime(t.DueDate)
	if t.Tags != nil {
		cp.Tags = append([]string(nil), t.Tags...)
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TicketForm carries the writable non-workflow fields for ticket creation.
type TicketForm struct {
	Title       string
	Description string
	Priority    TicketPriority
	Category    TicketCategory
	AssignedTo  *string
	DueDate     *time.Time
	Tags        []string
}

// TicketPatch describes a partial update of non-workflow fields. Nil
// pointers mean "leave unchanged"; AssignedTo and DueDate distinguish
// "unchanged" (outer nil) from "clear" (inner nil).
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *TicketPriority
	Category    *TicketCategory
	AssignedTo  **string
	DueDate     **time.Time
	Tags        *[]string
}

// ChangedFields names the fields the patch touches.
func (p TicketPatch) ChangedFields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.AssignedTo != nil {
		fields = append(fields, "assignedTo")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	return fields
}
