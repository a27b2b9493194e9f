package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// DemoPassword is the shared credential for every seeded account.
const DemoPassword = "password123"

// slaHours maps priority to the SLA window used to derive due dates.
var slaHours = map[domain.TicketPriority]int{
	domain.TicketPriorityCritical: 4,
	domain.TicketPriorityHigh:     8,
	domain.TicketPriorityMedium:   24,
	domain.TicketPriorityLow:      72,
}

var departments = []string{"IT", "HR", "Finance", "Operations", "Engineering", "Marketing"}

var ticketTitles = []string{
	"Cannot access email", "VPN connection issues", "Printer not working",
	"Software installation request", "Password reset needed", "Network slow",
	"Laptop screen flickering", "New equipment request", "Access permission denied",
	"System crash", "File recovery needed", "Application error",
	"Security alert", "Database connection timeout", "Server unresponsive",
}

// Data is a generated demo dataset.
type Data struct {
	Users   []domain.User
	Tickets []domain.Ticket
}

// Generate produces a deterministic demo dataset for the given seed
// configuration. The four named role accounts come first, then generated
// users cycling through roles and departments, then tickets.
//
// Every account shares one bcrypt hash: hashing the common demo password
// once keeps startup fast even with the production cost factor.
func Generate(cfg config.SeedConfig, bcryptCost int) (*Data, error) {
	hash, err := auth.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.RandSeed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	users := namedUsers(hash, base)
	for i := len(users); i < cfg.UserCount; i++ {
		n := i + 1
		users = append(users, domain.User{
			ID:           fmt.Sprintf("user-%d", n),
			Email:        fmt.Sprintf("user%d@enterprise.com", n),
			FirstName:    "User",
			LastName:     fmt.Sprintf("%d", n),
			Role:         domain.UserRoles[i%len(domain.UserRoles)],
			Department:   departments[i%len(departments)],
			PasswordHash: hash,
			IsActive:     rng.Float64() > 0.1,
			CreatedAt:    base,
			UpdatedAt:    base,
		})
	}

	now := time.Now().UTC()
	tickets := make([]domain.Ticket, 0, cfg.TicketCount)
	for i := 0; i < cfg.TicketCount; i++ {
		status := domain.TicketStatuses[rng.Intn(len(domain.TicketStatuses))]
		priority := domain.TicketPriorities[rng.Intn(len(domain.TicketPriorities))]
		category := domain.TicketCategories[i%len(domain.TicketCategories)]

		createdAt := now.Add(-time.Duration(rng.Float64() * 90 * 24 * float64(time.Hour)))
		updatedAt := createdAt.Add(time.Duration(rng.Float64() * 7 * 24 * float64(time.Hour)))
		dueDate := createdAt.Add(time.Duration(slaHours[priority]) * time.Hour)

		ticket := domain.Ticket{
			ID:          fmt.Sprintf("TKT-%06d", i+1),
			Title:       fmt.Sprintf("%s - Case %d", ticketTitles[i%len(ticketTitles)], i+1),
			Description: fmt.Sprintf("Detailed description for ticket %d. This is a %s priority %s issue that needs attention.", i+1, priority, category),
			Status:      status,
			Priority:    priority,
			Category:    category,
			CreatedBy:   users[rng.Intn(len(users))].ID,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
			DueDate:     &dueDate,
			SLABreached: rng.Float64() > 0.85,
			Tags:        []string{"support", string(category)},
		}
		if rng.Float64() > 0.3 {
			assignee := users[rng.Intn(minInt(10, len(users)))].ID
			ticket.AssignedTo = &assignee
		}
		if status == domain.TicketStatusResolved || status == domain.TicketStatusClosed {
			resolvedAt := updatedAt
			ticket.ResolvedAt = &resolvedAt
		}
		if status == domain.TicketStatusClosed {
			closedAt := updatedAt
			ticket.ClosedAt = &closedAt
		}
		tickets = append(tickets, ticket)
	}

	return &Data{Users: users, Tickets: tickets}, nil
}

func namedUsers(hash string, createdAt time.Time) []domain.User {
	mk := func(id, email, first, last string, role domain.UserRole) domain.User {
		return domain.User{
			ID:           id,
			Email:        email,
			FirstName:    first,
			LastName:     last,
			Role:         role,
			Department:   "IT",
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
	}
	return []domain.User{
		mk("user-1", "admin@enterprise.com", "Admin", "User", domain.RoleAdmin),
		mk("user-2", "manager@enterprise.com", "Sarah", "Manager", domain.RoleManager),
		mk("user-3", "reviewer@enterprise.com", "John", "Reviewer", domain.RoleReviewer),
		mk("user-4", "viewer@enterprise.com", "Jane", "Viewer", domain.RoleViewer),
	}
}

// HistoryForTicket builds the creation entry matching a seeded ticket, so
// seeded data satisfies the "every ticket has a Created entry" property.
func HistoryForTicket(t *domain.Ticket) domain.TicketHistoryEntry {
	return domain.TicketHistoryEntry{
		ID:          uuid.NewString(),
		TicketID:    t.ID,
		Action:      domain.HistoryActionCreated,
		ToStatus:    domain.TicketStatusOpen,
		PerformedBy: t.CreatedBy,
		PerformedAt: t.CreatedAt,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
