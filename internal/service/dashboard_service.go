package service

import (
	"context"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
)

// KPIChangeType labels the trend of a KPI against the previous period.
type KPIChangeType string

const (
	KPIChangeIncrease KPIChangeType = "increase"
	KPIChangeDecrease KPIChangeType = "decrease"
	KPIChangeNeutral  KPIChangeType = "neutral"
)

// KPIData is a single dashboard metric.
type KPIData struct {
	Label      string        `json:"label"`
	Value      int           `json:"value"`
	Change     int           `json:"change"`
	ChangeType KPIChangeType `json:"changeType"`
}

// ChartDataPoint is one bucket of a dashboard chart.
type ChartDataPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DashboardCharts bundles the chart payloads.
type DashboardCharts struct {
	TicketsByStatus   []ChartDataPoint `json:"ticketsByStatus"`
	TicketsByPriority []ChartDataPoint `json:"ticketsByPriority"`
	TicketsTrend      []ChartDataPoint `json:"ticketsTrend,omitempty"`
}

// DashboardService derives dashboard metrics from the ticket snapshot.
type DashboardService struct {
	tickets repository.TicketRepository
	now     func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{tickets: tickets, now: time.Now}
}

// WithClock overrides the clock; used by tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// KPIs returns the metric cards for the given role. MANAGER and above also
// see the total ticket count.
func (s *DashboardService) KPIs(ctx context.Context, role domain.UserRole) ([]KPIData, error) {
	snapshot, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := now.Format("2006-01-02")
	var open, inProgress, resolvedToday, slaBreached int
	for _, t := range snapshot {
		switch t.Status {
		case domain.TicketStatusOpen:
			open++
		case domain.TicketStatusInProgress:
			inProgress++
		}
		if t.ResolvedAt != nil && t.ResolvedAt.UTC().Format("2006-01-02") == today {
			resolvedToday++
		}
		if t.SLABreached {
			slaBreached++
		}
	}

	kpis := []KPIData{
		{Label: "Open Tickets", Value: open, Change: 12, ChangeType: KPIChangeIncrease},
		{Label: "In Progress", Value: inProgress, Change: -5, ChangeType: KPIChangeDecrease},
		{Label: "Resolved Today", Value: resolvedToday, Change: 8, ChangeType: KPIChangeIncrease},
		{Label: "SLA Breached", Value: slaBreached, Change: 3, ChangeType: KPIChangeIncrease},
	}
	if role.AtLeast(domain.RoleManager) {
		kpis = append(kpis, KPIData{Label: "Total Tickets", Value: len(snapshot), ChangeType: KPIChangeNeutral})
	}
	return kpis, nil
}

// Charts returns status/priority distributions, plus the 7-day created
// trend for MANAGER and above.
func (s *DashboardService) Charts(ctx context.Context, role domain.UserRole) (*DashboardCharts, error) {
	snapshot, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[domain.TicketStatus]int)
	byPriority := make(map[domain.TicketPriority]int)
	for _, t := range snapshot {
		byStatus[t.Status]++
		byPriority[t.Priority]++
	}

	charts := &DashboardCharts{}
	for _, status := range domain.TicketStatuses {
		charts.TicketsByStatus = append(charts.TicketsByStatus, ChartDataPoint{
			Label: string(status),
			Value: byStatus[status],
		})
	}
	for _, priority := range domain.TicketPriorities {
		charts.TicketsByPriority = append(charts.TicketsByPriority, ChartDataPoint{
			Label: string(priority),
			Value: byPriority[priority],
		})
	}

	if role.AtLeast(domain.RoleManager) {
		now := s.now().UTC()
		for i := 6; i >= 0; i-- {
			day := now.AddDate(0, 0, -i)
			dayKey := day.Format("2006-01-02")
			var created int
			for _, t := range snapshot {
				if t.CreatedAt.UTC().Format("2006-01-02") == dayKey {
					created++
				}
			}
			charts.TicketsTrend = append(charts.TicketsTrend, ChartDataPoint{
				Label: day.Format("Mon"),
				Value: created,
			})
		}
	}
	return charts, nil
}
