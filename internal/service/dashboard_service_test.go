package service

import (
	"context"
	"testing"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository/memstore"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
)

func timePtr(t time.Time) *time.Time { return &t }

func newDashboardFixture(now time.Time) *DashboardService {
	store := memstore.NewTicketStore(workflow.NewValidator(workflow.DefaultRegistry()), memstore.NewHistoryLog())
	store.Load([]domain.Ticket{
		{ID: "TKT-000001", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "TKT-000002", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, SLABreached: true, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "TKT-000003", Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityMedium, CreatedAt: now},
		{ID: "TKT-000004", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityMedium, ResolvedAt: timePtr(now.Add(-time.Hour)), CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "TKT-000005", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityCritical, ResolvedAt: timePtr(now.AddDate(0, 0, -2)), CreatedAt: now.AddDate(0, 0, -9)},
		{ID: "TKT-000006", Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityLow, ResolvedAt: timePtr(now.AddDate(0, 0, -4)), ClosedAt: timePtr(now.AddDate(0, 0, -3)), CreatedAt: now.AddDate(0, 0, -9)},
	})
	return NewDashboardService(store).WithClock(func() time.Time { return now })
}

func TestKPIsForViewer(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	kpis, err := svc.KPIs(context.Background(), domain.RoleViewer)
	if err != nil {
		t.Fatalf("kpis failed: %v", err)
	}
	if len(kpis) != 4 {
		t.Fatalf("viewer must see 4 KPIs, got %d", len(kpis))
	}

	want := map[string]int{
		"Open Tickets":   2,
		"In Progress":    1,
		"Resolved Today": 1,
		"SLA Breached":   1,
	}
	for _, kpi := range kpis {
		if expected, ok := want[kpi.Label]; !ok || kpi.Value != expected {
			t.Fatalf("kpi %q=%d, want %d", kpi.Label, kpi.Value, expected)
		}
	}
}

func TestKPIsForManagerIncludeTotal(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	kpis, err := svc.KPIs(context.Background(), domain.RoleManager)
	if err != nil {
		t.Fatalf("kpis failed: %v", err)
	}
	if len(kpis) != 5 {
		t.Fatalf("manager must see 5 KPIs, got %d", len(kpis))
	}
	last := kpis[len(kpis)-1]
	if last.Label != "Total Tickets" || last.Value != 6 {
		t.Fatalf("total kpi: %+v", last)
	}
	if last.ChangeType != KPIChangeNeutral {
		t.Fatalf("total changeType=%s, want neutral", last.ChangeType)
	}
}

func TestChartsDistributions(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	charts, err := svc.Charts(context.Background(), domain.RoleViewer)
	if err != nil {
		t.Fatalf("charts failed: %v", err)
	}
	if len(charts.TicketsByStatus) != len(domain.TicketStatuses) {
		t.Fatalf("status buckets=%d, want %d", len(charts.TicketsByStatus), len(domain.TicketStatuses))
	}
	byStatus := make(map[string]int)
	for _, p := range charts.TicketsByStatus {
		byStatus[p.Label] = p.Value
	}
	if byStatus["OPEN"] != 2 || byStatus["RESOLVED"] != 2 || byStatus["REJECTED"] != 0 {
		t.Fatalf("status distribution wrong: %v", byStatus)
	}
	if charts.TicketsTrend != nil {
		t.Fatal("viewer must not receive the trend chart")
	}
}

func TestChartsTrendForManager(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	svc := newDashboardFixture(now)

	charts, err := svc.Charts(context.Background(), domain.RoleManager)
	if err != nil {
		t.Fatalf("charts failed: %v", err)
	}
	if len(charts.TicketsTrend) != 7 {
		t.Fatalf("trend buckets=%d, want 7", len(charts.TicketsTrend))
	}
	// Buckets cover the last 7 days oldest first; tickets 1 and 2 were
	// created yesterday, ticket 3 today, ticket 4 three days ago.
	var total int
	for _, p := range charts.TicketsTrend {
		total += p.Value
	}
	if total != 4 {
		t.Fatalf("trend total=%d, want 4", total)
	}
	lastBucket := charts.TicketsTrend[6]
	if lastBucket.Value != 1 {
		t.Fatalf("today bucket=%d, want 1", lastBucket.Value)
	}
}
