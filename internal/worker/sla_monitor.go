package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/events"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
)

// SLAMonitor periodically flags tickets whose due date has passed while
// still unresolved. The flag is derived state: transitions never set or
// clear it.
type SLAMonitor struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time
}

// NewSLAMonitor builds the monitor.
func NewSLAMonitor(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration) *SLAMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SLAMonitor{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		now:        time.Now,
	}
}

// WithClock overrides the clock; used by tests.
func (m *SLAMonitor) WithClock(now func() time.Time) *SLAMonitor {
	m.now = now
	return m
}

// Run scans on a ticker until the context is cancelled.
func (m *SLAMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := m.Scan(ctx); err != nil {
				m.logger.Warn("sla scan failed", zap.Error(err))
			} else if n > 0 {
				m.logger.Info("sla breaches flagged", zap.Int("count", n))
			}
		}
	}
}

// Scan flags newly breached tickets and returns how many were flagged.
func (m *SLAMonitor) Scan(ctx context.Context) (int, error) {
	snapshot, err := m.tickets.List(ctx)
	if err != nil {
		return 0, err
	}

	now := m.now()
	var flagged int
	for i := range snapshot {
		t := &snapshot[i]
		if t.SLABreached || t.DueDate == nil || !t.DueDate.Before(now) {
			continue
		}
		if t.Status == domain.TicketStatusResolved || t.Status == domain.TicketStatusClosed {
			continue
		}
		if _, err := m.tickets.SetSLABreached(ctx, t.ID, true); err != nil {
			m.logger.Warn("failed to flag sla breach", zap.String("ticket_id", t.ID), zap.Error(err))
			continue
		}
		flagged++
		if m.dispatcher != nil {
			_ = m.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventTicketSLABreached,
				TicketID:  t.ID,
				Timestamp: now,
				Payload:   events.TicketSLABreachedPayload{DueDate: *t.DueDate},
			})
		}
	}
	return flagged, nil
}
