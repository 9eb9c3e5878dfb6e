package health

import (
	"fmt"
	"sync"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/queue"
)

// Queue depth beyond which the queue component reports degraded.
const queueDepthWarning = 50

// Monitor aggregates health status from the resiliency components.
type Monitor struct {
	conn  *connectivity.Monitor
	queue *queue.Queue

	mu         sync.RWMutex
	lastError  string
	lastErrorAt time.Time
}

// NewMonitor creates a health monitor.
func NewMonitor(conn *connectivity.Monitor, q *queue.Queue) *Monitor {
	return &Monitor{conn: conn, queue: q}
}

// RecordError notes the most recent handled error for the detailed report.
func (m *Monitor) RecordError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.lastError = fmt.Sprintf("%s (%s)", err.Error(), domain.KindOf(err))
	m.lastErrorAt = time.Now()
	m.mu.Unlock()
}

// LastError returns the most recent handled error description, empty when
// none has been recorded.
func (m *Monitor) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// CheckHealth builds the current report.
func (m *Monitor) CheckHealth() Report {
	components := make(map[string]ComponentHealth)

	connHealth := ComponentHealth{Name: "connectivity", Status: StatusHealthy}
	if !m.conn.Online() {
		connHealth.Status = StatusDegraded
		connHealth.Detail = "offline; queued actions are deferred"
	}
	components["connectivity"] = connHealth

	queueHealth := ComponentHealth{Name: "action_queue", Status: StatusHealthy}
	depth := m.queue.Len()
	queueHealth.Detail = fmt.Sprintf("%d pending", depth)
	if depth > queueDepthWarning {
		queueHealth.Status = StatusDegraded
	}
	components["action_queue"] = queueHealth

	m.mu.RLock()
	if m.lastError != "" {
		components["last_error"] = ComponentHealth{
			Name:   "last_error",
			Status: StatusHealthy,
			Detail: fmt.Sprintf("%s at %s", m.lastError, m.lastErrorAt.Format(time.RFC3339)),
		}
	}
	m.mu.RUnlock()

	// Worst case wins
	overall := StatusHealthy
	for _, c := range components {
		if c.Status == StatusCritical {
			overall = StatusCritical
			break
		}
		if c.Status == StatusDegraded {
			overall = StatusDegraded
		}
	}

	return Report{SystemStatus: overall, Components: components}
}
