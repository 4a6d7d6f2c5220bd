// Package eventhub fans committed complaint events out to the admin
// dashboards of the same organization.
//
// Events arrive on Redis pub/sub, so every API process sees the transitions
// committed by the others and by the sweeper.
package eventhub

import (
	"context"
	"sync"

	"actionflow/backend/internal/models"

	"go.uber.org/zap"
)

// ManagerService owns the set of connected clients. Only Run mutates it.
type ManagerService struct {
	clients map[Client]bool
	mu      sync.RWMutex

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan models.ComplaintEvent

	logger *zap.Logger
	done   chan struct{}
}

func NewManagerService(logger *zap.Logger) *ManagerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManagerService{
		clients:      make(map[Client]bool),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan models.ComplaintEvent, 64),
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Run dispatches until ctx is done, then closes every client.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case c := <-m.RegisterCh:
			m.mu.Lock()
			m.clients[c] = true
			m.mu.Unlock()
			m.logger.Debug("dashboard connected", zap.Uint("org_id", c.GetOrgID()), zap.Uint("admin_id", c.GetAdminID()))

		case c := <-m.UnregisterCh:
			m.remove(c)

		case ev := <-m.EventCh:
			m.broadcast(ev)

		case <-ctx.Done():
			m.mu.Lock()
			for c := range m.clients {
				delete(m.clients, c)
				c.Close()
			}
			m.mu.Unlock()
			return
		}
	}
}

// Register hands c to the hub. It reports false once the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister is safe to call after the hub has stopped and more than once.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Publish queues ev for local fan-out without waiting on Run.
func (m *ManagerService) Publish(ev models.ComplaintEvent) {
	select {
	case m.EventCh <- ev:
	case <-m.done:
	}
}

// Len is the number of connected clients of orgID.
func (m *ManagerService) Len(orgID uint) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for c := range m.clients {
		if c.GetOrgID() == orgID {
			n++
		}
	}
	return n
}

func (m *ManagerService) remove(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c]; !ok {
		return
	}
	delete(m.clients, c)
	c.Close()
}

func (m *ManagerService) broadcast(ev models.ComplaintEvent) {
	var slow []Client
	m.mu.RLock()
	for c := range m.clients {
		if c.GetOrgID() != ev.OrgID {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			slow = append(slow, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range slow {
		m.logger.Warn("dropping slow dashboard client", zap.Uint("org_id", c.GetOrgID()), zap.Uint("admin_id", c.GetAdminID()))
		m.remove(c)
	}
}
