package eventhub_test

import (
	"sync"

	"actionflow/backend/internal/models"
)

type MockClient struct {
	orgID   uint
	adminID uint
	send    chan models.ComplaintEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(orgID, adminID uint, buffer int) *MockClient {
	return &MockClient{
		orgID:   orgID,
		adminID: adminID,
		send:    make(chan models.ComplaintEvent, buffer),
	}
}

func (c *MockClient) GetOrgID() uint                               { return c.orgID }
func (c *MockClient) GetAdminID() uint                             { return c.adminID }
func (c *MockClient) GetSendChannel() chan<- models.ComplaintEvent { return c.send }
func (c *MockClient) Run()                                         {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
